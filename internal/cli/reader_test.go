package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlockingReader_ReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain answer", input: "Groceries\n", expected: "Groceries"},
		{name: "surrounding whitespace", input: "  42.50 \n", expected: "42.50"},
		{name: "windows line ending", input: "2024-10-01\r\n", expected: "2024-10-01"},
		{name: "blank line", input: "\n", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))

			line, err := nbr.ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}
}

func TestNonBlockingReader_ReadStringEOF(t *testing.T) {
	nbr := NewNonBlockingReader(strings.NewReader("no newline"))

	value, err := nbr.ReadString(context.Background(), '\n')
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "no newline", value)
}

func TestNonBlockingReader_Cancellation(t *testing.T) {
	t.Run("canceled before read", func(t *testing.T) {
		nbr := NewNonBlockingReader(strings.NewReader("Food\n"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := nbr.ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("deadline while waiting", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pr.Close() }()
		defer func() { _ = pw.Close() }()

		nbr := NewNonBlockingReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := nbr.ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})
}

func TestNonBlockingReader_SequentialLines(t *testing.T) {
	nbr := NewNonBlockingReader(strings.NewReader("2024-10-01\ne\nFood\n"))
	ctx := context.Background()

	for _, want := range []string{"2024-10-01", "e", "Food"} {
		got, err := nbr.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := nbr.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewNonBlockingReader_NilPanics(t *testing.T) {
	assert.Panics(t, func() { NewNonBlockingReader(nil) })
}

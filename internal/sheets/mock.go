package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

var _ service.ReportWriter = (*MockWriter)(nil)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc        func(ctx context.Context, summary *model.MonthlySummary, transactions []model.Transaction) error
	LastSummary      *model.MonthlySummary
	LastTransactions []model.Transaction
	WriteCalls       []WriteCall
	WriteCallCount   int
	mu               sync.Mutex
}

// WriteCall represents a single call to WriteMonthlyReport.
type WriteCall struct {
	Error        error
	Summary      *model.MonthlySummary
	Transactions []model.Transaction
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		WriteCalls: make([]WriteCall, 0),
	}
}

// WriteMonthlyReport implements the ReportWriter interface.
func (m *MockWriter) WriteMonthlyReport(ctx context.Context, summary *model.MonthlySummary, transactions []model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastSummary = summary
	m.LastTransactions = transactions

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, summary, transactions)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{
		Summary:      summary,
		Transactions: transactions,
		Error:        err,
	})

	return err
}

// GetWriteCalls returns a copy of all write calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}

// SetWriteError configures the mock to return an error on every call.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(_ context.Context, _ *model.MonthlySummary, _ []model.Transaction) error {
		return err
	}
}

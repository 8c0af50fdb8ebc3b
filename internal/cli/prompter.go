package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ErrInputTerminated is returned when input ends before an entry is complete.
var ErrInputTerminated = errors.New("input terminated")

// Prompter walks the user through entering a transaction.
type Prompter struct {
	writer io.Writer
	reader *NonBlockingReader
	now    func() time.Time
}

// NewCLIPrompter creates a new CLI prompter with the given reader and writer.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
		now:    time.Now,
	}
}

// PromptTransaction asks for each field of a transaction. Known categories
// of the chosen type are offered by number; any other name is accepted too.
func (p *Prompter) PromptTransaction(ctx context.Context, categories []model.Category) (model.Transaction, error) {
	var txn model.Transaction

	if _, err := fmt.Fprintln(p.writer, FormatTitle("New transaction")); err != nil {
		return txn, fmt.Errorf("failed to write title: %w", err)
	}

	date, err := p.promptDate(ctx)
	if err != nil {
		return txn, err
	}
	txn.Date = date

	choice, err := p.promptChoice(ctx, "Type [i]ncome/[e]xpense (default e)", []string{"i", "e", ""})
	if err != nil {
		return txn, err
	}
	txn.Type = model.TransactionTypeExpense
	if choice == "i" {
		txn.Type = model.TransactionTypeIncome
	}

	category, err := p.promptCategory(ctx, categoriesOfType(categories, model.CategoryType(txn.Type)))
	if err != nil {
		return txn, err
	}
	txn.Category = category

	description, err := p.readLine(ctx, "Description (optional)")
	if err != nil {
		return txn, err
	}
	txn.Description = description

	amount, err := p.promptAmount(ctx)
	if err != nil {
		return txn, err
	}
	txn.Amount = amount

	if _, err := fmt.Fprintln(p.writer, RenderBox("Transaction Details", formatTransactionDetails(txn))); err != nil {
		return txn, fmt.Errorf("failed to write transaction box: %w", err)
	}

	return txn, nil
}

func formatTransactionDetails(txn model.Transaction) string {
	details := fmt.Sprintf("Date: %s\nType: %s\nCategory: %s\nAmount: %s",
		txn.Date, txn.Type, txn.Category, FormatMoney(txn.Amount))
	if txn.Description != "" {
		details += "\nDescription: " + txn.Description
	}
	return details
}

func (p *Prompter) readLine(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadString(ctx, '\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			return "", ErrInputTerminated
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) retry(message string) {
	if _, err := fmt.Fprintln(p.writer, FormatError(message)); err != nil {
		slog.Warn("Failed to write error message", "error", err)
	}
}

func (p *Prompter) promptDate(ctx context.Context) (string, error) {
	today := p.now().Format(model.DateLayout)
	for {
		input, err := p.readLine(ctx, fmt.Sprintf("Date (default %s)", today))
		if err != nil {
			return "", err
		}
		if input == "" {
			return today, nil
		}

		parsed, err := time.Parse(model.DateLayout, input)
		if err != nil || parsed.Format(model.DateLayout) != input {
			p.retry("Use the YYYY-MM-DD format, e.g. 2024-10-01.")
			continue
		}
		return input, nil
	}
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		input, err := p.readLine(ctx, prompt)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		p.retry("Invalid choice. Please try again.")
	}
}

func (p *Prompter) promptCategory(ctx context.Context, known []model.Category) (string, error) {
	if len(known) > 0 {
		if _, err := fmt.Fprintln(p.writer, FormatInfo("Categories:")); err != nil {
			return "", fmt.Errorf("failed to write categories header: %w", err)
		}
		for i, cat := range known {
			if _, err := fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, cat.Name); err != nil {
				slog.Warn("Failed to write category option", "error", err)
			}
		}
	}

	for {
		input, err := p.readLine(ctx, "Category (number or name)")
		if err != nil {
			return "", err
		}
		if input == "" {
			p.retry("Category cannot be empty. Please try again.")
			continue
		}

		if n, convErr := strconv.Atoi(input); convErr == nil {
			if n >= 1 && n <= len(known) {
				return known[n-1].Name, nil
			}
			p.retry("No category with that number.")
			continue
		}

		return input, nil
	}
}

func (p *Prompter) promptAmount(ctx context.Context) (float64, error) {
	for {
		input, err := p.readLine(ctx, "Amount")
		if err != nil {
			return 0, err
		}

		amount, err := strconv.ParseFloat(strings.TrimPrefix(input, "$"), 64)
		if err != nil || amount <= 0 {
			p.retry("Enter a positive amount, e.g. 42.50.")
			continue
		}
		return amount, nil
	}
}

func categoriesOfType(categories []model.Category, categoryType model.CategoryType) []model.Category {
	var filtered []model.Category
	for _, cat := range categories {
		if cat.Type == categoryType {
			filtered = append(filtered, cat)
		}
	}
	return filtered
}

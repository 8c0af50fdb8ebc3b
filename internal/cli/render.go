package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// FormatMoney renders an amount with two decimals, e.g. "$9820.00".
func FormatMoney(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// FormatSigned colors an amount by the direction of the money.
func FormatSigned(amount float64) string {
	if amount < 0 {
		return ExpenseStyle.Render(FormatMoney(amount))
	}
	return IncomeStyle.Render(FormatMoney(amount))
}

// RenderBalance writes the current balance line.
func RenderBalance(w io.Writer, balance float64) error {
	_, err := fmt.Fprintf(w, "Current balance: %s\n", FormatSigned(balance))
	return err
}

// RenderMonthlySummary writes per-category totals and the month's net.
func RenderMonthlySummary(w io.Writer, summary *model.MonthlySummary) error {
	var b strings.Builder

	title := fmt.Sprintf("Monthly Summary %d-%02d", summary.Year, summary.Month)
	b.WriteString(FormatTitle(title))
	b.WriteString("\n")

	if summary.IsEmpty() {
		b.WriteString(SubtleStyle.Render("No transactions recorded for this month."))
		b.WriteString("\n")
	} else {
		writeBreakdown(&b, "Income", summary.Income, IncomeStyle)
		writeBreakdown(&b, "Expenses", summary.Expenses, ExpenseStyle)
	}

	fmt.Fprintf(&b, "Total Income: %s\n", FormatMoney(summary.TotalIncome))
	fmt.Fprintf(&b, "Total Expenses: %s\n", FormatMoney(summary.TotalExpenses))
	fmt.Fprintf(&b, "Net Savings: %s\n", FormatSigned(summary.NetSavings))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBreakdown(b *strings.Builder, heading string, totals map[string]float64, style lipgloss.Style) {
	if len(totals) == 0 {
		return
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if totals[categories[i]] != totals[categories[j]] {
			return totals[categories[i]] > totals[categories[j]]
		}
		return categories[i] < categories[j]
	})

	b.WriteString(BoldStyle.Render(heading))
	b.WriteString("\n")
	for _, category := range categories {
		fmt.Fprintf(b, "  %-20s %s\n", category, style.Render(FormatMoney(totals[category])))
	}
	b.WriteString("\n")
}

// RenderTransactions writes transactions as an aligned table.
func RenderTransactions(w io.Writer, transactions []model.Transaction) error {
	if len(transactions) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No transactions found."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("ID"),
		TableHeaderStyle.Render("Date"),
		TableHeaderStyle.Render("Type"),
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Amount"),
		TableHeaderStyle.Render("Description"))

	for _, txn := range transactions {
		amount := FormatMoney(txn.Amount)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID, txn.Date, txn.Type, txn.Category, amount, txn.Description)
	}

	return tw.Flush()
}

// RenderCategories writes categories as an aligned table.
func RenderCategories(w io.Writer, categories []model.Category) error {
	if len(categories) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No categories found."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("ID"),
		TableHeaderStyle.Render("Name"),
		TableHeaderStyle.Render("Type"))
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		strings.Repeat("-", 4),
		strings.Repeat("-", 20),
		strings.Repeat("-", 8))

	for _, cat := range categories {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", cat.ID, cat.Name, cat.Type)
	}

	return tw.Flush()
}

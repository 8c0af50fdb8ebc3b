package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
	"github.com/Veraticus/spice-ledger/internal/pattern"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Credits become income and debits become expenses. Transactions get a category
from their OFX type where one is obvious (interest, fees, direct deposits) and
the --category default otherwise. Rules under import.rules in the config file
override both.`,
		Example: `  # Import single file
  ledger import-ofx ~/Downloads/chase_oct_2024.qfx

  # Import all QFX files in a directory
  ledger import-ofx ~/Downloads/*.qfx

  # Preview without saving, filing everything unknown under Shopping
  ledger import-ofx --dry-run --category Shopping ~/Downloads/card.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().StringP("category", "c", ofx.DefaultCategory, "Category for transactions without a type hint")
	cmd.Flags().Bool("checkpoint", false, "Create a checkpoint before saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	category, _ := cmd.Flags().GetString("category")
	checkpoint, _ := cmd.Flags().GetBool("checkpoint")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	ctx := cmd.Context()
	parser := ofx.NewParser(ofx.WithDefaultCategory(category))
	txns, err := parseOFXFiles(ctx, parser, files)
	if err != nil {
		return err
	}

	if len(txns) == 0 {
		return common.NewUserError("nothing to import", common.ErrNoTransactions)
	}

	rules, err := config.LoadCategoryRules()
	if err != nil {
		return err
	}
	if changed := rules.Apply(txns); changed > 0 {
		slog.Info("Applied category rules", "recategorized", changed)
	}

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(txns))))
		return cli.RenderTransactions(out, txns)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if checkpoint {
		manager, err := store.NewCheckpointManager()
		if err != nil {
			return fmt.Errorf("failed to create checkpoint manager: %w", err)
		}
		tag := "pre-import-" + time.Now().Format("2006-01-02-150405")
		if _, err := manager.Create(ctx, tag, fmt.Sprintf("Before importing %d files", len(files))); err != nil {
			return fmt.Errorf("failed to create checkpoint: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Created checkpoint "+tag))
	}

	warnCategoryMismatches(ctx, store, txns)

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
	ctx = handler.HandleInterrupts(ctx, "Transactions saved so far remain in the ledger.")
	defer handler.Stop()

	saved, err := saveTransactions(ctx, store, txns, cmd.ErrOrStderr())
	if err != nil {
		if handler.WasInterrupted() {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Saved %d of %d transactions before interruption", saved, len(txns))))
			return nil
		}
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions from %d files", saved, len(files))))
	fmt.Fprintln(out, importSummary(txns, len(files)))
	return nil
}

type categoryCount struct {
	name  string
	count int
}

// importSummary boxes the totals of an import with its busiest categories.
func importSummary(txns []model.Transaction, files int) string {
	var income, expenses float64
	counts := make(map[string]int)
	for _, txn := range txns {
		if txn.Type == model.TransactionTypeIncome {
			income += txn.Amount
		} else {
			expenses += txn.Amount
		}
		counts[txn.Category]++
	}

	content := fmt.Sprintf(`Files: %d
Transactions: %d
Income: %s
Expenses: %s

Top categories:
`, files, len(txns), cli.FormatMoney(income), cli.FormatMoney(expenses))

	for i, c := range topCategories(counts, 5) {
		content += fmt.Sprintf("%d. %s (%d transactions)\n", i+1, c.name, c.count)
	}

	return cli.RenderBox("Import Summary", content)
}

func topCategories(counts map[string]int, limit int) []categoryCount {
	sorted := make([]categoryCount, 0, len(counts))
	for name, count := range counts {
		sorted = append(sorted, categoryCount{name: name, count: count})
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].name < sorted[j].name
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", common.ErrNoTransactions)
	}
	return files, nil
}

// parseOFXFiles parses every file, dropping rows already seen in an earlier
// file. Unreadable files are logged and skipped.
func parseOFXFiles(ctx context.Context, parser *ofx.Parser, files []string) ([]model.Transaction, error) {
	var all []model.Transaction
	seen := make(map[string]bool)

	for _, path := range files {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		txns, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, txn := range txns {
			key := fmt.Sprintf("%s|%s|%.2f|%s", txn.Date, txn.Type, txn.Amount, txn.Description)
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, txn)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(txns),
			"added", added,
			"duplicates", len(txns)-added)
	}

	return all, nil
}

// warnCategoryMismatches logs rows filed under a known category of the
// opposite type. They are still imported.
func warnCategoryMismatches(ctx context.Context, ledger service.Ledger, txns []model.Transaction) {
	categories, err := ledger.GetCategories(ctx)
	if err != nil {
		slog.Warn("Failed to load categories", "error", err)
		return
	}

	byName := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		byName[cat.Name] = cat
	}

	for _, txn := range txns {
		cat, ok := byName[txn.Category]
		if !ok {
			continue
		}
		if err := pattern.ValidateCategoryType(txn, cat); err != nil {
			slog.Warn("Category type mismatch", "date", txn.Date, "description", txn.Description, "error", err)
		}
	}
}

func saveTransactions(ctx context.Context, ledger service.Ledger, txns []model.Transaction, progressOut io.Writer) (int, error) {
	bar := cli.NewProgressBar(progressOut, len(txns), "Saving transactions")

	saved := 0
	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		if _, err := ledger.AddTransaction(ctx, txn); err != nil {
			return saved, fmt.Errorf("failed to save transaction dated %s: %w", txn.Date, err)
		}
		saved++
		_ = bar.Add(1)
	}

	return saved, nil
}

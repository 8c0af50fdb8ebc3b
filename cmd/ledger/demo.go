package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// demoTransactions is one October of sample activity.
var demoTransactions = []model.Transaction{
	{Date: "2024-10-01", Category: "Salary", Description: "Monthly salary", Amount: 5000, Type: model.TransactionTypeIncome},
	{Date: "2024-10-01", Category: "Streams", Description: "Distrokid", Amount: 5000, Type: model.TransactionTypeIncome},
	{Date: "2024-10-02", Category: "Music", Description: "Music Video", Amount: 150, Type: model.TransactionTypeExpense},
	{Date: "2024-10-03", Category: "Transport", Description: "Promo", Amount: 30, Type: model.TransactionTypeExpense},
}

func demoCmd() *cobra.Command {
	var useConfigured bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through a sample month",
		Long: `Record a sample month of transactions and print the balance, the
October 2024 summary and the recent transactions.

The demo runs against a throwaway database unless --use-ledger is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dbPath := databasePath()
			if !useConfigured {
				dir, err := os.MkdirTemp("", "ledger-demo-*")
				if err != nil {
					return fmt.Errorf("failed to create demo directory: %w", err)
				}
				defer func() { _ = os.RemoveAll(dir) }()
				dbPath = filepath.Join(dir, "finance.db")
			}

			store, err := openStorage(ctx, dbPath)
			if err != nil {
				return err
			}
			defer closeStore(store)

			return runDemo(ctx, cmd.OutOrStdout(), store)
		},
	}

	cmd.Flags().BoolVar(&useConfigured, "use-ledger", false, "write the sample data into the configured ledger")

	return cmd
}

func runDemo(ctx context.Context, w io.Writer, ledger service.Ledger) error {
	for _, txn := range demoTransactions {
		if _, err := ledger.AddTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to add demo transaction: %w", err)
		}
	}

	balance, err := ledger.GetBalance(ctx)
	if err != nil {
		return err
	}
	if err := cli.RenderBalance(w, balance); err != nil {
		return err
	}

	summary, err := ledger.GetMonthlySummary(ctx, 2024, int(time.October))
	if err != nil {
		return err
	}
	if err := cli.RenderMonthlySummary(w, summary); err != nil {
		return err
	}

	recent, err := ledger.GetTransactions(ctx, model.TransactionFilter{})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, cli.FormatTitle("Recent transactions")); err != nil {
		return err
	}
	return cli.RenderTransactions(w, recent)
}

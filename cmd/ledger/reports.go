package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show total income minus total expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			balance, err := store.GetBalance(ctx)
			if err != nil {
				return fmt.Errorf("failed to compute balance: %w", err)
			}

			return cli.RenderBalance(cmd.OutOrStdout(), balance)
		},
	}
}

func summaryCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show per-category totals for a month",
		Example: `  # Current month
  ledger summary

  # A specific month
  ledger summary --month 2024-10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			year, mon, err := parseMonth(month, time.Now())
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			summary, err := store.GetMonthlySummary(ctx, year, mon)
			if err != nil {
				return fmt.Errorf("failed to build monthly summary: %w", err)
			}

			return cli.RenderMonthlySummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to summarize, YYYY-MM (default: current month)")

	return cmd
}

func transactionsCmd() *cobra.Command {
	var (
		from     string
		to       string
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List transactions, newest first",
		Example: `  ledger transactions --from 2024-10-01 --to 2024-10-31
  ledger transactions --category Food --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			startDate, err := parseDateFlag("from", from)
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag("to", to)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			txns, err := store.GetTransactions(ctx, model.TransactionFilter{
				StartDate: startDate,
				EndDate:   endDate,
				Category:  category,
			})
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if limit > 0 && len(txns) > limit {
				txns = txns[:limit]
			}

			return cli.RenderTransactions(cmd.OutOrStdout(), txns)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "earliest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "exact category name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n transactions (0 = all)")

	return cmd
}

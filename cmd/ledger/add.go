package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func addCmd() *cobra.Command {
	var (
		date        string
		txnType     string
		category    string
		description string
		amount      float64
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a single income or expense transaction.

Without --interactive every field comes from flags; the date defaults to today.`,
		Example: `  # Record a grocery expense
  ledger add --type expense --category Food --amount 150 --description Groceries

  # Record salary on a specific date
  ledger add --date 2024-10-01 --type income --category Salary --amount 5000

  # Walk through the fields interactively
  ledger add -i`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			var txn model.Transaction
			if interactive {
				categories, err := store.GetCategories(ctx)
				if err != nil {
					return err
				}

				prompter := cli.NewCLIPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				txn, err = prompter.PromptTransaction(ctx, categories)
				if err != nil {
					return fmt.Errorf("failed to read transaction: %w", err)
				}
			} else {
				if date == "" {
					date = time.Now().Format(model.DateLayout)
				}
				parsedType, err := parseTransactionType(txnType)
				if err != nil {
					return err
				}
				if category == "" {
					return fmt.Errorf("--category is required")
				}

				txn = model.Transaction{
					Date:        date,
					Type:        parsedType,
					Category:    category,
					Description: description,
					Amount:      amount,
				}
			}

			id, err := store.AddTransaction(ctx, txn)
			if err != nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"Recorded %s #%d: %s %s on %s", txn.Type, id, txn.Category, cli.FormatMoney(txn.Amount), txn.Date)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&txnType, "type", "t", "expense", "transaction type (income, expense)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-form description")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "amount as a positive number")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for each field")

	return cmd
}

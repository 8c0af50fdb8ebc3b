package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/sheets"
)

func exportCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a monthly report to Google Sheets",
		Long: `Write a month's summary and its transactions to a tab of a Google
Sheets spreadsheet. The tab is named after the month and is overwritten on
every export.

Credentials come from the sheets.* config keys or GOOGLE_SHEETS_* environment
variables: either a service account key file or an OAuth client with a refresh
token (see 'ledger export auth').`,
		Example: `  ledger export --month 2024-10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			year, mon, err := parseMonth(month, time.Now())
			if err != nil {
				return err
			}

			sheetsConfig, err := config.LoadSheetsConfig()
			if err != nil {
				return common.NewUserError("Google Sheets is not configured", err)
			}

			writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to create sheets writer: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := exportMonth(ctx, store, writer, year, mon); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"Exported %s to %s", sheets.SheetTitle(year, mon), sheetsConfig.SpreadsheetName)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to export, YYYY-MM (default: current month)")
	cmd.AddCommand(exportAuthCmd())

	return cmd
}

// exportMonth hands one month's summary and transactions to the report writer.
func exportMonth(ctx context.Context, ledger service.Ledger, writer service.ReportWriter, year, month int) error {
	summary, err := ledger.GetMonthlySummary(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to build monthly summary: %w", err)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	txns, err := ledger.GetTransactions(ctx, model.TransactionFilter{
		StartDate: first.Format(model.DateLayout),
		EndDate:   first.AddDate(0, 1, -1).Format(model.DateLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	slog.Info("Exporting monthly report", "month", sheets.SheetTitle(year, month), "transactions", len(txns))

	if err := writer.WriteMonthlyReport(ctx, summary, txns); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func exportAuthCmd() *cobra.Command {
	var tokenFile string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access with OAuth",
		Long: `Run the OAuth consent flow for the configured client and print the
refresh token to store as sheets.refresh_token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sheetsConfig := sheets.DefaultConfig()
			sheetsConfig.ClientID = viper.GetString("sheets.client_id")
			sheetsConfig.ClientSecret = viper.GetString("sheets.client_secret")
			sheetsConfig.LoadFromEnv()
			if sheetsConfig.ClientID == "" || sheetsConfig.ClientSecret == "" {
				return common.NewUserError(
					"set sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET)",
					common.ErrMissingConfig)
			}

			if tokenFile == "" {
				tokenFile = filepath.Join(config.DefaultConfigDir(), "sheets-token.json")
			}

			token, err := sheets.AuthenticateOAuth2Interactive(ctx, sheets.OAuth2Config{
				ClientID:     sheetsConfig.ClientID,
				ClientSecret: sheetsConfig.ClientSecret,
				TokenFile:    config.ExpandPath(tokenFile),
			}, func(authURL string) {
				fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize access:"))
				fmt.Fprintln(out, authURL)
			})
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Authorization complete"))
			if token.RefreshToken != "" {
				fmt.Fprintf(out, "Refresh token: %s\n", token.RefreshToken)
			} else {
				fmt.Fprintln(out, cli.FormatWarning("Google returned no refresh token; revoke the app's access and try again."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFile, "token-file", "", "where to save the token (default: config dir)")

	return cmd
}

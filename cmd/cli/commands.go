package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/middleware"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/config"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/logger"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres"
)

type options struct {
	baseURL string
	owner   string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "budget-cli",
		Short:         "Budget ledger CLI tool",
		Long:          `A command line interface for the budget ledger API and its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the budget API")
	rootCmd.PersistentFlags().StringVar(&opts.owner, "owner", "", "Owner id sent as "+middleware.OwnerHeader)
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(newMigrateCmd(), newLedgerCmd(opts), newMovementsCmd(opts), newAccountsCmd(opts))

	return rootCmd
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	migrator := func() (*postgres.Migrator, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
		return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, lg), nil
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)

	return migrateCmd
}

func newLedgerCmd(opts *options) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var (
		accountID string
		repair    bool
	)

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare recorded balances with the movement history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			if accountID == "" {
				if repair {
					return fmt.Errorf("--repair needs --account")
				}
				var report dto.ReconciliationReportResponse
				if err := client.get(cmd.Context(), "/api/v1/reconciliation", nil, &report); err != nil {
					return err
				}
				renderReport(cmd.OutOrStdout(), &report)
				return nil
			}

			var result dto.ReconciliationResponse
			path := "/api/v1/accounts/" + url.PathEscape(accountID) + "/reconciliation"
			if repair {
				err = client.do(cmd.Context(), http.MethodPost, path+"/repair", nil, &result)
			} else {
				err = client.get(cmd.Context(), path, nil, &result)
			}
			if err != nil {
				return err
			}
			renderReconciliation(cmd.OutOrStdout(), []*dto.ReconciliationResponse{&result})
			return nil
		},
	}
	reconcileCmd.Flags().StringVar(&accountID, "account", "", "Reconcile a single account")
	reconcileCmd.Flags().BoolVar(&repair, "repair", false, "Rewrite the recorded balance of --account to the recomputed value")

	ledgerCmd.AddCommand(reconcileCmd)
	return ledgerCmd
}

func newMovementsCmd(opts *options) *cobra.Command {
	movementsCmd := &cobra.Command{
		Use:   "movements",
		Short: "Movement queries",
	}

	var (
		accountID, kind, search, category, from, to, sort, order string
		page, pageSize                                           int
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List movements with filters, sorting and paging",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			query := url.Values{}
			for key, val := range map[string]string{
				"account_id": accountID,
				"kind":       kind,
				"search":     search,
				"category":   category,
				"from":       from,
				"to":         to,
				"sort":       sort,
				"order":      order,
			} {
				if val != "" {
					query.Set(key, val)
				}
			}
			if page > 0 {
				query.Set("page", fmt.Sprint(page))
			}
			if pageSize > 0 {
				query.Set("page_size", fmt.Sprint(pageSize))
			}

			var result dto.MovementPageResponse
			if err := client.get(cmd.Context(), "/api/v1/movements", query, &result); err != nil {
				return err
			}
			renderMovements(cmd.OutOrStdout(), &result)
			return nil
		},
	}

	flags := listCmd.Flags()
	flags.StringVar(&accountID, "account", "", "Only this account")
	flags.StringVar(&kind, "kind", "", "credit, debit or transfer")
	flags.StringVar(&search, "search", "", "Match description, notes or reference")
	flags.StringVar(&category, "category", "", "Exact category")
	flags.StringVar(&from, "from", "", "First occurrence date (YYYY-MM-DD)")
	flags.StringVar(&to, "to", "", "Last occurrence date (YYYY-MM-DD)")
	flags.StringVar(&sort, "sort", "", "date, amount, description, category, account or created")
	flags.StringVar(&order, "order", "", "asc or desc")
	flags.IntVar(&page, "page", 0, "Page number")
	flags.IntVar(&pageSize, "page-size", 0, "Page size")

	movementsCmd.AddCommand(listCmd)
	return movementsCmd
}

func newAccountsCmd(opts *options) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account queries",
	}

	var activeOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}

			query := url.Values{}
			if activeOnly {
				query.Set("active", "true")
			}

			var accounts []*dto.AccountResponse
			if err := client.get(cmd.Context(), "/api/v1/accounts", query, &accounts); err != nil {
				return err
			}
			renderAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&activeOnly, "active", false, "Hide deactivated accounts")

	accountsCmd.AddCommand(listCmd)
	return accountsCmd
}

type apiClient struct {
	baseURL string
	owner   string
	http    *http.Client
}

func newAPIClient(opts *options) (*apiClient, error) {
	if opts.owner == "" {
		return nil, fmt.Errorf("--owner is required")
	}
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		owner:   opts.owner,
		http:    &http.Client{Timeout: opts.timeout},
	}, nil
}

func (c *apiClient) get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set(middleware.OwnerHeader, c.owner)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		zerolog.Ctx(ctx).Debug().Bytes("body", data).Msg("undecodable response")
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(true)
	table.SetColumnSeparator(" ")
	return table
}

func renderReport(w io.Writer, report *dto.ReconciliationReportResponse) {
	fmt.Fprintf(w, "Checked %d accounts at %s: %d reconciled, %d with discrepancies\n",
		report.TotalAccounts, report.CheckedAt.Format(time.RFC3339), report.ReconciledAccounts, len(report.Discrepancies))
	if len(report.Discrepancies) > 0 {
		renderReconciliation(w, report.Discrepancies)
	}
}

func renderReconciliation(w io.Writer, results []*dto.ReconciliationResponse) {
	table := newTable(w, "Account", "Name", "Recorded", "Calculated", "Difference", "Movements", "OK")
	for _, r := range results {
		table.Append([]string{
			r.AccountID,
			truncate(r.AccountName, 24),
			r.RecordedBalance,
			r.CalculatedBalance,
			r.Difference,
			fmt.Sprint(r.MovementCount),
			fmt.Sprint(r.IsReconciled),
		})
	}
	table.Render()
}

func renderMovements(w io.Writer, page *dto.MovementPageResponse) {
	table := newTable(w, "Date", "Kind", "Account", "Description", "Category", "Amount", "Fee")
	for _, m := range page.Items {
		account := m.AccountName
		if account == "" {
			account = m.AccountID
		}
		kind := m.Kind
		if m.Direction != "" {
			kind += " " + m.Direction
		}
		table.Append([]string{
			m.OccurredAt,
			kind,
			truncate(account, 20),
			truncate(m.Description, 32),
			truncate(m.Category, 20),
			m.Amount,
			m.Fee,
		})
	}
	table.Render()

	s := page.Summary
	fmt.Fprintf(w, "Page %d/%d (%d movements)  income %s  expenses %s  transfers %s  fees %s  net %s\n",
		page.Page, page.TotalPages, page.TotalCount, s.CreditTotal, s.DebitTotal, s.TransferTotal, s.FeeTotal, s.Net)
}

func renderAccounts(w io.Writer, accounts []*dto.AccountResponse) {
	table := newTable(w, "ID", "Name", "Type", "Currency", "Balance", "Active")
	for _, a := range accounts {
		table.Append([]string{a.ID, truncate(a.Name, 24), a.Type, a.Currency, a.CurrentBalance, fmt.Sprint(a.Active)})
	}
	table.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

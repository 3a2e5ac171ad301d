package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/masjid-console/internal/adapter/backend"
	"github.com/iho/masjid-console/internal/adapter/prayer"
	"github.com/iho/masjid-console/internal/domain"
	"github.com/iho/masjid-console/internal/infrastructure/config"
	"github.com/iho/masjid-console/internal/infrastructure/logger"
	"github.com/iho/masjid-console/internal/infrastructure/poller"
	"github.com/iho/masjid-console/internal/usecase"
)

// options are the persistent flags shared by every command.
type options struct {
	backendURL string
	token      string
	timeout    time.Duration
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "masjid-cli",
		Short:         "Masjid console CLI tool",
		Long:          `A command line interface for checking balances, summaries and prayer times of the masjid console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.backendURL, "url", "", "Base URL of the backend API (default BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Backend bearer token (default BACKEND_SERVICE_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log backend calls to stderr")

	rootCmd.AddCommand(
		newBalanceCmd(opts),
		newCategoryCmd(),
		newSummaryCmd(opts),
		newPrayerCmd(opts),
	)

	return rootCmd
}

// Balance commands

func newBalanceCmd(opts *options) *cobra.Command {
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance guard operations",
	}

	var (
		category string
		source   string
		amount   string
		cash     string
		bank     string
	)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether an expense is covered by the available balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ParseAmount(amount); err != nil {
				return fmt.Errorf("--amount: %w", err)
			}

			summary, err := balanceSummary(cmd, opts, cash, bank)
			if err != nil {
				return err
			}

			funding, inferred := domain.InferFundingSource(category, source)
			out := cmd.OutOrStdout()
			if inferred {
				fmt.Fprintf(out, "Funding source: %s (inferred)\n", funding.Label())
			} else {
				fmt.Fprintf(out, "Funding source: %s\n", funding.Label())
			}
			fmt.Fprintf(out, "Available: %s\n", domain.FormatRupiah(summary.Balance(funding)))

			if warning := domain.BalanceWarning(amount, funding, summary, nil); warning != "" {
				fmt.Fprintln(out, warning)
				return errInsufficient
			}

			fmt.Fprintln(out, "Balance OK")
			return nil
		},
	}

	checkCmd.Flags().StringVar(&category, "category", "", "Category label used to infer the funding source")
	checkCmd.Flags().StringVar(&source, "source", "", "Explicit funding source (cash or bank)")
	checkCmd.Flags().StringVar(&amount, "amount", "", "Expense amount")
	checkCmd.Flags().StringVar(&cash, "cash", "", "Cash balance; fetched from the backend when omitted")
	checkCmd.Flags().StringVar(&bank, "bank", "", "Bank balance; fetched from the backend when omitted")
	_ = checkCmd.MarkFlagRequired("amount")

	balanceCmd.AddCommand(checkCmd)
	return balanceCmd
}

var errInsufficient = errors.New("insufficient balance")

func balanceSummary(cmd *cobra.Command, opts *options, cash, bank string) (domain.AccountSummary, error) {
	if cash == "" && bank == "" {
		client, token, err := backendClient(cmd, opts)
		if err != nil {
			return domain.AccountSummary{}, err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
		defer cancel()
		return client.FetchSummary(ctx, token)
	}

	cashBalance, err := parseBalance("cash", cash)
	if err != nil {
		return domain.AccountSummary{}, err
	}
	bankBalance, err := parseBalance("bank", bank)
	if err != nil {
		return domain.AccountSummary{}, err
	}

	return domain.AccountSummary{
		CashBalance:  cashBalance,
		BankBalance:  bankBalance,
		TotalBalance: cashBalance.Add(bankBalance),
	}, nil
}

func parseBalance(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// Category commands

func newCategoryCmd() *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Transaction category helpers",
	}

	var source string

	inferCmd := &cobra.Command{
		Use:   "infer <label>",
		Short: "Show the funding source a category label maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			funding, inferred := domain.InferFundingSource(args[0], source)
			how := "explicit"
			if inferred {
				how = "inferred"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", funding, how)
			return nil
		},
	}
	inferCmd.Flags().StringVar(&source, "source", "", "Explicit funding source reported by the backend")

	categoryCmd.AddCommand(inferCmd)
	return categoryCmd
}

// Summary commands

func newSummaryCmd(opts *options) *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Account summary operations",
	}

	var asJSON bool

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch the account summary once",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, token, err := backendClient(cmd, opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			summary, err := client.FetchSummary(ctx, token)
			if err != nil {
				return fmt.Errorf("fetch summary: %w", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), summaryView(summary))
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	var interval time.Duration

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the account summary until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, token, err := backendClient(cmd, opts)
			if err != nil {
				return err
			}
			if token == "" {
				return errors.New("summary watch needs --token or BACKEND_SERVICE_TOKEN")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watchSummary(ctx, cmd.OutOrStdout(), client, token, interval, opts.timeout, cliLogger(cmd, opts))
		},
	}
	watchCmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Polling interval")

	summaryCmd.AddCommand(showCmd, watchCmd)
	return summaryCmd
}

// watchSummary prints the summary every time the poller stores a newer one.
func watchSummary(ctx context.Context, out io.Writer, fetcher usecase.SummaryFetcher, token string, interval, timeout time.Duration, log zerolog.Logger) error {
	summaries := usecase.NewSummaryUseCase(fetcher, token, 0)

	p := poller.New(poller.Config{
		Refresher: summaries,
		Interval:  interval,
		Timeout:   timeout,
		Logger:    log,
	})
	if err := p.Subscribe(ctx); err != nil {
		return err
	}
	defer p.Close()

	tick := interval / 4
	if tick <= 0 || tick > time.Second {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			summary, ok := summaries.Snapshot()
			if !ok || !summary.FetchedAt.After(last) {
				continue
			}
			last = summary.FetchedAt
			fmt.Fprintf(out, "[%s]\n", summary.FetchedAt.Format(time.RFC3339))
			printSummary(out, summary)
		}
	}
}

type summaryJSON struct {
	Income       string `json:"income"`
	Expense      string `json:"expense"`
	DraftCount   int    `json:"draft_count"`
	CashBalance  string `json:"cash_balance"`
	BankBalance  string `json:"bank_balance"`
	TotalBalance string `json:"total_balance"`
}

func summaryView(s domain.AccountSummary) summaryJSON {
	return summaryJSON{
		Income:       s.Income.String(),
		Expense:      s.Expense.String(),
		DraftCount:   s.DraftCount,
		CashBalance:  s.CashBalance.String(),
		BankBalance:  s.BankBalance.String(),
		TotalBalance: s.TotalBalance.String(),
	}
}

func printSummary(out io.Writer, s domain.AccountSummary) {
	fmt.Fprintf(out, "Pemasukan:   %s\n", domain.FormatRupiah(s.Income))
	fmt.Fprintf(out, "Pengeluaran: %s\n", domain.FormatRupiah(s.Expense))
	fmt.Fprintf(out, "Kas tunai:   %s\n", domain.FormatRupiah(s.CashBalance))
	fmt.Fprintf(out, "Rekening:    %s\n", domain.FormatRupiah(s.BankBalance))
	fmt.Fprintf(out, "Total saldo: %s\n", domain.FormatRupiah(s.TotalBalance))
	fmt.Fprintf(out, "Draft:       %d\n", s.DraftCount)
}

// Prayer commands

func newPrayerCmd(opts *options) *cobra.Command {
	prayerCmd := &cobra.Command{
		Use:   "prayer",
		Short: "Prayer schedule operations",
	}

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := cliLogger(cmd, opts)
			loc := cfg.Location()
			client := prayer.NewClient(prayer.Config{
				BaseURL:  cfg.PrayerAPIURL,
				Method:   cfg.PrayerMethod,
				Timeout:  opts.timeout,
				Location: loc,
			}, nil, log)
			prayers := usecase.NewPrayerUseCase(client, nil, cfg.PrayerCity, cfg.PrayerCountry, loc, log)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			day, err := prayers.Today(ctx)
			if err != nil {
				return fmt.Errorf("fetch prayer times: %w", err)
			}

			printPrayerDay(cmd.OutOrStdout(), day)
			return nil
		},
	}

	prayerCmd.AddCommand(todayCmd)
	return prayerCmd
}

func printPrayerDay(out io.Writer, day usecase.PrayerDay) {
	fmt.Fprintf(out, "%s, %s\n", day.Schedule.City, day.Schedule.Date.Format("2006-01-02"))
	for _, t := range day.Schedule.Times {
		marker := ""
		if day.Next != nil && day.Next.Name == t.Name {
			marker = "  <- next"
		}
		fmt.Fprintf(out, "%-8s %s%s\n", t.Name, t.At.Format("15:04"), marker)
	}
}

// backendClient builds a backend client from flags, falling back to the
// environment configuration.
func backendClient(cmd *cobra.Command, opts *options) (*backend.Client, string, error) {
	baseURL, token := opts.backendURL, opts.token
	if baseURL == "" || token == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, "", err
		}
		if baseURL == "" {
			baseURL = cfg.BackendURL
		}
		if token == "" {
			token = cfg.BackendServiceToken
		}
	}
	if baseURL == "" {
		return nil, "", errors.New("backend URL not set: use --url or BACKEND_URL")
	}

	client := backend.NewClient(backend.Config{BaseURL: baseURL, Timeout: opts.timeout}, nil, cliLogger(cmd, opts))
	return client, token, nil
}

func cliLogger(cmd *cobra.Command, opts *options) zerolog.Logger {
	if !opts.verbose {
		return zerolog.Nop()
	}
	return logger.NewWithWriter(logger.Config{Level: "debug", Format: "console", Service: "masjid-cli"}, cmd.ErrOrStderr())
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rampview/internal/backend"
	"rampview/internal/cli"
	"rampview/internal/config"
	"rampview/internal/core"
	"rampview/internal/log"
	"rampview/internal/upstream"
)

var (
	channelFlag string
	fiatFlag    string
	assetFlag   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rampctl",
	Short: "Inspect locally stored ramp transaction snapshots",
	Long: `rampctl reads the snapshot store the rampview worker maintains and
prints history, monthly totals, summaries and status counts for the
deposit and withdrawal channels.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&channelFlag, "channel", "deposit", "transaction channel (deposit or withdrawal)")
	rateCmd.Flags().StringVar(&fiatFlag, "fiat", "NGN", "fiat currency code")
	rateCmd.Flags().StringVar(&assetFlag, "asset", "USDC", "asset symbol")
	rootCmd.AddCommand(historyCmd, monthlyCmd, summaryCmd, statsCmd, rateCmd)
}

// openStore loads config and opens the snapshot store.
func openStore() (backend.TransactionStore, *config.Config, core.Channel, error) {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentCLI)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, "", err
	}

	channel, err := core.ParseChannel(channelFlag)
	if err != nil {
		return nil, nil, "", fmt.Errorf("invalid channel %q: %w", channelFlag, err)
	}

	store, err := backend.CreateStore(cfg, logger)
	if err != nil {
		return nil, nil, "", err
	}
	return store, cfg, channel, nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the channel history grouped by day",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, channel, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		txs, err := store.ListTransactions(cmd.Context(), channel)
		if err != nil {
			return err
		}

		for _, bucket := range core.GroupByDay(txs) {
			fmt.Printf("%s\n", bucket.Key)
			for _, tx := range bucket.Transactions {
				amount := tx.RawAmount
				if tx.AmountOK {
					amount = tx.Amount.String()
				}
				fmt.Printf("  %-36s %12s  %s\n", tx.ID, amount, tx.Status)
			}
		}
		return nil
	},
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Print the January..December revenue ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, channel, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		txs, err := store.ListTransactions(cmd.Context(), channel)
		if err != nil {
			return err
		}

		for _, mt := range core.MonthlyTotals(txs) {
			fmt.Printf("%-10s %14s\n", mt.Month, mt.Total.String())
		}
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print channel totals and fee revenue",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, channel, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		txs, err := store.ListTransactions(cmd.Context(), channel)
		if err != nil {
			return err
		}

		summary := core.Summarize(txs, core.DefaultRules(channel), cfg.FeeRateDecimal())
		fmt.Printf("channel:          %s\n", summary.Channel)
		fmt.Printf("pending total:    %s\n", summary.PendingTotal.String())
		fmt.Printf("approved total:   %s\n", summary.ApprovedTotal.String())
		fmt.Printf("gross total:      %s\n", summary.GrossTotal.String())
		fmt.Printf("fee revenue:      %s\n", summary.FeeRevenue.String())
		fmt.Printf("pending count:    %d\n", summary.PendingCount)
		fmt.Printf("completed count:  %d\n", summary.CompletedCount)
		fmt.Printf("total count:      %d\n", summary.TotalCount)
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Query the current exchange rate from the wallet backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()
		logger := cli.SetupLogger(log.ComponentCLI)

		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.UpstreamBaseURL == "" {
			return fmt.Errorf("UPSTREAM_BASE_URL is required for the rate command")
		}

		client := upstream.NewClient(upstream.Config{
			BaseURL: cfg.UpstreamBaseURL,
			Token:   cfg.UpstreamToken,
			Timeout: cfg.UpstreamTimeout,
		}, logger)

		rate, err := client.ExchangeRate(cmd.Context(), fiatFlag, assetFlag)
		if err != nil {
			return err
		}

		fmt.Printf("1 %s = %s %s\n", assetFlag, rate.String(), fiatFlag)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print per-status transaction counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, channel, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.CountByStatus(cmd.Context(), channel)
		if err != nil {
			return err
		}

		for _, sc := range counts {
			fmt.Printf("%-20s %6d\n", sc.Status, sc.Count)
		}
		return nil
	},
}

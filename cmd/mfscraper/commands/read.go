package commands

import (
	"log/slog"
	"mfscraper/internal/components/chrono"
	"mfscraper/internal/components/serviceutil"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	fetchDelay      *time.Duration
	fetchMaxWaiting *time.Duration

	transactionsYear  *int
	transactionsMonth *int
)

func init() {
	fetchDelay = fetchCmd.Flags().Duration("delay", time.Second*2, "How long to wait between polls.")
	fetchMaxWaiting = fetchCmd.Flags().Duration("max-waiting", time.Minute*5, "How long to wait for the refresh at most.")

	now := chrono.NewStandardImpl().Now()
	transactionsYear = transactionsCmd.Flags().Int("year", now.Year(), "The year of the month to list.")
	transactionsMonth = transactionsCmd.Flags().Int("month", int(now.Month()), "The month to list (1-12).")

	rootCmd.AddCommand(fetchCmd, transactionsCmd, accountsCmd, categoriesCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--delay <duration>] [--max-waiting <duration>]",
	Short: "Refreshes every linked institution and waits for the refresh to finish.",
	Run: func(cmd *cobra.Command, args []string) {
		client, flush := session(cmd.Context())
		defer flush()

		t1 := time.Now()
		err := client.Fetch(cmd.Context(), *fetchDelay, *fetchMaxWaiting)
		if err != nil {
			flush()
			serviceutil.Fatal("failed to fetch", err)
		}
		slog.Info("refresh finished", "seconds", time.Since(t1).Seconds())
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions [--year <year>] [--month <month>]",
	Short: "Lists the transactions of a month, the current month by default.",
	Run: func(cmd *cobra.Command, args []string) {
		if *transactionsMonth < 1 || *transactionsMonth > 12 {
			cmd.PrintErrln("month must be between 1 and 12")
			os.Exit(1)
		}

		client, flush := session(cmd.Context())
		defer flush()

		transactions, err := client.Transactions(cmd.Context(), *transactionsYear, time.Month(*transactionsMonth))
		if err != nil {
			flush()
			serviceutil.Fatal("failed to list transactions", err)
		}
		renderTransactions(os.Stdout, transactions)
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Lists the registered accounts and whether transactions can be written to them.",
	Run: func(cmd *cobra.Command, args []string) {
		client, flush := session(cmd.Context())
		defer flush()

		accounts, err := client.Accounts(cmd.Context())
		if err != nil {
			flush()
			serviceutil.Fatal("failed to list accounts", err)
		}
		renderAccounts(os.Stdout, accounts)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Lists the income and expense categories.",
	Run: func(cmd *cobra.Command, args []string) {
		client, flush := session(cmd.Context())
		defer flush()

		tree, err := client.Categories(cmd.Context())
		if err != nil {
			flush()
			serviceutil.Fatal("failed to list categories", err)
		}
		renderCategories(os.Stdout, tree)
	},
}

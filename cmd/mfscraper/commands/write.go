package commands

import (
	"fmt"
	"log/slog"
	"mfscraper/internal/components/chrono"
	"mfscraper/internal/components/serviceutil"
	"mfscraper/internal/scrapers/moneyforward"

	"github.com/spf13/cobra"
)

var (
	saveDate     *string
	saveAmount   *int64
	saveAccounts *[]string
	saveLarge    *string
	saveMiddle   *string
	saveContent  *string
	saveTransfer *bool

	updateAmount  *int64
	updateDate    *string
	updateContent *string
	updateAccount *string
	updateLarge   *string
	updateMiddle  *string
	updateMemo    *string

	transferAccount    *string
	transferSubAccount *string
	transferPartnerId  *int64
)

func init() {
	saveDate = saveCmd.Flags().String("date", "", "The date of the transaction as YYYY-MM-DD, today by default.")
	saveAmount = saveCmd.Flags().Int64("amount", 0, "The amount, negative for expenses and outgoing transfers.")
	saveAccounts = saveCmd.Flags().StringArray("account", nil, "The account, given twice as from and to for transfers.")
	saveLarge = saveCmd.Flags().String("large", "", "The large category, 未分類 by default.")
	saveMiddle = saveCmd.Flags().String("middle", "", "The middle category, 未分類 by default.")
	saveContent = saveCmd.Flags().String("content", "", "The description of the transaction.")
	saveTransfer = saveCmd.Flags().Bool("transfer", false, "Save a transfer between two accounts.")
	_ = saveCmd.MarkFlagRequired("amount")
	_ = saveCmd.MarkFlagRequired("account")

	updateAmount = updateCmd.Flags().Int64("amount", 0, "The amount, it is always sent and its sign decides between income and expense.")
	updateDate = updateCmd.Flags().String("date", "", "The new date as YYYY-MM-DD.")
	updateContent = updateCmd.Flags().String("content", "", "The new description.")
	updateAccount = updateCmd.Flags().String("account", "", "The new account.")
	updateLarge = updateCmd.Flags().String("large", "", "The new large category, requires --middle.")
	updateMiddle = updateCmd.Flags().String("middle", "", "The new middle category, requires --large.")
	updateMemo = updateCmd.Flags().String("memo", "", "The new memo.")
	_ = updateCmd.MarkFlagRequired("amount")
	updateCmd.MarkFlagsRequiredTogether("large", "middle")

	transferAccount = transferCmd.Flags().String("account", "", "The partner account.")
	transferSubAccount = transferCmd.Flags().String("sub-account", "", "The partner sub account, only needed when there are several.")
	transferPartnerId = transferCmd.Flags().Int64("partner-id", 0, "The transaction of the partner account to pair with.")
	_ = transferCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(saveCmd, updateCmd, transferCmd, disableTransferCmd, deleteCmd)
}

var saveCmd = &cobra.Command{
	Use:   "save --amount <amount> --account <account> [--account <to>] [--transfer] [flags]",
	Short: "Creates a transaction.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := moneyforward.NewTransaction{
			Date:           chrono.NewStandardImpl().Now(),
			Amount:         *saveAmount,
			Accounts:       *saveAccounts,
			LargeCategory:  *saveLarge,
			MiddleCategory: *saveMiddle,
			Content:        *saveContent,
			IsTransfer:     *saveTransfer,
		}
		if *saveDate != "" {
			date, err := parseDate(*saveDate)
			if err != nil {
				return err
			}
			tx.Date = date
		}

		client, flush := session(cmd.Context())
		defer flush()

		err := client.Save(cmd.Context(), tx)
		if err != nil {
			flush()
			serviceutil.Fatal("failed to save transaction", err)
		}
		slog.Info("saved transaction", "date", tx.Date.Format(dateLayout), "amount", tx.Amount)
		return nil
	},
}

// updateFromFlags only sets the fields whose flags were given.
func updateFromFlags(cmd *cobra.Command) (moneyforward.TransactionUpdate, error) {
	update := moneyforward.TransactionUpdate{Amount: *updateAmount}
	flags := cmd.Flags()
	if flags.Changed("date") {
		date, err := parseDate(*updateDate)
		if err != nil {
			return moneyforward.TransactionUpdate{}, err
		}
		update.Date = &date
	}
	if flags.Changed("content") {
		update.Content = updateContent
	}
	if flags.Changed("account") {
		update.Account = updateAccount
	}
	if flags.Changed("large") {
		update.LargeCategory = updateLarge
	}
	if flags.Changed("middle") {
		update.MiddleCategory = updateMiddle
	}
	if flags.Changed("memo") {
		update.Memo = updateMemo
	}
	return update, nil
}

var updateCmd = &cobra.Command{
	Use:   "update <id> --amount <amount> [flags]",
	Short: "Changes the given fields of a transaction.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		update, err := updateFromFlags(cmd)
		if err != nil {
			return err
		}

		client, flush := session(cmd.Context())
		defer flush()

		err = client.Update(cmd.Context(), id, update)
		if err != nil {
			flush()
			serviceutil.Fatal("failed to update transaction", err)
		}
		slog.Info("updated transaction", "id", id)
		return nil
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <id> --account <partner> [--sub-account <name>] [--partner-id <id>]",
	Short: "Turns a transaction into a transfer to a partner account.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}

		client, flush := session(cmd.Context())
		defer flush()

		err = client.Transfer(cmd.Context(), id, moneyforward.TransferPartner{
			Account:              *transferAccount,
			SubAccount:           *transferSubAccount,
			PartnerTransactionId: *transferPartnerId,
		})
		if err != nil {
			flush()
			serviceutil.Fatal("failed to make transfer", err)
		}
		slog.Info("made transfer", "id", id, "partner", *transferAccount)
		return nil
	},
}

// idCommand builds the commands that only take a transaction id.
func idCommand(use, short, done string, run func(client *moneyforward.Client, cmd *cobra.Command, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <id>", use),
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}

			client, flush := session(cmd.Context())
			defer flush()

			err = run(client, cmd, id)
			if err != nil {
				flush()
				serviceutil.Fatal(fmt.Sprintf("failed to %s", use), err)
			}
			slog.Info(done, "id", id)
			return nil
		},
	}
}

var disableTransferCmd = idCommand(
	"disable-transfer",
	"Turns a transfer back into a regular transaction.",
	"disabled transfer",
	func(client *moneyforward.Client, cmd *cobra.Command, id int64) error {
		return client.DisableTransfer(cmd.Context(), id)
	},
)

var deleteCmd = idCommand(
	"delete",
	"Deletes a transaction.",
	"deleted transaction",
	func(client *moneyforward.Client, cmd *cobra.Command, id int64) error {
		return client.Delete(cmd.Context(), id)
	},
)

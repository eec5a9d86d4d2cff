package moneyforward

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	report_client_save             = "client.save"
	report_client_update           = "client.update"
	report_client_disable_transfer = "client.disable-transfer"
	report_client_delete           = "client.delete"
)

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func incomeFlag(amount int64) (bool, string) {
	if amount > 0 {
		return true, "1"
	}
	return false, "0"
}

// Save creates a transaction. Account and category names are resolved against
// freshly read data, a name that does not resolve gives a *ResolutionError and
// nothing is submitted.
func (c *Client) Save(ctx context.Context, tx NewTransaction) error {
	if tx.IsTransfer && len(tx.Accounts) != 2 || !tx.IsTransfer && len(tx.Accounts) != 1 {
		return ErrInvalidAccounts
	}
	if tx.LargeCategory == "" {
		tx.LargeCategory = uncategorized
	}
	if tx.MiddleCategory == "" {
		tx.MiddleCategory = uncategorized
	}

	wc, ledger, err := c.loadWritePage(ctx, pathLedger)
	if err != nil {
		c.tel.ReportBroken(report_client_save, err)
		return err
	}
	accounts, err := c.accountsWithLedger(ctx, ledger)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set(fieldUpdatedAt, tx.Date.Format(dateLayout))
	form.Set(fieldRecurring, "0")
	form.Set(fieldAmount, strconv.FormatInt(abs(tx.Amount), 10))
	form.Set(fieldContent, tx.Content)
	form.Set(fieldCommit, commitLabel)

	if tx.IsTransfer {
		from, err := accounts.editId(tx.Accounts[0])
		if err != nil {
			return err
		}
		to, err := accounts.editId(tx.Accounts[1])
		if err != nil {
			return err
		}
		form.Set(fieldIsTransfer, "1")
		form.Set(fieldSubAccountFrom, from)
		form.Set(fieldSubAccountTo, to)
	} else {
		categories, err := parseCategories(ledger)
		if err != nil {
			c.tel.ReportBroken(report_client_save, err)
			return err
		}
		income, flag := incomeFlag(tx.Amount)
		largeId, middleId, err := categories.Resolve(income, tx.LargeCategory, tx.MiddleCategory)
		if err != nil {
			return err
		}
		account, err := accounts.editId(tx.Accounts[0])
		if err != nil {
			return err
		}
		form.Set(fieldIsTransfer, "0")
		form.Set(fieldIsIncome, flag)
		form.Set(fieldSubAccount, account)
		form.Set(fieldLargeCategory, strconv.FormatInt(largeId, 10))
		form.Set(fieldMiddleCategory, strconv.FormatInt(middleId, 10))
	}

	_, err = c.postScript(ctx, wc, pathCreate, form)
	if err != nil {
		c.tel.ReportBroken(report_client_save, err)
		return err
	}
	return nil
}

// Update changes an existing transaction, only the fields set in `update` are
// sent. Amount is always sent and decides whether the transaction is an income.
func (c *Client) Update(ctx context.Context, id int64, update TransactionUpdate) error {
	if (update.LargeCategory == nil) != (update.MiddleCategory == nil) {
		return ErrIncompleteCategory
	}

	wc, ledger, err := c.loadWritePage(ctx, pathLedger)
	if err != nil {
		c.tel.ReportBroken(report_client_update, err)
		return err
	}

	income, flag := incomeFlag(update.Amount)
	form := transactionForm(id, methodPut)
	form.Set(fieldIsIncome, flag)
	form.Set(fieldAmount, strconv.FormatInt(abs(update.Amount), 10))

	if update.Date != nil {
		form.Set(fieldUpdatedAt, update.Date.Format(dateLayout))
	}
	if update.Content != nil {
		form.Set(fieldContent, *update.Content)
	}
	if update.Memo != nil {
		form.Set(fieldMemo, *update.Memo)
	}
	if update.Account != nil {
		accounts, err := c.accountsWithLedger(ctx, ledger)
		if err != nil {
			return err
		}
		editId, err := accounts.editId(*update.Account)
		if err != nil {
			return err
		}
		form.Set(fieldSubAccount, editId)
	}
	if update.LargeCategory != nil {
		categories, err := parseCategories(ledger)
		if err != nil {
			c.tel.ReportBroken(report_client_update, err, id)
			return err
		}
		largeId, middleId, err := categories.Resolve(income, *update.LargeCategory, *update.MiddleCategory)
		if err != nil {
			return err
		}
		form.Set(fieldLargeCategory, strconv.FormatInt(largeId, 10))
		form.Set(fieldMiddleCategory, strconv.FormatInt(middleId, 10))
	}

	_, err = c.postScript(ctx, wc, pathUpdate, form)
	if err != nil {
		c.tel.ReportBroken(report_client_update, err, id)
		return err
	}
	return nil
}

// DisableTransfer turns a transfer back into a regular transaction.
func (c *Client) DisableTransfer(ctx context.Context, id int64) error {
	wc, err := c.acquireWriteContext(ctx, pathLedger)
	if err != nil {
		c.tel.ReportBroken(report_client_disable_transfer, err)
		return err
	}
	err = c.toggleTransfer(ctx, wc, id, changeDisable)
	if err != nil {
		c.tel.ReportBroken(report_client_disable_transfer, err, id)
		return err
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	wc, err := c.acquireWriteContext(ctx, pathLedger)
	if err != nil {
		c.tel.ReportBroken(report_client_delete, err)
		return err
	}
	form := url.Values{}
	form.Set(fieldMethod, methodDelete)
	_, err = c.postScript(ctx, wc, fmt.Sprintf(pathDeletePattern, id), form)
	if err != nil {
		c.tel.ReportBroken(report_client_delete, err, id)
		return err
	}
	return nil
}

// transactionForm is the base of every form addressing an existing transaction,
// the site tunnels put and delete through post with `_method`.
func transactionForm(id int64, method string) url.Values {
	form := url.Values{}
	form.Set(fieldMethod, method)
	form.Set(fieldId, strconv.FormatInt(id, 10))
	form.Set(fieldTableName, tableName)
	return form
}

func (c *Client) toggleTransfer(ctx context.Context, wc writeContext, id int64, change string) error {
	form := transactionForm(id, methodPut)
	form.Set(fieldChangeType, change)
	_, err := c.postScript(ctx, wc, pathUpdate, form)
	return err
}

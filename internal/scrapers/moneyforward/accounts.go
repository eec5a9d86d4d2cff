package moneyforward

import (
	"context"
	"fmt"
	"mfscraper/pkg/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_client_accounts = "client.accounts"
)

// Accounts lists the accounts registered on the home page. Accounts that are
// offered in the transaction edit form also get their EditId.
func (c *Client) Accounts(ctx context.Context) (Accounts, error) {
	ledger, _, err := c.getDocument(ctx, pathLedger, nil)
	if err != nil {
		c.tel.ReportBroken(report_client_accounts, fmt.Errorf("ledger page: %w", err))
		return nil, err
	}
	return c.accountsWithLedger(ctx, ledger)
}

// accountsWithLedger is Accounts with the edit ids read from an already
// loaded ledger page.
func (c *Client) accountsWithLedger(ctx context.Context, ledger *goquery.Document) (Accounts, error) {
	home, _, err := c.getDocument(ctx, pathHome, nil)
	if err != nil {
		c.tel.ReportBroken(report_client_accounts, fmt.Errorf("home page: %w", err))
		return nil, err
	}
	accounts := parseAccountList(home)

	skipped := attachEditIds(accounts, ledger)
	if skipped > 0 {
		c.tel.ReportDebug(report_client_accounts, "edit options without a listed account", skipped)
	}

	c.tel.ReportCount(report_client_accounts, int64(len(accounts)))
	return accounts, nil
}

func parseAccountList(doc *goquery.Document) Accounts {
	accounts := Accounts{}
	for _, a := range htmlutil.GetAnchors(doc.Find(selManualAccounts)) {
		accounts[a.Name] = Account{
			IsEditable:     true,
			MoneyforwardId: strings.TrimPrefix(a.Url.Path, manualAccountPrefix),
		}
	}
	for _, a := range htmlutil.GetAnchors(doc.Find(selLinkedAccounts)) {
		accounts[a.Name] = Account{
			IsEditable:     false,
			MoneyforwardId: strings.TrimPrefix(a.Url.Path, linkedAccountPrefix),
		}
	}
	return accounts
}

// attachEditIds sets the EditId of every account whose name exactly matches an
// option of the edit selector. The amount of options that matched nothing is
// returned, this is expected to happen.
func attachEditIds(accounts Accounts, doc *goquery.Document) (skipped int) {
	doc.Find(selEditAccounts).Each(func(_ int, option *goquery.Selection) {
		editId := option.AttrOr("value", "")
		if editId == "" {
			return
		}
		name := htmlutil.SelectionText(option)
		account, ok := accounts[name]
		if !ok {
			skipped++
			return
		}
		account.EditId = editId
		accounts[name] = account
	})
	return skipped
}

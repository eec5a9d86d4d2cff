package moneyforward

import (
	"context"
	"fmt"
	"mfscraper/internal/components/chrono"
	"mfscraper/pkg/htmlutil"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_client_transactions = "client.transactions"
)

// Transactions returns every transaction of the given month that has not been
// disabled, ordered by date and then id, newest first.
func (c *Client) Transactions(ctx context.Context, year int, month time.Month) ([]Transaction, error) {
	c.tel.ReportDebug(report_client_transactions, year, int(month))

	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(int(month)))
	doc, _, err := c.getDocument(ctx, pathLedger, query)
	if err != nil {
		c.tel.ReportBroken(report_client_transactions, fmt.Errorf("ledger page: %w", err))
		return nil, err
	}
	token, err := csrfToken(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_transactions, err)
		return nil, fmt.Errorf("ledger page: %w", err)
	}

	form := url.Values{}
	form.Set(fieldFetchFrom, fmt.Sprintf("%d/%d/1", year, int(month)))
	form.Set(fieldFetchService, "")
	form.Set(fieldFetchAccountId, "")
	script, err := c.postScript(ctx, newWriteContext(token), pathLedgerFetch, form)
	if err != nil {
		c.tel.ReportBroken(report_client_transactions, fmt.Errorf("fetch rows: %w", err))
		return nil, err
	}

	fragment, err := extractFragment(script, fragmentTransactions)
	if err != nil {
		c.tel.ReportWarning(report_client_transactions, err, year, int(month))
		return nil, err
	}

	transactions, err := parseTransactions(fragment, year)
	if err != nil {
		c.tel.ReportBroken(report_client_transactions, err, year, int(month))
		return nil, err
	}
	c.tel.ReportCount(report_client_transactions, int64(len(transactions)))
	return transactions, nil
}

var (
	rowDateRegex   = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
	nonAmountRegex = regexp.MustCompile(`[^0-9-]`)
)

// parseTransactions parses the table rows of a ledger fragment. Rows only show
// month and day, so every row is dated in `year`.
func parseTransactions(fragment string, year int) ([]Transaction, error) {
	// the fragment is a list of bare rows, outside of a table the parser would drop them
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<table><tbody>" + fragment + "</tbody></table>",
	))
	if err != nil {
		return nil, fmt.Errorf("parse transaction rows: %w", err)
	}

	var transactions []Transaction
	rows := doc.Find("tr")
	for i := range rows.Nodes {
		row := rows.Eq(i)
		if row.Find(selRowDisabled).Length() > 0 || row.HasClass(strings.TrimPrefix(selRowDisabled, ".")) {
			continue
		}
		tx, err := parseTransactionRow(row, year)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	sortTransactions(transactions)
	return transactions, nil
}

func parseTransactionRow(row *goquery.Selection, year int) (Transaction, error) {
	rowId := row.AttrOr("id", "")
	id, err := strconv.ParseInt(strings.TrimPrefix(rowId, rowIdPrefix), 10, 64)
	if err != nil || !strings.HasPrefix(rowId, rowIdPrefix) {
		return Transaction{}, fmt.Errorf("transaction row has invalid id %q", rowId)
	}

	date, err := parseRowDate(htmlutil.SelectionText(row.Find(selRowDate)), year)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}

	amountText := htmlutil.SelectionText(row.Find(selRowAmount))
	amount, isTransfer, err := parseAmount(amountText)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}

	return Transaction{
		Id:             id,
		Date:           date,
		Amount:         amount,
		Accounts:       parseAccountCell(row.Find(selRowAccount), amount, isTransfer),
		LargeCategory:  htmlutil.SelectionText(row.Find(selRowLarge)),
		MiddleCategory: htmlutil.SelectionText(row.Find(selRowMiddle)),
		Content:        htmlutil.SelectionText(row.Find(selRowContent)),
		Memo:           htmlutil.SelectionText(row.Find(selRowMemo)),
		IsTransfer:     isTransfer,
	}, nil
}

func parseRowDate(text string, year int) (time.Time, error) {
	groups := rowDateRegex.FindStringSubmatch(text)
	if len(groups) < 3 {
		return time.Time{}, fmt.Errorf("no MM/DD in date %q", text)
	}
	month, _ := strconv.Atoi(groups[1])
	day, _ := strconv.Atoi(groups[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q is out of range", text)
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, chrono.JST())
	// time.Date normalizes 02/30 into March
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, fmt.Errorf("date %q does not exist in %d", text, year)
	}
	return date, nil
}

// parseAmount reads amounts rendered like "¥-1,234 (振替)".
func parseAmount(text string) (amount int64, isTransfer bool, err error) {
	isTransfer = strings.Contains(text, transferMarker)
	digits := nonAmountRegex.ReplaceAllString(text, "")
	amount, err = strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid amount %q", text)
	}
	return amount, isTransfer, nil
}

// parseAccountCell reads the account names out of the account cell, the cell is
// modified in the process.
func parseAccountCell(cell *goquery.Selection, amount int64, isTransfer bool) []string {
	// the inline edit selects list every account, their text must not leak into the name
	cell.Find("select").Remove()

	if !isTransfer {
		return []string{htmlutil.SelectionText(cell)}
	}

	box := cell.Find(selRowTransfer)
	partner := htmlutil.SelectionText(box)
	box.Remove()
	own := htmlutil.SelectionText(cell)

	if amount < 0 {
		return []string{own, partner}
	}
	return []string{partner, own}
}

func sortTransactions(transactions []Transaction) {
	slices.SortFunc(transactions, func(a, b Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		switch {
		case a.Id > b.Id:
			return -1
		case a.Id < b.Id:
			return 1
		}
		return 0
	})
}

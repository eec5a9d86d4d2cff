package commands

import (
	"fmt"
	"io"
	"maps"
	"mfscraper/internal/components/chrono"
	"mfscraper/internal/scrapers/moneyforward"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

const dateLayout = "2006-01-02"

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderTransactions(out io.Writer, transactions []moneyforward.Transaction) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Id", "Date", "Amount", "Accounts", "Large", "Middle", "Content", "Memo"})
	for _, tx := range transactions {
		accounts := strings.Join(tx.Accounts, " -> ")
		if tx.IsTransfer {
			accounts = fmt.Sprintf("%s (transfer)", accounts)
		}
		t.AppendRow(table.Row{
			tx.Id,
			tx.Date.Format(dateLayout),
			tx.Amount,
			accounts,
			tx.LargeCategory,
			tx.MiddleCategory,
			tx.Content,
			tx.Memo,
		})
	}
	t.AppendFooter(table.Row{"", "Total", sumAmounts(transactions)})
	t.Render()
}

// sumAmounts totals everything except transfers, they only move money around.
func sumAmounts(transactions []moneyforward.Transaction) int64 {
	var total int64
	for _, tx := range transactions {
		if tx.IsTransfer {
			continue
		}
		total += tx.Amount
	}
	return total
}

func renderAccounts(out io.Writer, accounts moneyforward.Accounts) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Name", "Manual", "Id", "Edit id"})
	for _, name := range slices.Sorted(maps.Keys(accounts)) {
		account := accounts[name]
		editId := account.EditId
		if editId == "" {
			editId = "-"
		}
		t.AppendRow(table.Row{name, account.IsEditable, account.MoneyforwardId, editId})
	}
	t.Render()
}

func renderCategories(out io.Writer, tree moneyforward.CategoryTree) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Kind", "Large", "Large id", "Middle", "Middle id"})
	partitions := []struct {
		kind       string
		categories map[string]moneyforward.LargeCategory
	}{
		{kind: "income", categories: tree.Plus},
		{kind: "expense", categories: tree.Minus},
	}
	for _, p := range partitions {
		for _, large := range slices.Sorted(maps.Keys(p.categories)) {
			category := p.categories[large]
			if len(category.Middle) == 0 {
				t.AppendRow(table.Row{p.kind, large, category.Id, "-", "-"})
				continue
			}
			for _, middle := range slices.Sorted(maps.Keys(category.Middle)) {
				t.AppendRow(table.Row{p.kind, large, category.Id, middle, category.Middle[middle]})
			}
		}
	}
	t.Render()
}

func parseDate(text string) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, text, chrono.JST())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", text)
	}
	return date, nil
}

func parseId(text string) (int64, error) {
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", text)
	}
	return id, nil
}

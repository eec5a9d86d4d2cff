package moneyforward

import (
	"context"
	"mfscraper/internal/components/chrono"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func jstDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, chrono.JST())
}

func TestTransactions(t *testing.T) {
	site := newFakeSite(t)
	client, _, tel := site.client(t, ClientOptions{})

	transactions, err := client.Transactions(context.Background(), 2024, time.March)
	require.NoError(t, err)

	expected := []Transaction{
		{
			Id:             99,
			Date:           jstDate(2024, time.March, 25),
			Amount:         300000,
			Accounts:       []string{"Bank A"},
			LargeCategory:  "収入",
			MiddleCategory: "給与",
			Content:        "給与 3月",
		},
		{
			Id:             103,
			Date:           jstDate(2024, time.March, 5),
			Amount:         -10000,
			Accounts:       []string{"Bank A", "財布"},
			LargeCategory:  "未分類",
			MiddleCategory: "未分類",
			Content:        "口座振替",
			IsTransfer:     true,
		},
		{
			Id:             102,
			Date:           jstDate(2024, time.March, 5),
			Amount:         -480,
			Accounts:       []string{"Card B"},
			LargeCategory:  "食費",
			MiddleCategory: "外食",
			Content:        "カフェ",
			Memo:           "with tax",
		},
		{
			Id:             101,
			Date:           jstDate(2024, time.March, 5),
			Amount:         -1500,
			Accounts:       []string{"財布"},
			LargeCategory:  "食費",
			MiddleCategory: "食料品",
			Content:        "スーパー",
			Memo:           "weekly",
		},
	}
	diff := cmp.Diff(expected, transactions)
	if diff != "" {
		t.Fatal(diff)
	}

	posts := site.posts(pathLedgerFetch)
	require.Len(t, posts, 1)
	require.Equal(t, "2024/3/1", posts[0].Form.Get(fieldFetchFrom))
	require.Equal(t, ledgerToken, posts[0].Header.Get("X-CSRF-Token"))
	require.Empty(t, tel.Reports("broken"))
}

func TestTransactionsWithoutFragment(t *testing.T) {
	site := newFakeSite(t)
	site.fetchScript = `$(".js-loading").hide();`
	client, _, tel := site.client(t, ClientOptions{})

	_, err := client.Transactions(context.Background(), 2024, time.March)
	require.ErrorIs(t, err, ErrDataDoesNotExist)
	require.Len(t, tel.Reports("warning"), 1)
}

func TestTransactionsEmptyMonth(t *testing.T) {
	site := newFakeSite(t)
	site.fetchScript = appendScript(fragmentTransactions, "")
	client, _, _ := site.client(t, ClientOptions{})

	transactions, err := client.Transactions(context.Background(), 2024, time.February)
	require.NoError(t, err)
	require.Empty(t, transactions)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		text     string
		amount   int64
		transfer bool
	}{
		{text: "¥-1,234 (振替)", amount: -1234, transfer: true},
		{text: "1,234", amount: 1234},
		{text: " -480円 ", amount: -480},
		{text: "0", amount: 0},
	}
	for _, test := range cases {
		amount, transfer, err := parseAmount(test.text)
		require.NoError(t, err, test.text)
		require.Equal(t, test.amount, amount, test.text)
		require.Equal(t, test.transfer, transfer, test.text)
	}

	_, _, err := parseAmount("金額なし")
	require.Error(t, err)
}

func TestParseRowDate(t *testing.T) {
	date, err := parseRowDate("12/31(火)", 2024)
	require.NoError(t, err)
	require.Equal(t, jstDate(2024, time.December, 31), date)

	leap, err := parseRowDate("02/29(木)", 2024)
	require.NoError(t, err)
	require.Equal(t, jstDate(2024, time.February, 29), leap)

	for _, text := range []string{"", "昨日", "13/01", "00/10", "02/30(金)", "04/31(水)"} {
		_, err := parseRowDate(text, 2024)
		require.Error(t, err, text)
	}
	_, err = parseRowDate("02/29(木)", 2023)
	require.Error(t, err)
}

func TestParseTransferAccounts(t *testing.T) {
	incoming := transactionRow(7, "01/02", "入金", "¥5,000 (振替)", `財布<div class="transfer_account_box">Bank A</div>`, "", "", "")
	transactions, err := parseTransactions(incoming, 2024)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.True(t, transactions[0].IsTransfer)
	require.Equal(t, int64(5000), transactions[0].Amount)
	require.Equal(t, []string{"Bank A", "財布"}, transactions[0].Accounts)
}

func TestParseTransactionsRejectsBadRows(t *testing.T) {
	bad := transactionRow(8, "??", "x", "1", "財布", "", "", "")
	_, err := parseTransactions(bad, 2024)
	require.Error(t, err)

	missingId := `<tr><td class="date">01/01</td><td class="amount">1</td></tr>`
	_, err = parseTransactions(missingId, 2024)
	require.Error(t, err)
}

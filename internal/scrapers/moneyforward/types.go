package moneyforward

import (
	"maps"
	"slices"
	"time"
)

// Transaction is a single row of the ledger.
//
// Amounts are signed by direction: income and incoming transfers are positive,
// expenses and outgoing transfers are negative.
//
// Accounts holds exactly one account name for regular transactions. For transfers
// it holds exactly two names ordered [from, to].
type Transaction struct {
	Id             int64
	Date           time.Time
	Amount         int64
	Accounts       []string
	LargeCategory  string
	MiddleCategory string
	Content        string
	Memo           string
	IsTransfer     bool
}

// Account is an entry of the account list on the home page.
type Account struct {
	IsEditable     bool
	MoneyforwardId string
	// EditId is the id the transaction forms expect, it is empty when the account
	// is not offered in the transaction edit selector and so cannot be written to.
	EditId string
}

// Accounts maps the display name of an account to the account.
type Accounts map[string]Account

func (a Accounts) names() []string {
	return slices.Sorted(maps.Keys(a))
}

func (a Accounts) editId(name string) (string, error) {
	account, ok := a[name]
	if !ok {
		return "", unresolved(ResolveAccount, name, a.names())
	}
	if account.EditId == "" {
		return "", &ResolutionError{
			Kind:   ResolveAccount,
			Name:   name,
			Reason: "account is not offered in the transaction edit form",
		}
	}
	return account.EditId, nil
}

type LargeCategory struct {
	Id int64
	// Middle maps middle category names to their ids.
	Middle map[string]int64
}

// CategoryTree holds the income ("plus") and expense ("minus") category menus.
type CategoryTree struct {
	Plus  map[string]LargeCategory
	Minus map[string]LargeCategory
}

func (t CategoryTree) partition(income bool) map[string]LargeCategory {
	if income {
		return t.Plus
	}
	return t.Minus
}

// Resolve returns the ids of a (large, middle) category pair in the income or
// expense partition.
func (t CategoryTree) Resolve(income bool, large, middle string) (largeId, middleId int64, err error) {
	partition := t.partition(income)

	category, ok := partition[large]
	if !ok {
		return 0, 0, unresolved(ResolveLargeCategory, large, slices.Sorted(maps.Keys(partition)))
	}
	middleId, ok = category.Middle[middle]
	if !ok {
		return 0, 0, unresolved(ResolveMiddleCategory, middle, slices.Sorted(maps.Keys(category.Middle)))
	}
	return category.Id, middleId, nil
}

// NewTransaction is the input of Client.Save.
type NewTransaction struct {
	Date   time.Time
	Amount int64
	// Accounts follows the same shape as Transaction.Accounts.
	Accounts []string
	// LargeCategory and MiddleCategory default to 未分類, they are ignored for transfers.
	LargeCategory  string
	MiddleCategory string
	Content        string
	IsTransfer     bool
}

// TransactionUpdate is the input of Client.Update, nil fields are left unchanged.
type TransactionUpdate struct {
	// Amount is always sent, its sign decides between income and expense.
	Amount         int64
	Date           *time.Time
	Content        *string
	Account        *string
	LargeCategory  *string
	MiddleCategory *string
	Memo           *string
}

// TransferPartner is the input of Client.Transfer.
type TransferPartner struct {
	Account string
	// SubAccount may be left empty when the partner account has a single sub account.
	SubAccount string
	// PartnerTransactionId pairs the transfer with a specific transaction of the
	// partner account, 0 leaves the pairing to the server.
	PartnerTransactionId int64
}

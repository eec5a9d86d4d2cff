package moneyforward

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	t.Run("named sub account", func(t *testing.T) {
		site := newFakeSite(t)
		client, _, _ := site.client(t, ClientOptions{})

		err := client.Transfer(context.Background(), 101, TransferPartner{
			Account:              "Bank A",
			SubAccount:           "定期預金",
			PartnerTransactionId: 555,
		})
		require.NoError(t, err)

		require.Equal(t, []string{
			"GET /cf",
			"POST /cf/update",
			"POST /cf/partner_account",
			"POST /cf/partner_account",
			"POST /cf/update",
		}, site.trail())

		updates := site.posts(pathUpdate)
		require.Equal(t, changeEnable, updates[0].Form.Get(fieldChangeType))
		require.Equal(t, "101", updates[0].Form.Get(fieldId))

		lookups := site.posts(pathPartner)
		require.Equal(t, "101", lookups[0].Form.Get(fieldPartnerLookupId))
		require.Empty(t, lookups[0].Form.Get(fieldPartnerLookupAc))
		require.Equal(t, "pa-bank", lookups[1].Form.Get(fieldPartnerLookupAc))

		final := updates[1].Form
		require.Equal(t, changePartner, final.Get(fieldChangeType))
		require.Equal(t, "pa-bank", final.Get(fieldPartnerAccount))
		require.Equal(t, "sub-2", final.Get(fieldPartnerSub))
		require.Equal(t, "555", final.Get(fieldPartnerAct))
	})

	t.Run("fixed sub account", func(t *testing.T) {
		site := newFakeSite(t)
		client, _, _ := site.client(t, ClientOptions{})

		err := client.Transfer(context.Background(), 102, TransferPartner{Account: "財布"})
		require.NoError(t, err)

		updates := site.posts(pathUpdate)
		require.Len(t, updates, 2)
		final := updates[1].Form
		require.Equal(t, "pa-wallet", final.Get(fieldPartnerAccount))
		require.Equal(t, "sub-wallet", final.Get(fieldPartnerSub))
		require.NotContains(t, final, fieldPartnerAct)
	})

	t.Run("unknown partner account", func(t *testing.T) {
		site := newFakeSite(t)
		client, _, _ := site.client(t, ClientOptions{})

		err := client.Transfer(context.Background(), 101, TransferPartner{Account: "Bank"})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		require.Equal(t, ResolvePartnerAccount, resErr.Kind)
		require.Contains(t, resErr.Suggestions, "Bank A")

		updates := site.posts(pathUpdate)
		require.Len(t, updates, 2)
		require.Equal(t, changeEnable, updates[0].Form.Get(fieldChangeType))
		require.Equal(t, changeDisable, updates[1].Form.Get(fieldChangeType))
		require.Equal(t, "101", updates[1].Form.Get(fieldId))
	})

	t.Run("sub account must be named when there are several", func(t *testing.T) {
		site := newFakeSite(t)
		client, _, _ := site.client(t, ClientOptions{})

		err := client.Transfer(context.Background(), 101, TransferPartner{Account: "Bank A"})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		require.Equal(t, ResolvePartnerSubAccount, resErr.Kind)
		require.Equal(t, []string{"普通預金", "定期預金"}, resErr.Suggestions)
	})

	t.Run("unknown sub account", func(t *testing.T) {
		site := newFakeSite(t)
		client, _, _ := site.client(t, ClientOptions{})

		err := client.Transfer(context.Background(), 101, TransferPartner{Account: "Bank A", SubAccount: "当座"})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		require.Equal(t, ResolvePartnerSubAccount, resErr.Kind)
		require.Equal(t, "当座", resErr.Name)
		require.Equal(t, []string{
			"GET /cf",
			"POST /cf/update",
			"POST /cf/partner_account",
			"POST /cf/partner_account",
			"POST /cf/update",
		}, site.trail())
		require.Equal(t, changeDisable, site.posts(pathUpdate)[1].Form.Get(fieldChangeType))
	})
}

package moneyforward

import (
	"context"
	"fmt"
	"mfscraper/pkg/htmlutil"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_client_transfer = "client.transfer"
)

// Transfer turns a transaction into a transfer to `partner`.
//
// This takes several round trips: transfers are enabled on the transaction, the
// candidate partner accounts are looked up, then the partner's sub accounts, and
// finally the pairing is submitted. When a partner name does not resolve,
// transfers are disabled on the transaction again before the error is returned.
func (c *Client) Transfer(ctx context.Context, id int64, partner TransferPartner) error {
	wc, err := c.acquireWriteContext(ctx, pathLedger)
	if err != nil {
		c.tel.ReportBroken(report_client_transfer, err)
		return err
	}

	err = c.toggleTransfer(ctx, wc, id, changeEnable)
	if err != nil {
		c.tel.ReportBroken(report_client_transfer, fmt.Errorf("enable transfer: %w", err), id)
		return err
	}

	lookup := url.Values{}
	lookup.Set(fieldPartnerLookupId, strconv.FormatInt(id, 10))
	accountOptions, err := c.partnerFragment(ctx, wc, lookup, fragmentPartner)
	if err != nil {
		c.tel.ReportBroken(report_client_transfer, fmt.Errorf("partner accounts: %w", err), id)
		return err
	}
	accountId, err := resolveOption(accountOptions, ResolvePartnerAccount, partner.Account)
	if err != nil {
		c.revertTransfer(ctx, wc, id)
		return err
	}

	lookup.Set(fieldPartnerLookupAc, accountId)
	subAccounts, err := c.partnerFragment(ctx, wc, lookup, fragmentSubAccount)
	if err != nil {
		c.tel.ReportBroken(report_client_transfer, fmt.Errorf("partner sub accounts: %w", err), id)
		return err
	}
	subAccountId, err := resolveSubAccount(subAccounts, partner.SubAccount)
	if err != nil {
		c.revertTransfer(ctx, wc, id)
		return err
	}

	form := transactionForm(id, methodPut)
	form.Set(fieldChangeType, changePartner)
	form.Set(fieldPartnerAccount, accountId)
	form.Set(fieldPartnerSub, subAccountId)
	if partner.PartnerTransactionId > 0 {
		form.Set(fieldPartnerAct, strconv.FormatInt(partner.PartnerTransactionId, 10))
	}
	_, err = c.postScript(ctx, wc, pathUpdate, form)
	if err != nil {
		c.tel.ReportBroken(report_client_transfer, fmt.Errorf("submit partner: %w", err), id)
		return err
	}
	return nil
}

// revertTransfer leaves the transaction as it was before Transfer enabled
// transfers on it, a failure is only reported since the caller already has an
// error to return.
func (c *Client) revertTransfer(ctx context.Context, wc writeContext, id int64) {
	err := c.toggleTransfer(ctx, wc, id, changeDisable)
	if err != nil {
		c.tel.ReportBroken(report_client_transfer, fmt.Errorf("disable transfer after failed resolution: %w", err), id)
	}
}

func (c *Client) partnerFragment(ctx context.Context, wc writeContext, form url.Values, target string) (*goquery.Document, error) {
	script, err := c.postScript(ctx, wc, pathPartner, form)
	if err != nil {
		return nil, err
	}
	fragment, err := extractFragment(script, target)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse %s fragment: %w", target, err)
	}
	return doc, nil
}

type option struct {
	name  string
	value string
}

func options(doc *goquery.Document) []option {
	var out []option
	doc.Find("option").Each(func(_ int, s *goquery.Selection) {
		value := s.AttrOr("value", "")
		if value == "" {
			return
		}
		out = append(out, option{name: htmlutil.SelectionText(s), value: value})
	})
	return out
}

func resolveOption(doc *goquery.Document, kind ResolutionKind, name string) (string, error) {
	opts := options(doc)
	names := make([]string, len(opts))
	for i, o := range opts {
		if o.name == name {
			return o.value, nil
		}
		names[i] = o.name
	}
	return "", unresolved(kind, name, names)
}

// resolveSubAccount reads either the fixed sub account of a partner account with
// a single sub account or picks `name` out of the offered sub accounts.
func resolveSubAccount(doc *goquery.Document, name string) (string, error) {
	fixed := doc.Find(selFixedSubAccount).AttrOr("value", "")
	if fixed != "" {
		return fixed, nil
	}
	if name == "" {
		opts := options(doc)
		if len(opts) == 1 {
			return opts[0].value, nil
		}
		names := make([]string, len(opts))
		for i, o := range opts {
			names[i] = o.name
		}
		return "", &ResolutionError{
			Kind:        ResolvePartnerSubAccount,
			Reason:      "partner account has several sub accounts, one must be named",
			Suggestions: names,
		}
	}
	return resolveOption(doc, ResolvePartnerSubAccount, name)
}

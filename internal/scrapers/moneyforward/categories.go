package moneyforward

import (
	"context"
	"fmt"
	"mfscraper/pkg/htmlutil"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_client_categories = "client.categories"
)

// Categories reads the income and expense category menus of the ledger page.
// Category ids are assigned by the server, they should be read again before
// they are used.
func (c *Client) Categories(ctx context.Context) (CategoryTree, error) {
	doc, _, err := c.getDocument(ctx, pathLedger, nil)
	if err != nil {
		c.tel.ReportBroken(report_client_categories, fmt.Errorf("ledger page: %w", err))
		return CategoryTree{}, err
	}
	tree, err := parseCategories(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_categories, err)
		return CategoryTree{}, err
	}
	return tree, nil
}

func parseCategories(doc *goquery.Document) (CategoryTree, error) {
	plus, err := parseCategoryMenu(doc.Find(selIncomeMenu).First())
	if err != nil {
		return CategoryTree{}, fmt.Errorf("income categories: %w", err)
	}
	minus, err := parseCategoryMenu(doc.Find(selExpenseMenu).First())
	if err != nil {
		return CategoryTree{}, fmt.Errorf("expense categories: %w", err)
	}
	return CategoryTree{Plus: plus, Minus: minus}, nil
}

func parseCategoryMenu(menu *goquery.Selection) (map[string]LargeCategory, error) {
	if menu.Length() == 0 {
		return nil, fmt.Errorf("category menu not found")
	}

	categories := map[string]LargeCategory{}
	submenus := menu.Find(selLargeSubmenu)
	for i := range submenus.Nodes {
		submenu := submenus.Eq(i)

		largeAnchor := submenu.Find(selLargeName).First()
		largeName := htmlutil.SelectionText(largeAnchor)
		largeId, err := categoryId(largeAnchor)
		if err != nil {
			return nil, fmt.Errorf("large category %q: %w", largeName, err)
		}

		large := LargeCategory{Id: largeId, Middle: map[string]int64{}}
		middles := submenu.Find(selMiddleName)
		for j := range middles.Nodes {
			middleAnchor := middles.Eq(j)
			middleName := htmlutil.SelectionText(middleAnchor)
			middleId, err := categoryId(middleAnchor)
			if err != nil {
				return nil, fmt.Errorf("middle category %q: %w", middleName, err)
			}
			large.Middle[middleName] = middleId
		}
		categories[largeName] = large
	}
	return categories, nil
}

func categoryId(anchor *goquery.Selection) (int64, error) {
	id := anchor.AttrOr("id", "")
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid category id %q", id)
	}
	return parsed, nil
}

package moneyforward

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_fetch = "client.fetch"
)

type pollingStatus struct {
	Loading bool `json:"loading"`
}

// Fetch asks the server to refresh every linked institution and then waits for
// the refresh to finish, polling every `delay` for at most `maxWaiting`.
//
// ErrFetchTimeout is returned once maxWaiting/delay polls all reported that the
// refresh is still loading.
func (c *Client) Fetch(ctx context.Context, delay, maxWaiting time.Duration) error {
	if delay <= 0 {
		return fmt.Errorf("moneyforward: fetch delay must be positive, got %s", delay)
	}

	doc, _, err := c.getDocument(ctx, pathHome, nil)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, fmt.Errorf("home page: %w", err))
		return err
	}
	token, err := csrfToken(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err)
		return fmt.Errorf("home page: %w", err)
	}
	wc := newWriteContext(token)

	var links []string
	doc.Find(selRemoteLinks).Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if href != "" {
			links = append(links, href)
		}
	})
	c.tel.ReportCount(report_client_fetch, int64(len(links)))

	for _, link := range links {
		_, err = c.do(ctx, c.http.R().SetHeaders(wc.Headers), resty.MethodPost, link)
		if err != nil {
			c.tel.ReportBroken(report_client_fetch, fmt.Errorf("trigger refresh: %w", err), link)
			return err
		}
	}

	var elapsed time.Duration
	for elapsed+delay <= maxWaiting {
		err = c.time.Sleep(ctx, delay)
		if err != nil {
			return err
		}
		elapsed += delay

		loading, err := c.pollLoading(ctx)
		if err != nil {
			c.tel.ReportBroken(report_client_fetch, fmt.Errorf("poll: %w", err))
			return err
		}
		if !loading {
			c.tel.ReportDebug(report_client_fetch, "refresh finished", elapsed.String())
			return nil
		}
	}

	c.tel.ReportWarning(report_client_fetch, ErrFetchTimeout, maxWaiting.String())
	return ErrFetchTimeout
}

func (c *Client) pollLoading(ctx context.Context) (bool, error) {
	res, err := c.do(ctx, c.http.R().SetHeader("Accept", "application/json"), resty.MethodGet, pathPolling)
	if err != nil {
		return false, err
	}
	var status pollingStatus
	err = json.Unmarshal(res.Body(), &status)
	if err != nil {
		return false, fmt.Errorf("unmarshal polling status: %w", err)
	}
	return status.Loading, nil
}

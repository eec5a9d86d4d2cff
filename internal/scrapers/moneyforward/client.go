// client.go contains the session plumbing shared by every operation: the http
// client, request helpers and the write context.

package moneyforward

import (
	"bytes"
	"context"
	"fmt"
	"mfscraper/internal/components/assert"
	"mfscraper/internal/components/chrono"
	"mfscraper/internal/components/restyutil"
	"mfscraper/internal/components/telemetry"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_acquire_write_context = "client.acquire-write-context"
	report_client_request               = "client.request"
)

const defaultTimeout = time.Second * 10

type ClientOptions struct {
	Username string
	Password string

	// BaseUrl defaults to https://moneyforward.com
	BaseUrl string
	// IdentityUrl defaults to https://id.moneyforward.com
	IdentityUrl string
	// Timeout is applied to every request, it defaults to 10 seconds.
	Timeout time.Duration
	// RequestsPerSecond paces outgoing requests, 0 means no limit.
	RequestsPerSecond float64
	// BypassCloudflare makes requests look like they come from a browser.
	BypassCloudflare bool
	// HttpDump receives every request and response with the password redacted,
	// nil disables dumping.
	HttpDump restyutil.Output
}

// Client is a single authenticated session with the ledger.
//
// A Client must not be used for concurrent operations, writes read an
// anti-forgery token and then use it, and interleaving them may submit a stale one.
type Client struct {
	baseUrl     *url.URL
	identityUrl *url.URL
	username    string
	password    string

	http *resty.Client
	time chrono.API
	tel  telemetry.API
}

func NewClient(opts ClientOptions, clock chrono.API, tel telemetry.API) (*Client, error) {
	assert.NotNil(clock)
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Username)
	assert.NotEmptyStr(opts.Password)

	tel = telemetry.NewScopedAPI("moneyforward_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}
	if opts.IdentityUrl == "" {
		opts.IdentityUrl = defaultIdentityUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	identityUrl, err := url.Parse(opts.IdentityUrl)
	if err != nil {
		return nil, fmt.Errorf("parse identity url: %w", err)
	}

	httpClient, err := newHttpClient(opts, baseUrl, identityUrl, tel)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseUrl:     baseUrl,
		identityUrl: identityUrl,
		username:    opts.Username,
		password:    opts.Password,
		http:        httpClient,
		time:        clock,
		tel:         tel,
	}, nil
}

func newHttpClient(opts ClientOptions, baseUrl, identityUrl *url.URL, tel telemetry.API) (*resty.Client, error) {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname(), identityUrl.Hostname()),
	)
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// burst >= 1 just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, "mfscraper/moneyforward")
	if opts.HttpDump != nil {
		restyutil.DumpMessages(httpClient, opts.HttpDump, fieldPassword)
	}

	return httpClient, nil
}

// do executes a request, any transport failure or error status comes back as a
// *ConnectionError.
func (c *Client) do(ctx context.Context, req *resty.Request, method, endpoint string) (*resty.Response, error) {
	res, err := req.SetContext(ctx).Execute(method, endpoint)
	if err != nil {
		err = &ConnectionError{Method: method, Url: endpoint, Err: err}
		c.tel.ReportBroken(report_client_request, err)
		return nil, err
	}
	if res.IsError() {
		err = &ConnectionError{
			Method: method,
			Url:    endpoint,
			Status: res.StatusCode(),
			Err:    fmt.Errorf("unexpected status %s", res.Status()),
		}
		c.tel.ReportBroken(report_client_request, err)
		return nil, err
	}
	return res, nil
}

func (c *Client) getDocument(ctx context.Context, endpoint string, query url.Values) (*goquery.Document, *resty.Response, error) {
	req := c.http.R()
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	res, err := c.do(ctx, req, resty.MethodGet, endpoint)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", endpoint, err)
	}
	return doc, res, nil
}

// postScript submits a form the way the site's own ajax calls do and returns
// the script the server answers with.
func (c *Client) postScript(ctx context.Context, wc writeContext, endpoint string, form url.Values) (string, error) {
	req := c.http.R().
		SetHeaders(wc.Headers).
		SetFormDataFromValues(form)
	res, err := c.do(ctx, req, resty.MethodPost, endpoint)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// writeContext is what every state changing request has to carry.
type writeContext struct {
	Token   string
	Headers map[string]string
}

func newWriteContext(token string) writeContext {
	return writeContext{
		Token: token,
		Headers: map[string]string{
			"Accept":           "text/javascript",
			"X-CSRF-Token":     token,
			"X-Requested-With": "XMLHttpRequest",
		},
	}
}

func csrfToken(doc *goquery.Document) (string, error) {
	token := doc.Find(selCsrfToken).AttrOr("content", "")
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// acquireWriteContext loads `page` only to read the anti-forgery token off of it,
// tokens are scoped to a page load so this is done before every write.
func (c *Client) acquireWriteContext(ctx context.Context, page string) (writeContext, error) {
	wc, _, err := c.loadWritePage(ctx, page)
	return wc, err
}

// loadWritePage is acquireWriteContext that also returns the loaded page, so
// writes that need more of it do not load it again.
func (c *Client) loadWritePage(ctx context.Context, page string) (writeContext, *goquery.Document, error) {
	doc, _, err := c.getDocument(ctx, page, nil)
	if err != nil {
		return writeContext{}, nil, err
	}
	token, err := csrfToken(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_acquire_write_context, err, page)
		return writeContext{}, nil, err
	}
	return newWriteContext(token), doc, nil
}

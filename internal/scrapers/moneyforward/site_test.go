package moneyforward

import (
	"context"
	"fmt"
	"mfscraper/internal/components/chrono"
	"mfscraper/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Form   url.Values
	Header http.Header
}

// fakeSite serves the ledger and the identity provider from two test servers
// and records every request made to either of them.
type fakeSite struct {
	base     *httptest.Server
	identity *httptest.Server

	mutex    sync.Mutex
	requests []recordedRequest
	polls    int

	// loadingPolls is how many polls report that the refresh is still loading,
	// a negative value keeps it loading forever.
	loadingPolls int
	// fetchScript is the answer to the ledger row request.
	fetchScript string
	// failures maps a path to the status it should answer with.
	failures map[string]int
}

func newFakeSite(t testing.TB) *fakeSite {
	site := &fakeSite{
		fetchScript: appendScript(fragmentTransactions, ledgerRows),
		failures:    map[string]int{},
	}
	site.base = httptest.NewServer(http.HandlerFunc(site.serveBase))
	site.identity = httptest.NewServer(http.HandlerFunc(site.serveIdentity))
	t.Cleanup(site.base.Close)
	t.Cleanup(site.identity.Close)
	return site
}

func (s *fakeSite) record(r *http.Request) (int, bool) {
	err := r.ParseForm()
	if err != nil {
		panic(err)
	}
	form := url.Values{}
	if r.Method == http.MethodPost {
		form = r.PostForm
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requests = append(s.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Form:   form,
		Header: r.Header.Clone(),
	})
	status, failing := s.failures[r.URL.Path]
	return status, failing
}

// posts returns the forms posted to `path` in order.
func (s *fakeSite) posts(path string) []recordedRequest {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var out []recordedRequest
	for _, r := range s.requests {
		if r.Method == http.MethodPost && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// trail returns "METHOD /path" for every request in order.
func (s *fakeSite) trail() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]string, len(s.requests))
	for i, r := range s.requests {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

func (s *fakeSite) serveIdentity(w http.ResponseWriter, r *http.Request) {
	status, failing := s.record(r)
	if failing {
		w.WriteHeader(status)
		return
	}
	if r.URL.Path != pathIdentitySign {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodGet {
		fmt.Fprint(w, signInHtml)
		return
	}

	valid := r.PostForm.Get(fieldAuthenticityToken) == signInToken &&
		r.PostForm.Get("client_id") == "ledger" &&
		r.PostForm.Get(fieldEmail) == testUsername &&
		r.PostForm.Get(fieldPassword) == testPassword
	if !valid {
		http.Redirect(w, r, pathIdentitySign+"?error=invalid", http.StatusFound)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
	http.Redirect(w, r, s.base.URL+pathHome, http.StatusFound)
}

func (s *fakeSite) serveBase(w http.ResponseWriter, r *http.Request) {
	status, failing := s.record(r)
	if failing {
		w.WriteHeader(status)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == pathSignIn:
		http.Redirect(w, r, s.identity.URL+pathIdentitySign+"?client_id=ledger&nonce=n0", http.StatusFound)
	case r.Method == http.MethodGet && r.URL.Path == pathHome:
		fmt.Fprint(w, homeHtml)
	case r.Method == http.MethodGet && r.URL.Path == pathLedger:
		fmt.Fprint(w, ledgerHtml)
	case r.Method == http.MethodGet && r.URL.Path == pathPolling:
		s.mutex.Lock()
		s.polls++
		loading := s.loadingPolls < 0 || s.polls <= s.loadingPolls
		s.mutex.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"loading":%t}`, loading)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/aggregation_queue/"):
		w.Header().Set("Content-Type", "text/javascript")
	case r.Method == http.MethodPost && r.URL.Path == pathLedgerFetch:
		w.Header().Set("Content-Type", "text/javascript")
		fmt.Fprint(w, s.fetchScript)
	case r.Method == http.MethodPost && r.URL.Path == pathPartner:
		w.Header().Set("Content-Type", "text/javascript")
		switch r.PostForm.Get(fieldPartnerLookupAc) {
		case "":
			fmt.Fprint(w, htmlScript(fragmentPartner, partnerAccountsFragment))
		case "pa-bank":
			fmt.Fprint(w, htmlScript(fragmentSubAccount, bankSubAccountsFragment))
		case "pa-wallet":
			fmt.Fprint(w, htmlScript(fragmentSubAccount, walletSubAccountFragment))
		default:
			http.NotFound(w, r)
		}
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, pathLedger+"/"):
		w.Header().Set("Content-Type", "text/javascript")
		fmt.Fprint(w, `location.reload();`)
	default:
		http.NotFound(w, r)
	}
}

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

func (s *fakeSite) client(t testing.TB, opts ClientOptions) (*Client, *fakeClock, *telemetry.RecorderAPI) {
	opts.BaseUrl = s.base.URL
	opts.IdentityUrl = s.identity.URL
	if opts.Username == "" {
		opts.Username = testUsername
	}
	if opts.Password == "" {
		opts.Password = testPassword
	}

	clock := &fakeClock{now: time.Date(2024, 3, 31, 12, 0, 0, 0, chrono.JST())}
	tel := &telemetry.RecorderAPI{}
	client, err := NewClient(opts, clock, tel)
	require.NoError(t, err)
	return client, clock, tel
}

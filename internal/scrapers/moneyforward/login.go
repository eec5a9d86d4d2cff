package moneyforward

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
)

const (
	report_client_login = "client.login"
)

// Login signs in with the credentials the client was created with. On success
// the session cookies are kept for every following call.
func (c *Client) Login(ctx context.Context) error {
	c.tel.ReportDebug(report_client_login, c.username)

	doc, res, err := c.getDocument(ctx, pathSignIn, nil)
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("sign in page: %w", err))
		return err
	}
	token, err := csrfToken(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_login, err)
		return fmt.Errorf("sign in page: %w", err)
	}

	// the sign in page is reached through redirects carrying the parameters the
	// identity provider needs to send us back afterwards
	form := res.RawResponse.Request.URL.Query()
	form.Set(fieldAuthenticityToken, token)
	form.Set(fieldMethod, methodPost)
	form.Set(fieldEmail, c.username)
	form.Set(fieldPassword, c.password)
	form.Set(fieldSelectAccount, "true")

	res, err = c.do(
		ctx,
		c.http.R().SetFormDataFromValues(form),
		resty.MethodPost,
		c.identityUrl.ResolveReference(&url.URL{Path: pathIdentitySign}).String(),
	)
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("submit credentials: %w", err))
		return err
	}

	landed := res.RawResponse.Request.URL
	if !c.isHome(landed) {
		c.tel.ReportWarning(report_client_login, ErrLoginFailed, landed.String())
		return ErrLoginFailed
	}
	return nil
}

func (c *Client) isHome(u *url.URL) bool {
	if u.Scheme != c.baseUrl.Scheme || u.Host != c.baseUrl.Host {
		return false
	}
	return u.Path == "" || u.Path == pathHome
}

package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/descope/virtualwebauthn"
	"github.com/justinas/nosurf"
	"github.com/myrjola/616degrees/internal/errors"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

type Client struct {
	client        *http.Client
	url           string
	rp            virtualwebauthn.RelyingParty
	authenticator virtualwebauthn.Authenticator
}

// NewClient creates a Webauthn-aware HTTP client.
//
// rpID and rpOrigin should correspond to the Webauthn setup on the server.
func NewClient(url, rpID, rpOrigin string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client:        &http.Client{Jar: jar},
		url:           url,
		rp:            virtualwebauthn.RelyingParty{Name: "616 Degrees of Separation", ID: rpID, Origin: rpOrigin},
		authenticator: virtualwebauthn.NewAuthenticator(),
	}, nil
}

// WaitForReady polls the health endpoint at urlPath until the server reports that it serves a daily challenge.
// It gives up when ctx is done or after readyTimeout.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()
	for {
		ready, err := c.healthy(ctx, urlPath)
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Join(errors.New("server not ready", slog.String("path", urlPath)), err, ctx.Err())
		case <-ticker.C:
		}
	}
}

const (
	readyTimeout      = 2 * time.Second
	readyPollInterval = 50 * time.Millisecond
)

func (c *Client) healthy(ctx context.Context, urlPath string) (bool, error) {
	var health struct {
		Status       string `json:"status"`
		ChallengeDay int    `json:"challengeDay"`
	}
	status, err := c.DoJSON(ctx, http.MethodGet, urlPath, nil, &health)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK && health.Status == "ok" && health.ChallengeDay > 0, nil
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	var (
		err  error
		resp *http.Response
		doc  *goquery.Document
	)
	if resp, err = c.Get(ctx, urlPath); err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	if doc, err = goquery.NewDocumentFromReader(resp.Body); err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if req, err = http.NewRequest(method, c.url+urlPath, body); err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req.WithContext(ctx), nil
}

// ceremony posts body to one step of a passkey ceremony and returns the response body.
func (c *Client) ceremony(ctx context.Context, urlPath, csrfToken, body string) (string, error) {
	req, err := c.newRequestWithContext(ctx, http.MethodPost, urlPath, strings.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(nosurf.HeaderName, csrfToken)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "do request", slog.String("path", urlPath))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return "", errors.New("unexpected status code", slog.String("path", urlPath), slog.Int("status", resp.StatusCode))
	}
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read body", slog.String("path", urlPath))
	}
	return string(out), nil
}

// formCSRFToken reads the token of the form posting to action on the front page.
func (c *Client) formCSRFToken(ctx context.Context, action string) (string, error) {
	doc, err := c.GetDoc(ctx, "/")
	if err != nil {
		return "", errors.Wrap(err, "get document")
	}
	return c.extractCSRFToken(doc, action)
}

// Register creates a passkey for a new player and returns the front page as the signed-in player sees it.
func (c *Client) Register(ctx context.Context) (*goquery.Document, error) {
	const startPath = "/api/registration/start"
	csrfToken, err := c.formCSRFToken(ctx, startPath)
	if err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}
	options, err := c.ceremony(ctx, startPath, csrfToken, "")
	if err != nil {
		return nil, errors.Wrap(err, "start registration")
	}
	attOpts, err := virtualwebauthn.ParseAttestationOptions(options)
	if err != nil {
		return nil, errors.Wrap(err, "parse attestation options")
	}

	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)
	attestation := virtualwebauthn.CreateAttestationResponse(c.rp, c.authenticator, credential, *attOpts)
	if _, err = c.ceremony(ctx, "/api/registration/finish", csrfToken, attestation); err != nil {
		return nil, errors.Wrap(err, "finish registration")
	}

	// Discoverable login needs the user handle next to the credential.
	c.authenticator.AddCredential(credential)
	c.authenticator.Options.UserHandle = []byte(attOpts.UserID)

	doc, err := c.GetDoc(ctx, "/")
	if err != nil {
		return nil, errors.Wrap(err, "get document after registration")
	}
	return doc, nil
}

// Login signs in with the passkey created by Register and returns the front page.
func (c *Client) Login(ctx context.Context) (*goquery.Document, error) {
	const startPath = "/api/login/start"
	if len(c.authenticator.Credentials) == 0 {
		return nil, errors.New("no passkey registered")
	}
	csrfToken, err := c.formCSRFToken(ctx, startPath)
	if err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}
	options, err := c.ceremony(ctx, startPath, csrfToken, "")
	if err != nil {
		return nil, errors.Wrap(err, "start login")
	}
	asOpts, err := virtualwebauthn.ParseAssertionOptions(options)
	if err != nil {
		return nil, errors.Wrap(err, "parse assertion options")
	}

	assertion := virtualwebauthn.CreateAssertionResponse(c.rp, c.authenticator, c.authenticator.Credentials[0], *asOpts)
	if _, err = c.ceremony(ctx, "/api/login/finish", csrfToken, assertion); err != nil {
		return nil, errors.Wrap(err, "finish login")
	}

	doc, err := c.GetDoc(ctx, "/")
	if err != nil {
		return nil, errors.Wrap(err, "get document after login")
	}
	return doc, nil
}

func (c *Client) Logout(ctx context.Context) (*goquery.Document, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.SubmitForm(ctx, "/", "/api/logout"); err != nil {
		return nil, errors.Wrap(err, "submit form")
	}
	return doc, nil
}

func (c *Client) extractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form")
	}
	return csrfToken, nil
}

// SubmitForm submits a form at formUrlPath with action formActionUrlPath and returns the response document.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
) (*goquery.Document, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.GetDoc(ctx, formURLPath); err != nil {
		return nil, errors.Wrap(err, "get document")
	}

	// Extract CSRF token from the form.
	var csrfToken string
	if csrfToken, err = c.extractCSRFToken(doc, formActionURLPath); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}

	// Build form data
	formData := neturl.Values{}
	formData.Add("csrf_token", csrfToken)
	data := strings.NewReader(formData.Encode())

	// Submit the form
	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, formActionURLPath, data); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}

	// Parse the response
	if doc, err = goquery.NewDocumentFromReader(resp.Body); err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

// CSRFToken returns a token accepted in the X-CSRF-Token header of the current cookie session.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	doc, err := c.GetDoc(ctx, "/")
	if err != nil {
		return "", errors.Wrap(err, "get document")
	}
	token, ok := doc.Find("meta[name=csrf-token]").Attr("content")
	if !ok || token == "" {
		return "", errors.New("csrf-token meta tag not found")
	}
	return token, nil
}

// DoJSON sends body encoded as JSON and decodes the response into out unless out is nil. State-changing requests
// carry a CSRF token. The response status is returned also when it isn't a success.
func (c *Client) DoJSON(ctx context.Context, method, urlPath string, body, out any) (int, error) {
	var (
		err    error
		reader io.Reader
	)
	if body != nil {
		var encoded []byte
		if encoded, err = json.Marshal(body); err != nil {
			return 0, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, method, urlPath, reader); err != nil {
		return 0, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet && method != http.MethodHead {
		var csrfToken string
		if csrfToken, err = c.CSRFToken(ctx); err != nil {
			return 0, errors.Wrap(err, "get CSRF token")
		}
		req.Header.Set(nosurf.HeaderName, csrfToken)
	}

	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "decode response body", slog.Int("status", resp.StatusCode))
		}
	}
	return resp.StatusCode, nil
}

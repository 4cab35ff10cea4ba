package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// ── Boundary interfaces ─────────────────────────────────────────────

// rawFetcher returns raw FPL API documents.
type rawFetcher interface {
	Bootstrap(ctx context.Context) (string, error)
	Picks(ctx context.Context, entry, gameweek int) (string, error)
}

// TransferSink realizes a chosen squad as transfers.
type TransferSink interface {
	Login(ctx context.Context, email, password string) error
	SubmitTransfers(ctx context.Context, req TransferRequest) error
}

// ── HTTP client ─────────────────────────────────────────────────────

const (
	fplRedirectURI = "https://fantasy.premierleague.com/"
	fplApp         = "plfpl-web"
	fplReferer     = "https://fantasy.premierleague.com/a/squad/transfers"
	maxFetchTries  = 4
)

// Client talks to the FPL web API. It keeps a cookie jar so that a Login
// authorizes later SubmitTransfers calls.
type Client struct {
	baseURL  string
	loginURL string
	http     *http.Client
	newBack  func() backoff.BackOff
	log      *zap.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL, loginURL string, log *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("fpl: cookie jar: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		loginURL: loginURL,
		http:     &http.Client{Jar: jar, Timeout: 30 * time.Second},
		newBack:  func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		log:      log,
	}, nil
}

// get fetches path relative to the base URL, retrying transient failures.
func (c *Client) get(ctx context.Context, path string) (string, error) {
	target := c.baseURL + path
	op := func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Debug("[fpl] request failed", zap.String("url", target), zap.Error(err))
			return "", err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return "", fmt.Errorf("fpl: GET %s: %s", target, resp.Status)
		case resp.StatusCode >= 400:
			return "", backoff.Permanent(fmt.Errorf("fpl: GET %s: %s", target, resp.Status))
		}
		return string(body), nil
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBack()),
		backoff.WithMaxTries(maxFetchTries),
	)
}

// Bootstrap returns the bootstrap-static document (players, teams, events).
func (c *Client) Bootstrap(ctx context.Context) (string, error) {
	c.log.Debug("[fpl] fetching bootstrap-static")
	return c.get(ctx, "bootstrap-static/")
}

// Picks returns an entry's picks for a gameweek.
func (c *Client) Picks(ctx context.Context, entry, gameweek int) (string, error) {
	c.log.Debug("[fpl] fetching picks", zap.Int("entry", entry), zap.Int("gameweek", gameweek))
	return c.get(ctx, fmt.Sprintf("entry/%d/event/%d/picks/", entry, gameweek))
}

// Login posts the credentials to the login form. The site redirects back
// with state=success, or state=fail&reason=... on bad credentials.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{
		"login":        {email},
		"password":     {password},
		"redirect_uri": {fplRedirectURI},
		"app":          {fplApp},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("fpl: login: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fpl: login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return loginError("failed to get response from website")
	}
	query := resp.Request.URL.Query()
	switch state := query.Get("state"); state {
	case "success":
		c.log.Info("[fpl] logged in")
		return nil
	case "fail":
		if reason := query.Get("reason"); reason != "" {
			return loginError(reason)
		}
		return loginError("failed state for unknown reason")
	case "":
		return loginError("got a response, but no state")
	default:
		return loginError(fmt.Sprintf("type of state (%s) was not understood", state))
	}
}

// ErrLogin wraps every login failure.
var ErrLogin = errors.New("error logging in")

func loginError(reason string) error {
	return fmt.Errorf("%w: %s", ErrLogin, reason)
}

// SubmitTransfers posts a transfer request. Login must have succeeded.
func (c *Client) SubmitTransfers(ctx context.Context, tr TransferRequest) error {
	body, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("fpl: encode transfers: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"transfers/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fpl: transfers: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", fplReferer)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fpl: transfers: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fpl: error requesting transfer: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	c.log.Info("[fpl] transfers submitted", zap.Int("count", len(tr.Transfers)))
	return nil
}

// ── Transfer payload ────────────────────────────────────────────────

// TransferRequest is the body of POST /api/transfers/.
type TransferRequest struct {
	Confirmed bool            `json:"confirmed"`
	Entry     int             `json:"entry"`
	Event     int             `json:"event"`
	Transfers []TransferEntry `json:"transfers"`
	Wildcard  bool            `json:"wildcard"`
	FreeHit   bool            `json:"freehit"`
}

// TransferEntry is one player swap. Prices are in tenths, as the API uses.
type TransferEntry struct {
	ElementIn     int `json:"element_in"`
	ElementOut    int `json:"element_out"`
	PurchasePrice int `json:"purchase_price"`
	SellingPrice  int `json:"selling_price"`
}

// NewTransferRequest converts paired changes into a confirmed request.
// Unpaired changes cannot be expressed as transfers and are rejected.
func NewTransferRequest(changes Changes, entry, gameweek int, wildcard, freeHit bool) (TransferRequest, error) {
	tr := TransferRequest{
		Confirmed: true,
		Entry:     entry,
		Event:     gameweek,
		Transfers: make([]TransferEntry, 0, len(changes)),
		Wildcard:  wildcard,
		FreeHit:   freeHit,
	}
	for _, t := range changes {
		if t.In == nil || t.Out == nil {
			return TransferRequest{}, fmt.Errorf("unpaired transfer %s", t)
		}
		tr.Transfers = append(tr.Transfers, TransferEntry{
			ElementIn:     t.In.ID,
			ElementOut:    t.Out.ID,
			PurchasePrice: tenths(t.In.Price),
			SellingPrice:  tenths(t.Out.Price),
		})
	}
	return tr, nil
}

func tenths(price float64) int { return int(math.Round(price * 10)) }

// ── Offline source ──────────────────────────────────────────────────

// fileFetcher serves saved API responses from disk.
type fileFetcher struct {
	bootstrapPath string
	picksPath     string
}

func (f fileFetcher) Bootstrap(context.Context) (string, error) {
	return readFile(f.bootstrapPath)
}

func (f fileFetcher) Picks(context.Context, int, int) (string, error) {
	if f.picksPath == "" {
		return "", errors.New("no picks file configured")
	}
	return readFile(f.picksPath)
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

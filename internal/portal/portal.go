package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Moontok/WorkshopApp/internal/config"
	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/publicsuffix"
)

var (
	// ErrConnection means the portal could not be reached
	ErrConnection = errors.New("cannot reach portal")

	// ErrServer means the portal answered with something other than the expected page
	ErrServer = errors.New("unexpected portal response")

	// ErrAuth means the portal rejected the login or the session is no longer signed in
	ErrAuth = errors.New("portal login rejected")

	// ErrClosed is returned by fetches on a closed session
	ErrClosed = errors.New("portal session closed")
)

// Login form field names
const (
	fieldUserName        = "ctl00$mainBody$txtUserName"
	fieldPassword        = "ctl00$mainBody$txtPassword"
	fieldSubmit          = "ctl00$mainBody$btnSubmit"
	fieldSubmitValue     = "Submit"
	fieldEventValidation = "__EVENTVALIDATION"
	fieldViewState       = "__VIEWSTATE"
)

// Session is an authenticated portal session. It is safe for concurrent use;
// all fetches share one cookie jar.
type Session struct {
	cfg    *config.Config
	client *http.Client
	closed atomic.Bool

	timeout       time.Duration
	userAgent     string
	maxRetries    int
	retryInterval time.Duration
	transport     http.RoundTripper
}

// Open signs in to the portal with the configured credential.
// The returned Session must be closed by the caller.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	cred, err := cfg.Credential()
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:           cfg,
		timeout:       DefaultTimeout,
		userAgent:     DefaultUserAgent,
		maxRetries:    DefaultMaxRetries,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if s.transport == nil {
		s.transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	s.client = &http.Client{
		Timeout:   s.timeout,
		Jar:       jar,
		Transport: s.transport,
	}

	if err := s.login(ctx, cred); err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("Signed in to portal", logger.Fields{
		"user": cred.UserName,
		"url":  cfg.SigninPageURL,
	})

	return s, nil
}

func (s *Session) login(ctx context.Context, cred config.Credential) error {
	page, err := s.fetch(ctx, http.MethodGet, s.cfg.SigninPageURL, nil)
	if err != nil {
		return fmt.Errorf("loading sign-in page: %w", err)
	}

	tokens, err := hiddenTokens(page)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set(fieldUserName, cred.UserName)
	form.Set(fieldPassword, cred.Password)
	form.Set(fieldSubmit, fieldSubmitValue)
	form.Set(fieldEventValidation, tokens.eventValidation)
	form.Set(fieldViewState, tokens.viewState)

	landing, err := s.fetch(ctx, http.MethodPost, s.cfg.SigninPageURL, form)
	if err != nil {
		return fmt.Errorf("submitting login: %w", err)
	}

	if isLoginPage(landing) {
		return fmt.Errorf("%w: still on the sign-in page after login for user %q", ErrAuth, cred.UserName)
	}
	return nil
}

// FetchListingPage returns the signed-in instructor listing page
func (s *Session) FetchListingPage(ctx context.Context) ([]byte, error) {
	return s.fetchPage(ctx, s.cfg.InstructorPageURL)
}

// FetchDetailPage returns the public detail page of a workshop
func (s *Session) FetchDetailPage(ctx context.Context, workshopID string) ([]byte, error) {
	return s.fetchPage(ctx, s.cfg.WorkshopURL(workshopID))
}

// FetchRosterPage returns the participant roster page of a workshop
func (s *Session) FetchRosterPage(ctx context.Context, workshopID string) ([]byte, error) {
	return s.fetchPage(ctx, s.cfg.RosterURL(workshopID))
}

// WorkshopURL returns the public detail page address of a workshop
func (s *Session) WorkshopURL(workshopID string) string {
	return s.cfg.WorkshopURL(workshopID)
}

// Close releases the session's connections. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.client != nil {
		s.client.CloseIdleConnections()
	}
	return nil
}

func (s *Session) fetchPage(ctx context.Context, target string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	page, err := s.fetch(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if isLoginPage(page) {
		return nil, fmt.Errorf("%w: %s redirected to the sign-in page (session expired?)", ErrAuth, target)
	}
	return page, nil
}

// fetch performs one request with retries for transient failures.
// A non-nil form is sent as an urlencoded POST body.
func (s *Session) fetch(ctx context.Context, method, target string, form url.Values) ([]byte, error) {
	var body []byte
	start := time.Now()

	op := func() error {
		var reqBody io.Reader
		if form != nil {
			reqBody = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: creating request: %v", ErrServer, err))
		}
		req.Header.Set("User-Agent", s.userAgent)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return backoff.Permanent(fmt.Errorf("%s %s: %w", method, target, ctxErr))
			}
			return fmt.Errorf("%w: %s %s: %v", ErrConnection, method, target, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", ErrConnection, target, err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s returned status %d", ErrServer, target, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("%w: %s returned status %d", ErrServer, target, resp.StatusCode))
		}

		body = data
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.IncrCounter("portal.retries")
		logger.Warn("Portal request failed, retrying", logger.Fields{
			"method": method,
			"url":    target,
			"error":  err.Error(),
			"wait":   wait.String(),
		})
	}

	if err := backoff.RetryNotify(op, s.newBackOff(ctx), notify); err != nil {
		logger.IncrCounter("portal.failures")
		return nil, err
	}

	logger.IncrCounter("portal.pages_fetched")
	logger.RecordTiming("portal.fetch", time.Since(start))
	return body, nil
}

func (s *Session) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryInterval
	exp.MaxInterval = 10 * s.retryInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.maxRetries)), ctx)
}

type formTokens struct {
	eventValidation string
	viewState       string
}

// hiddenTokens reads the anti-forgery fields the login POST must echo back
func hiddenTokens(page []byte) (formTokens, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return formTokens{}, fmt.Errorf("%w: parsing sign-in page: %v", ErrServer, err)
	}

	eventValidation, ok := doc.Find("input#" + fieldEventValidation).First().Attr("value")
	if !ok || eventValidation == "" {
		return formTokens{}, fmt.Errorf("%w: sign-in page has no %s token", ErrServer, fieldEventValidation)
	}
	viewState, ok := doc.Find("input#" + fieldViewState).First().Attr("value")
	if !ok || viewState == "" {
		return formTokens{}, fmt.Errorf("%w: sign-in page has no %s token", ErrServer, fieldViewState)
	}

	return formTokens{eventValidation: eventValidation, viewState: viewState}, nil
}

// isLoginPage reports whether the page still carries the sign-in password field
func isLoginPage(page []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return false
	}
	return doc.Find(`input[name="`+fieldPassword+`"]`).Length() > 0
}

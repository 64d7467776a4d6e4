// Package panel drives the hosting panel: interactive login, site inventory and
// per-site details.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/browser"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/dnsinfo"
	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/netutil"
	"github.com/azizemirhan/hubcenter/internal/operator"
)

const (
	serviceName          = "panel"
	errorElementSelector = `[class*="error"], [class*="alert"], .error-message`
	inventorySelector    = `table, .websites-table, [class*="websites"]`
)

// State is the session lifecycle position.
type State int

const (
	StateIdle State = iota
	StateBrowserStarted
	StateAwaitingOperator
	StateLoggedIn
	StateInventoryLoaded
	StateInventoryParsed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBrowserStarted:
		return "browser_started"
	case StateAwaitingOperator:
		return "awaiting_operator"
	case StateLoggedIn:
		return "logged_in"
	case StateInventoryLoaded:
		return "inventory_loaded"
	case StateInventoryParsed:
		return "inventory_parsed"
	default:
		return "unknown"
	}
}

// Timings holds the fixed waits used while the panel renders.
type Timings struct {
	Navigation        time.Duration
	SettleBeforeLogin time.Duration
	SettleAfterLogin  time.Duration
	InventorySettle   time.Duration
	InventoryWait     time.Duration
	DetailsSettle     time.Duration
}

// DefaultTimings mirrors how long the panel usually takes to render.
func DefaultTimings() Timings {
	return Timings{
		Navigation:        30 * time.Second,
		SettleBeforeLogin: 5 * time.Second,
		SettleAfterLogin:  8 * time.Second,
		InventorySettle:   3 * time.Second,
		InventoryWait:     10 * time.Second,
		DetailsSettle:     3 * time.Second,
	}
}

// DNSLookup resolves live records for a domain.
type DNSLookup interface {
	Lookup(ctx context.Context, domain string) (dnsinfo.Records, error)
}

// Client owns the browser session for the duration of a run.
type Client struct {
	cfg      config.PanelConfig
	launch   browser.Launcher
	operator operator.Operator
	locators Locators
	timings  Timings
	resolver DNSLookup
	log      logging.Logger
	sleep    func(context.Context, time.Duration) error

	session browser.Session
	state   State
}

// Option customizes a Client.
type Option func(*Client)

// WithLocators overrides the login control candidates.
func WithLocators(l Locators) Option {
	return func(c *Client) { c.locators = l }
}

// WithTimings overrides the render waits.
func WithTimings(t Timings) Option {
	return func(c *Client) { c.timings = t }
}

// WithResolver enables live DNS lookups in SiteDetails.
func WithResolver(r DNSLookup) Option {
	return func(c *Client) { c.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds an idle client. The browser is not started until Start.
func NewClient(cfg config.PanelConfig, launch browser.Launcher, op operator.Operator, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		launch:   launch,
		operator: op,
		locators: DefaultLocators(),
		timings:  DefaultTimings(),
		sleep:    browser.Wait,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDiscard(c.log)
	if c.operator == nil {
		c.operator = operator.Unattended{}
	}
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() State { return c.state }

// Start launches the browser session.
func (c *Client) Start(ctx context.Context) error {
	if c.state != StateIdle {
		return fmt.Errorf("start requires state %s, got %s", StateIdle, c.state)
	}
	session, err := c.launch(ctx)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	c.session = session
	c.state = StateBrowserStarted
	return nil
}

// Page lends the live page to other stages. It is nil unless the session is started.
func (c *Client) Page() browser.Page {
	if c.session == nil {
		return nil
	}
	return c.session.Page()
}

// Close tears the session down and returns to idle. It is safe to call repeatedly.
func (c *Client) Close() error {
	c.state = StateIdle
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

func (c *Client) fail(err error) error {
	if closeErr := c.Close(); closeErr != nil {
		c.log.WithError(closeErr).Warn("closing browser after failure")
	}
	return err
}

// Login signs in to the panel. It returns false with an AuthenticationError
// when the panel rejects the credentials or the operator cannot confirm an
// ambiguous outcome; the session is torn down in both cases.
func (c *Client) Login(ctx context.Context) (bool, error) {
	if c.state != StateBrowserStarted {
		return false, fmt.Errorf("login requires state %s, got %s", StateBrowserStarted, c.state)
	}
	page := c.session.Page()

	c.log.WithField("url", c.cfg.LoginURL).Info("opening panel login")
	if _, err := page.Goto(ctx, c.cfg.LoginURL, browser.GotoOptions{WaitUntil: browser.WaitNetworkIdle, Timeout: c.timings.Navigation}); err != nil {
		return false, c.fail(&apperr.AuthenticationError{Service: serviceName, Reason: "login page did not load", Err: err})
	}
	if err := c.sleep(ctx, c.timings.SettleBeforeLogin); err != nil {
		return false, c.fail(err)
	}

	if err := c.submitCredentials(page); err != nil {
		c.log.WithError(err).Warn("automatic login failed")
		return c.confirmWithOperator(ctx, page, "Automatic login failed. Log in manually in the browser window, then confirm.")
	}
	if err := c.sleep(ctx, c.timings.SettleAfterLogin); err != nil {
		return false, c.fail(err)
	}
	return c.classify(ctx, page)
}

func (c *Client) submitCredentials(page browser.Page) error {
	if c.cfg.Email == "" || c.cfg.Password == "" {
		return errors.New("panel credentials are not configured")
	}

	email, loc, err := probe(page, c.locators.Email)
	if err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	c.log.WithField("selector", loc.String()).Debug("email field found")
	if err := email.Fill(c.cfg.Email); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}

	password, loc, err := probe(page, c.locators.Password)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	c.log.WithField("selector", loc.String()).Debug("password field found")
	if err := password.Fill(c.cfg.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}

	submit, loc, err := probe(page, c.locators.Submit)
	if err != nil {
		c.log.Debug("no submit control found, pressing Enter")
		if err := password.Press("Enter"); err != nil {
			return fmt.Errorf("submit with Enter: %w", err)
		}
		return nil
	}
	c.log.WithField("selector", loc.String()).Debug("submit control found")
	if err := submit.Click(); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}
	return nil
}

func (c *Client) classify(ctx context.Context, page browser.Page) (bool, error) {
	current := page.URL()
	if c.isPostLogin(current) {
		c.state = StateLoggedIn
		c.log.WithField("url", current).Info("panel login succeeded")
		return true, nil
	}
	if c.onLoginHost(current) {
		present, err := page.Exists(errorElementSelector)
		if err == nil && present {
			return false, c.fail(&apperr.AuthenticationError{Service: serviceName, Reason: "panel rejected the credentials"})
		}
	}
	return c.confirmWithOperator(ctx, page, "Login needs verification (CAPTCHA or two-factor). Complete it in the browser, then confirm.")
}

func (c *Client) confirmWithOperator(ctx context.Context, page browser.Page, prompt string) (bool, error) {
	c.log.WithField("url", page.URL()).Warn("waiting for operator confirmation")
	c.state = StateAwaitingOperator
	if err := c.operator.Confirm(ctx, prompt); err != nil {
		return false, c.fail(&apperr.AuthenticationError{Service: serviceName, Reason: "operator confirmation failed", Err: err})
	}
	current := page.URL()
	if c.isPostLogin(current) || strings.Contains(current, "dashboard") {
		c.state = StateLoggedIn
		c.log.WithField("url", current).Info("panel login confirmed by operator")
		return true, nil
	}
	return false, c.fail(&apperr.AuthenticationError{
		Service: serviceName,
		Reason:  fmt.Sprintf("still not signed in after confirmation (at %s)", current),
	})
}

func (c *Client) isPostLogin(current string) bool {
	host := netutil.Host(current)
	if host == "" {
		return false
	}
	for _, u := range []string{c.cfg.WebsitesURL, c.cfg.ToolsURL} {
		if h := netutil.Host(u); h != "" && h == host {
			return true
		}
	}
	return false
}

func (c *Client) onLoginHost(current string) bool {
	if host := netutil.Host(current); host != "" && host == netutil.Host(c.cfg.LoginURL) {
		return true
	}
	return strings.Contains(strings.ToLower(current), "login")
}

// NavigateToWebsites opens the inventory page and waits for the table to render.
func (c *Client) NavigateToWebsites(ctx context.Context) error {
	if c.state < StateLoggedIn {
		return fmt.Errorf("inventory requires state %s, got %s", StateLoggedIn, c.state)
	}
	page := c.session.Page()
	if _, err := page.Goto(ctx, c.cfg.WebsitesURL, browser.GotoOptions{WaitUntil: browser.WaitNetworkIdle, Timeout: c.timings.Navigation}); err != nil {
		return &apperr.PageLoadError{URL: c.cfg.WebsitesURL, Err: err}
	}
	if err := c.sleep(ctx, c.timings.InventorySettle); err != nil {
		return err
	}
	if _, err := page.Locate(inventorySelector, c.timings.InventoryWait); err != nil {
		return &apperr.PageLoadError{URL: c.cfg.WebsitesURL, Err: err}
	}
	c.state = StateInventoryLoaded
	return nil
}

// WebsitesList parses every inventory row currently rendered.
func (c *Client) WebsitesList(ctx context.Context) ([]entity.SiteInventoryRecord, error) {
	if c.state < StateLoggedIn {
		return nil, fmt.Errorf("inventory requires state %s, got %s", StateLoggedIn, c.state)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, err := c.session.Page().Content()
	if err != nil {
		return nil, fmt.Errorf("read inventory html: %w", err)
	}
	records, err := ParseInventory(html, c.cfg.WebsitesURL)
	if err != nil {
		return nil, err
	}
	c.state = StateInventoryParsed
	c.log.WithField("sites", len(records)).Info("inventory parsed")
	return records, nil
}

// SiteDetails reads the management dashboard of one site. Failures are
// reported in the returned details rather than as an error.
func (c *Client) SiteDetails(ctx context.Context, rec entity.SiteInventoryRecord) entity.SiteDetails {
	var details entity.SiteDetails
	if c.state < StateLoggedIn {
		details.Error = fmt.Sprintf("details require state %s, got %s", StateLoggedIn, c.state)
		return details
	}
	target := rec.ManagementURL
	if target == "" {
		target = c.cfg.ToolsURL
	}

	page := c.session.Page()
	var problems []string
	if _, err := page.Goto(ctx, target, browser.GotoOptions{WaitUntil: browser.WaitNetworkIdle, Timeout: c.timings.Navigation}); err != nil {
		problems = append(problems, fmt.Sprintf("open %s: %v", target, err))
	} else if err := c.sleep(ctx, c.timings.DetailsSettle); err != nil {
		problems = append(problems, err.Error())
	} else if text, err := page.BodyText(); err != nil {
		problems = append(problems, fmt.Sprintf("read dashboard: %v", err))
	} else {
		details = ParseDetails(text)
	}

	if c.resolver != nil {
		records, err := c.resolver.Lookup(ctx, rec.Domain)
		if err != nil {
			problems = append(problems, fmt.Sprintf("dns: %v", err))
		}
		details.ResolvedIPs = records.IPs
		details.ResolvedNameservers = records.Nameservers
	}
	details.Error = strings.Join(problems, "; ")
	return details
}

package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/azizemirhan/hubcenter/internal/config"
)

// PlaywrightSession drives a Chromium instance through playwright.
type PlaywrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *playwrightPage
}

// Launch starts Chromium with one context and one page.
func Launch(ctx context.Context, cfg config.BrowserConfig) (*PlaywrightSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	s := &PlaywrightSession{pw: pw}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMo.Milliseconds())),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	s.context, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  playwright.String(cfg.UserAgent),
		Viewport:   &playwright.Size{Width: 1920, Height: 1080},
		Locale:     playwright.String(cfg.Locale),
		TimezoneId: playwright.String("Europe/Istanbul"),
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
		},
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	page, err := s.context.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if cfg.PageTimeout > 0 {
		page.SetDefaultTimeout(float64(cfg.PageTimeout.Milliseconds()))
	}
	s.page = &playwrightPage{page: page}
	return s, nil
}

// PlaywrightLauncher adapts Launch to the Launcher signature.
func PlaywrightLauncher(cfg config.BrowserConfig) Launcher {
	return func(ctx context.Context) (Session, error) {
		return Launch(ctx, cfg)
	}
}

// Page returns the session's page.
func (s *PlaywrightSession) Page() Page {
	return s.page
}

// Close tears down the page, context, browser and driver, in that order.
func (s *PlaywrightSession) Close() error {
	var errs []error
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		s.context = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		s.pw = nil
	}
	return errors.Join(errs...)
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(ctx context.Context, url string, opts GotoOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	gotoOpts := playwright.PageGotoOptions{WaitUntil: waitUntilState(opts.WaitUntil)}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}
	resp, err := p.page.Goto(url, gotoOpts)
	if err != nil {
		return 0, err
	}
	if resp == nil {
		return 0, nil
	}
	return resp.Status(), nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Title() (string, error) {
	return p.page.Title()
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) BodyText() (string, error) {
	return p.page.Locator("body").InnerText()
}

func (p *playwrightPage) Locate(selector string, timeout time.Duration) (Element, error) {
	loc := p.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return nil, ErrElementNotFound
		}
		return nil, err
	}
	return &playwrightElement{loc: loc}, nil
}

func (p *playwrightPage) Exists(selector string) (bool, error) {
	n, err := p.page.Locator(selector).Count()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type playwrightElement struct {
	loc playwright.Locator
}

func (e *playwrightElement) Fill(value string) error { return e.loc.Fill(value) }

func (e *playwrightElement) Click() error { return e.loc.Click() }

func (e *playwrightElement) Press(key string) error { return e.loc.Press(key) }

func waitUntilState(w WaitUntil) *playwright.WaitUntilState {
	switch w {
	case WaitDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	case WaitLoad:
		return playwright.WaitUntilStateLoad
	default:
		return playwright.WaitUntilStateNetworkidle
	}
}

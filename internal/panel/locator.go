package panel

import (
	"errors"
	"fmt"
	"time"

	"github.com/azizemirhan/hubcenter/internal/browser"
)

// ElementLocator finds one form control on the current page.
//
// The panel has no stable API, so every locator below is tied to its current
// markup and will need updating when that markup changes.
type ElementLocator interface {
	Locate(page browser.Page) (browser.Element, error)
	String() string
}

// SelectorLocator waits for a CSS/playwright selector.
type SelectorLocator struct {
	Selector string
	Timeout  time.Duration
}

func (l SelectorLocator) Locate(page browser.Page) (browser.Element, error) {
	return page.Locate(l.Selector, l.Timeout)
}

func (l SelectorLocator) String() string { return l.Selector }

func selectors(timeout time.Duration, sels ...string) []ElementLocator {
	out := make([]ElementLocator, 0, len(sels))
	for _, s := range sels {
		out = append(out, SelectorLocator{Selector: s, Timeout: timeout})
	}
	return out
}

// Locators groups the candidate lists for each login control.
type Locators struct {
	Email    []ElementLocator
	Password []ElementLocator
	Submit   []ElementLocator
}

// DefaultLocators returns the candidates that match the panel's login form.
func DefaultLocators() Locators {
	return Locators{
		Email: selectors(3*time.Second,
			`input[type="email"]`,
			`input[name="email"]`,
			`input[placeholder*="email" i]`,
			`input[autocomplete="email"]`,
			`#email`,
			`input[id*="email" i]`,
		),
		Password: selectors(3*time.Second,
			`input[type="password"]`,
			`input[name="password"]`,
			`input[placeholder*="password" i]`,
			`input[placeholder*="şifre" i]`,
			`#password`,
			`input[id*="password" i]`,
		),
		Submit: selectors(2*time.Second,
			`button[type="submit"]`,
			`input[type="submit"]`,
			`button:has-text("Log In")`,
			`button:has-text("Login")`,
			`button:has-text("Giriş")`,
			`button:has-text("Sign In")`,
			`[class*="submit"]`,
			`[class*="login-button"]`,
		),
	}
}

var errNoLocatorMatched = errors.New("no locator matched")

// probe evaluates locators in order and returns the first element found.
func probe(page browser.Page, locators []ElementLocator) (browser.Element, ElementLocator, error) {
	var lastErr error
	for _, loc := range locators {
		el, err := loc.Locate(page)
		if err == nil && el != nil {
			return el, loc, nil
		}
		if err != nil && !errors.Is(err, browser.ErrElementNotFound) {
			lastErr = fmt.Errorf("locate %s: %w", loc, err)
		}
	}
	if lastErr != nil {
		return nil, nil, errors.Join(errNoLocatorMatched, lastErr)
	}
	return nil, nil, errNoLocatorMatched
}

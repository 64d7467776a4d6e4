// Package acquisition loads customer sites through the shared browser page.
package acquisition

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/azizemirhan/hubcenter/internal/browser"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/netutil"
)

// Page is the rendered content of one URL. A zero Page means nothing usable was loaded.
type Page struct {
	URL    string
	Status int
	Title  string
	HTML   string
	Text   string
	// Failure describes why nothing was loaded, e.g. "HTTP 404".
	Failure string
}

// Empty reports whether no content was loaded.
func (p Page) Empty() bool {
	return p.HTML == "" && p.Text == ""
}

// Timings controls navigation timeouts and settle delays.
type Timings struct {
	Navigation     time.Duration
	SubPage        time.Duration
	ForbiddenGrace time.Duration
	ChallengeWait  time.Duration
	Settle         time.Duration
	SubPageSettle  time.Duration
}

// DefaultTimings mirrors what real sites behind bot protection need.
func DefaultTimings() Timings {
	return Timings{
		Navigation:     20 * time.Second,
		SubPage:        10 * time.Second,
		ForbiddenGrace: 3 * time.Second,
		ChallengeWait:  5 * time.Second,
		Settle:         2 * time.Second,
		SubPageSettle:  time.Second,
	}
}

var challengeMarkers = []string{"robot", "challenge"}

// Fetcher loads pages through a browser.Page. It never returns an error for
// missing content; callers inspect the returned Page.
type Fetcher struct {
	page         browser.Page
	contactPaths []string
	aboutPaths   []string
	timings      Timings
	logger       logging.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimings overrides DefaultTimings.
func WithTimings(t Timings) Option {
	return func(f *Fetcher) { f.timings = t }
}

// WithPaths sets the contact and about page paths probed in order.
func WithPaths(contact, about []string) Option {
	return func(f *Fetcher) {
		f.contactPaths = contact
		f.aboutPaths = about
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher returns a Fetcher bound to page.
func NewFetcher(page browser.Page, opts ...Option) *Fetcher {
	f := &Fetcher{
		page:         page,
		contactPaths: []string{"/iletisim", "/contact", "/contact-us", "/iletisim.html", "/contact.html", "/bize-ulasin", "/bize-ulasin.html"},
		aboutPaths:   []string{"/hakkimizda", "/about", "/about-us", "/hakkimizda.html", "/about.html", "/kurumsal", "/kurumsal.html"},
		timings:      DefaultTimings(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrDiscard(f.logger)
	return f
}

// Variants lists the URLs tried for a domain, in order.
func Variants(domain string) []string {
	variants := []string{"https://" + domain}
	if !strings.HasPrefix(domain, "www.") {
		variants = append(variants, "https://www."+domain)
	}
	return append(variants, "http://"+domain)
}

// Fetch loads the home page of domain, trying each variant until one answers below 400.
func (f *Fetcher) Fetch(ctx context.Context, domain string) Page {
	log := f.logger.WithField("domain", domain)
	failure := "no response"

	for _, target := range Variants(domain) {
		if ctx.Err() != nil {
			return Page{Failure: ctx.Err().Error()}
		}
		status, err := f.page.Goto(ctx, target, browser.GotoOptions{WaitUntil: browser.WaitNetworkIdle, Timeout: f.timings.Navigation})
		if err != nil {
			log.WithError(err).WithField("url", target).Debug("navigation failed")
			failure = err.Error()
			continue
		}
		switch {
		case status > 0 && status < http.StatusBadRequest:
		case status == http.StatusForbidden:
			if !f.passedForbidden(ctx) {
				failure = fmt.Sprintf("HTTP %d", status)
				continue
			}
			status = http.StatusOK
		default:
			failure = fmt.Sprintf("HTTP %d", status)
			continue
		}

		if err := browser.Wait(ctx, f.timings.Settle); err != nil {
			return Page{Failure: err.Error()}
		}
		page := f.read(ctx, target, status)
		if page.Empty() {
			failure = "empty page"
			continue
		}
		return page
	}

	log.WithField("reason", failure).Info("site unreachable")
	return Page{Failure: failure}
}

// passedForbidden gives a 403 a grace period in case a challenge page resolves on its own.
func (f *Fetcher) passedForbidden(ctx context.Context) bool {
	if err := browser.Wait(ctx, f.timings.ForbiddenGrace); err != nil {
		return false
	}
	current := strings.ToLower(f.page.URL())
	if strings.Contains(current, "challenge") || strings.Contains(current, "captcha") {
		return false
	}
	text, err := f.page.BodyText()
	return err == nil && len(text) > 100
}

func (f *Fetcher) read(ctx context.Context, target string, status int) Page {
	text, _ := f.page.BodyText()
	if looksLikeChallenge(text) {
		f.logger.WithField("url", target).Debug("bot challenge detected, waiting")
		if err := browser.Wait(ctx, f.timings.ChallengeWait); err == nil {
			text, _ = f.page.BodyText()
		}
	}
	html, _ := f.page.Content()
	title, _ := f.page.Title()
	final := f.page.URL()
	if final == "" {
		final = target
	}
	return Page{URL: final, Status: status, Title: title, HTML: html, Text: text}
}

func looksLikeChallenge(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// FindContactPage probes the contact paths under baseURL and returns the first that loads.
func (f *Fetcher) FindContactPage(ctx context.Context, baseURL string) Page {
	return f.probe(ctx, baseURL, f.contactPaths)
}

// FindAboutPage probes the about paths under baseURL and returns the first that loads.
func (f *Fetcher) FindAboutPage(ctx context.Context, baseURL string) Page {
	return f.probe(ctx, baseURL, f.aboutPaths)
}

func (f *Fetcher) probe(ctx context.Context, baseURL string, paths []string) Page {
	for _, path := range paths {
		if ctx.Err() != nil {
			return Page{}
		}
		target := netutil.Resolve(baseURL, path)
		status, err := f.page.Goto(ctx, target, browser.GotoOptions{WaitUntil: browser.WaitDOMContentLoaded, Timeout: f.timings.SubPage})
		if err != nil || status <= 0 || status >= http.StatusBadRequest {
			continue
		}
		if err := browser.Wait(ctx, f.timings.SubPageSettle); err != nil {
			return Page{}
		}
		text, _ := f.page.BodyText()
		html, _ := f.page.Content()
		title, _ := f.page.Title()
		return Page{URL: target, Status: status, Title: title, HTML: html, Text: text}
	}
	return Page{}
}

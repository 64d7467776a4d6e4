// Package browsertest provides an in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"sync"
	"time"

	"github.com/azizemirhan/hubcenter/internal/browser"
)

// Response is the canned result of navigating to one URL.
type Response struct {
	Status   int
	Err      error
	FinalURL string
	Title    string
	HTML     string
	Text     string
	// Texts, when set, is returned by successive BodyText calls; the last entry repeats.
	Texts []string
}

// Page is a scripted browser.Page. Unknown URLs fail with Status 404.
type Page struct {
	mu        sync.Mutex
	Responses map[string]Response
	Elements  map[string]*Element
	Present   map[string]bool
	Visited   []string

	current   Response
	url       string
	textReads int
}

// NewPage returns an empty scripted page.
func NewPage() *Page {
	return &Page{
		Responses: map[string]Response{},
		Elements:  map[string]*Element{},
		Present:   map[string]bool{},
	}
}

// Set registers the response for url.
func (p *Page) Set(url string, resp Response) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Responses[url] = resp
	return p
}

// AddElement registers an interactive element for selector.
func (p *Page) AddElement(selector string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := &Element{page: p}
	p.Elements[selector] = el
	return el
}

// Navigate switches the page to url without recording a visit, as a redirect would.
func (p *Page) Navigate(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.load(url)
}

func (p *Page) load(url string) int {
	resp, ok := p.Responses[url]
	if !ok {
		resp = Response{Status: 404}
	}
	p.current = resp
	p.textReads = 0
	p.url = url
	if resp.FinalURL != "" {
		p.url = resp.FinalURL
	}
	return resp.Status
}

func (p *Page) Goto(ctx context.Context, url string, _ browser.GotoOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visited = append(p.Visited, url)
	if resp, ok := p.Responses[url]; ok && resp.Err != nil {
		return 0, resp.Err
	}
	return p.load(url), nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Title() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Title, nil
}

func (p *Page) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.HTML, nil
}

func (p *Page) BodyText() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.current.Texts); n > 0 {
		idx := p.textReads
		if idx >= n {
			idx = n - 1
		}
		p.textReads++
		return p.current.Texts[idx], nil
	}
	return p.current.Text, nil
}

func (p *Page) Locate(selector string, _ time.Duration) (browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.Elements[selector]
	if !ok {
		return nil, browser.ErrElementNotFound
	}
	return el, nil
}

func (p *Page) Exists(selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Present[selector] {
		return true, nil
	}
	_, ok := p.Elements[selector]
	return ok, nil
}

// WasVisited reports whether url was navigated to.
func (p *Page) WasVisited(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.Visited {
		if v == url {
			return true
		}
	}
	return false
}

// Element records interactions and can redirect the page when activated.
type Element struct {
	page    *Page
	Filled  string
	Clicks  int
	Presses []string
	// OnActivate, when set, is the URL the page moves to on Click or Press("Enter").
	OnActivate string
}

func (e *Element) Fill(value string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.Filled = value
	return nil
}

func (e *Element) Click() error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.Clicks++
	if e.OnActivate != "" {
		e.page.load(e.OnActivate)
	}
	return nil
}

func (e *Element) Press(key string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.Presses = append(e.Presses, key)
	if key == "Enter" && e.OnActivate != "" {
		e.page.load(e.OnActivate)
	}
	return nil
}

// Session wraps a Page as a browser.Session and counts Close calls.
type Session struct {
	P      *Page
	mu     sync.Mutex
	closed int
}

func (s *Session) Page() browser.Page { return s.P }

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Closed returns how many times Close was called.
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

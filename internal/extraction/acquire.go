package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/azizemirhan/hubcenter/internal/acquisition"
	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/archive"
	"github.com/azizemirhan/hubcenter/internal/entity"
)

// Acquirer produces the Content a strategy extracts from.
type Acquirer interface {
	Acquire(ctx context.Context, domain string) (Content, error)
}

// PageFetcher is the browser-backed page loader.
type PageFetcher interface {
	Fetch(ctx context.Context, domain string) acquisition.Page
	FindContactPage(ctx context.Context, baseURL string) acquisition.Page
	FindAboutPage(ctx context.Context, baseURL string) acquisition.Page
}

// SnapshotSource finds an archived copy of a domain.
type SnapshotSource interface {
	Latest(ctx context.Context, domain string) (archive.Snapshot, error)
}

// DirectAcquirer loads the live site and its contact and about pages.
type DirectAcquirer struct {
	pages  PageFetcher
	accept func(Content) bool
}

// Direct returns an acquirer over pages.
func Direct(pages PageFetcher) *DirectAcquirer {
	return &DirectAcquirer{pages: pages}
}

// Requiring returns a copy that rejects home pages for which accept is false.
func (d *DirectAcquirer) Requiring(accept func(Content) bool) *DirectAcquirer {
	return &DirectAcquirer{pages: d.pages, accept: accept}
}

func (d *DirectAcquirer) Acquire(ctx context.Context, domain string) (Content, error) {
	home := d.pages.Fetch(ctx, domain)
	if home.Empty() {
		reason := home.Failure
		if reason == "" {
			reason = "no response"
		}
		return Content{}, &apperr.FetchError{Domain: domain, Err: fmt.Errorf("%s: %w", reason, apperr.ErrNoContent)}
	}
	content := Content{
		Domain: domain,
		URL:    home.URL,
		Title:  home.Title,
		HTML:   home.HTML,
		Text:   home.Text,
		Source: entity.SourceDirect,
	}
	if d.accept != nil && !d.accept(content) {
		return Content{}, &apperr.FetchError{Domain: domain, Err: fmt.Errorf("direct content too thin: %w", apperr.ErrNoContent)}
	}

	if contact := d.pages.FindContactPage(ctx, content.URL); !contact.Empty() {
		content.ContactURL = contact.URL
		content.ContactHTML = contact.HTML
		content.ContactText = contact.Text
	}
	if about := d.pages.FindAboutPage(ctx, content.URL); !about.Empty() {
		content.AboutURL = about.URL
		content.AboutText = about.Text
	}
	return content, nil
}

// Substantial accepts live content longer than 1000 characters that does not
// open with an error status.
func Substantial(c Content) bool {
	body := c.HTML
	if body == "" {
		body = c.Text
	}
	head := body
	if len(head) > 100 {
		head = head[:100]
	}
	return len(body) > 1000 && !strings.Contains(head, "403")
}

// ArchiveAcquirer reads the closest archived snapshot of a domain.
type ArchiveAcquirer struct {
	source SnapshotSource
}

// Archived returns an acquirer over source.
func Archived(source SnapshotSource) *ArchiveAcquirer {
	return &ArchiveAcquirer{source: source}
}

func (a *ArchiveAcquirer) Acquire(ctx context.Context, domain string) (Content, error) {
	snap, err := a.source.Latest(ctx, domain)
	if err != nil {
		return Content{}, err
	}
	title, text := documentText(snap.HTML)
	return Content{
		Domain: domain,
		URL:    snap.OriginalURL,
		Title:  title,
		HTML:   snap.HTML,
		Text:   text,
		Source: entity.SourceArchived,
	}, nil
}

// ChainAcquirer tries each acquirer in order and returns the first success.
type ChainAcquirer []Acquirer

func (c ChainAcquirer) Acquire(ctx context.Context, domain string) (Content, error) {
	var errs []error
	for _, acq := range c {
		if err := ctx.Err(); err != nil {
			return Content{}, err
		}
		content, err := acq.Acquire(ctx, domain)
		if err == nil {
			return content, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Content{}, &apperr.FetchError{Domain: domain, Err: apperr.ErrNoContent}
	}
	return Content{}, errors.Join(errs...)
}

// Package extraction turns acquired site content into normalized contact records.
package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/azizemirhan/hubcenter/internal/entity"
)

// Content is everything acquired for one domain.
type Content struct {
	Domain      string
	URL         string
	Title       string
	HTML        string
	Text        string
	ContactURL  string
	ContactHTML string
	ContactText string
	AboutURL    string
	AboutText   string
	Source      string
}

// Empty reports whether the home page carried nothing to extract from.
func (c Content) Empty() bool {
	return strings.TrimSpace(c.HTML) == "" && strings.TrimSpace(c.Text) == ""
}

// Fields is a partial extraction produced by one stage.
type Fields struct {
	Phones      []string
	Emails      []string
	Address     string
	CompanyName string
	Description string
	Social      entity.SocialLinks
}

// Missing names the fields still empty, using the completion JSON keys.
func (f Fields) Missing() []string {
	var missing []string
	if len(f.Phones) == 0 {
		missing = append(missing, "phones")
	}
	if len(f.Emails) == 0 {
		missing = append(missing, "emails")
	}
	if f.Address == "" {
		missing = append(missing, "address")
	}
	if f.CompanyName == "" {
		missing = append(missing, "company_name")
	}
	if f.Description == "" {
		missing = append(missing, "description")
	}
	if f.Social.Facebook == "" {
		missing = append(missing, "facebook")
	}
	if f.Social.Instagram == "" {
		missing = append(missing, "instagram")
	}
	if f.Social.Twitter == "" {
		missing = append(missing, "twitter")
	}
	if f.Social.LinkedIn == "" {
		missing = append(missing, "linkedin")
	}
	return missing
}

// Merge folds next into base: the first non-empty scalar wins and lists are
// unioned in order without duplicates.
func Merge(base, next Fields) Fields {
	out := base
	out.Phones = union(base.Phones, next.Phones)
	out.Emails = union(base.Emails, next.Emails)
	out.Address = firstNonEmpty(base.Address, next.Address)
	out.CompanyName = firstNonEmpty(base.CompanyName, next.CompanyName)
	out.Description = firstNonEmpty(base.Description, next.Description)
	out.Social = entity.SocialLinks{
		Facebook:  firstNonEmpty(base.Social.Facebook, next.Social.Facebook),
		Instagram: firstNonEmpty(base.Social.Instagram, next.Social.Instagram),
		Twitter:   firstNonEmpty(base.Social.Twitter, next.Social.Twitter),
		LinkedIn:  firstNonEmpty(base.Social.LinkedIn, next.Social.LinkedIn),
		YouTube:   firstNonEmpty(base.Social.YouTube, next.Social.YouTube),
	}
	return out
}

func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var blockSelector = "p, div, br, li, tr, td, h1, h2, h3, h4, h5, h6, section, article, header, footer, address"

// documentText renders the visible text of an HTML document, one block per line.
func documentText(html string) (title, text string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template").Remove()
	doc.Find(blockSelector).AppendHtml("\n")
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	return title, collapseLines(body.Text())
}

// metaDescription returns the content of the description meta tag.
func metaDescription(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find(`meta[name="description"], meta[property="og:description"]`).First().AttrOr("content", ""))
}

func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

package extraction

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	minDescriptionLength = 50
	maxDescriptionLength = 500
)

// MetadataExtractor derives the company name from the page title and the
// description from the meta tag or the about page.
type MetadataExtractor struct{}

func (MetadataExtractor) Name() string { return "metadata" }

func (MetadataExtractor) Extract(_ context.Context, content Content, _ Fields) (Fields, error) {
	title := content.Title
	if title == "" && content.HTML != "" {
		title, _ = documentText(content.HTML)
	}
	description := metaDescription(content.HTML)
	if utf8.RuneCountInString(description) < minDescriptionLength {
		if about := aboutParagraph(content.AboutText); about != "" {
			description = about
		}
	}
	return Fields{CompanyName: CompanyFromTitle(title), Description: description}, nil
}

// CompanyFromTitle keeps the part of a page title before the first "|", "-" or "–".
func CompanyFromTitle(title string) string {
	name := strings.TrimSpace(title)
	for _, sep := range []string{"|", "-", "–"} {
		name = strings.TrimSpace(strings.SplitN(name, sep, 2)[0])
	}
	return name
}

func aboutParagraph(text string) string {
	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if n > minDescriptionLength && n < maxDescriptionLength {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

package extraction

import (
	"context"
	"regexp"
	"strings"
)

var (
	emailFinder  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	mailtoFinder = regexp.MustCompile(`(?i)mailto:([^"'?>\s]+)`)
	phoneFinders = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+90[\s.-]?|0)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{2}[\s.-]?\d{2}`),
		regexp.MustCompile(`\(\d{3}\)\s?\d{3}[\s.-]?\d{4}`),
	}
	addressFinders = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Adres|Address)[:\s]*([^\n]{20,150})`),
		regexp.MustCompile(`(?i)(?:Merkez|Ofis|Şube)[:\s]*([^\n]{20,150})`),
		regexp.MustCompile(`(?i)(\d+\.?\s*(?:Sokak|Cadde|Mah\.|Mahallesi)[^\n]{10,100})`),
	}
	socialFinders = map[string]*regexp.Regexp{
		"facebook":  regexp.MustCompile(`(?i)href=["']?(https?://(?:www\.)?facebook\.com/[^"'\s>]+)`),
		"instagram": regexp.MustCompile(`(?i)href=["']?(https?://(?:www\.)?instagram\.com/[^"'\s>]+)`),
		"twitter":   regexp.MustCompile(`(?i)href=["']?(https?://(?:www\.)?(?:twitter|x)\.com/[^"'\s>]+)`),
		"linkedin":  regexp.MustCompile(`(?i)href=["']?(https?://(?:[a-z]{2,3}\.)?linkedin\.com/[^"'\s>]+)`),
		"youtube":   regexp.MustCompile(`(?i)href=["']?(https?://(?:www\.)?youtube\.com/[^"'\s>]+)`),
	}
)

// RegexExtractor pulls phones, emails, an address and social links with patterns.
type RegexExtractor struct{}

func (RegexExtractor) Name() string { return "regex" }

// Extract scans the home and contact page text. Social links come from anchors in the HTML.
func (RegexExtractor) Extract(_ context.Context, content Content, _ Fields) (Fields, error) {
	text := joinNonEmpty("\n", content.Text, content.ContactText)
	html := joinNonEmpty("\n", content.HTML, content.ContactHTML)

	fields := Fields{
		Phones:  findPhones(text),
		Emails:  findEmails(text, html),
		Address: findAddress(content.ContactText),
	}
	if fields.Address == "" {
		fields.Address = findAddress(content.Text)
	}
	fields.Social.Facebook = findSocial("facebook", html)
	fields.Social.Instagram = findSocial("instagram", html)
	fields.Social.Twitter = findSocial("twitter", html)
	fields.Social.LinkedIn = findSocial("linkedin", html)
	fields.Social.YouTube = findSocial("youtube", html)
	return fields, nil
}

func findPhones(text string) []string {
	var phones []string
	for _, re := range phoneFinders {
		for _, match := range re.FindAllString(text, -1) {
			if cleaned := cleanPhone(match); len(cleaned) >= minPhoneLength {
				phones = append(phones, cleaned)
			}
		}
	}
	return dropSuffixes(phones)
}

// dropSuffixes removes numbers that are a tail of a longer number in the list,
// as when one pattern matched without the trunk prefix another one kept.
func dropSuffixes(phones []string) []string {
	out := make([]string, 0, len(phones))
	for i, p := range phones {
		shadowed := false
		for j, other := range phones {
			if i != j && len(other) > len(p) && strings.HasSuffix(other, p) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, p)
		}
	}
	return union(out, nil)
}

func findEmails(text, html string) []string {
	found := emailFinder.FindAllString(strings.ToLower(text), -1)
	for _, m := range mailtoFinder.FindAllStringSubmatch(html, -1) {
		found = append(found, strings.ToLower(m[1]))
	}
	return union(found, nil)
}

func findAddress(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range addressFinders {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func findSocial(platform, html string) string {
	if m := socialFinders[platform].FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

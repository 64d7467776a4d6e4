package extraction

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/netutil"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "TR"
	minPhoneLength     = 10
	maxAddressLength   = 300
)

// Placeholder and vendor addresses that never belong to the site owner.
var emailDenylist = []string{"example.com", "domain.com", "email.com", "yoursite", "sentry", "wordpress", "example."}

var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".css", ".js"}

var allowedSocialDomains = map[string]string{
	"facebook.com":  "facebook",
	"fb.com":        "facebook",
	"instagram.com": "instagram",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"linkedin.com":  "linkedin",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
}

// Normalizer applies the phone, email and social link rules every strategy shares.
type Normalizer struct {
	Region string
}

// NewNormalizer returns a normalizer parsing national numbers in region.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &Normalizer{Region: region}
}

// Apply normalizes every field of f for the site at domain.
func (n *Normalizer) Apply(f Fields, domain string) Fields {
	return Fields{
		Phones:      n.Phones(f.Phones),
		Emails:      n.Emails(f.Emails, domain),
		Address:     cleanAddress(f.Address),
		CompanyName: strings.Join(strings.Fields(f.CompanyName), " "),
		Description: strings.Join(strings.Fields(f.Description), " "),
		Social:      n.Social(f.Social),
	}
}

// Phones keeps digits and a leading "+", drops numbers shorter than ten
// characters or impossible for the region, and dedupes on the E.164 form.
func (n *Normalizer) Phones(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		cleaned := cleanPhone(candidate)
		if len(cleaned) < minPhoneLength {
			continue
		}
		number, err := phonenumbers.Parse(cleaned, n.Region)
		if err != nil || !phonenumbers.IsPossibleNumber(number) {
			continue
		}
		key := phonenumbers.Format(number, phonenumbers.E164)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cleaned)
		if len(out) == entity.MaxListEntries {
			break
		}
	}
	return out
}

func cleanPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var sb strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '+' && i == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Emails lowercases, validates and dedupes addresses. Denylisted patterns are
// dropped unless the address belongs to the site's own domain.
func (n *Normalizer) Emails(raw []string, siteDomain string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		email, ok := cleanEmail(candidate)
		if !ok {
			continue
		}
		domain := email[strings.LastIndex(email, "@")+1:]
		if isDenylisted(email) && !netutil.SameSite(domain, siteDomain) {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
		if len(out) == entity.MaxListEntries {
			break
		}
	}
	return out
}

func cleanEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	email = strings.TrimPrefix(email, "mailto:")
	if i := strings.IndexAny(email, "?#"); i >= 0 {
		email = email[:i]
	}
	email = strings.Trim(email, ".,;:")
	if email == "" || !emailPattern.MatchString(email) {
		return "", false
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(email, suffix) {
			return "", false
		}
	}
	parts := strings.SplitN(email, "@", 2)
	if !isDomainValid(parts[1]) {
		return "", false
	}
	if _, err := idnaProfile.ToASCII(parts[1]); err != nil {
		return "", false
	}
	return email, true
}

func isDenylisted(email string) bool {
	for _, pattern := range emailDenylist {
		if strings.Contains(email, pattern) {
			return true
		}
	}
	return false
}

// Social keeps only links whose host belongs to the platform they are filed under.
func (n *Normalizer) Social(links entity.SocialLinks) entity.SocialLinks {
	return entity.SocialLinks{
		Facebook:  cleanSocialLink("facebook", links.Facebook),
		Instagram: cleanSocialLink("instagram", links.Instagram),
		Twitter:   cleanSocialLink("twitter", links.Twitter),
		LinkedIn:  cleanSocialLink("linkedin", links.LinkedIn),
		YouTube:   cleanSocialLink("youtube", links.YouTube),
	}
}

func cleanSocialLink(platform, raw string) string {
	raw = strings.TrimSpace(raw)
	if platform == "instagram" && strings.HasPrefix(raw, "@") && !strings.ContainsAny(raw, "/ ") {
		raw = "instagram.com/" + strings.TrimPrefix(raw, "@")
	}
	u, err := sanitizeURL(raw)
	if err != nil {
		return ""
	}
	hostPlatform, ok := hostMatchesAllowed(u.Hostname())
	if !ok || hostPlatform != platform {
		return ""
	}
	if strings.Trim(u.Path, "/") == "" {
		return ""
	}
	stripTracking(u)
	return u.String()
}

func hostMatchesAllowed(host string) (string, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, platform := range allowedSocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform, true
		}
	}
	return "", false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	u.Fragment = ""
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

func cleanAddress(raw string) string {
	addr := strings.Join(strings.Fields(raw), " ")
	addr = strings.Trim(addr, " ,;:-")
	if r := []rune(addr); len(r) > maxAddressLength {
		addr = strings.TrimSpace(string(r[:maxAddressLength]))
	}
	return addr
}

// Package scoring rates how complete an extracted contact record is.
package scoring

import (
	"strings"
	"unicode"

	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/netutil"
)

const (
	categoryContact  = "contact_completeness"
	categoryWebsite  = "website_quality"
	categorySocial   = "social_presence"
	categoryBusiness = "business_profile"
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"godaddysites.com",
	"notion.site",
	"googlepages.com",
}

// LeadFeatures captures the signals of one extraction used for scoring.
type LeadFeatures struct {
	Emails         []string
	Phones         []string
	Social         entity.SocialLinks
	URL            string
	HasContactPage bool
	HasAboutPage   bool
	Address        string
	CompanyName    string
	Description    string
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int
	Breakdown map[string]int
}

// FeaturesOf reads the scoring signals out of an extraction result.
func FeaturesOf(r entity.ContactExtractionResult) LeadFeatures {
	url := r.URL
	if url == "" && r.Domain != "" {
		url = "https://" + r.Domain
	}
	return LeadFeatures{
		Emails:         r.Emails,
		Phones:         r.Phones,
		Social:         r.Social,
		URL:            url,
		HasContactPage: r.ContactPage != "",
		HasAboutPage:   r.AboutPage != "",
		Address:        r.Address,
		CompanyName:    r.CompanyName,
		Description:    r.Description,
	}
}

// Score is the extraction scorer: the total of ComputeScore over the result.
func Score(r entity.ContactExtractionResult) int {
	return ComputeScore(FeaturesOf(r)).Total
}

// ComputeScore evaluates the provided features and returns the score breakdown.
func ComputeScore(input LeadFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryContact:  scoreContactCompleteness(input),
		categoryWebsite:  scoreWebsiteQuality(input),
		categorySocial:   scoreSocialPresence(input.Social),
		categoryBusiness: scoreBusinessProfile(input),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}
	return ScoreResult{Total: total, Breakdown: breakdown}
}

func scoreContactCompleteness(input LeadFeatures) int {
	score := 0
	if hasValue(input.Emails) {
		score += 10
	}
	if hasValue(input.Phones) {
		score += 10
	}
	if len(input.Phones) > 1 || len(input.Emails) > 1 {
		score += 5
	}
	if len(input.Social.Map()) > 0 {
		score += 5
	}
	return min(score, 30)
}

func scoreWebsiteQuality(input LeadFeatures) int {
	score := 0
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(input.URL)), "https://") {
		score += 10
	}
	if input.HasContactPage {
		score += 10
	}
	if input.HasAboutPage {
		score += 5
	}
	if len([]rune(strings.TrimSpace(input.Description))) >= 50 {
		score += 5
	}
	return min(score, 30)
}

func scoreSocialPresence(social entity.SocialLinks) int {
	score := 0
	if social.LinkedIn != "" {
		score += 5
	}
	if social.Instagram != "" {
		score += 5
	}
	if social.Facebook != "" {
		score += 5
	}
	if social.YouTube != "" || social.Twitter != "" {
		score += 5
	}
	return min(score, 20)
}

func scoreBusinessProfile(input LeadFeatures) int {
	score := 0
	if hasCompleteAddress(input.Address) {
		score += 10
	}
	if highQualityDomain(input.URL) && strings.TrimSpace(input.CompanyName) != "" {
		score += 10
	}
	return min(score, 20)
}

func hasValue(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func hasCompleteAddress(raw string) bool {
	addr := strings.TrimSpace(raw)
	if len([]rune(addr)) < 10 {
		return false
	}
	var hasLetter, hasDigit bool
	separators := 0
	for _, r := range addr {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case r == ',' || r == '/':
			separators++
		}
	}
	return hasLetter && hasDigit && separators >= 1
}

func highQualityDomain(raw string) bool {
	domain := netutil.NormalizeDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return true
}

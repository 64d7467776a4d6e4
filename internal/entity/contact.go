package entity

// Content sources recorded on extraction results.
const (
	SourceDirect   = "direct"
	SourceArchived = "archived"
)

// MaxListEntries caps phone and email lists.
const MaxListEntries = 5

// SocialLinks maps each supported platform to a profile URL.
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

// IsZero reports whether no platform is set.
func (s SocialLinks) IsZero() bool {
	return s == SocialLinks{}
}

// Map returns the non-empty links keyed by platform name.
func (s SocialLinks) Map() map[string]string {
	out := make(map[string]string, 5)
	for key, value := range map[string]string{
		"facebook":  s.Facebook,
		"instagram": s.Instagram,
		"twitter":   s.Twitter,
		"linkedin":  s.LinkedIn,
		"youtube":   s.YouTube,
	} {
		if value != "" {
			out[key] = value
		}
	}
	return out
}

// ContactExtractionResult is the normalized contact record produced for one domain.
type ContactExtractionResult struct {
	Domain      string      `json:"domain"`
	URL         string      `json:"url,omitempty"`
	Phones      []string    `json:"phones"`
	Emails      []string    `json:"emails"`
	Address     string      `json:"address"`
	Social      SocialLinks `json:"social"`
	CompanyName string      `json:"company_name"`
	Description string      `json:"description"`
	ContactPage string      `json:"contact_page,omitempty"`
	AboutPage   string      `json:"about_page,omitempty"`
	Analyzed    bool        `json:"analyzed"`
	Source      string      `json:"source,omitempty"`
	Strategy    string      `json:"strategy,omitempty"`
	Score       int         `json:"score"`
	Error       string      `json:"error,omitempty"`
}

// FailedExtraction builds an unanalyzed result. Content fields stay empty.
func FailedExtraction(domain, strategy string, err error) ContactExtractionResult {
	msg := "no usable content"
	if err != nil {
		msg = err.Error()
	}
	return ContactExtractionResult{
		Domain:   domain,
		Phones:   []string{},
		Emails:   []string{},
		Strategy: strategy,
		Error:    msg,
	}
}

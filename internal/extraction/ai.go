package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/kaptinlin/jsonrepair"

	"github.com/azizemirhan/hubcenter/internal/ai"
	"github.com/azizemirhan/hubcenter/internal/entity"
)

// Character budgets for the page excerpt sent to each backend.
const (
	CloudBudget   = 40000
	LocalBudget   = 15000
	ArchiveBudget = 30000
)

var allFields = []string{"phones", "emails", "address", "company_name", "description", "facebook", "instagram", "twitter", "linkedin"}

var fieldHints = map[string]string{
	"phones":       "phones: list of phone numbers (Turkish numbers as 0XXX XXX XX XX)",
	"emails":       "emails: list of email addresses",
	"address":      "address: physical address",
	"company_name": "company_name: company or brand name",
	"description":  "description: one or two sentence description of the company",
	"facebook":     "facebook: Facebook page URL",
	"instagram":    "instagram: Instagram URL or username",
	"twitter":      "twitter: Twitter/X URL",
	"linkedin":     "linkedin: LinkedIn URL",
}

// AIExtractor asks a completion backend for the contact fields as JSON.
type AIExtractor struct {
	Completer ai.Completer
	// Budget caps the page excerpt in characters.
	Budget int
	// OnlyMissing asks only for fields earlier stages left empty.
	OnlyMissing bool
	// SkipWhenContactKnown skips the call once phones and emails are both known.
	SkipWhenContactKnown bool
	// Lenient enables brace slicing and JSON repair when strict parsing fails.
	Lenient bool
}

func (a *AIExtractor) Name() string {
	if a.Completer == nil {
		return "ai"
	}
	return a.Completer.Name()
}

func (a *AIExtractor) Extract(ctx context.Context, content Content, partial Fields) (Fields, error) {
	if a.Completer == nil {
		return Fields{}, errors.New("no completion backend configured")
	}
	if a.SkipWhenContactKnown && len(partial.Phones) > 0 && len(partial.Emails) > 0 {
		return Fields{}, nil
	}
	fields := allFields
	if a.OnlyMissing {
		if fields = partial.Missing(); len(fields) == 0 {
			return Fields{}, nil
		}
	}

	prompt := buildPrompt(content, fields, a.Budget)
	reply, err := a.Completer.Complete(ctx, prompt)
	if err != nil {
		return Fields{}, err
	}
	parsed, err := parseReply(reply, a.Lenient)
	if err != nil {
		return Fields{}, err
	}
	return parsed.fields(), nil
}

func buildPrompt(content Content, fields []string, budget int) string {
	var sb strings.Builder
	sb.WriteString("Extract the contact details of the company from the website content below.\n")
	sb.WriteString("Return ONLY a JSON object with these keys. Use an empty string or an empty list when a value is not present.\n\n")
	for _, f := range fields {
		sb.WriteString("- ")
		sb.WriteString(fieldHints[f])
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nWebsite (%s) content:\n", content.Domain)
	sb.WriteString(excerpt(content, budget))
	sb.WriteString("\n\nReturn ONLY JSON:")
	return sb.String()
}

// excerpt prefers a Markdown rendering of the HTML, which keeps links, and
// falls back to the plain text. Contact page text is appended.
func excerpt(content Content, budget int) string {
	body := content.Text
	if content.HTML != "" {
		if md, err := htmltomarkdown.ConvertString(content.HTML); err == nil && strings.TrimSpace(md) != "" {
			body = md
		}
	}
	body = joinNonEmpty("\n\n", body, content.ContactText)
	return truncateRunes(body, budget)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// reply is the JSON shape a backend answers with. Models are loose with
// types, so every field accepts a string, a list or null.
type reply struct {
	Phones      flexList   `json:"phones"`
	Emails      flexList   `json:"emails"`
	Address     flexString `json:"address"`
	CompanyName flexString `json:"company_name"`
	Description flexString `json:"description"`
	Facebook    flexString `json:"facebook"`
	Instagram   flexString `json:"instagram"`
	Twitter     flexString `json:"twitter"`
	LinkedIn    flexString `json:"linkedin"`
}

func (r reply) fields() Fields {
	return Fields{
		Phones:      []string(r.Phones),
		Emails:      []string(r.Emails),
		Address:     string(r.Address),
		CompanyName: string(r.CompanyName),
		Description: string(r.Description),
		Social: entity.SocialLinks{
			Facebook:  string(r.Facebook),
			Instagram: string(r.Instagram),
			Twitter:   string(r.Twitter),
			LinkedIn:  string(r.LinkedIn),
		},
	}
}

type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s := scalarString(v); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var single any
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if s := scalarString(single); s != "" {
		*l = flexList{s}
	}
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if str := scalarString(item); str != "" {
				parts = append(parts, str)
			}
		}
		*s = flexString(strings.Join(parts, ", "))
		return nil
	}
	*s = flexString(scalarString(v))
	return nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%.0f", val))
	default:
		return ""
	}
}

// parseReply decodes a model answer. Code fences are always stripped; in
// lenient mode the outermost braces are sliced out and repaired on failure.
func parseReply(text string, lenient bool) (reply, error) {
	text = stripFences(text)
	var out reply
	err := json.Unmarshal([]byte(text), &out)
	if err == nil || !lenient {
		if err != nil {
			return reply{}, fmt.Errorf("parse completion json: %w", err)
		}
		return out, nil
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
		if err = json.Unmarshal([]byte(text), &out); err == nil {
			return out, nil
		}
	}
	repaired, repairErr := jsonrepair.JSONRepair(text)
	if repairErr != nil {
		return reply{}, fmt.Errorf("parse completion json: %w (repair: %v)", err, repairErr)
	}
	out = reply{}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return reply{}, fmt.Errorf("parse repaired completion json: %w", err)
	}
	return out, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
	} else {
		return text
	}
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

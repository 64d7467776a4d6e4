package scoring

import (
	"testing"

	"github.com/azizemirhan/hubcenter/internal/entity"
)

func TestComputeScore_FullCoverage(t *testing.T) {
	input := LeadFeatures{
		Emails: []string{"info@acme.com.tr", "sales@acme.com.tr"},
		Phones: []string{"02125551122"},
		Social: entity.SocialLinks{
			LinkedIn:  "https://linkedin.com/company/acme",
			Instagram: "https://instagram.com/acme",
			Facebook:  "https://facebook.com/acme",
			YouTube:   "https://youtube.com/@acme",
		},
		URL:            "https://acme.com.tr",
		HasContactPage: true,
		HasAboutPage:   true,
		Address:        "Barbaros Bulvarı No: 12, Beşiktaş, İstanbul",
		CompanyName:    "Acme Ltd",
		Description:    "Acme manufactures industrial valves and fittings for the energy sector.",
	}

	score := ComputeScore(input)

	if score.Total != 100 {
		t.Fatalf("expected full score 100, got %d (%v)", score.Total, score.Breakdown)
	}
	for category, want := range map[string]int{categoryContact: 30, categoryWebsite: 30, categorySocial: 20, categoryBusiness: 20} {
		if score.Breakdown[category] != want {
			t.Fatalf("expected %s %d, got %d", category, want, score.Breakdown[category])
		}
	}
}

func TestComputeScore_MinimalSignals(t *testing.T) {
	input := LeadFeatures{
		Emails:  []string{"   "},
		URL:     "http://myshop.wordpress.com",
		Address: "Jl. Merdeka",
	}

	score := ComputeScore(input)

	if score.Total != 0 {
		t.Fatalf("expected zero score for insufficient signals, got %d", score.Total)
	}
}

func TestScoreFromResult(t *testing.T) {
	result := entity.ContactExtractionResult{
		Domain: "example.com",
		Phones: []string{"05321234567"},
		Emails: []string{"info@example.com"},
	}
	// contact 20 + https 10
	if got := Score(result); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := Score(entity.FailedExtraction("example.com", "regex", nil)); got != 10 {
		t.Fatalf("expected only the https point for an empty record, got %d", got)
	}
}

func TestHighQualityDomain(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"http://www.example.com.tr", true},
		{"mybrand.wordpress.com", false},
		{"", false},
		{"https://subdomain.googlepages.com/page", false},
	}

	for _, tc := range cases {
		if got := highQualityDomain(tc.input); got != tc.want {
			t.Fatalf("highQualityDomain(%q)=%v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestHasCompleteAddress(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"Atatürk Cad. No: 5, Kadıköy", true},
		{" 456 High Road London ", false}, // no separator
		{"Somewhere", false},
		{"Merkez Mah. 12/3 Ankara", true},
	}

	for _, tc := range cases {
		if got := hasCompleteAddress(tc.input); got != tc.want {
			t.Fatalf("hasCompleteAddress(%q)=%v, want %v", tc.input, got, tc.want)
		}
	}
}

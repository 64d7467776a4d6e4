package extraction

import (
	"reflect"
	"testing"

	"github.com/azizemirhan/hubcenter/internal/entity"
)

func TestNormalizePhones(t *testing.T) {
	n := NewNormalizer("tr")
	got := n.Phones([]string{
		"0532 123 45 67",
		"+90 532 123 45 67",
		"12345",
		"(0212) 555-11-22",
		"0216 111 22 33",
		"0216 111 22 34",
		"0216 111 22 35",
		"0216 111 22 36",
	})
	want := []string{"05321234567", "02125551122", "02161112233", "02161112234", "02161112235"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected phones:\n got %v\nwant %v", got, want)
	}
}

func TestNormalizeEmails(t *testing.T) {
	n := NewNormalizer("TR")
	got := n.Emails([]string{
		"Info@Acme.com.tr",
		"info@acme.com.tr",
		"mailto:satis@acme.com.tr?subject=Teklif",
		"user@example.com",
		"errors@sentry.io",
		"logo@2x.png",
		"broken@",
		"someone@-bad.com",
	}, "acme.com.tr")
	want := []string{"info@acme.com.tr", "satis@acme.com.tr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected emails:\n got %v\nwant %v", got, want)
	}
}

func TestNormalizeEmailsKeepsOwnDomainOnDenylist(t *testing.T) {
	n := NewNormalizer("TR")
	got := n.Emails([]string{"info@example.com", "info@mail.example.com"}, "example.com")
	if len(got) != 2 {
		t.Fatalf("expected own-domain addresses to survive the denylist, got %v", got)
	}
	if got := n.Emails([]string{"info@example.com"}, "acme.com"); len(got) != 0 {
		t.Fatalf("expected placeholder address to be dropped for another site, got %v", got)
	}
}

func TestNormalizeSocial(t *testing.T) {
	n := NewNormalizer("TR")
	got := n.Social(entity.SocialLinks{
		Facebook:  "http://facebook.com/acme?utm_campaign=x&ref=1",
		Instagram: "@acme.tr",
		Twitter:   "https://x.com/acme",
		LinkedIn:  "https://evil.com/linkedin.com/acme",
		YouTube:   "https://youtube.com/",
	})
	want := entity.SocialLinks{
		Facebook:  "https://facebook.com/acme?ref=1",
		Instagram: "https://instagram.com/acme.tr",
		Twitter:   "https://x.com/acme",
	}
	if got != want {
		t.Fatalf("unexpected social links:\n got %+v\nwant %+v", got, want)
	}
}

func TestMerge(t *testing.T) {
	base := Fields{Phones: []string{"1"}, Address: "first", Social: entity.SocialLinks{Facebook: "fb"}}
	next := Fields{Phones: []string{"1", "2"}, Emails: []string{"a@b.co"}, Address: "second", CompanyName: "Acme", Social: entity.SocialLinks{Facebook: "other", LinkedIn: "li"}}

	got := Merge(base, next)
	if !reflect.DeepEqual(got.Phones, []string{"1", "2"}) || !reflect.DeepEqual(got.Emails, []string{"a@b.co"}) {
		t.Fatalf("unexpected lists: %+v", got)
	}
	if got.Address != "first" || got.CompanyName != "Acme" {
		t.Fatalf("first non-empty scalar should win: %+v", got)
	}
	if got.Social.Facebook != "fb" || got.Social.LinkedIn != "li" {
		t.Fatalf("unexpected social merge: %+v", got.Social)
	}
}

func TestMissing(t *testing.T) {
	f := Fields{Emails: []string{"a@b.co"}, CompanyName: "Acme", Social: entity.SocialLinks{Facebook: "fb", Instagram: "ig", Twitter: "tw", LinkedIn: "li"}}
	if got := f.Missing(); !reflect.DeepEqual(got, []string{"phones", "address", "description"}) {
		t.Fatalf("unexpected missing fields: %v", got)
	}
}

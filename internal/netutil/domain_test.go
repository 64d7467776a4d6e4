package netutil

import "testing"

func TestNormalizeDomain(t *testing.T) {
	cases := map[string]string{
		"Example.com":                  "example.com",
		"https://www.example.com/path": "example.com",
		"www.example.com.tr:8080":      "example.com.tr",
		"  shop.example.com  ":         "shop.example.com",
		"bücher.de":                    "xn--bcher-kva.de",
		"localhost":                    "",
		"":                             "",
		"not a domain.com":             "",
	}
	for in, want := range cases {
		if got := NormalizeDomain(in); got != want {
			t.Fatalf("NormalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	if got := RegistrableDomain("mail.example.com.tr"); got != "example.com.tr" {
		t.Fatalf("unexpected registrable domain: %s", got)
	}
	if !SameSite("shop.example.com", "example.com") {
		t.Fatalf("expected subdomain to share site")
	}
	if SameSite("example.com", "example.org") {
		t.Fatalf("expected different sites")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("https://my.siteground.com/websites/list", "/site-tools/abc"); got != "https://my.siteground.com/site-tools/abc" {
		t.Fatalf("unexpected resolved url: %s", got)
	}
	if got := Resolve("https://a.com", "https://b.com/x"); got != "https://b.com/x" {
		t.Fatalf("expected absolute ref unchanged, got %s", got)
	}
	if Host("https://Tools.SiteGround.com/dashboard") != "tools.siteground.com" {
		t.Fatalf("unexpected host")
	}
}

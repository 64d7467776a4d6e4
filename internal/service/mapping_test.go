package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/entity"
)

func TestCustomerPayloadFromExtraction(t *testing.T) {
	site := entity.SiteInventoryRecord{Domain: "acme.com.tr", Plan: "GoGeek", HasWordPress: true}
	site = site.WithDetails(entity.SiteDetails{DiskSpace: "20 GB"})
	contact := &entity.ContactExtractionResult{
		Domain:      "acme.com.tr",
		Phones:      []string{"02125551122", "05321234567"},
		Emails:      []string{"ahmet.yilmaz@acme.com.tr", "info@acme.com.tr"},
		Address:     "Atatürk Cad. No: 5, Kadıköy",
		CompanyName: "Acme Yapı",
		Social:      entity.SocialLinks{Instagram: "https://instagram.com/acme", LinkedIn: "https://linkedin.com/company/acme"},
	}

	p := CustomerPayload(site, contact)

	if p.Website != "https://acme.com.tr" || !p.HasHostingService || !p.HasWebDesignService || p.Source != "website" {
		t.Fatalf("unexpected fixed fields: %+v", p)
	}
	if p.CompanyName != "Acme Yapı" || p.ContactPerson != "Ahmet Yilmaz" {
		t.Fatalf("unexpected names: %q %q", p.CompanyName, p.ContactPerson)
	}
	if p.Phone != "02125551122" || p.SecondaryPhone != "05321234567" {
		t.Fatalf("unexpected phones: %q %q", p.Phone, p.SecondaryPhone)
	}
	if p.Email != "ahmet.yilmaz@acme.com.tr" || p.SecondaryEmail != "info@acme.com.tr" {
		t.Fatalf("unexpected emails: %q %q", p.Email, p.SecondaryEmail)
	}
	if p.Notes != "SiteGround Hosting\nPlan: GoGeek\nDisk: 20 GB" {
		t.Fatalf("unexpected notes: %q", p.Notes)
	}
	if p.Instagram == "" || p.LinkedIn == "" || p.Facebook != "" {
		t.Fatalf("unexpected socials: %+v", p)
	}
}

func TestCustomerPayloadDefaults(t *testing.T) {
	p := CustomerPayload(entity.SiteInventoryRecord{Domain: "my-shop.net"}, nil)

	if p.CompanyName != "My-Shop Net" {
		t.Fatalf("unexpected company fallback %q", p.CompanyName)
	}
	if p.Email != "info@my-shop.net" || p.ContactPerson != "Yetkili Kişi" || p.Phone != "" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.Notes != "SiteGround Hosting\nPlan: N/A\nDisk: N/A" {
		t.Fatalf("unexpected notes: %q", p.Notes)
	}
}

func TestContactPerson(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "John Doe",
		"mehmet@example.com":   "Mehmet",
		"info@example.com":     "Yetkili Kişi",
		"Sales@example.com":    "Yetkili Kişi",
		"not-an-email":         "Yetkili Kişi",
		".@example.com":        "Yetkili Kişi",
	}
	for in, want := range cases {
		if got := contactPerson(in); got != want {
			t.Fatalf("contactPerson(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestHostingAndDomainPayloads(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	site := entity.SiteInventoryRecord{
		Domain:        "example.com",
		Plan:          "StartUp",
		CreatedDate:   "Mar 5, 2023",
		Status:        "Active",
		ManagementURL: "https://tools.siteground.com/site/abc",
	}
	site = site.WithDetails(entity.SiteDetails{
		SiteIP:              "35.214.0.1",
		DiskSpace:           "10 GB",
		ResolvedNameservers: []string{"ns1.siteground.net", "ns2.siteground.net"},
		ResolvedIPs:         []string{"35.214.0.1"},
	})

	h := HostingPayload(site, now)
	if h.Provider != "SiteGround" || h.PlanName != "StartUp" || h.ServerIP != "35.214.0.1" {
		t.Fatalf("unexpected hosting payload: %+v", h)
	}
	if h.StartDate != "2023-03-05" || h.ExpireDate != "2024-03-05" {
		t.Fatalf("unexpected dates: %s %s", h.StartDate, h.ExpireDate)
	}
	if !strings.HasPrefix(h.Notes, "Domain: example.com\n") {
		t.Fatalf("expected domain line first, got %q", h.Notes)
	}

	d := DomainPayload(site, now)
	if d.DomainName != "example.com" || d.Nameservers != "ns1.siteground.net\nns2.siteground.net" || d.RegisterDate != "2023-03-05" {
		t.Fatalf("unexpected domain payload: %+v", d)
	}
}

func TestHostingPayloadFallbacks(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	site := entity.SiteInventoryRecord{Domain: "example.com", CreatedDate: "yesterday"}
	site = site.WithDetails(entity.SiteDetails{SiteIP: "not an ip"})

	h := HostingPayload(site, now)
	if h.StartDate != "2024-06-01" || h.ExpireDate != "2025-06-01" {
		t.Fatalf("expected today fallback, got %s %s", h.StartDate, h.ExpireDate)
	}
	if h.ServerIP != "" || h.PlanName != "N/A" {
		t.Fatalf("unexpected fallbacks: %+v", h)
	}
}

type partialCRM struct {
	stubCRM
	hostingErr error
}

func (p *partialCRM) CreateOrUpdateHosting(context.Context, int64, string, dto.HostingPayload) (dto.HostingRecord, string, error) {
	return dto.HostingRecord{}, "", p.hostingErr
}

func TestReconcileHostingFailureKeepsCustomer(t *testing.T) {
	crm := &partialCRM{hostingErr: errors.New("crm create hosting: status 400")}
	r := NewReconciler(crm, nil)

	out := r.Reconcile(context.Background(), entity.SiteInventoryRecord{Domain: "example.com"}, nil)
	if !out.Success || out.CustomerID != "1" || out.HostingID != "" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(crm.domains) != 1 {
		t.Fatalf("expected domain upsert still attempted")
	}
}

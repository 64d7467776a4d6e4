package service

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
	"unicode"

	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/entity"
)

const (
	hostingProvider      = "SiteGround"
	customerSource       = "website"
	defaultContactPerson = "Yetkili Kişi"
	notAvailable         = "N/A"

	maxPhoneLen  = 20
	maxHandleLen = 100
)

var genericMailboxes = map[string]bool{
	"info":    true,
	"contact": true,
	"sales":   true,
	"support": true,
	"hello":   true,
}

var createdDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
}

// CustomerPayload maps an inventory row and its extraction into a CRM customer.
func CustomerPayload(site entity.SiteInventoryRecord, contact *entity.ContactExtractionResult) dto.CustomerPayload {
	domain := site.Domain
	p := dto.CustomerPayload{
		Website:             "https://" + domain,
		HasHostingService:   true,
		HasWebDesignService: site.HasWordPress,
		Source:              customerSource,
		Notes:               customerNotes(site),
		CompanyName:         companyFromDomain(domain),
		Email:               "info@" + domain,
	}

	if contact != nil {
		if name := strings.TrimSpace(contact.CompanyName); name != "" {
			p.CompanyName = name
		}
		if len(contact.Phones) > 0 {
			p.Phone = truncate(contact.Phones[0], maxPhoneLen)
		}
		if len(contact.Phones) > 1 {
			p.SecondaryPhone = truncate(contact.Phones[1], maxPhoneLen)
		}
		if len(contact.Emails) > 0 {
			p.Email = contact.Emails[0]
		}
		if len(contact.Emails) > 1 {
			p.SecondaryEmail = contact.Emails[1]
		}
		p.Address = contact.Address
		p.Facebook = contact.Social.Facebook
		p.Instagram = truncate(contact.Social.Instagram, maxHandleLen)
		p.LinkedIn = contact.Social.LinkedIn
		p.Twitter = truncate(contact.Social.Twitter, maxHandleLen)
	}
	p.ContactPerson = contactPerson(p.Email)
	return p
}

func customerNotes(site entity.SiteInventoryRecord) string {
	plan, disk := orNA(site.Plan), notAvailable
	if site.Details != nil && site.Details.DiskSpace != "" {
		disk = site.Details.DiskSpace
	}
	return fmt.Sprintf("SiteGround Hosting\nPlan: %s\nDisk: %s", plan, disk)
}

// HostingPayload maps an inventory row into a CRM hosting record. The notes
// carry a "Domain: <domain>" line used to find the record again.
func HostingPayload(site entity.SiteInventoryRecord, now time.Time) dto.HostingPayload {
	start := parseCreatedDate(site.CreatedDate, now)
	p := dto.HostingPayload{
		Provider:   hostingProvider,
		PlanName:   orNA(site.Plan),
		StartDate:  start.Format(time.DateOnly),
		ExpireDate: start.AddDate(1, 0, 0).Format(time.DateOnly),
		CpanelURL:  site.ManagementURL,
	}
	notes := []string{"Domain: " + site.Domain}
	if site.Status != "" {
		notes = append(notes, "Status: "+site.Status)
	}
	if site.HasWordPress {
		notes = append(notes, "WordPress: yes")
	}
	if d := site.Details; d != nil {
		p.DiskSpace = d.DiskSpace
		if addr, err := netip.ParseAddr(d.SiteIP); err == nil {
			p.ServerIP = addr.String()
		}
		if d.SSLStatus != "" {
			notes = append(notes, "SSL: "+d.SSLStatus)
		}
		if d.WordPressVersion != "" {
			notes = append(notes, "WordPress version: "+d.WordPressVersion)
		}
	}
	p.Notes = strings.Join(notes, "\n")
	return p
}

// DomainPayload maps an inventory row into a CRM domain record.
func DomainPayload(site entity.SiteInventoryRecord, now time.Time) dto.DomainPayload {
	start := parseCreatedDate(site.CreatedDate, now)
	p := dto.DomainPayload{
		DomainName:   site.Domain,
		Registrar:    hostingProvider,
		RegisterDate: start.Format(time.DateOnly),
		ExpireDate:   start.AddDate(1, 0, 0).Format(time.DateOnly),
	}
	if d := site.Details; d != nil {
		ns := d.Nameservers
		if len(ns) == 0 {
			ns = d.ResolvedNameservers
		}
		p.Nameservers = strings.Join(ns, "\n")
		if len(d.ResolvedIPs) > 0 {
			p.Notes = "A: " + strings.Join(d.ResolvedIPs, ", ")
		}
	}
	return p
}

// parseCreatedDate reads the panel's display date, falling back to now.
func parseCreatedDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range createdDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now
}

// contactPerson guesses a name from an email local part: "john.doe" becomes
// "John Doe", generic mailboxes fall back to a placeholder.
func contactPerson(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return defaultContactPerson
	}
	if strings.Contains(local, ".") {
		var parts []string
		for _, part := range strings.Split(local, ".") {
			if part != "" {
				parts = append(parts, titleCase(part))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
		return defaultContactPerson
	}
	if genericMailboxes[strings.ToLower(local)] {
		return defaultContactPerson
	}
	return titleCase(local)
}

// companyFromDomain turns "acme-yapi.com.tr" into "Acme-Yapi".
func companyFromDomain(domain string) string {
	name := strings.ReplaceAll(domain, ".com", "")
	name = strings.ReplaceAll(name, ".tr", "")
	name = strings.ReplaceAll(name, ".", " ")
	return titleCase(strings.TrimSpace(name))
}

// titleCase upper-cases the first letter of every letter run.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package panel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/netutil"
)

var rowSelectors = []string{
	"table tbody tr",
	".websites-table tr:not(:first-child)",
	`[class*="website-row"], [class*="site-row"]`,
}

// ParseInventory extracts inventory records from the rendered websites page.
// Columns are positional: domain, plan, created date, status, actions.
func ParseInventory(html, baseURL string) ([]entity.SiteInventoryRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse inventory html: %w", err)
	}

	var rows *goquery.Selection
	for _, sel := range rowSelectors {
		rows = doc.Find(sel)
		if rows.Length() > 0 {
			break
		}
	}

	records := make([]entity.SiteInventoryRecord, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			cells = row.Children()
		}
		if cells.Length() < 4 {
			return
		}

		domain := domainFromCell(cells.Eq(0))
		if domain == "" {
			return
		}
		rec := entity.SiteInventoryRecord{
			Domain:      domain,
			Plan:        cellText(cells.Eq(1)),
			CreatedDate: cellText(cells.Eq(2)),
			Status:      cellText(cells.Eq(3)),
		}
		actions := row
		if cells.Length() >= 5 {
			actions = cells.Eq(4)
		}
		rec.HasWordPress = hasWordPressAction(actions)
		if href := siteToolsHref(actions); href != "" {
			rec.ManagementURL = netutil.Resolve(baseURL, href)
		}
		records = append(records, rec)
	})
	return records, nil
}

func domainFromCell(cell *goquery.Selection) string {
	raw := cell.Find("a").First().Text()
	if strings.TrimSpace(raw) == "" {
		raw = cell.Text()
	}
	for _, line := range strings.Split(raw, "\n") {
		if domain := netutil.NormalizeDomain(line); domain != "" {
			return domain
		}
	}
	return ""
}

func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

func hasWordPressAction(actions *goquery.Selection) bool {
	if actions.Find(`[class*="wordpress"]`).Length() > 0 {
		return true
	}
	found := false
	actions.Find("button, a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToUpper(s.Text()), "WORDPRESS ADMIN") {
			found = true
		}
		return !found
	})
	return found
}

func siteToolsHref(actions *goquery.Selection) string {
	var href string
	actions.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToUpper(s.Text()), "SITE TOOLS") {
			href, _ = s.Attr("href")
		}
		return href == ""
	})
	return strings.TrimSpace(href)
}

var (
	diskPattern      = regexp.MustCompile(`Disk Space\s*[\n\r]*\s*(\d+(?:\.\d+)?\s*(?:GB|MB|KB))`)
	inodesPattern    = regexp.MustCompile(`Inodes\s*[\n\r]*\s*([\d,.]+)`)
	siteIPPattern    = regexp.MustCompile(`Site IP\s*[\n\r]*\s*(\d{1,3}(?:\.\d{1,3}){3})`)
	nameserverRegexp = regexp.MustCompile(`ns\d+\.siteground\.net`)
	wpVersionPattern = regexp.MustCompile(`(?i)WordPress(?:\s+version)?\s*[:\n\r]*\s*(\d+\.\d+(?:\.\d+)?)`)
	sslActivePattern = regexp.MustCompile(`(?i)(let'?s encrypt|ssl\s*[:\n\r]*\s*(active|enabled|installed))`)
)

// ParseDetails reads disk, inode, IP, nameserver, SSL and WordPress data from
// the management dashboard text.
func ParseDetails(text string) entity.SiteDetails {
	var d entity.SiteDetails
	if m := diskPattern.FindStringSubmatch(text); m != nil {
		d.DiskSpace = m[1]
	}
	if m := inodesPattern.FindStringSubmatch(text); m != nil {
		d.Inodes = m[1]
	}
	if m := siteIPPattern.FindStringSubmatch(text); m != nil {
		d.SiteIP = m[1]
	}
	seen := map[string]bool{}
	for _, ns := range nameserverRegexp.FindAllString(text, -1) {
		if !seen[ns] {
			seen[ns] = true
			d.Nameservers = append(d.Nameservers, ns)
		}
	}
	if sslActivePattern.MatchString(text) {
		d.SSLStatus = "Active"
	}
	if m := wpVersionPattern.FindStringSubmatch(text); m != nil {
		d.WordPressVersion = m[1]
	}
	return d
}

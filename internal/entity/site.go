package entity

// SiteInventoryRecord is one website row reported by the hosting panel.
type SiteInventoryRecord struct {
	Domain        string       `json:"domain"`
	Plan          string       `json:"plan"`
	CreatedDate   string       `json:"created_date"`
	Status        string       `json:"status"`
	HasWordPress  bool         `json:"has_wordpress"`
	ManagementURL string       `json:"management_url,omitempty"`
	Details       *SiteDetails `json:"details,omitempty"`
}

// SiteDetails holds the extended per-site information read from the management tools.
type SiteDetails struct {
	DiskSpace           string   `json:"disk_space,omitempty"`
	Inodes              string   `json:"inodes,omitempty"`
	SiteIP              string   `json:"site_ip,omitempty"`
	Nameservers         []string `json:"nameservers,omitempty"`
	SSLStatus           string   `json:"ssl_status,omitempty"`
	WordPressVersion    string   `json:"wordpress_version,omitempty"`
	ResolvedIPs         []string `json:"resolved_ips,omitempty"`
	ResolvedNameservers []string `json:"resolved_nameservers,omitempty"`
	Error               string   `json:"error,omitempty"`
}

// WithDetails returns a copy of the record carrying the given details.
func (r SiteInventoryRecord) WithDetails(details SiteDetails) SiteInventoryRecord {
	r.Details = &details
	return r
}

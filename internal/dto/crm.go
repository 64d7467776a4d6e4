package dto

// LoginRequest is the CRM token request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the CRM JWT pair.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// CustomerPayload is the body sent when creating or updating a CRM customer.
type CustomerPayload struct {
	CompanyName         string `json:"company_name"`
	ContactPerson       string `json:"contact_person"`
	Email               string `json:"email"`
	SecondaryEmail      string `json:"secondary_email,omitempty"`
	Phone               string `json:"phone"`
	SecondaryPhone      string `json:"secondary_phone,omitempty"`
	Address             string `json:"address,omitempty"`
	Website             string `json:"website,omitempty"`
	Facebook            string `json:"facebook,omitempty"`
	Instagram           string `json:"instagram,omitempty"`
	LinkedIn            string `json:"linkedin,omitempty"`
	Twitter             string `json:"twitter,omitempty"`
	Source              string `json:"source,omitempty"`
	HasHostingService   bool   `json:"has_hosting_service"`
	HasWebDesignService bool   `json:"has_web_design_service,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// Patch returns the non-empty fields, so an update never blanks values the CRM already holds.
func (p CustomerPayload) Patch() map[string]any {
	out := map[string]any{"has_hosting_service": p.HasHostingService}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("company_name", p.CompanyName)
	set("contact_person", p.ContactPerson)
	set("email", p.Email)
	set("secondary_email", p.SecondaryEmail)
	set("phone", p.Phone)
	set("secondary_phone", p.SecondaryPhone)
	set("address", p.Address)
	set("website", p.Website)
	set("facebook", p.Facebook)
	set("instagram", p.Instagram)
	set("linkedin", p.LinkedIn)
	set("twitter", p.Twitter)
	set("source", p.Source)
	set("notes", p.Notes)
	if p.HasWebDesignService {
		out["has_web_design_service"] = true
	}
	return out
}

// CustomerRecord is the subset of a CRM customer the reconciler reads.
type CustomerRecord struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Website     string `json:"website"`
}

// HostingPayload is the body sent when creating or updating a hosting record.
type HostingPayload struct {
	Customer   int64  `json:"customer,omitempty"`
	Provider   string `json:"provider"`
	PlanName   string `json:"plan_name"`
	ServerIP   string `json:"server_ip,omitempty"`
	DiskSpace  string `json:"disk_space,omitempty"`
	StartDate  string `json:"start_date"`
	ExpireDate string `json:"expire_date"`
	CpanelURL  string `json:"cpanel_url,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// HostingRecord is the subset of a CRM hosting record the reconciler reads.
type HostingRecord struct {
	ID       int64  `json:"id"`
	Customer int64  `json:"customer"`
	Provider string `json:"provider"`
	Notes    string `json:"notes"`
}

// DomainPayload is the body sent when creating or updating a domain record.
type DomainPayload struct {
	Customer     int64  `json:"customer,omitempty"`
	DomainName   string `json:"domain_name"`
	Registrar    string `json:"registrar"`
	RegisterDate string `json:"register_date"`
	ExpireDate   string `json:"expire_date"`
	Nameservers  string `json:"nameservers,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// DomainRecord is the subset of a CRM domain record the reconciler reads.
type DomainRecord struct {
	ID         int64  `json:"id"`
	Customer   int64  `json:"customer"`
	DomainName string `json:"domain_name"`
}

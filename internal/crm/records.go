package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/netutil"
)

// FindByWebsite searches customers by domain. A result whose website host
// equals the domain wins over the first search hit. Lookup failures are
// logged and reported as no match.
func (c *Client) FindByWebsite(ctx context.Context, domain string) *dto.CustomerRecord {
	raw, err := c.list(ctx, "search customer", customersPath, url.Values{"search": {domain}})
	if err != nil {
		c.logger.WithFields(logging.Fields{"domain": domain, "error": err}).Warn("customer search failed")
		return nil
	}
	records, err := decodeList[dto.CustomerRecord](raw)
	if err != nil {
		c.logger.WithFields(logging.Fields{"domain": domain, "error": err}).Warn("customer search returned unexpected payload")
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	want := netutil.NormalizeDomain(domain)
	for i := range records {
		if netutil.NormalizeDomain(records[i].Website) == want {
			return &records[i]
		}
	}
	return &records[0]
}

// CreateCustomer posts a new customer.
func (c *Client) CreateCustomer(ctx context.Context, payload dto.CustomerPayload) (dto.CustomerRecord, error) {
	var out dto.CustomerRecord
	err := c.do(ctx, "create customer", http.MethodPost, customersPath, payload, &out)
	return out, err
}

// UpdateCustomer patches only the non-empty fields of payload.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, payload dto.CustomerPayload) (dto.CustomerRecord, error) {
	var out dto.CustomerRecord
	err := c.do(ctx, "update customer", http.MethodPatch, customersPath+strconv.FormatInt(id, 10)+"/", payload.Patch(), &out)
	if out.ID == 0 {
		out.ID = id
	}
	return out, err
}

// CreateOrUpdateCustomer updates the customer already tied to domain or
// creates one. The returned action is entity.ActionCreated or entity.ActionUpdated.
func (c *Client) CreateOrUpdateCustomer(ctx context.Context, domain string, payload dto.CustomerPayload) (dto.CustomerRecord, string, error) {
	if existing := c.FindByWebsite(ctx, domain); existing != nil {
		rec, err := c.UpdateCustomer(ctx, existing.ID, payload)
		return rec, entity.ActionUpdated, err
	}
	rec, err := c.CreateCustomer(ctx, payload)
	return rec, entity.ActionCreated, err
}

// ListHostings returns the hosting records of a customer.
func (c *Client) ListHostings(ctx context.Context, customerID int64) ([]dto.HostingRecord, error) {
	raw, err := c.list(ctx, "list hostings", hostingsPath, url.Values{"customer": {strconv.FormatInt(customerID, 10)}})
	if err != nil {
		return nil, err
	}
	records, err := decodeList[dto.HostingRecord](raw)
	if err != nil {
		return nil, fmt.Errorf("decode hostings: %w", err)
	}
	return records, nil
}

// CreateOrUpdateHosting keeps one hosting record per domain and customer.
func (c *Client) CreateOrUpdateHosting(ctx context.Context, customerID int64, domain string, payload dto.HostingPayload) (dto.HostingRecord, string, error) {
	payload.Customer = customerID
	records, err := c.ListHostings(ctx, customerID)
	if err != nil {
		return dto.HostingRecord{}, "", err
	}

	var out dto.HostingRecord
	if match := matchHosting(records, domain); match != nil {
		err = c.do(ctx, "update hosting", http.MethodPatch, hostingsPath+strconv.FormatInt(match.ID, 10)+"/", payload, &out)
		if out.ID == 0 {
			out.ID = match.ID
		}
		return out, entity.ActionUpdated, err
	}
	err = c.do(ctx, "create hosting", http.MethodPost, hostingsPath, payload, &out)
	return out, entity.ActionCreated, err
}

// matchHosting prefers a record whose notes carry a "Domain: <domain>" line
// and falls back to any record mentioning the domain.
func matchHosting(records []dto.HostingRecord, domain string) *dto.HostingRecord {
	want := strings.ToLower(domain)
	for i := range records {
		for _, line := range strings.Split(records[i].Notes, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if ok && strings.EqualFold(strings.TrimSpace(key), "domain") && strings.EqualFold(strings.TrimSpace(value), want) {
				return &records[i]
			}
		}
	}
	for i := range records {
		if strings.Contains(strings.ToLower(records[i].Notes), want) {
			return &records[i]
		}
	}
	return nil
}

// CreateOrUpdateDomain keeps one domain record per domain name and customer.
func (c *Client) CreateOrUpdateDomain(ctx context.Context, customerID int64, payload dto.DomainPayload) (dto.DomainRecord, string, error) {
	payload.Customer = customerID
	raw, err := c.list(ctx, "list domains", domainsPath, url.Values{
		"customer": {strconv.FormatInt(customerID, 10)},
		"search":   {payload.DomainName},
	})
	if err != nil {
		return dto.DomainRecord{}, "", err
	}
	records, err := decodeList[dto.DomainRecord](raw)
	if err != nil {
		return dto.DomainRecord{}, "", fmt.Errorf("decode domains: %w", err)
	}

	var out dto.DomainRecord
	want := netutil.NormalizeDomain(payload.DomainName)
	for _, rec := range records {
		if netutil.NormalizeDomain(rec.DomainName) != want {
			continue
		}
		err = c.do(ctx, "update domain", http.MethodPatch, domainsPath+strconv.FormatInt(rec.ID, 10)+"/", payload, &out)
		if out.ID == 0 {
			out.ID = rec.ID
		}
		return out, entity.ActionUpdated, err
	}
	err = c.do(ctx, "create domain", http.MethodPost, domainsPath, payload, &out)
	return out, entity.ActionCreated, err
}

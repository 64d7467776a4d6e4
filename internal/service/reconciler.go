package service

import (
	"context"
	"strconv"
	"time"

	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/logging"
)

// CRM is the reconciliation surface of the CRM client.
type CRM interface {
	TestConnection(ctx context.Context) error
	CreateOrUpdateCustomer(ctx context.Context, domain string, payload dto.CustomerPayload) (dto.CustomerRecord, string, error)
	CreateOrUpdateHosting(ctx context.Context, customerID int64, domain string, payload dto.HostingPayload) (dto.HostingRecord, string, error)
	CreateOrUpdateDomain(ctx context.Context, customerID int64, payload dto.DomainPayload) (dto.DomainRecord, string, error)
}

// Reconciler upserts one domain's customer, hosting and domain records.
type Reconciler struct {
	crm    CRM
	logger logging.Logger
	now    func() time.Time
}

// NewReconciler builds a Reconciler.
func NewReconciler(crm CRM, logger logging.Logger) *Reconciler {
	return &Reconciler{crm: crm, logger: logging.OrDiscard(logger), now: time.Now}
}

// Reconcile never returns an error: a customer write failure is reported in
// the outcome, hosting and domain failures are logged and do not fail the
// domain.
func (r *Reconciler) Reconcile(ctx context.Context, site entity.SiteInventoryRecord, contact *entity.ContactExtractionResult) entity.ReconciliationOutcome {
	outcome := entity.ReconciliationOutcome{Domain: site.Domain}
	log := r.logger.WithField("domain", site.Domain)

	customer, action, err := r.crm.CreateOrUpdateCustomer(ctx, site.Domain, CustomerPayload(site, contact))
	if err != nil {
		outcome.Error = err.Error()
		log.WithError(err).Warn("customer upsert failed")
		return outcome
	}
	outcome.Success = true
	outcome.Action = action
	outcome.CustomerID = strconv.FormatInt(customer.ID, 10)
	log.WithFields(logging.Fields{"customer_id": customer.ID, "action": action}).Info("customer reconciled")

	now := r.now()
	hosting, _, err := r.crm.CreateOrUpdateHosting(ctx, customer.ID, site.Domain, HostingPayload(site, now))
	if err != nil {
		log.WithError(err).Warn("hosting upsert failed")
	} else if hosting.ID != 0 {
		outcome.HostingID = strconv.FormatInt(hosting.ID, 10)
	}
	if _, _, err := r.crm.CreateOrUpdateDomain(ctx, customer.ID, DomainPayload(site, now)); err != nil {
		log.WithError(err).Warn("domain upsert failed")
	}
	return outcome
}

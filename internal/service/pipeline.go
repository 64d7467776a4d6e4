// Package service sequences a scraper run: panel inventory, per-domain
// extraction and CRM reconciliation.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/browser"
	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/metrics"
)

var (
	// ErrEmptyInventory reports that the panel listed no sites.
	ErrEmptyInventory = errors.New("no sites found in panel inventory")
	// ErrCRMConnection reports that the CRM could not be reached or logged into.
	ErrCRMConnection = errors.New("CRM connection failed")
)

// Run phases reported by Status.
const (
	PhaseIdle           = "idle"
	PhaseLogin          = "login"
	PhaseInventory      = "inventory"
	PhaseDetails        = "details"
	PhaseExtraction     = "extraction"
	PhaseReconciliation = "reconciliation"
	PhaseDone           = "done"
	PhaseFailed         = "failed"
)

// Panel is the hosting panel session the pipeline drives.
type Panel interface {
	Start(ctx context.Context) error
	Login(ctx context.Context) (bool, error)
	NavigateToWebsites(ctx context.Context) error
	WebsitesList(ctx context.Context) ([]entity.SiteInventoryRecord, error)
	SiteDetails(ctx context.Context, rec entity.SiteInventoryRecord) entity.SiteDetails
	Page() browser.Page
	Close() error
}

// Extractor produces a contact record for one domain.
type Extractor interface {
	Name() string
	Run(ctx context.Context, domain string) entity.ContactExtractionResult
}

// ExtractorFactory builds the extractor once the panel session lends its page.
type ExtractorFactory func(page browser.Page) (Extractor, error)

// ReportSink persists a finished report and returns where it went.
type ReportSink interface {
	Save(ctx context.Context, report *entity.RunReport) (string, error)
}

// Options selects the stages of one run.
type Options struct {
	Limit     int
	PanelOnly bool
	DryRun    bool
	Details   bool
	Strategy  string
}

// Pipeline runs the stages in order and owns the run report.
type Pipeline struct {
	panel        Panel
	newExtractor ExtractorFactory
	crm          CRM
	sinks        []ReportSink
	limiter      *rate.Limiter
	metrics      *metrics.Metrics
	log          logging.Logger
	now          func() time.Time
	newID        func() string

	mu     sync.RWMutex
	status dto.StatusResponse
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithCRM sets the CRM used for reconciliation. Required unless every run is a dry run.
func WithCRM(crm CRM) PipelineOption {
	return func(p *Pipeline) { p.crm = crm }
}

// WithReportSinks adds places the report is persisted to.
func WithReportSinks(sinks ...ReportSink) PipelineOption {
	return func(p *Pipeline) { p.sinks = append(p.sinks, sinks...) }
}

// WithPacing spaces domain fetches at most one per every.
func WithPacing(every time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if every <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l logging.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline wires a pipeline around a panel session and an extractor factory.
func NewPipeline(panel Panel, newExtractor ExtractorFactory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		panel:        panel,
		newExtractor: newExtractor,
		limiter:      rate.NewLimiter(rate.Inf, 1),
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logging.OrDiscard(p.log)
	p.status.Phase = PhaseIdle
	return p
}

// Status is a snapshot of the current run.
func (p *Pipeline) Status() dto.StatusResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Pipeline) update(fn func(*dto.StatusResponse)) {
	p.mu.Lock()
	fn(&p.status)
	p.mu.Unlock()
}

func (p *Pipeline) setPhase(phase string) {
	p.update(func(s *dto.StatusResponse) { s.Phase = phase })
	p.log.WithField("phase", phase).Debug("pipeline phase")
}

// Run executes one pipeline pass. The report is always persisted, even when a
// phase fails or ctx is cancelled; the returned error is the phase failure
// that should make the process exit non-zero.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*entity.RunReport, error) {
	report := entity.NewRunReport(p.newID(), p.now())
	report.Strategy = opts.Strategy
	report.DryRun = opts.DryRun
	report.PanelOnly = opts.PanelOnly
	p.update(func(s *dto.StatusResponse) {
		*s = dto.StatusResponse{RunID: report.RunID, Phase: PhaseLogin, StartedAt: report.Timestamp, Strategy: opts.Strategy}
	})

	err := p.run(ctx, report, opts)

	result := "ok"
	phase := PhaseDone
	if err != nil {
		result, phase = "failed", PhaseFailed
		p.log.WithError(err).Error("run failed")
	}
	p.setPhase(phase)
	p.metrics.ObserveRun(result)
	p.persist(context.WithoutCancel(ctx), report)
	return report, err
}

func (p *Pipeline) run(ctx context.Context, report *entity.RunReport, opts Options) error {
	sites, contacts, err := p.browse(ctx, report, opts)
	if err != nil {
		return err
	}
	if opts.DryRun {
		p.log.Info("dry run, skipping CRM reconciliation")
		return nil
	}
	return p.reconcile(ctx, report, sites, contacts)
}

// browse holds the browser session for login, inventory, details and
// extraction, and always closes it before returning.
func (p *Pipeline) browse(ctx context.Context, report *entity.RunReport, opts Options) ([]entity.SiteInventoryRecord, map[string]*entity.ContactExtractionResult, error) {
	if err := p.panel.Start(ctx); err != nil {
		p.recordError(report, err.Error())
		return nil, nil, err
	}
	defer func() {
		if err := p.panel.Close(); err != nil {
			p.log.WithError(err).Warn("closing browser")
		}
	}()

	ok, err := p.panel.Login(ctx)
	if err == nil && !ok {
		err = &apperr.AuthenticationError{Service: "panel", Reason: "login was not confirmed"}
	}
	if err != nil {
		p.recordError(report, err.Error())
		return nil, nil, err
	}

	p.setPhase(PhaseInventory)
	// A slow websites page still gets parsed; only an empty result aborts.
	if err := p.panel.NavigateToWebsites(ctx); err != nil {
		p.log.WithError(err).Warn("websites page did not finish loading")
		p.recordError(report, err.Error())
	}
	inventory, err := p.panel.WebsitesList(ctx)
	if err != nil {
		p.recordError(report, err.Error())
		return nil, nil, fmt.Errorf("%w: %v", ErrEmptyInventory, err)
	}
	report.Inventory = append(report.Inventory, inventory...)
	p.metrics.SetInventory(len(inventory))
	p.update(func(s *dto.StatusResponse) { s.Inventory = len(inventory) })
	if len(inventory) == 0 {
		p.recordError(report, ErrEmptyInventory.Error())
		return nil, nil, ErrEmptyInventory
	}
	p.log.WithField("sites", len(inventory)).Info("inventory loaded")

	n := len(inventory)
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
		p.log.WithField("limit", n).Info("limiting processed sites")
	}

	if opts.Details {
		p.setPhase(PhaseDetails)
		for i := 0; i < n && ctx.Err() == nil; i++ {
			details := p.panel.SiteDetails(ctx, report.Inventory[i])
			if details.Error != "" {
				p.log.WithFields(logging.Fields{"domain": report.Inventory[i].Domain, "error": details.Error}).Warn("site details incomplete")
			}
			report.Inventory[i] = report.Inventory[i].WithDetails(details)
		}
	}
	sites := report.Inventory[:n]

	contacts := make(map[string]*entity.ContactExtractionResult, n)
	if opts.PanelOnly {
		p.log.Info("panel-only run, skipping website extraction")
		return sites, contacts, nil
	}

	extractor, err := p.newExtractor(p.panel.Page())
	if err != nil {
		err = fmt.Errorf("build %s extractor: %w", opts.Strategy, err)
		p.recordError(report, err.Error())
		return nil, nil, err
	}

	p.setPhase(PhaseExtraction)
	for i, site := range sites {
		if site.Domain == "" {
			continue
		}
		if err := p.limiter.Wait(ctx); err != nil {
			p.recordError(report, fmt.Sprintf("extraction interrupted: %v", err))
			break
		}

		log := p.log.WithFields(logging.Fields{"domain": site.Domain, "progress": fmt.Sprintf("%d/%d", i+1, len(sites))})
		started := p.now()
		result := extractor.Run(ctx, site.Domain)
		p.metrics.ObserveExtraction(extractor.Name(), result.Source, result.Analyzed, p.now().Sub(started))
		if result.Error != "" {
			log.WithField("error", result.Error).Warn("extraction failed")
		} else {
			log.WithFields(logging.Fields{"phones": len(result.Phones), "emails": len(result.Emails), "source": result.Source}).Info("extraction finished")
		}

		report.Extractions = append(report.Extractions, result)
		p.update(func(s *dto.StatusResponse) { s.Extracted++ })
	}
	for i := range report.Extractions {
		contacts[report.Extractions[i].Domain] = &report.Extractions[i]
	}
	return sites, contacts, nil
}

func (p *Pipeline) reconcile(ctx context.Context, report *entity.RunReport, sites []entity.SiteInventoryRecord, contacts map[string]*entity.ContactExtractionResult) error {
	p.setPhase(PhaseReconciliation)
	if p.crm == nil {
		p.recordError(report, ErrCRMConnection.Error())
		return fmt.Errorf("%w: no CRM client configured", ErrCRMConnection)
	}
	if err := p.crm.TestConnection(ctx); err != nil {
		p.recordError(report, ErrCRMConnection.Error())
		return fmt.Errorf("%w: %w", ErrCRMConnection, err)
	}

	reconciler := NewReconciler(p.crm, p.log)
	reconciler.now = p.now
	for _, site := range sites {
		if site.Domain == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			p.recordError(report, fmt.Sprintf("reconciliation interrupted: %v", err))
			break
		}
		outcome := reconciler.Reconcile(ctx, site, contacts[site.Domain])
		report.Reconciliations = append(report.Reconciliations, outcome)
		p.metrics.ObserveReconciliation(outcome.Action, outcome.Success)
		if !outcome.Success {
			p.recordError(report, site.Domain+": "+outcome.Error)
		}
		p.update(func(s *dto.StatusResponse) { s.Reconciled++ })
	}
	p.log.WithFields(logging.Fields{"succeeded": report.Succeeded(), "attempted": len(report.Reconciliations)}).Info("reconciliation finished")
	return nil
}

func (p *Pipeline) recordError(report *entity.RunReport, msg string) {
	report.Errors = append(report.Errors, msg)
	p.update(func(s *dto.StatusResponse) { s.Errors++ })
}

func (p *Pipeline) persist(ctx context.Context, report *entity.RunReport) {
	for _, sink := range p.sinks {
		location, err := sink.Save(ctx, report)
		if err != nil {
			p.log.WithError(err).Error("saving run report")
			continue
		}
		p.log.WithField("location", location).Info("run report saved")
	}
}

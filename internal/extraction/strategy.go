package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/azizemirhan/hubcenter/internal/ai"
	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/entity"
	"github.com/azizemirhan/hubcenter/internal/logging"
)

// FieldExtractor is one stage of a strategy. partial holds what earlier stages found.
type FieldExtractor interface {
	Name() string
	Extract(ctx context.Context, content Content, partial Fields) (Fields, error)
}

// Stage wraps an extractor. A failing optional stage is logged and skipped;
// a failing required stage fails the whole extraction.
type Stage struct {
	Extractor FieldExtractor
	Optional  bool
}

// Scorer rates a finished extraction.
type Scorer func(entity.ContactExtractionResult) int

// Strategy acquires a domain's content and runs its stages over it.
type Strategy struct {
	name       string
	acquirer   Acquirer
	stages     []Stage
	normalizer *Normalizer
	scorer     Scorer
	logger     logging.Logger
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithScorer sets the lead score computed for successful extractions.
func WithScorer(s Scorer) Option {
	return func(st *Strategy) { st.scorer = s }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(st *Strategy) { st.logger = l }
}

// WithNormalizer overrides the default TR normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(st *Strategy) { st.normalizer = n }
}

// NewStrategy composes a strategy from an acquirer and ordered stages.
func NewStrategy(name string, acquirer Acquirer, stages []Stage, opts ...Option) *Strategy {
	s := &Strategy{name: name, acquirer: acquirer, stages: stages}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = NewNormalizer(defaultPhoneRegion)
	}
	s.logger = logging.OrDiscard(s.logger)
	return s
}

// Name returns the strategy name recorded on results.
func (s *Strategy) Name() string { return s.name }

// Run acquires domain and extracts from it. Failures are reported on the result.
func (s *Strategy) Run(ctx context.Context, domain string) entity.ContactExtractionResult {
	content, err := s.acquirer.Acquire(ctx, domain)
	if err != nil {
		s.logger.WithFields(logging.Fields{"domain": domain, "strategy": s.name}).WithError(err).Warn("content acquisition failed")
		return entity.FailedExtraction(domain, s.name, flatten(err))
	}
	return s.Extract(ctx, content, domain)
}

// Extract runs the stages over content and normalizes the merged fields.
func (s *Strategy) Extract(ctx context.Context, content Content, domain string) entity.ContactExtractionResult {
	log := s.logger.WithFields(logging.Fields{"domain": domain, "strategy": s.name})
	if content.Empty() {
		return entity.FailedExtraction(domain, s.name, &apperr.FetchError{Domain: domain, Err: apperr.ErrNoContent})
	}

	var fields Fields
	for _, stage := range s.stages {
		got, err := stage.Extractor.Extract(ctx, content, fields)
		if err != nil {
			err = &apperr.ExtractionError{Stage: stage.Extractor.Name(), Err: err}
			if !stage.Optional {
				log.WithError(err).Warn("extraction failed")
				failed := entity.FailedExtraction(domain, s.name, err)
				failed.URL = content.URL
				failed.Source = content.Source
				return failed
			}
			log.WithError(err).Warn("optional extraction stage failed, keeping earlier results")
			continue
		}
		fields = Merge(fields, got)
	}
	fields = s.normalizer.Apply(fields, domain)

	result := entity.ContactExtractionResult{
		Domain:      domain,
		URL:         content.URL,
		Phones:      fields.Phones,
		Emails:      fields.Emails,
		Address:     fields.Address,
		Social:      fields.Social,
		CompanyName: fields.CompanyName,
		Description: fields.Description,
		ContactPage: content.ContactURL,
		AboutPage:   content.AboutURL,
		Analyzed:    true,
		Source:      content.Source,
		Strategy:    s.name,
	}
	if s.scorer != nil {
		result.Score = s.scorer(result)
	}
	log.WithFields(logging.Fields{
		"emails": len(result.Emails),
		"phones": len(result.Phones),
		"source": result.Source,
	}).Info("contact extraction complete")
	return result
}

// Dependencies are the collaborators the named strategies are built from.
type Dependencies struct {
	Pages     PageFetcher
	Archive   SnapshotSource
	Completer ai.Completer
}

// New builds the named strategy.
func New(name string, deps Dependencies, opts ...Option) (*Strategy, error) {
	if deps.Pages == nil {
		return nil, errors.New("page fetcher is required")
	}
	direct := Direct(deps.Pages)
	regex := Stage{Extractor: RegexExtractor{}}
	metadata := Stage{Extractor: MetadataExtractor{}}

	switch name {
	case config.StrategyRegex:
		return NewStrategy(name, direct, []Stage{regex, metadata}, opts...), nil
	case config.StrategyGemini:
		if deps.Completer == nil {
			return nil, fmt.Errorf("strategy %q needs a completion backend", name)
		}
		cloud := Stage{Extractor: &AIExtractor{Completer: deps.Completer, Budget: CloudBudget}}
		return NewStrategy(name, direct, []Stage{cloud, metadata}, opts...), nil
	case config.StrategyOllama:
		if deps.Completer == nil {
			return nil, fmt.Errorf("strategy %q needs a completion backend", name)
		}
		local := Stage{Extractor: &AIExtractor{Completer: deps.Completer, Budget: LocalBudget, OnlyMissing: true, Lenient: true}, Optional: true}
		return NewStrategy(name, direct, []Stage{regex, local, metadata}, opts...), nil
	case config.StrategyArchive:
		if deps.Archive == nil {
			return nil, fmt.Errorf("strategy %q needs an archive client", name)
		}
		acquirer := ChainAcquirer{direct.Requiring(Substantial), Archived(deps.Archive)}
		stages := []Stage{regex}
		if deps.Completer != nil {
			stages = append(stages, Stage{Extractor: &AIExtractor{Completer: deps.Completer, Budget: ArchiveBudget, OnlyMissing: true, SkipWhenContactKnown: true, Lenient: true}, Optional: true})
		}
		stages = append(stages, metadata)
		return NewStrategy(name, acquirer, stages, opts...), nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy %q", name)
	}
}

// flatten keeps joined chain errors on one line for the report.
func flatten(err error) error {
	if err == nil || !strings.Contains(err.Error(), "\n") {
		return err
	}
	return &flatError{err: err}
}

type flatError struct{ err error }

func (e *flatError) Error() string { return strings.ReplaceAll(e.err.Error(), "\n", "; ") }
func (e *flatError) Unwrap() error { return e.err }

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/azizemirhan/hubcenter/internal/acquisition"
	"github.com/azizemirhan/hubcenter/internal/ai"
	"github.com/azizemirhan/hubcenter/internal/archive"
	"github.com/azizemirhan/hubcenter/internal/auth"
	"github.com/azizemirhan/hubcenter/internal/browser"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/crm"
	"github.com/azizemirhan/hubcenter/internal/database"
	"github.com/azizemirhan/hubcenter/internal/dnsinfo"
	"github.com/azizemirhan/hubcenter/internal/extraction"
	"github.com/azizemirhan/hubcenter/internal/handler"
	"github.com/azizemirhan/hubcenter/internal/httpclient"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/metrics"
	"github.com/azizemirhan/hubcenter/internal/operator"
	"github.com/azizemirhan/hubcenter/internal/panel"
	"github.com/azizemirhan/hubcenter/internal/report"
	"github.com/azizemirhan/hubcenter/internal/repository"
	"github.com/azizemirhan/hubcenter/internal/router"
	"github.com/azizemirhan/hubcenter/internal/service"
	"github.com/azizemirhan/hubcenter/internal/service/scoring"
)

const archiveTimeout = 30 * time.Second

// newOperator returns the confirmation operator and, in http mode, the queue
// the control server resolves.
func newOperator(cfg *config.Config, logger logging.Logger) (operator.Operator, handler.ConfirmationQueue) {
	switch cfg.OperatorMode {
	case config.OperatorHTTP:
		q := operator.NewQueue(cfg.OperatorTimeout)
		return q, q
	case config.OperatorSkip:
		logger.Warn("operator confirmations disabled, unclassified logins will fail")
		return operator.Unattended{}, nil
	default:
		return operator.NewConsole(os.Stdin, os.Stderr), nil
	}
}

func newPanelClient(cfg *config.Config, op operator.Operator, details bool, logger logging.Logger) *panel.Client {
	opts := []panel.Option{panel.WithLogger(logger)}
	if details {
		opts = append(opts, panel.WithResolver(dnsinfo.NewResolver(0)))
	}
	return panel.NewClient(cfg.Panel, browser.PlaywrightLauncher(cfg.Browser), op, opts...)
}

func newExtractorFactory(cfg *config.Config, logger logging.Logger) service.ExtractorFactory {
	return func(page browser.Page) (service.Extractor, error) {
		completer, err := newCompleter(cfg)
		if err != nil {
			return nil, err
		}
		exec := httpclient.NewExecutor(&http.Client{Timeout: archiveTimeout}, httpclient.DefaultRetryConfig())
		deps := extraction.Dependencies{
			Pages:     acquisition.NewFetcher(page, acquisition.WithPaths(cfg.ContactPaths, cfg.AboutPaths), acquisition.WithLogger(logger)),
			Archive:   archive.NewClient(cfg.ArchiveURL, exec, logger),
			Completer: completer,
		}
		strategy, err := extraction.New(cfg.Strategy, deps,
			extraction.WithScorer(scoring.Score),
			extraction.WithLogger(logger),
			extraction.WithNormalizer(extraction.NewNormalizer(cfg.PhoneRegion)),
		)
		if err != nil {
			return nil, err
		}
		return strategy, nil
	}
}

// newCompleter picks the completion backend for the strategy. The archive
// strategy uses Gemini when a key is configured and runs regex-only otherwise.
func newCompleter(cfg *config.Config) (ai.Completer, error) {
	switch cfg.Strategy {
	case config.StrategyGemini:
		return newGemini(cfg)
	case config.StrategyArchive:
		if cfg.AI.GeminiAPIKey == "" {
			return nil, nil
		}
		return newGemini(cfg)
	case config.StrategyOllama:
		exec := httpclient.NewExecutor(&http.Client{Timeout: cfg.AI.Timeout}, httpclient.DefaultRetryConfig())
		return ai.NewOllama(cfg.AI.OllamaURL, cfg.AI.OllamaModel, exec), nil
	default:
		return nil, nil
	}
}

func newGemini(cfg *config.Config) (ai.Completer, error) {
	exec := httpclient.NewExecutor(&http.Client{Timeout: cfg.AI.Timeout}, httpclient.DefaultRetryConfig())
	g, err := ai.NewGemini(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, exec)
	if err != nil {
		return nil, err
	}
	return ai.WithTimeout(g, cfg.AI.Timeout), nil
}

func newCRMClient(cfg *config.Config, logger logging.Logger) *crm.Client {
	return crm.NewClient(cfg.CRM, crm.WithLogger(logger))
}

// newReportSinks always writes the JSON file and adds the Postgres store when
// REPORT_DATABASE_URL is set. The returned func releases the pool.
func newReportSinks(ctx context.Context, cfg *config.Config, output string, logger logging.Logger) ([]service.ReportSink, func(), error) {
	sinks := []service.ReportSink{report.FileWriter{Dir: cfg.ReportDir, Path: output}}
	if cfg.ReportDatabaseURL == "" {
		return sinks, func() {}, nil
	}

	pool, err := database.Open(ctx, cfg.ReportDatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open report database: %w", err)
	}
	repo := repository.NewPGXReportsRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare report table: %w", err)
	}
	logger.Info("run reports will also be stored in postgres")
	return append(sinks, repo), pool.Close, nil
}

// startControlServer serves status and operator confirmations in the
// background. The returned func shuts it down.
func startControlServer(cfg *config.Config, status handler.StatusSource, queue handler.ConfirmationQueue, m *metrics.Metrics, logger logging.Logger) func() {
	var tokens *auth.TokenManager
	if cfg.ControlSecret != "" {
		tokens = auth.NewTokenManager(cfg.ControlSecret, cfg.ControlTokenTTL)
	} else {
		logger.Warn("CONTROL_SECRET not set, control server accepts unauthenticated requests")
	}

	e := router.New(router.Dependencies{
		Control: handler.NewControlHandler(status, queue, logger),
		Metrics: m,
		Tokens:  tokens,
		Logger:  logger,
	})

	go func() {
		if err := e.Start(cfg.ControlAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("control server stopped")
		}
	}()
	logger.WithField("addr", cfg.ControlAddr).Info("control server listening")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("control server shutdown failed")
		}
	}
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/metrics"
	"github.com/azizemirhan/hubcenter/internal/panel"
	"github.com/azizemirhan/hubcenter/internal/service"
)

type runFlags struct {
	testLogin   bool
	panelOnly   bool
	dryRun      bool
	details     bool
	limit       int
	output      string
	strategy    string
	operator    string
	controlAddr string
}

func newRootCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "scraper",
		Short: "Sync hosting panel sites and their website contacts into the CRM",
		Long: `Logs into the SiteGround panel, reads the website inventory, scrapes
contact details from every site and creates or updates the matching CRM
customer, hosting and domain records. A JSON run report is always written.`,
		Example: `  scraper --test-login
  scraper --siteground-only --details
  scraper --limit 3 --dry-run --strategy ollama
  scraper --operator http --control-addr :8090`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.testLogin, "test-login", false, "only verify the panel login")
	cmd.Flags().BoolVar(&flags.panelOnly, "siteground-only", false, "read the panel inventory and skip website scraping")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "skip CRM writes")
	cmd.Flags().BoolVar(&flags.details, "details", false, "read disk, SSL and IP details for every site")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "process at most N sites (0 means all)")
	cmd.Flags().StringVar(&flags.output, "output", "", "run report path (default scrape_results_<timestamp>.json in REPORT_DIR)")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "extraction strategy: regex, gemini, ollama or archive (overrides EXTRACTION_STRATEGY)")
	cmd.Flags().StringVar(&flags.operator, "operator", "", "operator confirmation mode: console, http or skip (overrides OPERATOR_MODE)")
	cmd.Flags().StringVar(&flags.controlAddr, "control-addr", "", "control server listen address (overrides CONTROL_ADDR)")

	cmd.AddCommand(newControlTokenCommand())
	return cmd
}

func loadConfig(cmd *cobra.Command, flags runFlags) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Strategy = strings.ToLower(strings.TrimSpace(flags.strategy))
	}
	if cmd.Flags().Changed("operator") {
		cfg.OperatorMode = strings.ToLower(strings.TrimSpace(flags.operator))
	}
	if cmd.Flags().Changed("control-addr") {
		cfg.ControlAddr = flags.controlAddr
	}
	if flags.limit < 0 {
		return nil, fmt.Errorf("--limit must not be negative, got %d", flags.limit)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, flags runFlags) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()
	op, queue := newOperator(cfg, logger)

	panelClient := newPanelClient(cfg, op, flags.details, logger)
	sinks, closeSinks, err := newReportSinks(ctx, cfg, flags.output, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	pipeline := service.NewPipeline(panelClient, newExtractorFactory(cfg, logger),
		service.WithCRM(newCRMClient(cfg, logger)),
		service.WithReportSinks(sinks...),
		service.WithPacing(cfg.ScrapeRate.Every()),
		service.WithMetrics(m),
		service.WithPipelineLogger(logger),
	)

	if cfg.ControlAddr != "" {
		stop := startControlServer(cfg, pipeline, queue, m, logger)
		defer stop()
	}

	if flags.testLogin {
		return testLogin(ctx, panelClient, logger)
	}

	report, err := pipeline.Run(ctx, service.Options{
		Limit:     flags.limit,
		PanelOnly: flags.panelOnly,
		DryRun:    flags.dryRun,
		Details:   flags.details,
		Strategy:  cfg.Strategy,
	})
	logger.WithFields(logging.Fields{
		"run_id":          report.RunID,
		"sites":           len(report.Inventory),
		"extractions":     len(report.Extractions),
		"reconciliations": len(report.Reconciliations),
		"errors":          len(report.Errors),
	}).Info("run finished")
	return err
}

func testLogin(ctx context.Context, client *panel.Client, logger logging.Logger) error {
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("closing browser")
		}
	}()

	ok, err := client.Login(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return &apperr.AuthenticationError{Service: "panel", Reason: "login not confirmed"}
	}
	logger.Info("panel login succeeded")
	return nil
}

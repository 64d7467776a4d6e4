package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azizemirhan/hubcenter/internal/auth"
	"github.com/azizemirhan/hubcenter/internal/config"
)

func newControlTokenCommand() *cobra.Command {
	var role, subject string
	cmd := &cobra.Command{
		Use:     "control-token",
		Short:   "Issue a bearer token for the control server",
		Example: `  scraper control-token --role operator --subject alice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.ControlSecret == "" {
				return errors.New("CONTROL_SECRET is not set")
			}
			token, err := auth.NewTokenManager(cfg.ControlSecret, cfg.ControlTokenTTL).Issue(subject, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", auth.RoleViewer, "token role: viewer or operator")
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	return cmd
}

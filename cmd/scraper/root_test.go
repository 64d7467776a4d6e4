package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/azizemirhan/hubcenter/internal/auth"
	"github.com/azizemirhan/hubcenter/internal/config"
)

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv("EXTRACTION_STRATEGY", "regex")
	t.Setenv("OPERATOR_MODE", "console")

	cmd := newRootCommand()
	if err := cmd.ParseFlags([]string{"--strategy", "Archive", "--operator", "http", "--control-addr", ":9999", "--limit", "3"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	var flags runFlags
	flags.strategy, _ = cmd.Flags().GetString("strategy")
	flags.operator, _ = cmd.Flags().GetString("operator")
	flags.controlAddr, _ = cmd.Flags().GetString("control-addr")
	flags.limit, _ = cmd.Flags().GetInt("limit")

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Strategy != config.StrategyArchive || cfg.OperatorMode != config.OperatorHTTP || cfg.ControlAddr != ":9999" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestLoadConfigFlagsReplaceInvalidEnv(t *testing.T) {
	t.Setenv("EXTRACTION_STRATEGY", "magic")
	t.Setenv("OPERATOR_MODE", "telepathy")

	cmd := newRootCommand()
	if err := cmd.ParseFlags([]string{"--strategy", "gemini", "--operator", "skip"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(cmd, runFlags{strategy: "gemini", operator: "skip"})
	if err != nil {
		t.Fatalf("flags should replace invalid env values: %v", err)
	}
	if cfg.Strategy != config.StrategyGemini || cfg.OperatorMode != config.OperatorSkip {
		t.Fatalf("flags not applied: %+v", cfg)
	}

	if _, err := loadConfig(newRootCommand(), runFlags{}); err == nil {
		t.Fatalf("expected invalid env values to fail without overrides")
	}
}

func TestLoadConfigRejectsBadFlags(t *testing.T) {
	cmd := newRootCommand()
	if err := cmd.ParseFlags([]string{"--strategy", "magic"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := loadConfig(cmd, runFlags{strategy: "magic"}); err == nil {
		t.Fatalf("expected unknown strategy to be rejected")
	}

	cmd = newRootCommand()
	if _, err := loadConfig(cmd, runFlags{limit: -1}); err == nil {
		t.Fatalf("expected negative limit to be rejected")
	}
}

func TestControlTokenCommand(t *testing.T) {
	t.Setenv("CONTROL_SECRET", "control-secret")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"control-token", "--role", "operator", "--subject", "alice"})
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := auth.NewTokenManager("control-secret", 0).Parse(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("issued token did not parse: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != auth.RoleOperator {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestControlTokenRequiresSecret(t *testing.T) {
	t.Setenv("CONTROL_SECRET", "")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"control-token"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

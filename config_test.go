package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("TIMEZONE", "UTC")

	cfg := LoadConfig()

	if cfg.LLMProvider != "none" {
		t.Fatalf("unexpected provider default: %q", cfg.LLMProvider)
	}
	if cfg.DBPath != "./ticketbot.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.ReportOutputDir != "./reports" {
		t.Fatalf("unexpected report output dir default: %q", cfg.ReportOutputDir)
	}
	if cfg.TeamName != "Support Team" {
		t.Fatalf("unexpected team name default: %q", cfg.TeamName)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if len(cfg.Schema.Columns) != 12 {
		t.Fatalf("expected stock 12-column vocabulary, got %d", len(cfg.Schema.Columns))
	}
	if len(cfg.Schema.Categories) != 7 {
		t.Fatalf("expected stock 7-category whitelist, got %d", len(cfg.Schema.Categories))
	}
	if cfg.Schema.ProductMap["NET"] != "Broadband" {
		t.Fatalf("stock product map missing: %+v", cfg.Schema.ProductMap)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm_provider: "anthropic"
anthropic_api_key: "yaml-anthropic"
team_name: "YAML Team"
timezone: "America/Los_Angeles"
db_path: "/tmp/yaml.db"
input_dir: "/tmp/uploads"
watch_schedule: "*/15 * * * *"
schema:
  categories: ["NET", "KAV"]
  product_map:
    NET: "Internet"
    KAV: "Telephony"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TEAM_NAME", "Env Team")
	t.Setenv("DB_PATH", "/tmp/env.db")

	cfg := LoadConfig()

	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected provider from env override, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIAPIKey != "sk-env" {
		t.Fatalf("expected openai key from env override")
	}
	if cfg.TeamName != "Env Team" {
		t.Fatalf("expected team name from env override, got %q", cfg.TeamName)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.InputDir != "/tmp/uploads" {
		t.Fatalf("expected input dir from yaml, got %q", cfg.InputDir)
	}
	if cfg.WatchSchedule != "*/15 * * * *" {
		t.Fatalf("expected watch schedule from yaml, got %q", cfg.WatchSchedule)
	}

	// Partial schema override keeps defaults for the untouched fields.
	if len(cfg.Schema.Categories) != 2 {
		t.Fatalf("expected yaml category whitelist, got %v", cfg.Schema.Categories)
	}
	if cfg.Schema.ProductMap["NET"] != "Internet" {
		t.Fatalf("expected yaml product map, got %+v", cfg.Schema.ProductMap)
	}
	if len(cfg.Schema.Columns) != 12 {
		t.Fatalf("expected default columns to survive partial override, got %v", cfg.Schema.Columns)
	}
	if cfg.Schema.DateLayout != "1/2/2006 15:04" {
		t.Fatalf("expected default date layout to survive, got %q", cfg.Schema.DateLayout)
	}
}

func TestMergeSchemaDefaults(t *testing.T) {
	merged := mergeSchemaDefaults(Schema{DateLayout: "2006-01-02"})
	if merged.DateLayout != "2006-01-02" {
		t.Fatalf("explicit date layout overwritten: %q", merged.DateLayout)
	}
	if len(merged.Columns) == 0 || len(merged.Categories) == 0 || len(merged.SectionNames) == 0 {
		t.Fatalf("empty fields not filled from defaults: %+v", merged)
	}

	empty := mergeSchemaDefaults(Schema{})
	if err := empty.Validate(); err != nil {
		t.Fatalf("fully defaulted schema should validate: %v", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	if err := DefaultSchema().Validate(); err != nil {
		t.Fatalf("default schema should validate: %v", err)
	}

	s := DefaultSchema()
	s.Columns = nil
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for empty columns")
	}

	s = DefaultSchema()
	s.ProductMap = map[string]string{"NET": "Broadband"}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for category without product mapping")
	}

	s = DefaultSchema()
	s.SectionNames = nil
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for empty section names")
	}
}

func TestEnvOverride(t *testing.T) {
	s := "initial"
	t.Setenv("TB_TEST_STR", "value")
	envOverride(&s, "TB_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	t.Setenv("TB_TEST_STR", "")
	envOverride(&s, "TB_TEST_STR")
	if s != "value" {
		t.Fatalf("empty env var should not override, got %q", s)
	}
}

func TestLoadConfigMissingProviderKeyFatal(t *testing.T) {
	if os.Getenv("TEST_PROVIDER_KEY_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("LLM_PROVIDER", "anthropic")
		_ = os.Setenv("ANTHROPIC_API_KEY", "")
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigMissingProviderKeyFatal")
	cmd.Env = append(os.Environ(), "TEST_PROVIDER_KEY_FATAL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}

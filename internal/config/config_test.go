package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.ReportsDir != "reports" || c.ReportName != "sample_report" {
		t.Errorf("unexpected report defaults: %q %q", c.ReportsDir, c.ReportName)
	}
	if len(c.Sources) != 2 || c.Sources[0].Location != "examples/sample.csv" {
		t.Errorf("unexpected default sources: %+v", c.Sources)
	}
	if c.Job.InProcessTimeout != 5*time.Minute || c.Job.IsolatedTimeout != 5*time.Minute {
		t.Errorf("unexpected job timeouts: %+v", c.Job)
	}
	if c.Notify.SMTP.Server != "smtp.gmail.com" || c.Notify.SMTP.Port != 465 {
		t.Errorf("unexpected smtp defaults: %+v", c.Notify.SMTP)
	}
}

func TestLoadFromFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte(`
report_name: weekly
sources:
  - location: data/sales.csv
    options:
      parse_dates: date
    require: [id, amount]
  - location: https://example.com/api
    kind: api
job:
  in_process_timeout: 30s
publish:
  target: s3
  s3:
    bucket: reports-archive
`), 0644)

	c := Default()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.ReportName != "weekly" {
		t.Errorf("report_name = %q", c.ReportName)
	}
	if c.ReportsDir != "reports" {
		t.Errorf("reports_dir default lost: %q", c.ReportsDir)
	}
	if len(c.Sources) != 2 || c.Sources[0].Options["parse_dates"] != "date" || len(c.Sources[0].Require) != 2 {
		t.Fatalf("unexpected sources: %+v", c.Sources)
	}
	if c.Job.InProcessTimeout != 30*time.Second {
		t.Errorf("in_process_timeout = %s", c.Job.InProcessTimeout)
	}
	if c.Job.IsolatedTimeout != 5*time.Minute {
		t.Errorf("isolated_timeout default lost: %s", c.Job.IsolatedTimeout)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	descs := c.Descriptors()
	if descs[1].Kind != "api" || descs[0].RequiredColumns[1] != "amount" {
		t.Errorf("unexpected descriptors: %+v", descs)
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("sources: {location: [\n"), 0644)

	c := Default()
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	err := c.LoadFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AUTOPORT_DB_URL":        "postgres://x",
		"AUTOPORT_SCHEDULER_LOG": "/tmp/sched.log",
		"NOTIFY_EMAIL":           "ops@example.com",
		"WEBHOOK_URL":            "https://discord.com/api/webhooks/1",
		"SMTP_PORT":              "587",
		"SMTP_USER":              "bot@example.com",
		"SMTP_PASSWORD":          "secret",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	if err := c.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if c.DSN != "postgres://x" || c.LogFile != "/tmp/sched.log" {
		t.Errorf("unexpected dsn/log file: %q %q", c.DSN, c.LogFile)
	}
	if c.Notify.Email != "ops@example.com" || c.Notify.SMTP.Port != 587 || c.Notify.SMTP.Password != "secret" {
		t.Errorf("unexpected notify config: %+v", c.Notify)
	}
	if c.Notify.SMTP.Server != "smtp.gmail.com" {
		t.Errorf("smtp server default lost: %q", c.Notify.SMTP.Server)
	}

	c = Default()
	c.DSN = "postgres://flag"
	c.applyEnv(lookup)
	if c.DSN != "postgres://flag" {
		t.Errorf("flag DSN overridden by env: %q", c.DSN)
	}

	env["SMTP_PORT"] = "smtp"
	c = Default()
	if err := c.applyEnv(lookup); err == nil {
		t.Error("expected error for non-numeric SMTP_PORT")
	}
}

func TestLoadEnv_DotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte("NOTIFY_EMAIL=file@example.com\nWEBHOOK_URL=https://hooks.slack.com/x\n"), 0644)

	t.Setenv("NOTIFY_EMAIL", "env@example.com")
	t.Setenv("WEBHOOK_URL", "")
	os.Unsetenv("WEBHOOK_URL")

	c := Default()
	if err := c.LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if c.Notify.Email != "env@example.com" {
		t.Errorf("NOTIFY_EMAIL = %q, want existing env value", c.Notify.Email)
	}
	if c.Notify.WebhookURL != "https://hooks.slack.com/x" {
		t.Errorf("WEBHOOK_URL = %q, want .env value", c.Notify.WebhookURL)
	}

	if err := c.LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]func(*Config){
		"empty reports dir":  func(c *Config) { c.ReportsDir = "" },
		"empty source":       func(c *Config) { c.Sources = []SourceConfig{{Location: " "}} },
		"bad transport":      func(c *Config) { c.Notify.EmailTransport = "pigeon" },
		"bad port":           func(c *Config) { c.Notify.SMTP.Port = 0 },
		"s3 without bucket":  func(c *Config) { c.Publish.Target = "s3" },
		"local without path": func(c *Config) { c.Publish.Target = "local" },
		"unknown target":     func(c *Config) { c.Publish.Target = "ftp" },
		"zero timeout":       func(c *Config) { c.Job.IsolatedTimeout = 0 },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	c := Default()
	if err := c.ValidateWithDSN(); err == nil {
		t.Error("expected error without DSN")
	}
}

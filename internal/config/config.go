package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/autoport/internal/model"
)

const (
	DefaultReportsDir   = "reports"
	DefaultReportName   = "sample_report"
	DefaultMetadataFile = "metadata.jsonl"
	DefaultLogFile      = "logs/autoport.log"
	DefaultJobTimeout   = 5 * time.Minute
	DefaultSMTPServer   = "smtp.gmail.com"
	DefaultSMTPPort     = 465
	DefaultWebhookWait  = 10 * time.Second
	DefaultSummaryItems = 3
)

// DefaultSources are ingested when no source is configured.
var DefaultSources = []SourceConfig{
	{Location: "examples/sample.csv"},
	{Location: "https://jsonplaceholder.typicode.com/todos"},
}

// Config holds all runtime configuration for an autoport process. Fields
// without a yaml tag come from flags or the environment only.
type Config struct {
	DSN       string `yaml:"-"`
	LogFormat string `yaml:"-"` // "text" or "json"
	LogLevel  string `yaml:"-"`
	LogFile   string `yaml:"log_file"`

	ReportsDir      string         `yaml:"reports_dir"`
	ReportName      string         `yaml:"report_name"`
	MetadataFile    string         `yaml:"metadata_file"`
	SummaryMaxItems int            `yaml:"summary_max_items"`
	Sources         []SourceConfig `yaml:"sources"`

	Job     JobConfig     `yaml:"job"`
	Notify  NotifyConfig  `yaml:"notify"`
	Publish PublishConfig `yaml:"publish"`
}

// SourceConfig is one configured input.
type SourceConfig struct {
	Location string            `yaml:"location"`
	Kind     string            `yaml:"kind"`
	Options  map[string]string `yaml:"options"`
	Require  []string          `yaml:"require"`
}

// JobConfig tunes the job runner tiers.
type JobConfig struct {
	InProcessTimeout time.Duration `yaml:"in_process_timeout"`
	IsolatedTimeout  time.Duration `yaml:"isolated_timeout"`
	// IsolatedCommand replaces the default child command (the current
	// executable with "pipeline --result-json").
	IsolatedCommand []string `yaml:"isolated_command"`
}

// NotifyConfig selects notification channels.
type NotifyConfig struct {
	Email          string        `yaml:"email"`
	EmailTransport string        `yaml:"email_transport"` // "smtp" or "ses"
	WebhookURL     string        `yaml:"webhook_url"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
	SMTP           SMTPConfig    `yaml:"smtp"`
	SES            SESConfig     `yaml:"ses"`
}

type SMTPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
}

type SESConfig struct {
	Region string `yaml:"region"`
	From   string `yaml:"from"`
}

// PublishConfig copies finished artifacts to an archive. Target "" disables
// publishing.
type PublishConfig struct {
	Target    string   `yaml:"target"` // "", "local" or "s3"
	LocalPath string   `yaml:"local_path"`
	Prefix    string   `yaml:"prefix"`
	S3        S3Config `yaml:"s3"`
}

// S3Config uses the default AWS credential chain unless both keys are set.
type S3Config struct {
	Region         string `yaml:"region"`
	Bucket         string `yaml:"bucket"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
}

// Default returns a Config with every default filled in.
func Default() Config {
	return Config{
		LogFormat:       "text",
		LogLevel:        "info",
		LogFile:         DefaultLogFile,
		ReportsDir:      DefaultReportsDir,
		ReportName:      DefaultReportName,
		MetadataFile:    DefaultMetadataFile,
		SummaryMaxItems: DefaultSummaryItems,
		Sources:         append([]SourceConfig(nil), DefaultSources...),
		Job: JobConfig{
			InProcessTimeout: DefaultJobTimeout,
			IsolatedTimeout:  DefaultJobTimeout,
		},
		Notify: NotifyConfig{
			EmailTransport: "smtp",
			WebhookTimeout: DefaultWebhookWait,
			SMTP: SMTPConfig{
				Server: DefaultSMTPServer,
				Port:   DefaultSMTPPort,
			},
		},
	}
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Keys absent from the file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// LoadEnv loads envFile (when it exists) into the process environment without
// overriding variables already set, then applies the environment to Config.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if c.DSN == "" {
		set("AUTOPORT_DB_URL", &c.DSN)
	}
	set("AUTOPORT_SCHEDULER_LOG", &c.LogFile)
	set("NOTIFY_EMAIL", &c.Notify.Email)
	set("WEBHOOK_URL", &c.Notify.WebhookURL)
	set("SMTP_SERVER", &c.Notify.SMTP.Server)
	set("SMTP_USER", &c.Notify.SMTP.User)
	set("SMTP_PASSWORD", &c.Notify.SMTP.Password)

	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Notify.SMTP.Port = port
	}
	return nil
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	if c.ReportsDir == "" {
		return fmt.Errorf("reports_dir is required")
	}
	if c.ReportName == "" {
		return fmt.Errorf("report_name is required")
	}
	if c.SummaryMaxItems <= 0 {
		return fmt.Errorf("summary_max_items must be positive, got %d", c.SummaryMaxItems)
	}
	if c.Job.InProcessTimeout <= 0 || c.Job.IsolatedTimeout <= 0 {
		return fmt.Errorf("job timeouts must be positive")
	}
	for i, s := range c.Sources {
		if strings.TrimSpace(s.Location) == "" {
			return fmt.Errorf("sources[%d]: location is required", i)
		}
	}
	switch c.Notify.EmailTransport {
	case "smtp", "ses":
	default:
		return fmt.Errorf("unknown email transport %q (want smtp or ses)", c.Notify.EmailTransport)
	}
	if c.Notify.SMTP.Port <= 0 || c.Notify.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP port %d", c.Notify.SMTP.Port)
	}
	switch c.Publish.Target {
	case "":
	case "local":
		if c.Publish.LocalPath == "" {
			return fmt.Errorf("publish.local_path is required for the local target")
		}
	case "s3":
		if c.Publish.S3.Bucket == "" {
			return fmt.Errorf("publish.s3.bucket is required for the s3 target")
		}
	default:
		return fmt.Errorf("unknown publish target %q (want local or s3)", c.Publish.Target)
	}
	return nil
}

// ValidateWithDSN checks the config and the Postgres DSN.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or AUTOPORT_DB_URL is required")
	}
	return nil
}

// Descriptors converts the configured sources.
func (c *Config) Descriptors() []model.SourceDescriptor {
	out := make([]model.SourceDescriptor, len(c.Sources))
	for i, s := range c.Sources {
		out[i] = model.NewSourceDescriptor(s.Location, model.SourceKind(s.Kind), s.Options, s.Require)
	}
	return out
}

// SourceLocations lists the configured source locations in order.
func (c *Config) SourceLocations() []string {
	out := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		out[i] = s.Location
	}
	return out
}

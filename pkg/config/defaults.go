package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ccollicutt/fieldnotes/pkg/record"
	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// Default values for configuration.
const (
	DefaultImpliedYearSuffix = "/12"
	DefaultDateLayout        = table.DefaultDateLayout
	DefaultOnError           = string(table.DatePolicyFail)
	DefaultOutputFormat      = OutputFormatCSV
	DefaultMissingValue      = "NA"
	DefaultOutputDateLayout  = "2006-01-02"
	DefaultSheet             = "cleaned"
	DefaultTable             = "observations"
	DefaultWorkers           = 1
	DefaultWebhookTimeout    = 10 * time.Second
)

// DefaultColumns are the fields of an observation record.
var DefaultColumns = []string{
	"observer",
	"date_first",
	"date_last",
	"id",
	"distance",
	"direction",
	"speed",
	"measurex",
	"measurey",
	"migratory_status",
	"times_observed",
}

// DefaultDateColumns are the columns typed as dates.
var DefaultDateColumns = []string{"date_first", "date_last"}

// EnvPrefix prefixes every environment variable read by fieldnotes.
const EnvPrefix = "FIELDNOTES"

// envOverrides maps environment variables onto config fields.
// Unset variables leave the file value alone.
type envOverrides struct {
	Input             string `envconfig:"INPUT"`
	OutputPath        string `envconfig:"OUTPUT_PATH"`
	OutputFormat      string `envconfig:"OUTPUT_FORMAT"`
	ImpliedYearSuffix string `envconfig:"IMPLIED_YEAR_SUFFIX"`
	Workers           *int   `envconfig:"WORKERS"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Record: RecordConfig{
			Marker:    record.DefaultMarker,
			DateWidth: record.DefaultDateTokenWidth,
			Columns:   append([]string(nil), DefaultColumns...),
		},
		Dates: DatesConfig{
			Columns:           append([]string(nil), DefaultDateColumns...),
			ImpliedYearSuffix: DefaultImpliedYearSuffix,
			Layout:            DefaultDateLayout,
			OnError:           DefaultOnError,
		},
		Output: OutputConfig{
			Format:       DefaultOutputFormat,
			MissingValue: DefaultMissingValue,
			DateLayout:   DefaultOutputDateLayout,
			Sheet:        DefaultSheet,
			Table:        DefaultTable,
		},
		Workers: DefaultWorkers,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if env.Input != "" {
		c.Input = env.Input
	}
	if env.OutputPath != "" {
		c.Output.Path = env.OutputPath
	}
	if env.OutputFormat != "" {
		c.Output.Format = OutputFormat(env.OutputFormat)
	}
	if env.ImpliedYearSuffix != "" {
		c.Dates.ImpliedYearSuffix = env.ImpliedYearSuffix
	}
	if env.Workers != nil {
		c.Workers = *env.Workers
	}
	return nil
}

// LoadLogConfig reads logging settings from the environment.
func LoadLogConfig() (LogConfig, error) {
	var cfg LogConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return LogConfig{}, fmt.Errorf("reading log environment: %w", err)
	}
	return cfg, nil
}

// applyWebhookDefaults fills in trigger and timeout and expands tokens.
func (c *Config) applyWebhookDefaults() {
	for i := range c.Webhooks {
		wh := &c.Webhooks[i]
		wh.Token = os.ExpandEnv(wh.Token)
		if wh.Trigger == "" {
			wh.Trigger = WebhookTriggerOnIssues
		}
		if wh.Timeout <= 0 {
			wh.Timeout = DefaultWebhookTimeout
		}
	}
}

// Package config provides configuration loading and validation for fieldnotes.
package config

import (
	"time"

	"github.com/ccollicutt/fieldnotes/pkg/table"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Input is the raw observation file. It is only ever opened for reading.
	Input string `yaml:"input" validate:"required"`

	Record RecordConfig `yaml:"record"`
	Dates  DatesConfig  `yaml:"dates"`
	Output OutputConfig `yaml:"output"`

	// Workers is the number of goroutines used to parse lines.
	// Values below 2 parse sequentially.
	Workers int `yaml:"workers" validate:"min=0"`

	// Webhooks receive the run report after a successful clean.
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" validate:"dive"`
}

// RecordConfig describes the raw line format.
type RecordConfig struct {
	// Marker is the literal padded token between the two dates.
	Marker string `yaml:"marker" validate:"required"`

	// DateWidth is the fixed width of each date token next to the marker.
	DateWidth int `yaml:"date_width" validate:"min=1"`

	// Columns names the fields of a complete record, in order.
	Columns []string `yaml:"columns" validate:"required,min=1,unique,dive,required"`
}

// DatesConfig describes how the date columns are typed.
type DatesConfig struct {
	// Columns are converted from text to dates.
	Columns []string `yaml:"columns" validate:"unique"`

	// ImpliedYearSuffix is appended to each date before parsing, e.g. "/12".
	// The raw records carry no year; this one value applies to every record.
	ImpliedYearSuffix string `yaml:"implied_year_suffix" validate:"required"`

	// Layout is the Go time layout for the suffixed value.
	// See https://pkg.go.dev/time#pkg-constants for format.
	Layout string `yaml:"layout" validate:"required"`

	// OnError is "fail" (abort the run) or "warn" (null the value and log).
	OnError string `yaml:"on_error" validate:"oneof=fail warn"`
}

// Policy returns OnError as a table.DatePolicy.
func (d DatesConfig) Policy() table.DatePolicy {
	return table.DatePolicy(d.OnError)
}

// OutputFormat names a table writer.
type OutputFormat string

const (
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatXLSX OutputFormat = "xlsx"
	OutputFormatDB   OutputFormat = "db"
)

// OutputConfig describes the cleaned artifact.
type OutputConfig struct {
	// Path is the destination file. Required for every format except db.
	Path string `yaml:"path" validate:"required_unless=Format db"`

	Format OutputFormat `yaml:"format" validate:"oneof=csv json xlsx db"`

	// MissingValue is written for missing cells in csv and xlsx output.
	MissingValue string `yaml:"missing_value"`

	// DateLayout renders date cells. Defaults to ISO 8601 (2006-01-02).
	DateLayout string `yaml:"date_layout" validate:"required"`

	// Sheet is the worksheet name for xlsx output.
	Sheet string `yaml:"sheet"`

	// DBURL is sqlite:///path or postgres://... for db output.
	DBURL string `yaml:"db_url" validate:"required_if=Format db"`

	// Table is the destination table for db output.
	Table string `yaml:"table"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when date values were nulled (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every clean.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that receives the run report as JSON.
type WebhookConfig struct {
	Name string `yaml:"name,omitempty"`

	// URL must be http or https.
	URL string `yaml:"url" validate:"required,http_url"`

	// Token is sent as a bearer token. $VAR and ${VAR} are expanded.
	Token string `yaml:"token,omitempty"`

	Trigger WebhookTrigger `yaml:"trigger,omitempty" validate:"omitempty,oneof=on_issues always never"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"min=0"`
}

// LogConfig holds logging settings read from the environment.
type LogConfig struct {
	// Level is DEBUG, INFO, WARN or ERROR.
	// Env: FIELDNOTES_LOG_LEVEL (default: INFO)
	Level string `envconfig:"LOG_LEVEL" default:"INFO"`

	// Format is text or json.
	// Env: FIELDNOTES_LOG_FORMAT (default: text)
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

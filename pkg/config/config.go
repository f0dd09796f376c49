package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/fieldnotes/pkg/tableio"
)

// Override adjusts a configuration after the file and environment have been
// applied, typically from command-line flags.
type Override func(*Config)

// Load reads and validates a configuration file. Precedence, lowest first:
// defaults, the file, FIELDNOTES_* environment variables, overrides.
func Load(_ context.Context, path string, overrides ...Override) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.applyWebhookDefaults()

	return cfg, nil
}

// Parse decodes YAML over DefaultConfig without validating.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report yaml key names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a configuration for errors.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return describeValidation(err)
	}

	known := make(map[string]bool, len(cfg.Record.Columns))
	for _, c := range cfg.Record.Columns {
		known[c] = true
	}
	for _, c := range cfg.Dates.Columns {
		if !known[c] {
			return fmt.Errorf("dates.columns: %q is not one of record.columns", c)
		}
	}

	if strings.TrimSpace(cfg.Record.Marker) == "" {
		return errors.New("record.marker: must contain a non-space character")
	}

	if cfg.Output.Format != OutputFormatDB && samePath(cfg.Input, cfg.Output.Path) {
		return fmt.Errorf("output.path: must differ from input (%s)", cfg.Input)
	}

	if cfg.Output.Format == OutputFormatXLSX && cfg.Output.Sheet == "" {
		return errors.New("output.sheet: required for xlsx output")
	}
	if cfg.Output.Format == OutputFormatDB && cfg.Output.Table == "" {
		return errors.New("output.table: required for db output")
	}

	return nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Errorf("%s: is required", field)
	case "oneof":
		return fmt.Errorf("%s: invalid value %q (must be one of: %s)", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "unique":
		return fmt.Errorf("%s: entries must be unique", field)
	case "min":
		return fmt.Errorf("%s: must be at least %s", field, fe.Param())
	case "http_url":
		return fmt.Errorf("%s: must be an http or https url, got %q", field, fe.Value())
	default:
		return fmt.Errorf("%s: failed %q check", field, fe.Tag())
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return tableio.SamePath(a, b)
}

package gqlschema

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/model"
)

// DSNEnv overrides the dsn of a loaded configuration when set.
const DSNEnv = "SCHEMAGEN_DSN"

// Config is the YAML configuration of a Generator.
//
//	api_name: blog
//	dsn: postgres://localhost/blog?sslmode=disable
//	ignore: [audit_logs, Secret]
//	auto_camel_case: true
//	pagination:
//	  per_page: 25
//	  max_per_page: 100
//	log:
//	  level: debug
//	  slow_threshold: 200ms
type Config struct {
	// APIName names the root types, e.g. Query_<api_name>.
	APIName string `yaml:"api_name"`

	// DSN is the database connection string.
	DSN string `yaml:"dsn,omitempty"`

	// Ignore lists models, by Go name or table name, without root fields.
	Ignore StringList `yaml:"ignore,omitempty"`

	// Query and Mutation disable a root when set to false.
	Query    *bool `yaml:"query,omitempty"`
	Mutation *bool `yaml:"mutation,omitempty"`

	// AutoCamelCase camel-cases generated names. Defaults to true.
	AutoCamelCase *bool `yaml:"auto_camel_case,omitempty"`

	// DescribeColumns adds the catalog type of columns to field descriptions.
	DescribeColumns bool `yaml:"describe_columns,omitempty"`

	Pagination PaginationConfig `yaml:"pagination,omitempty"`
	Log        LogConfig        `yaml:"log,omitempty"`
}

// PaginationConfig configures list queries.
type PaginationConfig struct {
	PerPage    int `yaml:"per_page,omitempty"`
	MaxPerPage int `yaml:"max_per_page,omitempty"`
}

// LogConfig configures the generator logger.
type LogConfig struct {
	// Level is a slog level name: debug, info, warn or error.
	Level         string        `yaml:"level,omitempty"`
	SlowThreshold time.Duration `yaml:"slow_threshold,omitempty"`
}

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schemagen config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML configuration. The DSN is taken
// from the SCHEMAGEN_DSN environment variable when it is set. A missing DSN
// is reported later by NewFromConfig, as WithDB can stand in for it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse schemagen config: %w", err)
	}
	if dsn := os.Getenv(DSNEnv); dsn != "" {
		cfg.DSN = dsn
	}
	if err := cfg.validate(false); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	return c.validate(true)
}

func (c *Config) validate(needDSN bool) error {
	var errs []error
	if !apiNameRe.MatchString(c.APIName) {
		errs = append(errs, schemagen.NewConfigError("api_name", c.APIName, "must be a valid GraphQL name"))
	}
	if needDSN && c.DSN == "" {
		errs = append(errs, schemagen.NewConfigError("dsn", nil, "connection string is required"))
	}
	if c.Pagination.PerPage < 0 {
		errs = append(errs, schemagen.NewConfigError("pagination.per_page", c.Pagination.PerPage, "must not be negative"))
	}
	if c.Pagination.MaxPerPage < 0 {
		errs = append(errs, schemagen.NewConfigError("pagination.max_per_page", c.Pagination.MaxPerPage, "must not be negative"))
	}
	if p, m := c.Pagination.PerPage, c.Pagination.MaxPerPage; p > 0 && m > 0 && p > m {
		errs = append(errs, schemagen.NewConfigError("pagination.per_page", p, fmt.Sprintf("exceeds max_per_page (%d)", m)))
	}
	if c.Log.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
			errs = append(errs, schemagen.NewConfigError("log.level", c.Log.Level, "unknown level"))
		}
	}
	if c.Log.SlowThreshold < 0 {
		errs = append(errs, schemagen.NewConfigError("log.slow_threshold", c.Log.SlowThreshold, "must not be negative"))
	}
	return schemagen.NewAggregateError(errs...)
}

// Options converts the configuration to generator options. A log level
// installs a text logger writing to stderr.
func (c *Config) Options() []Option {
	var opts []Option
	if len(c.Ignore) > 0 {
		opts = append(opts, WithIgnoreTables(c.Ignore...))
	}
	if c.Query != nil && !*c.Query {
		opts = append(opts, WithoutQuery())
	}
	if c.Mutation != nil && !*c.Mutation {
		opts = append(opts, WithoutMutation())
	}
	if c.AutoCamelCase != nil {
		opts = append(opts, WithAutoCamelCase(*c.AutoCamelCase))
	}
	if c.DescribeColumns {
		opts = append(opts, WithDescribeColumns(true))
	}
	if c.Pagination.PerPage > 0 || c.Pagination.MaxPerPage > 0 {
		opts = append(opts, WithPagination(c.Pagination.PerPage, c.Pagination.MaxPerPage))
	}
	if c.Log.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.Log.Level)); err == nil {
			opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))))
		}
	}
	if c.Log.SlowThreshold > 0 {
		opts = append(opts, WithSlowThreshold(c.Log.SlowThreshold))
	}
	return opts
}

// NewFromConfig returns a Generator configured by cfg. Options given here
// are applied after the ones derived from cfg. The DSN may be empty when
// WithDB is among them.
func NewFromConfig(reg *model.Registry, cfg *Config, opts ...Option) (*Generator, error) {
	opts = append(cfg.Options(), opts...)
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := cfg.validate(o.db == nil); err != nil {
		return nil, err
	}
	return New(cfg.APIName, reg, cfg.DSN, opts...)
}

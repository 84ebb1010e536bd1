package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/labsite/internal/domain/status"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LABSITE_"

// EnvConfigFile names the YAML file to load when no path is given.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file at path, or at $LABSITE_CONFIG when path is empty
//  3. env (prefix LABSITE_)
func Load(_ context.Context, path string) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// LABSITE_DATA_DIR -> data_dir; list keys take comma separated values.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "config" {
			return "", nil
		}
		if key == "home_organizations" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	// lists replace the default, maps are merged into it
	if k.Exists("home_organizations") {
		cfg.HomeOrganizations = k.Strings("home_organizations")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"data_dir", c.DataDir},
		{"articles_dir", c.ArticlesDir},
		{"output_dir", c.OutputDir},
		{"assets_dir", c.AssetsDir},
		{"home_institution", c.HomeInstitution},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, f.name)
		}
	}
	if !status.Policy(c.UndecidedPolicy).Valid() {
		return fmt.Errorf("%w: undecided_policy %q (want %s or %s)",
			ErrInvalidConfig, c.UndecidedPolicy, status.PolicyExclude, status.PolicyAlumni)
	}
	return c.validateMetrics()
}

// metricName matches a Prometheus name fragment or label name.
var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func (c *Config) validateMetrics() error {
	for _, f := range []struct{ name, value string }{
		{"metrics_namespace", c.MetricsNamespace},
		{"metrics_subsystem", c.MetricsSubsystem},
	} {
		if f.value != "" && !metricName.MatchString(f.value) {
			return fmt.Errorf("%w: %s %q is not a valid metric name", ErrInvalidConfig, f.name, f.value)
		}
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

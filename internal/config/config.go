// Package config defines the generator configuration and its loading.
package config

import (
	"github.com/okian/labsite/internal/adapters/recordsource"
	"github.com/okian/labsite/internal/domain/articles"
	"github.com/okian/labsite/internal/domain/status"
	"github.com/okian/labsite/pkg/metrics"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFile, when set, receives a copy of the console log.
	LogFile string `koanf:"log_file"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	DataDir     string `koanf:"data_dir"`
	ArticlesDir string `koanf:"articles_dir"`
	OutputDir   string `koanf:"output_dir"`
	// TemplateDir holds *.tmpl overrides; empty uses the built-in templates only.
	TemplateDir string `koanf:"template_dir"`
	AssetsDir   string `koanf:"assets_dir"`

	// HomeInstitution decides academic roles from education records.
	HomeInstitution string `koanf:"home_institution"`
	// HomeOrganizations are the group names an experience must mention to
	// count as membership.
	HomeOrganizations []string          `koanf:"home_organizations"`
	RoleMap           map[string]string `koanf:"role_map"`
	DegreeRoles       map[string]string `koanf:"degree_roles"`
	// UndecidedPolicy is "exclude" or "alumni".
	UndecidedPolicy string `koanf:"undecided_policy"`

	CategoryMap     map[string]string `koanf:"category_map"`
	TagColors       map[string]string `koanf:"tag_colors"`
	ArticlePlatform string            `koanf:"article_platform"`

	RosterEnabled bool `koanf:"roster_enabled"`
	CheckLinks    bool `koanf:"check_links"`
	// MetricsFile, when set, receives a Prometheus textfile after each build.
	MetricsFile string `koanf:"metrics_file"`
	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	// MetricsBuckets are the stage duration buckets in seconds; empty keeps
	// the built-in buckets.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`
	// MetricsLabels are constant labels on every metric, e.g. site: tardis.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
	PreviewAddr   string            `koanf:"preview_addr"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		DataDir:           "group-data",
		ArticlesDir:       "research_news/articles",
		OutputDir:         "site",
		AssetsDir:         "assets",
		HomeInstitution:   "Michigan State University",
		HomeOrganizations: []string{"DTI", "TARDIS", "ICER", "kerzendorf"},
		RoleMap:           status.DefaultRoleMap(),
		DegreeRoles:       status.DefaultDegreeRoles(),
		UndecidedPolicy:   string(status.PolicyExclude),
		CategoryMap:       recordsource.DefaultCategoryMap(),
		TagColors:         articles.DefaultTagColors(),
		ArticlePlatform:   recordsource.DefaultPlatform,
		MetricsNamespace:  metrics.DefaultNamespace,
		MetricsSubsystem:  metrics.DefaultSubsystem,
		PreviewAddr:       "127.0.0.1:8080",
	}
}

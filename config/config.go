package config

import (
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	App    AppConfig    `yaml:"app" json:"app" mapstructure:"app"`
	Data   DataConfig   `yaml:"data" json:"data" mapstructure:"data"`
	Report ReportConfig `yaml:"report" json:"report" mapstructure:"report"`
}

// AppConfig contains general application settings
type AppConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file" mapstructure:"log_file"`
	// Timezone is the run's reference timezone for calendar bucketing.
	// "local" (the default) uses the system timezone.
	Timezone string `yaml:"timezone" json:"timezone" mapstructure:"timezone"`
}

// DataConfig contains data source settings
type DataConfig struct {
	// Paths are pre-fetched source roots, each "path" or "path:name".
	Paths []string `yaml:"paths" json:"paths" mapstructure:"paths"`
	// Remotes are rsync-reachable host aliases whose ~/.claude is fetched.
	Remotes []string `yaml:"remotes" json:"remotes" mapstructure:"remotes"`
	// RemoteOnly skips the local machine as a source.
	RemoteOnly bool `yaml:"remote_only" json:"remote_only" mapstructure:"remote_only"`
	// MergeSources folds sources before reporting: "a=b,c=d".
	MergeSources string `yaml:"merge_sources" json:"merge_sources" mapstructure:"merge_sources"`
	CacheEnabled bool   `yaml:"cache_enabled" json:"cache_enabled" mapstructure:"cache_enabled"`
	CacheDir     string `yaml:"cache_dir" json:"cache_dir" mapstructure:"cache_dir"`
}

// ReportConfig contains output settings
type ReportConfig struct {
	JSON    bool   `yaml:"json" json:"json" mapstructure:"json"`
	HTML    bool   `yaml:"html" json:"html" mapstructure:"html"`
	Output  string `yaml:"output" json:"output" mapstructure:"output"`
	Open    bool   `yaml:"open" json:"open" mapstructure:"open"`
	Watch   bool   `yaml:"watch" json:"watch" mapstructure:"watch"`
	NoColor bool   `yaml:"no_color" json:"no_color" mapstructure:"no_color"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")
	v.SetDefault("app.timezone", "local")

	v.SetDefault("data.paths", []string{})
	v.SetDefault("data.remotes", []string{})
	v.SetDefault("data.remote_only", false)
	v.SetDefault("data.merge_sources", "")
	v.SetDefault("data.cache_enabled", true)
	v.SetDefault("data.cache_dir", "")

	v.SetDefault("report.json", false)
	v.SetDefault("report.html", false)
	v.SetDefault("report.output", "")
	v.SetDefault("report.open", false)
	v.SetDefault("report.watch", false)
	v.SetDefault("report.no_color", false)
}

// Load unmarshals and validates the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

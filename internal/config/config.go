// Package config loads and validates harvester configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Output    OutputConfig    `mapstructure:"output"`
	Bulk      BulkConfig      `mapstructure:"bulk"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Validator ValidatorConfig `mapstructure:"validator"`
	Status    StatusConfig    `mapstructure:"status"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// OutputConfig sets where batch files, checkpoints, and error logs land.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// BulkConfig governs the bulk orchestrator.
type BulkConfig struct {
	BatchSize       int     `mapstructure:"batch_size"`
	Workers         int     `mapstructure:"workers"`
	RatePerSecond   float64 `mapstructure:"rate_per_second"`
	CheckpointEvery int     `mapstructure:"checkpoint_every"`
	SkipInvalid     bool    `mapstructure:"skip_invalid"`
	Resume          bool    `mapstructure:"resume"`
	EndBuffer       int     `mapstructure:"end_buffer"`
	HardCap         int     `mapstructure:"hard_cap"`
}

// FetchConfig configures the static HTTP fetch path.
type FetchConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// BrowserConfig configures the headless rendering session.
type BrowserConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	NavTimeout      time.Duration `mapstructure:"nav_timeout"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	RestartAttempts int           `mapstructure:"restart_attempts"`
	RestartBackoff  time.Duration `mapstructure:"restart_backoff"`
}

// ValidatorConfig holds the content-quality heuristic thresholds and phrase
// lists. Everything here is tunable; the defaults reflect the observed
// boilerplate of tripitaka.online.
type ValidatorConfig struct {
	MinContentChars        int      `mapstructure:"min_content_chars"`
	ShortContentChars      int      `mapstructure:"short_content_chars"`
	LongContentChars       int      `mapstructure:"long_content_chars"`
	ShortRepetitionRatio   float64  `mapstructure:"short_repetition_ratio"`
	ExtremeRepetitionRatio float64  `mapstructure:"extreme_repetition_ratio"`
	MinTokensForRatio      int      `mapstructure:"min_tokens_for_ratio"`
	PlaceholderTitles      []string `mapstructure:"placeholder_titles"`
	BoilerplatePhrases     []string `mapstructure:"boilerplate_phrases"`
	GenuinePhrases         []string `mapstructure:"genuine_phrases"`
}

// StatusConfig controls the optional HTTP status/metrics listener.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig selects the zap profile and minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.harvester")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", "output/bulk")

	v.SetDefault("bulk.batch_size", 100)
	v.SetDefault("bulk.workers", 3)
	v.SetDefault("bulk.rate_per_second", 1.0)
	v.SetDefault("bulk.checkpoint_every", 10)
	v.SetDefault("bulk.skip_invalid", false)
	v.SetDefault("bulk.resume", true)
	v.SetDefault("bulk.end_buffer", 1000)
	v.SetDefault("bulk.hard_cap", 100000)

	v.SetDefault("fetch.base_url", "https://tripitaka.online")
	v.SetDefault("fetch.user_agent", "tripitaka-harvester/1.0 (+https://github.com/kasunw/tripitaka-harvester)")
	v.SetDefault("fetch.request_timeout", "30s")

	v.SetDefault("browser.enabled", true)
	v.SetDefault("browser.nav_timeout", "30s")
	v.SetDefault("browser.settle_delay", "5s")
	v.SetDefault("browser.restart_attempts", 3)
	v.SetDefault("browser.restart_backoff", "5s")

	v.SetDefault("validator.min_content_chars", 500)
	v.SetDefault("validator.short_content_chars", 2000)
	v.SetDefault("validator.long_content_chars", 2000)
	v.SetDefault("validator.short_repetition_ratio", 0.3)
	v.SetDefault("validator.extreme_repetition_ratio", 0.03)
	v.SetDefault("validator.min_tokens_for_ratio", 10)
	v.SetDefault("validator.placeholder_titles", []string{"tripitaka.online", "Untitled"})
	v.SetDefault("validator.boilerplate_phrases", []string{
		"උතුම් වූ ධර්මදානය පිණිස මෙම දෙසුම ඔබේ මිතුරන් අතරේ බෙදාහරින්න",
		"Previous Next",
		"© 1999 - 2021 Mahamevnawa Buddhist Monastery",
		"© 1999 - 2025 Mahamevnawa Buddhist Monastery",
		"Contact: info@tripitaka.online",
	})
	v.SetDefault("validator.genuine_phrases", []string{
		"මා හට අසන්නට ලැබුණේ",
		"ඒවං මේ සුතං",
		"බුදුරජාණන් වහන්සේ",
		"භාග්‍යවත්",
		"භික්ෂු",
		"සූත්‍රය",
		"නිකාය",
	})

	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":9090")

	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Bulk.BatchSize <= 0 {
		return fmt.Errorf("bulk.batch_size must be > 0")
	}
	if c.Bulk.Workers <= 0 {
		return fmt.Errorf("bulk.workers must be > 0")
	}
	if c.Bulk.RatePerSecond <= 0 {
		return fmt.Errorf("bulk.rate_per_second must be > 0")
	}
	if c.Bulk.CheckpointEvery <= 0 {
		return fmt.Errorf("bulk.checkpoint_every must be > 0")
	}
	if c.Bulk.HardCap <= 0 {
		return fmt.Errorf("bulk.hard_cap must be > 0")
	}
	if c.Fetch.BaseURL == "" {
		return fmt.Errorf("fetch.base_url must be set")
	}
	if c.Fetch.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if c.Fetch.RequestTimeout <= 0 {
		return fmt.Errorf("fetch.request_timeout must be > 0")
	}
	if c.Browser.Enabled {
		if c.Browser.NavTimeout <= 0 {
			return fmt.Errorf("browser.nav_timeout must be > 0 when the browser is enabled")
		}
		if c.Browser.RestartAttempts <= 0 {
			return fmt.Errorf("browser.restart_attempts must be > 0 when the browser is enabled")
		}
	}
	if c.Validator.MinContentChars < 0 {
		return fmt.Errorf("validator.min_content_chars must be >= 0")
	}
	if c.Validator.ShortRepetitionRatio < 0 || c.Validator.ShortRepetitionRatio > 1 {
		return fmt.Errorf("validator.short_repetition_ratio must be in [0,1]")
	}
	if c.Validator.ExtremeRepetitionRatio < 0 || c.Validator.ExtremeRepetitionRatio > 1 {
		return fmt.Errorf("validator.extreme_repetition_ratio must be in [0,1]")
	}
	if c.Status.Enabled && c.Status.Addr == "" {
		return fmt.Errorf("status.addr must be set when status is enabled")
	}
	return nil
}

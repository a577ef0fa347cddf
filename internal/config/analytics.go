package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AnalyticsConfig tunes the aggregation defaults and may change at runtime.
type AnalyticsConfig struct {
	TopN            int    `mapstructure:"topN"`
	DefaultScope    string `mapstructure:"defaultScope"`
	DefaultCurrency string `mapstructure:"defaultCurrency"`
}

func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		TopN:            5,
		DefaultScope:    "year",
		DefaultCurrency: "USD",
	}
}

type AnalyticsConfigHolder struct {
	current atomic.Value // holds AnalyticsConfig
}

// NewAnalyticsConfigHolder reads analytics.yml and keeps it reloaded on change.
// DEFAULT_CURRENCY seeds the currency default when the file does not set one.
func NewAnalyticsConfigHolder(cfg Config, log *zap.Logger) (*AnalyticsConfigHolder, error) {
	defaults := DefaultAnalyticsConfig()
	if cfg.DefaultCurrency != "" {
		defaults.DefaultCurrency = cfg.DefaultCurrency
	}
	return newAnalyticsConfigHolder(log, defaults, "/etc/billinginsights", ".")
}

func newAnalyticsConfigHolder(log *zap.Logger, defaults AnalyticsConfig, paths ...string) (*AnalyticsConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("analytics-config")

	v := viper.New()
	v.SetConfigName("analytics")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("BILLINGINSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("analytics.topN", defaults.TopN)
	v.SetDefault("analytics.defaultScope", defaults.DefaultScope)
	v.SetDefault("analytics.defaultCurrency", defaults.DefaultCurrency)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := decodeAnalyticsConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &AnalyticsConfigHolder{}
	holder.current.Store(cfg)

	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeAnalyticsConfig(v)
		if err != nil {
			log.Warn("analytics config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("analytics config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticAnalyticsConfigHolder pins cfg without touching the filesystem.
func NewStaticAnalyticsConfigHolder(cfg AnalyticsConfig) *AnalyticsConfigHolder {
	holder := &AnalyticsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *AnalyticsConfigHolder) Get() AnalyticsConfig {
	return h.current.Load().(AnalyticsConfig)
}

func decodeAnalyticsConfig(v *viper.Viper) (AnalyticsConfig, error) {
	var cfg AnalyticsConfig
	if err := v.UnmarshalKey("analytics", &cfg); err != nil {
		return AnalyticsConfig{}, err
	}
	cfg.DefaultScope = strings.ToLower(strings.TrimSpace(cfg.DefaultScope))
	cfg.DefaultCurrency = strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	if err := validateAnalyticsConfig(cfg); err != nil {
		return AnalyticsConfig{}, err
	}
	return cfg, nil
}

func validateAnalyticsConfig(cfg AnalyticsConfig) error {
	if cfg.TopN < 1 {
		return errors.New("analytics.topN must be at least 1")
	}
	switch cfg.DefaultScope {
	case "year", "quarter", "month":
	default:
		return fmt.Errorf("analytics.defaultScope %q is not one of year, quarter, month", cfg.DefaultScope)
	}
	if len(cfg.DefaultCurrency) != 3 {
		return fmt.Errorf("analytics.defaultCurrency %q must be an ISO 4217 code", cfg.DefaultCurrency)
	}
	return nil
}

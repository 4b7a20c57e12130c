package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NavigationConfig locates the invoice listing view.
type NavigationConfig struct {
	// ListingPath is where successful create and update submissions land.
	ListingPath string `mapstructure:"listingPath"`
	// CacheKey identifies the cached listing that mutations invalidate.
	CacheKey string `mapstructure:"cacheKey"`
}

func DefaultNavigationConfig() NavigationConfig {
	return NavigationConfig{
		ListingPath: "/dashboard/invoices",
		CacheKey:    "/dashboard/invoices",
	}
}

type NavigationHolder struct {
	current atomic.Value // holds NavigationConfig
}

var navigationConfigPaths = []string{
	"/var/lib/invoices/config", // Volume-mounted config
	"/etc/invoices",            // System config
	".",                        // Current directory (dev mode)
}

func NewNavigationHolder(log *zap.Logger) (*NavigationHolder, error) {
	return newNavigationHolder(log, navigationConfigPaths...)
}

func newNavigationHolder(log *zap.Logger, paths ...string) (*NavigationHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.navigation")

	v := viper.New()
	v.SetConfigName("navigation")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	defaults := DefaultNavigationConfig()
	v.SetDefault("navigation.listingPath", defaults.ListingPath)
	v.SetDefault("navigation.cacheKey", defaults.CacheKey)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	var cfg NavigationConfig
	if err := v.UnmarshalKey("navigation", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizeNavigation(cfg)
	if err := validateNavigationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &NavigationHolder{}
	holder.current.Store(cfg)

	if found {
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated NavigationConfig
			if err := v.UnmarshalKey("navigation", &updated); err != nil {
				log.Warn("navigation config reload failed", zap.Error(err))
				return
			}
			updated = normalizeNavigation(updated)
			if err := validateNavigationConfig(updated); err != nil {
				log.Warn("invalid navigation config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("navigation config reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticNavigationHolder returns a holder that never reloads.
func NewStaticNavigationHolder(cfg NavigationConfig) *NavigationHolder {
	holder := &NavigationHolder{}
	holder.current.Store(normalizeNavigation(cfg))
	return holder
}

func (h *NavigationHolder) Get() NavigationConfig {
	return h.current.Load().(NavigationConfig)
}

func normalizeNavigation(cfg NavigationConfig) NavigationConfig {
	cfg.ListingPath = strings.TrimRight(strings.TrimSpace(cfg.ListingPath), "/")
	cfg.CacheKey = strings.TrimSpace(cfg.CacheKey)
	if cfg.CacheKey == "" {
		cfg.CacheKey = cfg.ListingPath
	}
	return cfg
}

func validateNavigationConfig(cfg NavigationConfig) error {
	if cfg.ListingPath == "" {
		return errors.New("navigation.listingPath cannot be empty")
	}
	if !strings.HasPrefix(cfg.ListingPath, "/") {
		return errors.New("navigation.listingPath must be absolute")
	}
	return nil
}

package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds engine-wide billing defaults. Condominium settings
// stored in the database override these values per calculation pass.
type BillingConfig struct {
	// DefaultBasicRate is the fallback cost per cubic meter when no
	// basic_rate setting exists.
	DefaultBasicRate float64 `mapstructure:"defaultBasicRate"`
	// ReconcileTolerance is the maximum accepted difference between the
	// billed total and the receipt amount before an anomaly is flagged.
	ReconcileTolerance float64 `mapstructure:"reconcileTolerance"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DefaultBasicRate:   1.5,
		ReconcileTolerance: 0.01,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/aquabill/config") // Volume-mounted config
	v.AddConfigPath("/etc/aquabill")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("AQUABILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.defaultBasicRate", defaults.DefaultBasicRate)
	v.SetDefault("billing.reconcileTolerance", defaults.ReconcileTolerance)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

// NewStaticBillingConfigHolder returns a holder pinned to cfg, for tests.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DefaultBasicRate <= 0 {
		return errors.New("billing.defaultBasicRate must be positive")
	}
	if cfg.ReconcileTolerance < 0 {
		return errors.New("billing.reconcileTolerance cannot be negative")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ScoringConfig externalizes the per-exam credit cost and the CECRL band
// thresholds. Both are content concerns, not code.
type ScoringConfig struct {
	// ExamCostCredits is the fixed amount debited on exam completion.
	ExamCostCredits int64 `mapstructure:"examCostCredits"`
	// MaxScaledScore is the top of the numeric scale (inclusive).
	MaxScaledScore int `mapstructure:"maxScaledScore"`
	// Bands map a minimum scaled score to a CECRL level, ascending.
	Bands []ScoringBand `mapstructure:"bands"`
}

type ScoringBand struct {
	Level    string `mapstructure:"level"`
	MinScore int    `mapstructure:"minScore"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ExamCostCredits: 50,
		MaxScaledScore:  699,
		Bands: []ScoringBand{
			{Level: "A1", MinScore: 0},
			{Level: "A2", MinScore: 100},
			{Level: "B1", MinScore: 200},
			{Level: "B2", MinScore: 350},
			{Level: "C1", MinScore: 500},
			{Level: "C2", MinScore: 600},
		},
	}
}

// ScoringConfigHolder serves the current scoring config and hot-reloads it
// when the underlying file changes. Reads are lock-free.
type ScoringConfigHolder struct {
	current atomic.Value // holds ScoringConfig
}

func NewScoringConfigHolder() (*ScoringConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("scoring")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fleexpert/config")
	v.AddConfigPath("/etc/fleexpert")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FLEEXPERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultScoringConfig()
		v.SetDefault("scoring.examCostCredits", defaults.ExamCostCredits)
		v.SetDefault("scoring.maxScaledScore", defaults.MaxScaledScore)
		v.SetDefault("scoring.bands", defaults.Bands)
	}

	var cfg ScoringConfig
	if err := v.UnmarshalKey("scoring", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Bands) == 0 {
		cfg = DefaultScoringConfig()
	}
	if err := ValidateScoringConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ScoringConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ScoringConfig
		if err := v.UnmarshalKey("scoring", &updated); err != nil {
			log.Printf("[scoring-config] reload failed: %v", err)
			return
		}
		if err := ValidateScoringConfig(updated); err != nil {
			log.Printf("[scoring-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[scoring-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ScoringConfigHolder) Get() ScoringConfig {
	return h.current.Load().(ScoringConfig)
}

// NewStaticScoringHolder wraps a fixed config; used by tests.
func NewStaticScoringHolder(cfg ScoringConfig) *ScoringConfigHolder {
	holder := &ScoringConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

var validLevels = map[string]struct{}{
	"A1": {}, "A2": {}, "B1": {}, "B2": {}, "C1": {}, "C2": {},
}

// ValidateScoringConfig rejects configs that would break the monotonic
// score-to-band mapping.
func ValidateScoringConfig(cfg ScoringConfig) error {
	if cfg.ExamCostCredits <= 0 {
		return errors.New("scoring.examCostCredits must be positive")
	}
	if cfg.MaxScaledScore <= 0 {
		return errors.New("scoring.maxScaledScore must be positive")
	}
	if len(cfg.Bands) == 0 {
		return errors.New("scoring.bands cannot be empty")
	}
	if cfg.Bands[0].MinScore != 0 {
		return errors.New("scoring.bands must start at minScore 0")
	}
	prev := -1
	for _, band := range cfg.Bands {
		if _, ok := validLevels[band.Level]; !ok {
			return fmt.Errorf("scoring.bands: unknown level %q", band.Level)
		}
		if band.MinScore <= prev {
			return errors.New("scoring.bands minScore values must be strictly ascending")
		}
		if band.MinScore > cfg.MaxScaledScore {
			return errors.New("scoring.bands minScore exceeds maxScaledScore")
		}
		prev = band.MinScore
	}
	return nil
}

// Package config loads and saves spendvibe configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all spendvibe configuration.
type Config struct {
	General    GeneralConfig   `toml:"general"`
	Analysis   AnalysisConfig  `toml:"analysis"`
	Fixed      FixedConfig     `toml:"fixed"`
	Categories Categories      `toml:"categories"`
	Recommend  RecommendConfig `toml:"recommend"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultMonths int    `toml:"default_months"`
	DBPath        string `toml:"db_path,omitempty"`
	User          string `toml:"user,omitempty"`
	LogLevel      string `toml:"log_level"`
}

// AnalysisConfig controls feature engineering and clustering.
type AnalysisConfig struct {
	Seed          int64   `toml:"seed"`
	MaxClusters   int     `toml:"max_clusters"`
	NInit         int     `toml:"n_init"`
	MaxIter       int     `toml:"max_iter"`
	TextFeatures  int     `toml:"text_features"`
	RecentPerMode int     `toml:"recent_per_mode"`
	ImpulseAmount float64 `toml:"impulse_amount"`
	HighAmount    float64 `toml:"high_amount"`
}

// FixedConfig holds the fixed-expense detection thresholds.
type FixedConfig struct {
	CVThreshold     float64 `toml:"cv_threshold"`
	DayStdThreshold float64 `toml:"day_std_threshold"`
	MinCount        int     `toml:"min_count"`
}

// Categories holds the category-hierarchy policy.
type Categories struct {
	// TargetParents are top-level ids that may appear directly as a
	// transaction's own category.
	TargetParents []string `toml:"target_parents"`
	// ExcludedParents are non-spending flows: income, transfers,
	// investments, debt repayment.
	ExcludedParents []string `toml:"excluded_parents"`
	SocialParent    string   `toml:"social_parent"`
	FixedParent     string   `toml:"fixed_parent"`
	// NonEssential matches parent ids or parent names.
	NonEssential []string `toml:"non_essential"`
	// Kinds maps a parent id or name to a model.ParentKind name.
	Kinds map[string]string `toml:"kinds"`
}

// RecommendConfig holds the recommendation and tip thresholds.
type RecommendConfig struct {
	NightAmountRatio float64 `toml:"night_amount_ratio"`
	LunchCountRatio  float64 `toml:"lunch_count_ratio"`
	WorkHighCount    int     `toml:"work_high_count"`
	FixedRatioTip    float64 `toml:"fixed_ratio_tip"`
	TrendBand        float64 `toml:"trend_band"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultMonths: 6,
			LogLevel:      "info",
		},
		Analysis: AnalysisConfig{
			Seed:          42,
			MaxClusters:   5,
			NInit:         10,
			MaxIter:       300,
			TextFeatures:  5,
			RecentPerMode: 20,
			ImpulseAmount: 500,
			HighAmount:    500,
		},
		Fixed: FixedConfig{
			CVThreshold:     0.15,
			DayStdThreshold: 3.0,
			MinCount:        2,
		},
		Categories: Categories{
			TargetParents: []string{
				"FIXED", "LIVING", "SHOPPING", "TRANSPORT", "EDU", "ENT", "SOCIAL",
				"A10001", "B10001", "C10001", "D10001", "J10001",
			},
			ExcludedParents: []string{"INC", "ASSET", "LIABILITY", "INVEST", "REIMB", "FP", "J10001"},
			SocialParent:    "SOCIAL",
			FixedParent:     "FIXED",
			NonEssential:    []string{"SHOPPING", "ENT", "SOCIAL", "C10001", "D10001"},
			Kinds: map[string]string{
				"FIXED":     "fixed",
				"LIVING":    "living",
				"SHOPPING":  "shopping",
				"TRANSPORT": "transport",
				"EDU":       "education",
				"ENT":       "entertainment",
				"SOCIAL":    "social",
				"C10001":    "shopping",
				"D10001":    "electronics",
			},
		},
		Recommend: RecommendConfig{
			NightAmountRatio: 0.2,
			LunchCountRatio:  0.1,
			WorkHighCount:    5,
			FixedRatioTip:    0.6,
			TrendBand:        0.05,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spendvibe")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spendvibe")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Save writes the config to path.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-supplied config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Analysis.MaxClusters < 1:
		return fmt.Errorf("analysis.max_clusters must be at least 1, got %d", c.Analysis.MaxClusters)
	case c.Analysis.NInit < 1:
		return fmt.Errorf("analysis.n_init must be at least 1, got %d", c.Analysis.NInit)
	case c.Analysis.TextFeatures < 0 || c.Analysis.TextFeatures > 5:
		return fmt.Errorf("analysis.text_features must be between 0 and 5, got %d", c.Analysis.TextFeatures)
	case c.Analysis.RecentPerMode < 1:
		return fmt.Errorf("analysis.recent_per_mode must be at least 1, got %d", c.Analysis.RecentPerMode)
	case c.Fixed.MinCount < 2:
		return fmt.Errorf("fixed.min_count must be at least 2, got %d", c.Fixed.MinCount)
	}
	return nil
}

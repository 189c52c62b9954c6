// Package cmd implements the spendvibe CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendvibe/internal/config"
)

var flagInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagInit, "init", false, "Write the default configuration file")
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	path := configPath()

	if flagInit {
		if config.Exists(path) {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.Save(path, config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Printf("  Wrote default config to %s\n", path)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default months: %d\n", cfg.General.DefaultMonths)
	fmt.Printf("    Database:       %s\n", dbPath(cfg))
	if cfg.General.User != "" {
		fmt.Printf("    User:           %s\n", cfg.General.User)
	}
	fmt.Printf("    Log level:      %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [Analysis]")
	fmt.Printf("    Seed:           %d\n", cfg.Analysis.Seed)
	fmt.Printf("    Max clusters:   %d\n", cfg.Analysis.MaxClusters)
	fmt.Printf("    Restarts:       %d\n", cfg.Analysis.NInit)
	fmt.Printf("    Text features:  %d\n", cfg.Analysis.TextFeatures)
	fmt.Printf("    Impulse amount: %.2f\n", cfg.Analysis.ImpulseAmount)
	fmt.Println()

	fmt.Println("  [Fixed]")
	fmt.Printf("    CV threshold:      %.2f\n", cfg.Fixed.CVThreshold)
	fmt.Printf("    Day-std threshold: %.1f\n", cfg.Fixed.DayStdThreshold)
	fmt.Printf("    Min count:         %d\n", cfg.Fixed.MinCount)
	fmt.Println()

	fmt.Println("  [Categories]")
	fmt.Printf("    Excluded parents: %s\n", strings.Join(cfg.Categories.ExcludedParents, ", "))
	fmt.Printf("    Non-essential:    %s\n", strings.Join(cfg.Categories.NonEssential, ", "))
	fmt.Println()

	fmt.Println("  Run `spendvibe config --init` to write a config file.")
	return nil
}

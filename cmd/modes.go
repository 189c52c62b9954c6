package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendvibe/internal/pipeline"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Spending by time of day with recent merchants and scenes",
	RunE:  runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

func runModes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	months := resolveMonths(cmd, cfg)

	ds, err := loadData(cfg, months)
	if err != nil {
		return err
	}
	defer ds.Close()

	analyzer := pipeline.New(cfg, newLogger(cfg))
	defer analyzer.Close()

	r := analyzer.Analyze(singleRequest(ds, cfg, months))

	if flagJSON {
		if r.Error != "" {
			return printJSON(r)
		}
		return printJSON(struct {
			Radar any `json:"radar"`
			Modes any `json:"modes"`
		}{r.Radar, r.Modes})
	}

	renderModes(r)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendvibe/internal/model"
	"github.com/theirongolddev/spendvibe/internal/pipeline"
)

var (
	flagUsers    []string
	flagAllUsers bool
	flagWorkers  int
	flagNoSave   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Full lifestyle diagnosis",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&flagUsers, "users", nil, "Analyze several users in one batch (comma-separated)")
	analyzeCmd.Flags().BoolVar(&flagAllUsers, "all", false, "Analyze every user in the data")
	analyzeCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Batch worker count (0 = GOMAXPROCS)")
	analyzeCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store reports in the database")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	months := resolveMonths(cmd, cfg)

	ds, err := loadData(cfg, months)
	if err != nil {
		return err
	}
	defer ds.Close()

	analyzer := pipeline.New(cfg, log)
	defer analyzer.Close()

	var reports []*model.Report
	users := flagUsers
	if flagAllUsers {
		if users, err = allUsers(ds); err != nil {
			return err
		}
	}
	if len(users) > 0 {
		reqs := buildRequests(ds, users, months)
		reports = analyzer.AnalyzeBatch(reqs, flagWorkers, progress("Analyzing"))
		if !flagQuiet {
			fmt.Fprintln(os.Stderr)
		}
	} else {
		reports = []*model.Report{analyzer.Analyze(singleRequest(ds, cfg, months))}
	}

	if ds.st != nil && !flagNoSave {
		for _, r := range reports {
			if err := ds.st.SaveReport(r); err != nil {
				log.Warn().Err(err).Str("report", r.ID).Msg("saving report")
			}
		}
	}

	if flagJSON {
		if len(reports) == 1 {
			return printJSON(reports[0])
		}
		return printJSON(reports)
	}

	for _, r := range reports {
		renderReport(r)
	}
	return nil
}

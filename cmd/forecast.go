package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendvibe/internal/cli"
	"github.com/theirongolddev/spendvibe/internal/forecast"
	"github.com/theirongolddev/spendvibe/internal/model"
	"github.com/theirongolddev/spendvibe/internal/pipeline"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Monthly totals and next month's projected spend",
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
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

	req := singleRequest(ds, cfg, months)
	txns := pipeline.Prepare(req.Transactions, analyzer.Index(req.Categories))
	fc := analyzer.Forecaster.Predict(txns)

	if flagJSON {
		return printJSON(fc)
	}

	totals := forecast.MonthlyTotals(txns)
	if len(totals) == 0 {
		fmt.Println("\n  No spending found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(reportTitle("BUDGET FORECAST", &model.Report{UserID: req.UserID, WindowMonths: months})))
	fmt.Println()

	rows := make([][]string, 0, len(totals))
	values := make([]float64, 0, len(totals))
	for _, m := range totals {
		rows = append(rows, []string{m.MonthEnd.Format("2006-01"), cli.FormatAmount(m.Amount)})
		values = append(values, m.Amount)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly Spend",
		Headers: []string{"Month", "Total"},
		Rows:    rows,
	}))
	if len(values) > 1 {
		fmt.Printf("\n  Trend  %s\n", cli.RenderSparkline(values))
	}

	renderForecast(&fc)
	return nil
}

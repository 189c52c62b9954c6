package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/spendvibe/internal/cli"
	"github.com/theirongolddev/spendvibe/internal/model"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func reportTitle(prefix string, r *model.Report) string {
	user := r.UserID
	if user == "" {
		user = "all users"
	}
	if r.WindowMonths > 0 {
		return fmt.Sprintf("%s  %s  Last %s", prefix, user, cli.FormatMonths(r.WindowMonths))
	}
	return fmt.Sprintf("%s  %s", prefix, user)
}

// renderReport prints the full diagnosis.
func renderReport(r *model.Report) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(reportTitle("LIFESTYLE DIAGNOSIS", r)))
	fmt.Println()

	if r.Error != "" {
		fmt.Println(cli.RenderError(r.Error))
		return
	}

	fmt.Println(cli.RenderVibe(r.Diagnosis.Vibe))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Overview",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Transactions", cli.FormatNumber(int64(r.Diagnosis.TotalTxns))},
			{"Average spend", cli.FormatAmount(r.Diagnosis.AvgSpend)},
			{"Window", cli.FormatMonths(r.WindowMonths)},
			{"Habits found", strconv.Itoa(r.ClusterCount)},
		},
	}))

	renderClusters(r.Clusters)
	renderFixed(r.FixedExpenses)
	renderForecast(r.Forecast)
	renderRadar(r.Radar)

	if r.TimeSeries != nil && len(r.TimeSeries.Points) > 1 {
		totals := make([]float64, len(r.TimeSeries.Points))
		var peak float64
		for i, p := range r.TimeSeries.Points {
			totals[i] = p.Total
			peak = max(peak, p.Total)
		}
		fmt.Println()
		fmt.Printf("  Daily spend  %s  peak %s\n", cli.RenderSparkline(totals), cli.FormatCompact(peak))
	}

	renderAdvice(r)
}

func renderClusters(clusters []model.ClusterSummary) {
	if len(clusters) == 0 {
		return
	}
	rows := make([][]string, 0, len(clusters))
	for _, c := range clusters {
		rows = append(rows, []string{
			strconv.Itoa(c.Label),
			c.Vibe,
			cli.FormatNumber(int64(c.TotalTransactions)),
			cli.FormatAmount(c.AvgSpend),
			strings.Join(c.TopCategories, ", "),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Spending Habits",
		Headers: []string{"#", "Vibe", "Txns", "Avg", "Top Categories"},
		Rows:    rows,
	}))
}

func renderFixed(fa *model.FixedAnalysis) {
	if fa == nil {
		return
	}
	rows := [][]string{
		{"Fixed transactions", cli.FormatNumber(int64(fa.TotalFixedCount))},
		{"Fixed share", cli.FormatPercent(fa.FixedRatio)},
		{"Monthly fixed", cli.FormatAmount(fa.EstimatedMonthlyFixed)},
	}
	for _, d := range fa.Details {
		rows = append(rows, []string{
			"  " + d.Name,
			fmt.Sprintf("%s on day %d", cli.FormatAmount(d.Amount), d.Day),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Fixed Expenses",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
}

func renderForecast(fc *model.Forecast) {
	if fc == nil {
		return
	}
	fmt.Println()
	switch fc.Status {
	case model.ForecastOK:
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Next Month",
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Projected spend", cli.FormatAmount(fc.NextMonthAmount)},
				{"Trend", fc.TrendLabel},
				{"Change", cli.FormatChange(fc.Trend, fc.ChangePercent)},
				{"Confidence", fc.Confidence},
			},
		}))
	case model.ForecastInsufficientData:
		fmt.Println(cli.RenderWarning("Forecast unavailable: " + fc.Message))
	default:
		fmt.Println(cli.RenderError("forecast: " + fc.Error))
	}
}

func renderRadar(points []model.RadarPoint) {
	if len(points) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  Spend by time of day")
	for _, p := range points {
		fmt.Println(cli.RenderHorizontalBar(p.Label, p.AmountRatio, 1, 30))
	}
}

func renderAdvice(r *model.Report) {
	if len(r.Recommendations) == 0 && r.Tips == "" {
		return
	}
	fmt.Println()
	for _, rec := range r.Recommendations {
		fmt.Println(cli.RenderWarning(rec))
	}
	if r.Tips != "" {
		fmt.Println(cli.RenderWarning(r.Tips))
	}
}

// renderModes prints the per-period drill-down.
func renderModes(r *model.Report) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(reportTitle("SPENDING MODES", r)))
	fmt.Println()

	if r.Error != "" {
		fmt.Println(cli.RenderError(r.Error))
		return
	}

	renderRadar(r.Radar)

	for _, m := range r.Modes {
		if m.TxnCount == 0 {
			continue
		}
		rd := m.RecentDetails
		rows := [][]string{
			{"Total", cli.FormatAmount(m.TotalAmount)},
			{"Transactions", cli.FormatNumber(int64(m.TxnCount))},
			{"Spend share", cli.FormatPercent(m.AmountRatio)},
			{"Count share", cli.FormatPercent(m.CountRatio)},
		}
		for _, mt := range rd.TopMerchants {
			rows = append(rows, []string{"  " + mt.Name, cli.FormatAmount(mt.Total)})
		}
		for _, s := range rd.Scenes {
			rows = append(rows, []string{"  scene: " + s.Name, cli.FormatPercent(s.Ratio)})
		}
		for _, b := range rd.TimeBuckets {
			rows = append(rows, []string{"  time: " + b.Name, cli.FormatPercent(b.Ratio)})
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   m.Label,
			Headers: []string{"Metric", "Value"},
			Rows:    rows,
		}))
	}
}

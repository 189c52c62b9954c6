package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/spendvibe/internal/config"
	"github.com/theirongolddev/spendvibe/internal/model"
)

const (
	maxFixedNames   = 10
	maxFixedDetails = 5
	maxTopItems     = 3
	unknownVibe     = "unknown"
)

// Recommendation and tip texts.
const (
	recNightOwl = "Night-owl spending takes a large share, especially late at night. " +
		"Consider an extra confirmation step for rides and food delivery after 23:00."
	recWorkApproval = "Large daytime purchases are frequent. " +
		"Set up a simple review step for equipment and other big-ticket spend."
	recMealBudget = "Lunch spending is frequent. " +
		"Try a weekly meal budget, for example a fixed weekly lunch allowance."
	recBalanced = "Your spending structure is fairly balanced. " +
		"Keep the current rhythm and review fixed costs and night-time spending regularly."

	tipFixedHeavy = "Fixed costs take a large share of your spending; review subscriptions and contracts for savings."
	tipTrendUp    = "Spending is trending up; consider trimming non-essential purchases next month."
	tipGeneric    = "Keep an eye on your fixed-cost share and plan next month's budget ahead."
)

// assembly is everything the report is built from.
type assembly struct {
	txns     []model.Transaction
	profiles []model.FixedProfile
	clusters []model.ClusterSummary
	k        int
	forecast model.Forecast
	months   int
	cfg      config.Config
}

// periodStats are the totals of one time period.
type periodStats struct {
	period      model.TimePeriod
	amount      float64
	count       int
	amountRatio float64
	countRatio  float64
}

// assemble fills r from a completed analysis.
func assemble(in assembly, r *model.Report) {
	txns := in.txns

	var total float64
	for _, t := range txns {
		total += t.Amount
	}

	r.WindowMonths = windowMonths(in.months, txns)
	r.ClusterCount = in.k
	r.TotalAnalyzed = len(txns)
	r.Clusters = in.clusters

	fc := in.forecast
	fc.NextMonthAmount = finite(fc.NextMonthAmount)
	r.Forecast = &fc

	r.FixedExpenses = fixedAnalysis(txns, in.profiles, r.WindowMonths)
	r.TimeSeries = dailySeries(txns)

	stats := periodBreakdown(txns, total)
	r.Radar = radar(stats)
	r.Modes = modes(txns, stats, in.cfg.Analysis.RecentPerMode)
	r.Recommendations = recommend(txns, stats, in.cfg)
	r.Tips = tip(r.FixedExpenses.FixedRatio, fc, in.cfg.Recommend)

	r.Diagnosis = &model.Diagnosis{
		Vibe:      currentVibe(txns, in.clusters),
		AvgSpend:  round2(total / float64(len(txns))),
		TotalTxns: len(txns),
	}
}

// windowMonths is the requested window, or the observed span in 30-day
// months (at least 1) when the request covers all time.
func windowMonths(requested int, txns []model.Transaction) int {
	if requested > 0 {
		return requested
	}
	if len(txns) == 0 {
		return 1
	}
	first, last := txns[0].Date, txns[0].Date
	for _, t := range txns {
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}
	days := math.Floor(last.Sub(first).Hours() / 24)
	return max(1, int(math.RoundToEven(days/30)))
}

func fixedAnalysis(txns []model.Transaction, profiles []model.FixedProfile, months int) *model.FixedAnalysis {
	fa := &model.FixedAnalysis{
		FixedCategories: []string{},
		Details:         []model.FixedDetail{},
		Profiles:        profiles,
	}

	type agg struct {
		sum, days float64
		n         int
	}
	byCat := make(map[string]*agg)
	seen := make(map[string]bool)
	var fixedTotal float64

	for _, t := range txns {
		if !t.IsFixed {
			continue
		}
		fa.TotalFixedCount++
		fixedTotal += t.Amount
		if !seen[t.CategoryName] {
			seen[t.CategoryName] = true
			if len(fa.FixedCategories) < maxFixedNames {
				fa.FixedCategories = append(fa.FixedCategories, t.CategoryName)
			}
		}
		a, ok := byCat[t.CategoryName]
		if !ok {
			a = &agg{}
			byCat[t.CategoryName] = a
		}
		a.sum += t.Amount
		a.days += float64(t.Day)
		a.n++
	}

	if len(txns) > 0 {
		fa.FixedRatio = round2(float64(fa.TotalFixedCount) / float64(len(txns)))
	}
	if months > 0 {
		fa.EstimatedMonthlyFixed = round2(fixedTotal / float64(months))
	}

	for name, a := range byCat {
		fa.Details = append(fa.Details, model.FixedDetail{
			Name:   name,
			Amount: a.sum / float64(a.n),
			Day:    int(math.RoundToEven(a.days / float64(a.n))),
		})
	}
	sort.Slice(fa.Details, func(i, j int) bool {
		if fa.Details[i].Amount != fa.Details[j].Amount {
			return fa.Details[i].Amount > fa.Details[j].Amount
		}
		return fa.Details[i].Name < fa.Details[j].Name
	})
	if len(fa.Details) > maxFixedDetails {
		fa.Details = fa.Details[:maxFixedDetails]
	}
	for i := range fa.Details {
		fa.Details[i].Amount = round2(fa.Details[i].Amount)
	}

	return fa
}

// dailySeries buckets spend by calendar day, oldest first.
func dailySeries(txns []model.Transaction) *model.TimeSeries {
	dayMap := make(map[string]*model.DailySpend)

	for _, t := range txns {
		dayKey := t.Date.Format("2006-01-02")
		ds, ok := dayMap[dayKey]
		if !ok {
			ds = &model.DailySpend{Date: dayKey, Modes: make(map[string]float64)}
			dayMap[dayKey] = ds
		}
		ds.Total += t.Amount
		if t.IsNonEssential {
			ds.NonEssential += t.Amount
		}
		if t.IsFixed {
			ds.FixedExpense += t.Amount
		}
		ds.Modes[t.Period.String()] += t.Amount
	}

	points := make([]model.DailySpend, 0, len(dayMap))
	for _, ds := range dayMap {
		// unrounded so the days add back up to the period totals
		ds.Total = finite(ds.Total)
		ds.NonEssential = finite(ds.NonEssential)
		ds.FixedExpense = finite(ds.FixedExpense)
		for k, v := range ds.Modes {
			ds.Modes[k] = finite(v)
		}
		points = append(points, *ds)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	return &model.TimeSeries{Granularity: "day", Points: points}
}

// periodBreakdown returns stats for every observed period in enum order.
func periodBreakdown(txns []model.Transaction, total float64) []periodStats {
	byPeriod := make(map[model.TimePeriod]*periodStats)
	for _, t := range txns {
		ps, ok := byPeriod[t.Period]
		if !ok {
			ps = &periodStats{period: t.Period}
			byPeriod[t.Period] = ps
		}
		ps.amount += t.Amount
		ps.count++
	}

	var out []periodStats
	for _, p := range model.AllPeriods {
		ps, ok := byPeriod[p]
		if !ok {
			continue
		}
		if total > 0 {
			ps.amountRatio = round4(ps.amount / total)
		}
		if len(txns) > 0 {
			ps.countRatio = round4(float64(ps.count) / float64(len(txns)))
		}
		out = append(out, *ps)
	}
	return out
}

func radar(stats []periodStats) []model.RadarPoint {
	out := make([]model.RadarPoint, 0, len(stats))
	for _, ps := range stats {
		out = append(out, model.RadarPoint{
			Mode:        ps.period.String(),
			Label:       ps.period.Label(),
			AmountRatio: ps.amountRatio,
			CountRatio:  ps.countRatio,
		})
	}
	return out
}

func modes(txns []model.Transaction, stats []periodStats, recent int) []model.Mode {
	out := make([]model.Mode, 0, len(stats))
	for _, ps := range stats {
		var members []model.Transaction
		for _, t := range txns {
			if t.Period == ps.period {
				members = append(members, t)
			}
		}
		out = append(out, model.Mode{
			Key:           ps.period.String(),
			Label:         ps.period.Label(),
			TotalAmount:   finite(ps.amount),
			TxnCount:      ps.count,
			AmountRatio:   ps.amountRatio,
			CountRatio:    ps.countRatio,
			RecentDetails: recentDetails(members, ps.period, recent),
		})
	}
	return out
}

// recentDetails describes the newest n transactions of one period.
func recentDetails(members []model.Transaction, period model.TimePeriod, n int) model.RecentDetails {
	recent := make([]model.Transaction, len(members))
	copy(recent, members)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].Date.Equal(recent[j].Date) {
			return recent[i].Date.After(recent[j].Date)
		}
		return recent[i].ID > recent[j].ID
	})
	if len(recent) > n {
		recent = recent[:n]
	}

	merchantTotals := make(map[string]float64)
	sceneCounts := make(map[string]int)
	bucketCounts := make(map[string]int)
	details := model.RecentDetails{
		TopMerchants: []model.MerchantTotal{},
		Transactions: make([]model.RecentTxn, 0, len(recent)),
	}

	for _, t := range recent {
		if t.Merchant != "" {
			merchantTotals[t.Merchant] += t.Amount
		}
		sceneCounts[t.CategoryName]++
		bucketCounts[timeBucket(period, t.Hour)]++
		details.Transactions = append(details.Transactions, model.RecentTxn{
			ID:       t.ID,
			Date:     t.Date.Format(time.RFC3339),
			Amount:   round2(t.Amount),
			Category: t.CategoryName,
			Parent:   t.ParentName,
			Merchant: t.Merchant,
			Desc:     t.Description,
		})
	}

	for name, total := range merchantTotals {
		details.TopMerchants = append(details.TopMerchants, model.MerchantTotal{Name: name, Total: total})
	}
	sort.Slice(details.TopMerchants, func(i, j int) bool {
		a, b := details.TopMerchants[i], details.TopMerchants[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Name < b.Name
	})
	if len(details.TopMerchants) > maxTopItems {
		details.TopMerchants = details.TopMerchants[:maxTopItems]
	}
	for i := range details.TopMerchants {
		details.TopMerchants[i].Total = round2(details.TopMerchants[i].Total)
	}

	details.Scenes = shares(sceneCounts, len(recent), maxTopItems)
	details.TimeBuckets = shares(bucketCounts, len(recent), 0)
	return details
}

// timeBucket splits NightLife into late evening, small hours and the rest.
func timeBucket(period model.TimePeriod, hour int) string {
	if period != model.NightLife {
		return "all day"
	}
	switch {
	case hour >= 22:
		return "22:00-24:00"
	case hour < 2:
		return "00:00-02:00"
	default:
		return "other night"
	}
}

// shares converts counts to frequency shares, highest first. limit <= 0
// keeps every entry.
func shares(counts map[string]int, total, limit int) []model.NamedRatio {
	out := []model.NamedRatio{}
	if total == 0 {
		return out
	}
	for _, name := range rankByCount(counts) {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, model.NamedRatio{
			Name:  name,
			Ratio: round4(float64(counts[name]) / float64(total)),
		})
	}
	return out
}

func recommend(txns []model.Transaction, stats []periodStats, cfg config.Config) []string {
	var recs []string

	byPeriod := make(map[model.TimePeriod]periodStats, len(stats))
	for _, ps := range stats {
		byPeriod[ps.period] = ps
	}

	if ps, ok := byPeriod[model.NightLife]; ok && ps.amountRatio > cfg.Recommend.NightAmountRatio {
		recs = append(recs, recNightOwl)
	}

	var highWork int
	for _, t := range txns {
		if t.Period == model.WorkOther && t.Amount > cfg.Analysis.HighAmount {
			highWork++
		}
	}
	if highWork >= cfg.Recommend.WorkHighCount {
		recs = append(recs, recWorkApproval)
	}

	if ps, ok := byPeriod[model.Lunch]; ok && ps.countRatio > cfg.Recommend.LunchCountRatio {
		recs = append(recs, recMealBudget)
	}

	if len(recs) == 0 {
		recs = append(recs, recBalanced)
	}
	return recs
}

func tip(fixedRatio float64, fc model.Forecast, cfg config.RecommendConfig) string {
	switch {
	case fixedRatio > cfg.FixedRatioTip:
		return tipFixedHeavy
	case fc.Status == model.ForecastOK && fc.Trend == model.TrendIncrease:
		return tipTrendUp
	default:
		return tipGeneric
	}
}

// currentVibe is the vibe of the cluster holding the newest transaction.
func currentVibe(txns []model.Transaction, clusters []model.ClusterSummary) string {
	if len(txns) == 0 {
		return unknownVibe
	}
	newest := txns[0]
	for _, t := range txns[1:] {
		if !t.Date.Before(newest.Date) {
			newest = t
		}
	}
	for _, c := range clusters {
		if c.Label == newest.Cluster {
			return c.Vibe
		}
	}
	return unknownVibe
}

// finite maps NaN and Inf to 0 so the report always encodes as JSON.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return finite(math.Round(v*100) / 100)
}

func round4(v float64) float64 {
	return finite(math.Round(v*10000) / 10000)
}

package model

import "time"

// Report is the full lifestyle diagnosis for one analysis run.
// A failed run carries only ID, UserID, GeneratedAt and Error.
type Report struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Error       string    `json:"error,omitempty"`

	WindowMonths    int              `json:"window_months,omitempty"`
	ClusterCount    int              `json:"cluster_count,omitempty"`
	Diagnosis       *Diagnosis       `json:"diagnosis,omitempty"`
	Tips            string           `json:"tips,omitempty"`
	Clusters        []ClusterSummary `json:"clusters,omitempty"`
	FixedExpenses   *FixedAnalysis   `json:"fixed_expense_analysis,omitempty"`
	Forecast        *Forecast        `json:"budget_prediction,omitempty"`
	TimeSeries      *TimeSeries      `json:"timeseries,omitempty"`
	Radar           []RadarPoint     `json:"radar,omitempty"`
	Modes           []Mode           `json:"modes,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	TotalAnalyzed   int              `json:"total_analyzed,omitempty"`

	cause error
}

// Err returns the typed cause of a failed report, or nil.
func (r *Report) Err() error {
	return r.cause
}

// Fail marks the report as failed with the given cause.
func (r *Report) Fail(err error) {
	r.cause = err
	r.Error = err.Error()
}

// Diagnosis summarises the user's current spending character.
type Diagnosis struct {
	Vibe      string  `json:"vibe"`
	AvgSpend  float64 `json:"avg_spend"`
	TotalTxns int     `json:"total_txns"`
}

// ClusterSummary describes one behavioural cluster.
type ClusterSummary struct {
	Label             int      `json:"label"`
	Vibe              string   `json:"vibe"`
	AvgSpend          float64  `json:"avg_spend"`
	TotalTransactions int      `json:"total_transactions"`
	TopCategories     []string `json:"top_categories"`
}

// FixedAnalysis is the fixed-vs-variable section of the report.
type FixedAnalysis struct {
	TotalFixedCount       int            `json:"total_fixed_count"`
	FixedCategories       []string       `json:"fixed_categories"`
	EstimatedMonthlyFixed float64        `json:"estimated_monthly_fixed"`
	FixedRatio            float64        `json:"fixed_ratio"`
	Details               []FixedDetail  `json:"details"`
	Profiles              []FixedProfile `json:"-"`
}

// FixedDetail is one of the largest fixed categories.
type FixedDetail struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Day    int     `json:"day"`
}

// Forecast statuses.
const (
	ForecastOK               = "ok"
	ForecastInsufficientData = "insufficient_data"
	ForecastError            = "error"
)

// Trend directions.
const (
	TrendIncrease = "increase"
	TrendDecrease = "decrease"
	TrendFlat     = "flat"
)

// Forecast is the next-month budget projection.
type Forecast struct {
	Status          string  `json:"status"`
	NextMonthAmount float64 `json:"next_month_amount"`
	Trend           string  `json:"trend,omitempty"`
	ChangePercent   int     `json:"change_percent"`
	TrendLabel      string  `json:"trend_label,omitempty"`
	Confidence      string  `json:"confidence,omitempty"`
	Message         string  `json:"msg,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// TimeSeries holds per-day spend points.
type TimeSeries struct {
	Granularity string       `json:"granularity"`
	Points      []DailySpend `json:"points"`
}

// DailySpend holds metrics for a single calendar day.
type DailySpend struct {
	Date         string             `json:"date"`
	Total        float64            `json:"total"`
	NonEssential float64            `json:"non_essential"`
	FixedExpense float64            `json:"fixed_expense"`
	Modes        map[string]float64 `json:"modes"`
}

// RadarPoint is the share of spend and count in one time period.
type RadarPoint struct {
	Mode        string  `json:"mode"`
	Label       string  `json:"label"`
	AmountRatio float64 `json:"amount_ratio"`
	CountRatio  float64 `json:"count_ratio"`
}

// Mode is the drill-down for one time period.
type Mode struct {
	Key           string        `json:"key"`
	Label         string        `json:"label"`
	TotalAmount   float64       `json:"total_amount"`
	TxnCount      int           `json:"txn_count"`
	AmountRatio   float64       `json:"amount_ratio"`
	CountRatio    float64       `json:"count_ratio"`
	RecentDetails RecentDetails `json:"recent_details"`
}

// RecentDetails describes the most recent transactions of a period.
type RecentDetails struct {
	TopMerchants []MerchantTotal `json:"top_merchants"`
	Scenes       []NamedRatio    `json:"scenes"`
	TimeBuckets  []NamedRatio    `json:"time_buckets"`
	Transactions []RecentTxn     `json:"transactions"`
}

// MerchantTotal is a merchant and its summed spend.
type MerchantTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// NamedRatio is a label with its frequency share.
type NamedRatio struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// RecentTxn is the report view of one transaction.
type RecentTxn struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Parent   string  `json:"parent"`
	Merchant string  `json:"merchant"`
	Desc     string  `json:"desc"`
}

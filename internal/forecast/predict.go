package forecast

import (
	"fmt"
	"math"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// horizonDays approximates "next month" from the last month end.
const horizonDays = 30

// Forecaster projects next month's total spend.
type Forecaster struct {
	Fitter TrendFitter
	// TrendBand is the relative change beyond which the trend is labelled
	// increase or decrease.
	TrendBand float64
}

// New returns a Forecaster using ordinary least squares.
func New(trendBand float64) *Forecaster {
	return &Forecaster{Fitter: OLS{}, TrendBand: trendBand}
}

// Predict fits monthly totals of txns and projects the next month.
// It never panics; fitting failures come back as an error-status forecast.
func (f *Forecaster) Predict(txns []model.Transaction) (fc model.Forecast) {
	defer func() {
		if r := recover(); r != nil {
			fc = model.Forecast{Status: model.ForecastError, Error: fmt.Sprintf("forecast panic: %v", r)}
		}
	}()

	months := MonthlyTotals(txns)
	if len(months) < 2 {
		return model.Forecast{
			Status:  model.ForecastInsufficientData,
			Message: "need at least 2 months of data",
		}
	}

	xs := make([]float64, len(months))
	ys := make([]float64, len(months))
	for i, m := range months {
		xs[i] = Ordinal(m.MonthEnd)
		ys[i] = m.Amount
	}

	line, err := f.Fitter.Fit(xs, ys)
	if err != nil {
		return model.Forecast{Status: model.ForecastError, Error: err.Error()}
	}

	lastX := xs[len(xs)-1]
	pred := line.At(lastX + horizonDays)
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return model.Forecast{Status: model.ForecastError, Error: "prediction is not finite"}
	}

	lastActual := ys[len(ys)-1]
	var ratio float64
	if lastActual > 0 {
		ratio = (pred - lastActual) / lastActual
	}

	fc = model.Forecast{
		Status:          model.ForecastOK,
		NextMonthAmount: math.Max(0, math.Round(pred*100)/100),
		Trend:           model.TrendFlat,
		TrendLabel:      "expected to stay flat",
		Confidence:      "medium",
	}
	switch {
	case ratio > f.TrendBand:
		fc.Trend = model.TrendIncrease
		fc.ChangePercent = int(ratio * 100)
		fc.TrendLabel = fmt.Sprintf("expected to increase %d%%", fc.ChangePercent)
	case ratio < -f.TrendBand:
		fc.Trend = model.TrendDecrease
		fc.ChangePercent = int(math.Abs(ratio) * 100)
		fc.TrendLabel = fmt.Sprintf("expected to decrease %d%%", fc.ChangePercent)
	}
	return fc
}

package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/spendvibe/internal/model"
)

func txn(y int, m time.Month, d int, amount float64) model.Transaction {
	return model.Transaction{Date: time.Date(y, m, d, 12, 0, 0, 0, time.UTC), Amount: amount}
}

func TestOLS_ExactLine(t *testing.T) {
	line, err := OLS{}.Fit([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 2, line.Slope, 1e-9)
	assert.InDelta(t, 1, line.Intercept, 1e-9)
	assert.InDelta(t, 11, line.At(5), 1e-9)
}

func TestOLS_Degenerate(t *testing.T) {
	_, err := OLS{}.Fit([]float64{1}, []float64{1})
	require.ErrorIs(t, err, ErrDegenerate)

	_, err = OLS{}.Fit([]float64{2, 2}, []float64{1, 3})
	require.ErrorIs(t, err, ErrDegenerate)

	_, err = OLS{}.Fit([]float64{1, 2}, []float64{1})
	require.ErrorIs(t, err, ErrDegenerate)
}

func TestMonthlyTotals_FillsGaps(t *testing.T) {
	months := MonthlyTotals([]model.Transaction{
		txn(2025, 3, 20, 10),
		txn(2025, 1, 5, 100),
		txn(2025, 1, 28, 50),
	})

	require.Len(t, months, 3)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), months[0].MonthEnd)
	assert.InDelta(t, 150, months[0].Amount, 1e-9)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), months[1].MonthEnd)
	assert.InDelta(t, 0, months[1].Amount, 1e-9)
	assert.InDelta(t, 10, months[2].Amount, 1e-9)
	assert.Nil(t, MonthlyTotals(nil))
}

func TestMonthlyTotals_CrossesYear(t *testing.T) {
	months := MonthlyTotals([]model.Transaction{txn(2024, 12, 1, 1), txn(2025, 1, 1, 2)})
	require.Len(t, months, 2)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), months[0].MonthEnd)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), months[1].MonthEnd)
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, 719163.0, Ordinal(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1.0, Ordinal(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPredict_InsufficientData(t *testing.T) {
	fc := New(0.05).Predict([]model.Transaction{txn(2025, 1, 1, 10), txn(2025, 1, 20, 30)})
	assert.Equal(t, model.ForecastInsufficientData, fc.Status)
	assert.Zero(t, fc.NextMonthAmount)
}

func TestPredict_IncreasingMonths(t *testing.T) {
	fc := New(0.05).Predict([]model.Transaction{
		txn(2025, 1, 10, 100),
		txn(2025, 2, 10, 200),
		txn(2025, 3, 10, 300),
	})

	require.Equal(t, model.ForecastOK, fc.Status)
	assert.Equal(t, model.TrendIncrease, fc.Trend)
	assert.Greater(t, fc.NextMonthAmount, 300.0)
	assert.Positive(t, fc.ChangePercent)
	assert.Contains(t, fc.TrendLabel, "increase")
	assert.Equal(t, "medium", fc.Confidence)
}

func TestPredict_DecreasingClampsAtZero(t *testing.T) {
	fc := New(0.05).Predict([]model.Transaction{
		txn(2025, 1, 10, 1000),
		txn(2025, 2, 10, 100),
	})

	require.Equal(t, model.ForecastOK, fc.Status)
	assert.Equal(t, model.TrendDecrease, fc.Trend)
	assert.Equal(t, 0.0, fc.NextMonthAmount)
}

func TestPredict_Flat(t *testing.T) {
	fc := New(0.05).Predict([]model.Transaction{
		txn(2025, 1, 10, 100),
		txn(2025, 2, 10, 100),
		txn(2025, 3, 10, 100),
	})
	assert.Equal(t, model.TrendFlat, fc.Trend)
	assert.InDelta(t, 100, fc.NextMonthAmount, 0.01)
	assert.Zero(t, fc.ChangePercent)
}

type failingFitter struct{ err error }

func (f failingFitter) Fit(_, _ []float64) (Line, error) { return Line{}, f.err }

type panickingFitter struct{}

func (panickingFitter) Fit(_, _ []float64) (Line, error) { panic("boom") }

func TestPredict_FitterFailureDegrades(t *testing.T) {
	txns := []model.Transaction{txn(2025, 1, 10, 100), txn(2025, 2, 10, 120)}

	fc := (&Forecaster{Fitter: failingFitter{errors.New("singular")}, TrendBand: 0.05}).Predict(txns)
	assert.Equal(t, model.ForecastError, fc.Status)
	assert.Equal(t, "singular", fc.Error)

	fc = (&Forecaster{Fitter: panickingFitter{}, TrendBand: 0.05}).Predict(txns)
	assert.Equal(t, model.ForecastError, fc.Status)
	assert.Contains(t, fc.Error, "boom")
}

// Package forecast projects next month's spend from monthly totals.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// ErrDegenerate is returned when the inputs cannot determine a line.
var ErrDegenerate = errors.New("degenerate regression input")

// Line is y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// TrendFitter fits a line through (xs, ys).
type TrendFitter interface {
	Fit(xs, ys []float64) (Line, error)
}

// OLS is ordinary least squares on one independent variable.
type OLS struct{}

// Fit implements TrendFitter.
func (OLS) Fit(xs, ys []float64) (Line, error) {
	if len(xs) != len(ys) {
		return Line{}, fmt.Errorf("%w: %d xs for %d ys", ErrDegenerate, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return Line{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrDegenerate, len(xs))
	}

	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	// centred sums keep ordinal-day x values well conditioned
	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return Line{}, fmt.Errorf("%w: all x values are equal", ErrDegenerate)
	}

	slope := sxy / sxx
	line := Line{Slope: slope, Intercept: my - slope*mx}
	if math.IsNaN(line.Slope) || math.IsInf(line.Slope, 0) || math.IsNaN(line.Intercept) || math.IsInf(line.Intercept, 0) {
		return Line{}, fmt.Errorf("%w: non-finite fit", ErrDegenerate)
	}
	return line, nil
}

// MonthlyTotal is the spend of one calendar month, stamped at month end.
type MonthlyTotal struct {
	MonthEnd time.Time
	Amount   float64
}

// MonthlyTotals buckets spend by calendar month over the contiguous range
// from the first to the last transaction month. Months without spend are
// present with a zero total.
func MonthlyTotals(txns []model.Transaction) []MonthlyTotal {
	if len(txns) == 0 {
		return nil
	}

	byMonth := make(map[monthKey]float64)
	first, last := keyOf(txns[0].Date), keyOf(txns[0].Date)
	for _, t := range txns {
		k := keyOf(t.Date)
		byMonth[k] += t.Amount
		if k.before(first) {
			first = k
		}
		if last.before(k) {
			last = k
		}
	}

	var out []MonthlyTotal
	for k := first; !last.before(k); k = k.next() {
		out = append(out, MonthlyTotal{MonthEnd: k.end(), Amount: byMonth[k]})
	}
	return out
}

// Ordinal returns the proleptic Gregorian day number of t (0001-01-01 is 1).
func Ordinal(t time.Time) float64 {
	const unixEpochOrdinal = 719163
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return float64(d.Unix()/86400) + unixEpochOrdinal
}

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

func (k monthKey) before(o monthKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

func (k monthKey) next() monthKey {
	if k.month == time.December {
		return monthKey{year: k.year + 1, month: time.January}
	}
	return monthKey{year: k.year, month: k.month + 1}
}

func (k monthKey) end() time.Time {
	return time.Date(k.year, k.month+1, 0, 0, 0, 0, 0, time.UTC)
}

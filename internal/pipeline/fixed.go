package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/spendvibe/internal/category"
	"github.com/theirongolddev/spendvibe/internal/config"
	"github.com/theirongolddev/spendvibe/internal/model"
)

// DetectFixed flags every transaction as fixed or variable and essential
// or not, in place, and returns the per-category statistics it used.
//
// A category is fixed when it recurs (count >= MinCount) and either its
// amounts are stable (CV < CVThreshold) or its day of month is regular
// (day std-dev < DayStdThreshold). Categories seen under the fixed parent
// are always fixed.
func DetectFixed(txns []model.Transaction, idx *category.Index, cfg config.FixedConfig) []model.FixedProfile {
	type group struct {
		amounts []float64
		days    []float64
	}
	groups := make(map[string]*group)
	fixedByParent := make(map[string]bool)

	for _, t := range txns {
		g, ok := groups[t.CategoryName]
		if !ok {
			g = &group{}
			groups[t.CategoryName] = g
		}
		g.amounts = append(g.amounts, t.Amount)
		g.days = append(g.days, float64(t.Day))
		if idx.IsFixedParent(t.ParentID, t.ParentName) {
			fixedByParent[t.CategoryName] = true
		}
	}

	profiles := make([]model.FixedProfile, 0, len(groups))
	fixed := make(map[string]bool, len(groups))
	for name, g := range groups {
		mean := meanOf(g.amounts)
		p := model.FixedProfile{
			Category:   name,
			Count:      len(g.amounts),
			MeanAmount: mean,
			AmountStd:  sampleStd(g.amounts),
			DayStd:     sampleStd(g.days),
		}
		if mean > 0 {
			p.CV = p.AmountStd / mean
		}

		recurring := p.Count >= cfg.MinCount
		stableAmount := recurring && p.CV < cfg.CVThreshold
		regularDay := recurring && p.DayStd < cfg.DayStdThreshold
		p.IsFixed = stableAmount || regularDay || fixedByParent[name]

		fixed[name] = p.IsFixed
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Category < profiles[j].Category
	})

	for i := range txns {
		t := &txns[i]
		t.IsFixed = fixed[t.CategoryName]
		t.IsNonEssential = idx.IsNonEssential(t.ParentID, t.ParentName)
	}

	return profiles
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

// sampleStd is the n-1 standard deviation; 0 for fewer than two values.
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := meanOf(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/spendvibe/internal/category"
	"github.com/theirongolddev/spendvibe/internal/model"
)

const (
	defaultParentName   = "Other"
	defaultCategoryName = "Uncategorized"
)

// Prepare resolves raw feed records against the category index, drops
// everything that is not spending, and derives the per-transaction time
// features. The result is sorted by date; an empty result means "no data".
//
// A record is dropped when:
//   - it is marked deleted
//   - its parent or own id is an excluded (non-spending) parent, unless the
//     hierarchy explicitly declares the category an expense
//   - its declared type is not expense, unless its parent is the social
//     parent
//   - its income-side amount is positive (income or refund)
func Prepare(raw []model.RawTransaction, idx *category.Index) []model.Transaction {
	out := make([]model.Transaction, 0, len(raw))

	for _, r := range raw {
		if r.Deleted {
			continue
		}

		catID := r.CategoryID
		parentID := idx.ParentID(catID)
		declared, hasType := idx.TxnType(catID)
		declaredExpense := hasType && declared == model.TxnTypeExpense

		if (idx.IsExcluded(parentID) || idx.IsExcluded(catID)) && !declaredExpense {
			continue
		}
		if hasType && !declaredExpense && !idx.IsSocial(parentID) {
			continue
		}
		if r.IncomeAmount.IsPositive() {
			continue
		}

		amt := r.IncomeAmount
		if amt.IsZero() {
			amt = r.BalanceAmount
		}
		amount, _ := amt.Abs().Float64()

		catName, ok := idx.Name(catID)
		if !ok {
			catName = r.CategoryName
			if catName == "" {
				catName = defaultCategoryName
			}
		}

		parentName, ok := idx.ParentName(parentID)
		if !ok {
			parentName = defaultParentName
		}

		out = append(out, model.Transaction{
			ID:           r.ID,
			Date:         r.Timestamp,
			Amount:       amount,
			Description:  r.Description,
			CategoryID:   catID,
			CategoryName: catName,
			ParentID:     parentID,
			ParentName:   parentName,
			Parent:       idx.Kind(parentID, parentName),
			Merchant:     r.Merchant,
		})
	}

	if len(out) == 0 {
		return nil
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})

	for i := range out {
		t := &out[i]
		t.Hour = t.Date.Hour()
		wd := t.Date.Weekday()
		t.IsWeekend = wd == time.Saturday || wd == time.Sunday
		t.Period = model.PeriodForHour(t.Hour)
		t.Day = t.Date.Day()
		if i > 0 {
			t.TimeDiffHours = t.Date.Sub(out[i-1].Date).Hours()
		}
	}

	return out
}

// FilterWindow returns records whose timestamp falls within [since, until).
// A zero bound is open.
func FilterWindow(raw []model.RawTransaction, since, until time.Time) []model.RawTransaction {
	if since.IsZero() && until.IsZero() {
		return raw
	}

	var result []model.RawTransaction
	for _, r := range raw {
		if !since.IsZero() && r.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && !r.Timestamp.Before(until) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// FilterByUser returns records owned by user. An empty user keeps all.
func FilterByUser(raw []model.RawTransaction, user string) []model.RawTransaction {
	if user == "" {
		return raw
	}
	var result []model.RawTransaction
	for _, r := range raw {
		if r.UserID == user {
			result = append(result, r)
		}
	}
	return result
}

// LookbackStart returns the start of a lookback window of months*30 days
// ending at now. Zero months means all time and returns the zero time.
func LookbackStart(now time.Time, months int) time.Time {
	if months <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -months*30)
}

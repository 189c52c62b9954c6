package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/spendvibe/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "spendvibe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rawTxn(id, user string, ts time.Time, balance string) model.RawTransaction {
	return model.RawTransaction{
		ID:            id,
		UserID:        user,
		Timestamp:     ts,
		BalanceAmount: decimal.RequireFromString(balance),
		Description:   "desc " + id,
		CategoryID:    "FOOD",
	}
}

func TestTransactions_RoundTrip(t *testing.T) {
	s := openTest(t)
	shanghai := time.FixedZone("CST", 8*3600)

	in := rawTxn("a", "u1", time.Date(2025, 6, 1, 21, 30, 0, 0, shanghai), "-12.34")
	in.IncomeAmount = decimal.RequireFromString("-0.5")
	in.Merchant = "Night Market"
	in.Deleted = true

	n, err := s.SaveTransactions([]model.RawTransaction{in})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.LoadTransactions(Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	out := got[0]
	assert.True(t, in.Timestamp.Equal(out.Timestamp))
	assert.Equal(t, 21, out.Timestamp.Hour(), "imported offset is kept")
	assert.True(t, in.BalanceAmount.Equal(out.BalanceAmount))
	assert.True(t, in.IncomeAmount.Equal(out.IncomeAmount))
	assert.Equal(t, "Night Market", out.Merchant)
	assert.True(t, out.Deleted)
	assert.Equal(t, "FOOD", out.CategoryID)
}

func TestTransactions_UpsertAndFilter(t *testing.T) {
	s := openTest(t)
	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.SaveTransactions([]model.RawTransaction{
		rawTxn("a", "u1", day, "-1"),
		rawTxn("b", "u1", day.AddDate(0, 0, 10), "-2"),
		rawTxn("c", "u2", day.AddDate(0, 0, 20), "-3"),
	})
	require.NoError(t, err)
	_, err = s.SaveTransactions([]model.RawTransaction{rawTxn("a", "u1", day, "-9")})
	require.NoError(t, err)

	count, err := s.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	u1, err := s.LoadTransactions(Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, u1, 2)
	assert.Equal(t, "a", u1[0].ID)
	assert.Equal(t, "-9", u1[0].BalanceAmount.String())

	window, err := s.LoadTransactions(Filter{Since: day.AddDate(0, 0, 5), Until: day.AddDate(0, 0, 20)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "b", window[0].ID)

	users, err := s.Users()
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestCategories_Replace(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.SaveCategories([]model.Category{
		{ID: "LIVING", Name: "Living", TxnType: "expense"},
		{ID: "FOOD", ParentID: "LIVING", Name: "Food", TxnType: "expense"},
	}))
	require.NoError(t, s.SaveCategories([]model.Category{
		{ID: "INC", Name: "Income", TxnType: "income"},
		{ID: "FOOD", ParentID: "LIVING", Name: "Food", TxnType: "expense"},
	}))

	cats, err := s.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, []model.Category{
		{ID: "FOOD", ParentID: "LIVING", Name: "Food", TxnType: "expense"},
		{ID: "INC", Name: "Income", TxnType: "income"},
	}, cats)
}

func TestReports(t *testing.T) {
	s := openTest(t)
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	ok := &model.Report{
		ID:            "r1",
		UserID:        "u1",
		GeneratedAt:   at,
		WindowMonths:  6,
		TotalAnalyzed: 42,
		Diagnosis:     &model.Diagnosis{Vibe: "early riser", AvgSpend: 12.5, TotalTxns: 42},
		Forecast:      &model.Forecast{Status: model.ForecastOK, NextMonthAmount: 100},
	}
	failed := &model.Report{ID: "r2", UserID: "u1", GeneratedAt: at.Add(time.Hour)}
	failed.Fail(assert.AnError)
	other := &model.Report{ID: "r3", UserID: "u2", GeneratedAt: at.Add(2 * time.Hour)}

	for _, r := range []*model.Report{ok, failed, other} {
		require.NoError(t, s.SaveReport(r))
	}

	list, err := s.ListReports("u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Equal(t, assert.AnError.Error(), list[0].Error)
	assert.Equal(t, "r1", list[1].ID)
	assert.Equal(t, "early riser", list[1].Vibe)
	assert.Equal(t, 42, list[1].TotalAnalyzed)
	assert.True(t, at.Equal(list[1].GeneratedAt))

	all, err := s.ListReports("", 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r3", all[0].ID)

	loaded, err := s.LoadReport("r1")
	require.NoError(t, err)
	assert.Equal(t, "early riser", loaded.Diagnosis.Vibe)
	assert.Equal(t, 100.0, loaded.Forecast.NextMonthAmount)
	assert.True(t, at.Equal(loaded.GeneratedAt))

	_, err = s.LoadReport("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileTracker(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.TrackFile("/feeds/a.jsonl", FileInfo{MtimeNs: 10, SizeBytes: 100}))
	require.NoError(t, s.TrackFile("/feeds/a.jsonl", FileInfo{MtimeNs: 20, SizeBytes: 200}))

	tracked, err := s.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, map[string]FileInfo{"/feeds/a.jsonl": {MtimeNs: 20, SizeBytes: 200}}, tracked)
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "spendvibe", "spendvibe.db"), DefaultPath())
}

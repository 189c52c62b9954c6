package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/spendvibe/internal/model"
	"github.com/theirongolddev/spendvibe/internal/store"
)

func rawFor(id, user string) model.RawTransaction {
	return model.RawTransaction{
		ID:            id,
		UserID:        user,
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		BalanceAmount: decimal.NewFromInt(-10),
		CategoryID:    "FOOD",
	}
}

func TestAllUsers_FromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "spendvibe.db"))
	require.NoError(t, err)
	ds := &dataset{st: st}
	defer ds.Close()

	_, err = st.SaveTransactions([]model.RawTransaction{rawFor("a", "zoe"), rawFor("b", "amy")})
	require.NoError(t, err)

	// the store is the source of truth even when the window loaded nothing
	users, err := allUsers(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "zoe"}, users)
}

func TestAllUsers_FromFeed(t *testing.T) {
	ds := &dataset{txns: []model.RawTransaction{rawFor("a", "u2"), rawFor("b", "u1"), rawFor("c", "u2")}}

	users, err := allUsers(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestBuildRequests_CarryHierarchy(t *testing.T) {
	cats := []model.Category{{ID: "FOOD", Name: "Food", TxnType: "expense"}}
	ds := &dataset{
		txns: []model.RawTransaction{rawFor("a", "u1"), rawFor("b", "u2")},
		cats: cats,
	}

	reqs := buildRequests(ds, []string{"u1", "u2"}, 3)
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, cats, r.Categories)
		assert.Equal(t, 3, r.Months)
		require.Len(t, r.Transactions, 1)
		assert.Equal(t, r.UserID, r.Transactions[0].UserID)
	}

	all := buildRequests(ds, nil, 0)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Transactions, 2)
}

package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFeed creates a temp JSONL file and returns a FeedFile for it.
func writeFeed(t *testing.T, lines ...string) FeedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return FeedFile{Path: path, Name: "feed"}
}

func TestParseFeed_Records(t *testing.T) {
	ff := writeFeed(t,
		`{"id":"t1","user":"u1","timestamp":"2025-06-01T12:30:00Z","income_amount":"0","balance_amount":"-42.50","description":"lunch","category_id":"FOOD","merchant":"Cafe"}`,
		`{"id":"t2","user":"u1","timestamp":"2025-06-02 08:15:00","income_amount":-12.3,"balance_amount":0,"category_id":"TAXI","deleted":true}`,
	)

	res := ParseFeed(ff, "")
	require.NoError(t, res.Err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 2, res.Lines)
	assert.Zero(t, res.ParseErrors)

	t1 := res.Transactions[0]
	assert.Equal(t, "t1", t1.ID)
	assert.Equal(t, "u1", t1.UserID)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), t1.Timestamp)
	assert.Equal(t, "-42.5", t1.BalanceAmount.String())
	assert.True(t, t1.IncomeAmount.IsZero())
	assert.Equal(t, "Cafe", t1.Merchant)

	t2 := res.Transactions[1]
	assert.Equal(t, time.Date(2025, 6, 2, 8, 15, 0, 0, time.UTC), t2.Timestamp)
	assert.Equal(t, "-12.3", t2.IncomeAmount.String())
	assert.True(t, t2.Deleted)
}

func TestParseFeed_DedupLastWins(t *testing.T) {
	ff := writeFeed(t,
		`{"id":"a","user":"u1","timestamp":"2025-06-01T10:00:00Z","balance_amount":"-1"}`,
		`{"id":"b","user":"u1","timestamp":"2025-06-01T11:00:00Z","balance_amount":"-2"}`,
		`{"id":"a","user":"u1","timestamp":"2025-06-01T10:00:00Z","balance_amount":"-5"}`,
	)

	res := ParseFeed(ff, "")
	require.NoError(t, res.Err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, "a", res.Transactions[0].ID)
	assert.Equal(t, "-5", res.Transactions[0].BalanceAmount.String())
}

func TestParseFeed_UserFilter(t *testing.T) {
	ff := writeFeed(t,
		`{"id":"a","user":"u1","timestamp":"2025-06-01T10:00:00Z","balance_amount":"-1"}`,
		`{"id":"b","user":"u2","timestamp":"2025-06-01T11:00:00Z","balance_amount":"-2"}`,
		`{"id":"c","meta":{"user":"u1"},"user":"u2","timestamp":"2025-06-01T11:00:00Z"}`,
	)

	res := ParseFeed(ff, "u1")
	require.NoError(t, res.Err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "a", res.Transactions[0].ID)
	assert.Equal(t, 2, res.Skipped)
}

func TestParseFeed_MalformedLines(t *testing.T) {
	ff := writeFeed(t,
		`not json at all`,
		`{"id":"a","user":"u1","timestamp":"2025-06-01T10:00:00Z","balance_amount":"-1"}`,
		`{"id":"b","user":"u1","timestamp":"yesterday"}`,
		`{"user":"u1","timestamp":"2025-06-01T10:00:00Z"}`,
		`{"id":"c","broken json`,
		``,
	)

	res := ParseFeed(ff, "")
	require.NoError(t, res.Err)
	assert.Len(t, res.Transactions, 1)
	assert.Equal(t, 5, res.Lines)
	assert.Equal(t, 4, res.ParseErrors)
}

func TestParseFeed_MissingFile(t *testing.T) {
	res := ParseFeed(FeedFile{Path: filepath.Join(t.TempDir(), "nope.jsonl")}, "")
	assert.Error(t, res.Err)
}

func TestScanFeeds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2025"), 0o755))
	for _, name := range []string{"b.jsonl", "a.jsonl", "notes.txt", filepath.Join("2025", "c.jsonl")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	files, err := ScanFeeds(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "c", files[0].Name)
	assert.Equal(t, "a", files[1].Name)
	assert.Equal(t, "b", files[2].Name)

	single, err := ScanFeeds(filepath.Join(dir, "a.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, []FeedFile{{Path: filepath.Join(dir, "a.jsonl"), Name: "a"}}, single)

	_, err = ScanFeeds(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestExtractTopLevelString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"plain", `{"user":"u1","id":"x"}`, "u1", true},
		{"spaced", `{"id":"x", "user" : "u2"}`, "u2", true},
		{"nested ignored", `{"meta":{"user":"inner"},"user":"outer"}`, "outer", true},
		{"in array ignored", `{"tags":[{"user":"inner"}],"user":"outer"}`, "outer", true},
		{"as value", `{"kind":"user","user":"u3"}`, "u3", true},
		{"escaped", `{"user":"u\"1"}`, "", false},
		{"non-string", `{"user":42}`, "", false},
		{"absent", `{"id":"x"}`, "", false},
		{"empty", `{}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractTopLevelString([]byte(tt.input), userKey)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// FuzzExtractTopLevelString checks the byte-level scanner never panics on
// arbitrary input, since feeds are untrusted.
func FuzzExtractTopLevelString(f *testing.F) {
	f.Add([]byte(`{"user":"u1","timestamp":"2025-06-01T10:00:00Z"}`))
	f.Add([]byte(`{"meta":{"user":"x"},"user":"y"}`))
	f.Add([]byte(`not json`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"user":null}`))
	f.Add([]byte(``))
	f.Add([]byte(`{"user":"u1`))

	f.Fuzz(func(t *testing.T, data []byte) {
		got, ok := extractTopLevelString(data, userKey)
		if !ok && got != "" {
			t.Errorf("value %q returned with ok=false", got)
		}
	})
}

func TestParseCategories(t *testing.T) {
	list := []byte(`
- id: LIVING
  name: Living
  txn_type: expense
- id: FOOD
  parent_id: LIVING
  name: Food
  txn_type: expense
`)
	cats, err := ParseCategories(list)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "LIVING", cats[1].ParentID)
	assert.Equal(t, "expense", cats[1].TxnType)

	doc := []byte(`
categories:
  - id: INC
    name: Income
    txn_type: income
`)
	cats, err = ParseCategories(doc)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Income", cats[0].Name)

	cats, err = ParseCategories(nil)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestParseCategories_Invalid(t *testing.T) {
	_, err := ParseCategories([]byte("- id: A\n- id: A\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseCategories([]byte("- name: nameless\n"))
	assert.ErrorContains(t, err, "no id")

	_, err = ParseCategories([]byte("just a string"))
	assert.ErrorContains(t, err, "expected a list")

	_, err = ParseCategories([]byte("- id: [unclosed"))
	assert.ErrorContains(t, err, "parsing categories")
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: A\n  name: Alpha\n"), 0o600))

	cats, err := LoadCategories(path)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	_, err = LoadCategories(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading categories")
}

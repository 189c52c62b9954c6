// Package source reads transaction feeds and category hierarchies from disk.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// Accepted timestamp layouts, tried in order. Layouts without a zone are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseResult holds the output of parsing one feed.
type ParseResult struct {
	Transactions []model.RawTransaction
	Lines        int
	Skipped      int // records of other users
	Duplicates   int
	ParseErrors  int
	Err          error
}

// ParseFeed reads a JSONL feed file. See ParseReader.
func ParseFeed(ff FeedFile, user string) ParseResult {
	f, err := os.Open(ff.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f, user)
}

// ParseReader reads JSONL feed records from r. When user is non-empty,
// records of other users are skipped without a full decode. Records are
// deduplicated by id, keeping the last version at the position of the
// first. Malformed lines are counted, never fatal.
func ParseReader(r io.Reader, user string) ParseResult {
	var (
		res  ParseResult
		txns []model.RawTransaction
	)
	pos := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		res.Lines++

		if user != "" {
			if u, ok := extractTopLevelString(line, userKey); ok && u != user {
				res.Skipped++
				continue
			}
		}

		var rec FeedRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			res.ParseErrors++
			continue
		}
		if user != "" && rec.User != user {
			res.Skipped++
			continue
		}

		txn, err := rec.toRaw()
		if err != nil {
			res.ParseErrors++
			continue
		}

		if i, seen := pos[txn.ID]; seen {
			txns[i] = txn
			res.Duplicates++
			continue
		}
		pos[txn.ID] = len(txns)
		txns = append(txns, txn)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}

	res.Transactions = txns
	return res
}

func (rec FeedRecord) toRaw() (model.RawTransaction, error) {
	if rec.ID == "" {
		return model.RawTransaction{}, errors.New("record without id")
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return model.RawTransaction{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	return model.RawTransaction{
		ID:            rec.ID,
		UserID:        rec.User,
		Timestamp:     ts,
		IncomeAmount:  rec.IncomeAmount,
		BalanceAmount: rec.BalanceAmount,
		Description:   rec.Description,
		CategoryID:    rec.CategoryID,
		CategoryName:  rec.CategoryName,
		Merchant:      rec.Merchant,
		Deleted:       rec.Deleted,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// userKey is the byte sequence for a JSON key named "user" (with quotes).
var userKey = []byte(`"user"`)

// extractTopLevelString finds the string value of a top-level key in a
// JSONL line. Tracks brace depth and string boundaries so nested keys are
// ignored. ok is false when the key is absent or its value is not a short
// escape-free string; the caller then falls back to a full decode.
func extractTopLevelString(line, key []byte) (val string, ok bool) {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], key) {
				v, isKey, valid := stringValue(line, i+len(key))
				if isKey {
					return v, valid
				}
			}
			i = skipJSONString(line, i)
		case '{', '[':
			depth++
			i++
		case '}', ']':
			depth--
			i++
		default:
			i++
		}
	}
	return "", false
}

// stringValue reads the value after a candidate key at pos. isKey is false
// when no colon follows, meaning the match was itself a value.
func stringValue(line []byte, pos int) (val string, isKey, valid bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false, false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true, false
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 256 {
		return "", true, false
	}
	raw := line[i : i+end]
	if bytes.IndexByte(raw, '\\') >= 0 {
		return "", true, false
	}
	return string(raw), true, true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++ // skip opening quote
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

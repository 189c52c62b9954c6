package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// ReportSummary is the listing view of a stored report.
type ReportSummary struct {
	ID            string
	UserID        string
	GeneratedAt   time.Time
	Error         string
	Vibe          string
	WindowMonths  int
	TotalAnalyzed int
}

// SaveReport stores r, replacing any report with the same id.
func (s *Store) SaveReport(r *model.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report %s: %w", r.ID, err)
	}

	var vibe string
	if r.Diagnosis != nil {
		vibe = r.Diagnosis.Vibe
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO reports
		(id, user_id, generated_at, error, vibe, window_months, total_analyzed, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.GeneratedAt.UTC().Format(utcLayout), r.Error, vibe,
		r.WindowMonths, r.TotalAnalyzed, string(body),
	)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", r.ID, err)
	}
	return nil
}

// ListReports returns summaries of stored reports, newest first. An empty
// user lists every user; limit <= 0 means no limit.
func (s *Store) ListReports(user string, limit int) ([]ReportSummary, error) {
	query := `SELECT id, user_id, generated_at, error, vibe, window_months, total_analyzed FROM reports`
	var args []any
	if user != "" {
		query += " WHERE user_id = ?"
		args = append(args, user)
	}
	query += " ORDER BY generated_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ReportSummary
	for rows.Next() {
		var rs ReportSummary
		var userID, errText, vibe sql.NullString
		var generated string
		var months, total sql.NullInt64
		if err := rows.Scan(&rs.ID, &userID, &generated, &errText, &vibe, &months, &total); err != nil {
			return nil, err
		}
		rs.GeneratedAt, _ = time.Parse(utcLayout, generated)
		rs.UserID = userID.String
		rs.Error = errText.String
		rs.Vibe = vibe.String
		rs.WindowMonths = int(months.Int64)
		rs.TotalAnalyzed = int(total.Int64)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// LoadReport returns the stored report with the given id, or ErrNotFound.
func (s *Store) LoadReport(id string) (*model.Report, error) {
	var body string
	err := s.db.QueryRow("SELECT body FROM reports WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var r model.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", id, err)
	}
	return &r, nil
}

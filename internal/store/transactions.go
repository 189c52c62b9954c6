package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/spendvibe/internal/model"
)

// Filter selects stored transactions. Zero fields match everything.
type Filter struct {
	UserID string
	Since  time.Time
	Until  time.Time
}

// SaveTransactions upserts feed records in one transaction and returns the
// number written.
func (s *Store) SaveTransactions(txns []model.RawTransaction) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO transactions
		(id, user_id, ts, ts_utc, income_amount, balance_amount, description,
		 category_id, category_name, merchant, deleted, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range txns {
		deleted := 0
		if t.Deleted {
			deleted = 1
		}
		_, err := stmt.Exec(
			t.ID, t.UserID, t.Timestamp.Format(time.RFC3339Nano), t.Timestamp.UTC().Format(utcLayout),
			t.IncomeAmount.String(), t.BalanceAmount.String(), t.Description,
			t.CategoryID, t.CategoryName, t.Merchant, deleted, now,
		)
		if err != nil {
			return 0, fmt.Errorf("saving transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(txns), nil
}

// LoadTransactions returns the stored records matching f, oldest first.
// Timestamps keep the offset they were imported with.
func (s *Store) LoadTransactions(f Filter) ([]model.RawTransaction, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if !f.Since.IsZero() {
		where = append(where, "ts_utc >= ?")
		args = append(args, f.Since.UTC().Format(utcLayout))
	}
	if !f.Until.IsZero() {
		where = append(where, "ts_utc < ?")
		args = append(args, f.Until.UTC().Format(utcLayout))
	}

	query := `SELECT id, user_id, ts, income_amount, balance_amount, description,
		category_id, category_name, merchant, deleted
		FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts_utc, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []model.RawTransaction
	for rows.Next() {
		var (
			t                    model.RawTransaction
			ts, income, balance  string
			desc, catID, catName sql.NullString
			merchant             sql.NullString
			deleted              int
		)
		if err := rows.Scan(&t.ID, &t.UserID, &ts, &income, &balance, &desc, &catID, &catName, &merchant, &deleted); err != nil {
			return nil, err
		}

		if t.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing timestamp: %w", t.ID, err)
		}
		if t.IncomeAmount, err = decimal.NewFromString(income); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing income amount: %w", t.ID, err)
		}
		if t.BalanceAmount, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing balance amount: %w", t.ID, err)
		}
		t.Description = desc.String
		t.CategoryID = catID.String
		t.CategoryName = catName.String
		t.Merchant = merchant.String
		t.Deleted = deleted != 0

		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// Users returns every user with stored transactions, sorted.
func (s *Store) Users() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT user_id FROM transactions ORDER BY user_id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// TransactionCount returns the number of stored transactions.
func (s *Store) TransactionCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// SaveCategories replaces the stored hierarchy with cats.
func (s *Store) SaveCategories(cats []model.Category) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM categories"); err != nil {
		return err
	}
	for _, c := range cats {
		_, err := tx.Exec(`INSERT INTO categories (id, parent_id, name, txn_type) VALUES (?, ?, ?, ?)`,
			c.ID, c.ParentID, c.Name, c.TxnType)
		if err != nil {
			return fmt.Errorf("saving category %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// LoadCategories returns the stored hierarchy ordered by id.
func (s *Store) LoadCategories() ([]model.Category, error) {
	rows, err := s.db.Query("SELECT id, parent_id, name, txn_type FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		var parent, txnType sql.NullString
		if err := rows.Scan(&c.ID, &parent, &c.Name, &txnType); err != nil {
			return nil, err
		}
		c.ParentID = parent.String
		c.TxnType = txnType.String
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

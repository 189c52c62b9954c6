package source

import "github.com/shopspring/decimal"

// FeedRecord is a single line of a JSONL transaction feed.
// Amounts may be JSON strings or numbers.
type FeedRecord struct {
	ID            string          `json:"id"`
	User          string          `json:"user"`
	Timestamp     string          `json:"timestamp"`
	IncomeAmount  decimal.Decimal `json:"income_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"category_id"`
	CategoryName  string          `json:"category_name,omitempty"`
	Merchant      string          `json:"merchant,omitempty"`
	Deleted       bool            `json:"deleted,omitempty"`
}

// FeedFile is a JSONL feed found during scanning.
type FeedFile struct {
	Path string
	Name string // file name without extension
}

// Package model defines domain types for spendvibe transactions and reports.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction is one record of the upstream transaction feed, before
// category resolution. Amounts are signed as the source stored them.
type RawTransaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user"`
	Timestamp     time.Time       `json:"timestamp"`
	IncomeAmount  decimal.Decimal `json:"income_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"category_id"`
	CategoryName  string          `json:"category_name,omitempty"`
	Merchant      string          `json:"merchant,omitempty"`
	Deleted       bool            `json:"deleted,omitempty"`
}

// Category is one node of the category hierarchy.
type Category struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name     string `json:"name" yaml:"name"`
	TxnType  string `json:"txn_type" yaml:"txn_type"`
}

// TxnTypeExpense is the declared transaction type of spending categories.
const TxnTypeExpense = "expense"

// Transaction is a prepared expense record with resolved names and derived
// time features.
type Transaction struct {
	ID           string
	Date         time.Time
	Amount       float64
	Description  string
	CategoryID   string
	CategoryName string
	ParentID     string
	ParentName   string
	Parent       ParentKind
	Merchant     string

	Hour          int
	IsWeekend     bool
	Period        TimePeriod
	TimeDiffHours float64
	Day           int

	IsFixed        bool
	IsNonEssential bool

	Cluster int
}

// FixedProfile holds the dispersion statistics of one category.
type FixedProfile struct {
	Category   string
	Count      int
	MeanAmount float64
	AmountStd  float64
	DayStd     float64
	CV         float64
	IsFixed    bool
}

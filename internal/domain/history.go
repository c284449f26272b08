package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RebalanceRecord is the immutable audit entry written once per rebalance run
type RebalanceRecord struct {
	ID          int64
	CreatedAt   time.Time
	Threshold   decimal.Decimal
	TotalValue  decimal.Decimal
	Suggestions []Suggestion
}

// RecordSummary is the list view of a record, without suggestions
type RecordSummary struct {
	ID         int64
	CreatedAt  time.Time
	Threshold  decimal.Decimal
	TotalValue decimal.Decimal
}

// Summary drops the suggestions from the record
func (r *RebalanceRecord) Summary() RecordSummary {
	return RecordSummary{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Threshold:  r.Threshold,
		TotalValue: r.TotalValue,
	}
}

// Clone returns a copy that shares no slice with r
func (r *RebalanceRecord) Clone() *RebalanceRecord {
	out := *r
	out.Suggestions = make([]Suggestion, len(r.Suggestions))
	copy(out.Suggestions, r.Suggestions)
	return &out
}

package domain

import (
	"context"

	"github.com/google/uuid"
)

// PortfolioRepository defines the interface for bucket and fund persistence operations
// Buckets and funds are returned in insertion order.
type PortfolioRepository interface {
	// Load retrieves every bucket with its funds
	Load(ctx context.Context) (Portfolio, error)

	// CountBuckets returns the number of stored buckets
	CountBuckets(ctx context.Context) (int, error)

	// CreateBucket stores a bucket and its funds after the existing buckets
	CreateBucket(ctx context.Context, bucket *Bucket) error

	// InsertFund appends a fund to the end of the bucket
	// Returns NotFoundError if the bucket does not exist
	InsertFund(ctx context.Context, bucketID uuid.UUID, fund *Fund) error

	// UpdateFund overwrites every attribute of an existing fund in one write
	// Returns NotFoundError if the fund does not exist
	UpdateFund(ctx context.Context, fund *Fund) error

	// DeleteFund removes a fund
	// Returns NotFoundError if the fund does not exist
	DeleteFund(ctx context.Context, fundID uuid.UUID) error
}

// HistoryRepository defines the interface for rebalance history persistence operations
type HistoryRepository interface {
	// Append stores the record with its suggestions and sets record.ID
	// IDs are unique and strictly increasing
	Append(ctx context.Context, record *RebalanceRecord) error

	// List returns up to limit summaries, most recent first
	List(ctx context.Context, limit int) ([]RecordSummary, error)

	// Get returns the full record
	// Returns NotFoundError if no record has that id
	Get(ctx context.Context, id int64) (*RebalanceRecord, error)
}

package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// portfolioRepository implements domain.PortfolioRepository
type portfolioRepository struct {
	db *DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) domain.PortfolioRepository {
	return &portfolioRepository{db: db}
}

// Load retrieves every bucket with its funds, both in position order
func (r *portfolioRepository) Load(ctx context.Context) (domain.Portfolio, error) {
	bucketRows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_rate
		FROM buckets
		ORDER BY position
	`)
	if err != nil {
		return nil, domain.NewPersistenceError("load buckets", err)
	}
	defer bucketRows.Close()

	portfolio := domain.Portfolio{}
	index := make(map[uuid.UUID]int)
	for bucketRows.Next() {
		var bucket domain.Bucket
		var rateStr string
		if err := bucketRows.Scan(&bucket.ID, &bucket.Name, &rateStr); err != nil {
			return nil, domain.NewPersistenceError("scan bucket", err)
		}
		if bucket.TargetRate, err = parseDecimal("target_rate", rateStr); err != nil {
			return nil, err
		}
		bucket.Funds = []domain.Fund{}
		index[bucket.ID] = len(portfolio)
		portfolio = append(portfolio, bucket)
	}
	if err := bucketRows.Err(); err != nil {
		return nil, domain.NewPersistenceError("iterate buckets", err)
	}

	fundRows, err := r.db.QueryContext(ctx, `
		SELECT id, bucket_id, name, code, current, weight
		FROM funds
		ORDER BY position
	`)
	if err != nil {
		return nil, domain.NewPersistenceError("load funds", err)
	}
	defer fundRows.Close()

	for fundRows.Next() {
		var fund domain.Fund
		var bucketID uuid.UUID
		var currentStr, weightStr string
		if err := fundRows.Scan(&fund.ID, &bucketID, &fund.Name, &fund.Code, &currentStr, &weightStr); err != nil {
			return nil, domain.NewPersistenceError("scan fund", err)
		}
		if fund.Current, err = parseDecimal("current", currentStr); err != nil {
			return nil, err
		}
		if fund.Weight, err = parseDecimal("weight", weightStr); err != nil {
			return nil, err
		}

		bi, ok := index[bucketID]
		if !ok {
			continue
		}
		portfolio[bi].Funds = append(portfolio[bi].Funds, fund)
	}
	if err := fundRows.Err(); err != nil {
		return nil, domain.NewPersistenceError("iterate funds", err)
	}

	return portfolio, nil
}

// CountBuckets returns the number of stored buckets
func (r *portfolioRepository) CountBuckets(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM buckets`).Scan(&count); err != nil {
		return 0, domain.NewPersistenceError("count buckets", err)
	}
	return count, nil
}

// CreateBucket stores a bucket and its funds in one transaction
func (r *portfolioRepository) CreateBucket(ctx context.Context, bucket *domain.Bucket) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("begin transaction", err)
	}
	defer dbTx.Rollback()

	var position int
	if err := dbTx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM buckets`).Scan(&position); err != nil {
		return domain.NewPersistenceError("create bucket", err)
	}

	_, err = dbTx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO buckets (id, name, target_rate, position)
		VALUES (?, ?, ?, ?)
	`), bucket.ID, bucket.Name, bucket.TargetRate.String(), position)
	if err != nil {
		return domain.NewPersistenceError("create bucket", err)
	}

	for i := range bucket.Funds {
		if err := r.insertFund(ctx, dbTx, bucket.ID, &bucket.Funds[i], i); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return domain.NewPersistenceError("commit transaction", err)
	}

	return nil
}

// InsertFund appends a fund after the last fund of the bucket
func (r *portfolioRepository) InsertFund(ctx context.Context, bucketID uuid.UUID, fund *domain.Fund) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("begin transaction", err)
	}
	defer dbTx.Rollback()

	var exists int
	err = dbTx.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM buckets WHERE id = ?`), bucketID).Scan(&exists)
	if err != nil {
		return domain.NewPersistenceError("insert fund", err)
	}
	if exists == 0 {
		return domain.NewNotFoundError("bucket", bucketID)
	}

	var position int
	err = dbTx.QueryRowContext(ctx, r.db.Rebind(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM funds WHERE bucket_id = ?
	`), bucketID).Scan(&position)
	if err != nil {
		return domain.NewPersistenceError("insert fund", err)
	}

	if err := r.insertFund(ctx, dbTx, bucketID, fund, position); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return domain.NewPersistenceError("commit transaction", err)
	}

	return nil
}

func (r *portfolioRepository) insertFund(ctx context.Context, dbTx *sql.Tx, bucketID uuid.UUID, fund *domain.Fund, position int) error {
	_, err := dbTx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO funds (id, bucket_id, name, code, current, weight, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`),
		fund.ID,
		bucketID,
		fund.Name,
		fund.Code,
		fund.Current.String(),
		fund.Weight.String(),
		position,
	)
	if err != nil {
		return domain.NewPersistenceError("insert fund", err)
	}
	return nil
}

// UpdateFund overwrites every attribute of an existing fund in one statement
func (r *portfolioRepository) UpdateFund(ctx context.Context, fund *domain.Fund) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE funds
		SET name = ?, code = ?, current = ?, weight = ?
		WHERE id = ?
	`), fund.Name, fund.Code, fund.Current.String(), fund.Weight.String(), fund.ID)
	if err != nil {
		return domain.NewPersistenceError("update fund", err)
	}
	return requireRow(result, "fund", fund.ID)
}

// DeleteFund removes a fund; the positions of the remaining funds keep their order
func (r *portfolioRepository) DeleteFund(ctx context.Context, fundID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM funds WHERE id = ?`), fundID)
	if err != nil {
		return domain.NewPersistenceError("delete fund", err)
	}
	return requireRow(result, "fund", fundID)
}

func requireRow(result sql.Result, resource string, key any) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError(fmt.Sprintf("check affected %s rows", resource), err)
	}
	if rows == 0 {
		return domain.NewNotFoundError(resource, key)
	}
	return nil
}

func parseDecimal(column, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewPersistenceError("parse "+column, err)
	}
	return value, nil
}

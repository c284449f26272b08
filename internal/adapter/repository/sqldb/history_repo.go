package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simaogato/fundbalance-backend/internal/domain"
)

// historyRepository implements domain.HistoryRepository
type historyRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) domain.HistoryRepository {
	return &historyRepository{db: db}
}

// Append inserts the record and all of its suggestions in one transaction
func (r *historyRepository) Append(ctx context.Context, record *domain.RebalanceRecord) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("begin transaction", err)
	}
	defer dbTx.Rollback()

	var id int64
	err = dbTx.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO rebalance_records (created_at, threshold, total_value)
		VALUES (?, ?, ?)
		RETURNING id
	`), r.timeArg(record.CreatedAt), record.Threshold.String(), record.TotalValue.String()).Scan(&id)
	if err != nil {
		return domain.NewPersistenceError("insert rebalance record", err)
	}

	insertSuggestionQuery := r.db.Rebind(`
		INSERT INTO rebalance_suggestions (
			record_id, position, bucket_name, fund_name, fund_code,
			current_value, target_value, diff_value, advice, reason
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for i, s := range record.Suggestions {
		_, err = dbTx.ExecContext(ctx, insertSuggestionQuery,
			id,
			i,
			s.BucketName,
			s.FundName,
			s.FundCode,
			s.CurrentValue.String(),
			s.TargetValue.String(),
			s.DiffValue.String(),
			string(s.Advice),
			s.Reason,
		)
		if err != nil {
			return domain.NewPersistenceError("insert rebalance suggestion", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return domain.NewPersistenceError("commit transaction", err)
	}

	record.ID = id
	return nil
}

// List returns up to limit summaries, most recent first
func (r *historyRepository) List(ctx context.Context, limit int) ([]domain.RecordSummary, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT id, created_at, threshold, total_value
		FROM rebalance_records
		ORDER BY id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, domain.NewPersistenceError("list rebalance records", err)
	}
	defer rows.Close()

	summaries := []domain.RecordSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("iterate rebalance records", err)
	}

	return summaries, nil
}

// Get returns the record with its suggestions in the order they were computed
func (r *historyRepository) Get(ctx context.Context, id int64) (*domain.RebalanceRecord, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, created_at, threshold, total_value
		FROM rebalance_records
		WHERE id = ?
	`), id)

	summary, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("rebalance record", id)
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT bucket_name, fund_name, fund_code, current_value, target_value, diff_value, advice, reason
		FROM rebalance_suggestions
		WHERE record_id = ?
		ORDER BY position
	`), id)
	if err != nil {
		return nil, domain.NewPersistenceError("load rebalance suggestions", err)
	}
	defer rows.Close()

	record := &domain.RebalanceRecord{
		ID:          summary.ID,
		CreatedAt:   summary.CreatedAt,
		Threshold:   summary.Threshold,
		TotalValue:  summary.TotalValue,
		Suggestions: []domain.Suggestion{},
	}

	for rows.Next() {
		var s domain.Suggestion
		var advice, currentStr, targetStr, diffStr string
		if err := rows.Scan(&s.BucketName, &s.FundName, &s.FundCode, &currentStr, &targetStr, &diffStr, &advice, &s.Reason); err != nil {
			return nil, domain.NewPersistenceError("scan rebalance suggestion", err)
		}
		s.Advice = domain.Advice(advice)
		if s.CurrentValue, err = parseDecimal("current_value", currentStr); err != nil {
			return nil, err
		}
		if s.TargetValue, err = parseDecimal("target_value", targetStr); err != nil {
			return nil, err
		}
		if s.DiffValue, err = parseDecimal("diff_value", diffStr); err != nil {
			return nil, err
		}
		record.Suggestions = append(record.Suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("iterate rebalance suggestions", err)
	}

	return record, nil
}

// timeArg stores timestamps as RFC3339 text in SQLite and natively in PostgreSQL
func (r *historyRepository) timeArg(t time.Time) any {
	if r.db.dialect == DialectPostgres {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (domain.RecordSummary, error) {
	var summary domain.RecordSummary
	var createdAt any
	var thresholdStr, totalStr string

	if err := row.Scan(&summary.ID, &createdAt, &thresholdStr, &totalStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return summary, err
		}
		return summary, domain.NewPersistenceError("scan rebalance record", err)
	}

	var err error
	if summary.CreatedAt, err = parseTime(createdAt); err != nil {
		return summary, err
	}
	if summary.Threshold, err = parseDecimal("threshold", thresholdStr); err != nil {
		return summary, err
	}
	if summary.TotalValue, err = parseDecimal("total_value", totalStr); err != nil {
		return summary, err
	}

	return summary, nil
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	default:
		return time.Time{}, domain.NewPersistenceError("parse created_at", fmt.Errorf("unsupported type %T", v))
	}
}

func parseTimeString(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, domain.NewPersistenceError("parse created_at", err)
	}
	return t.UTC(), nil
}

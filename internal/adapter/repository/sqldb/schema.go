package sqldb

import (
	"context"
	"fmt"
	"strings"
)

// Column types that differ between dialects
type columnTypes struct {
	serial  string
	id      string
	decimal string
	time    string
}

func (db *DB) columnTypes() columnTypes {
	if db.dialect == DialectPostgres {
		return columnTypes{serial: "BIGSERIAL PRIMARY KEY", id: "UUID", decimal: "NUMERIC", time: "TIMESTAMPTZ"}
	}
	return columnTypes{serial: "INTEGER PRIMARY KEY AUTOINCREMENT", id: "TEXT", decimal: "TEXT", time: "TEXT"}
}

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS buckets (
	id          {id} PRIMARY KEY,
	name        TEXT NOT NULL,
	target_rate {decimal} NOT NULL,
	position    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS funds (
	id         {id} PRIMARY KEY,
	bucket_id  {id} NOT NULL REFERENCES buckets(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	code       TEXT NOT NULL,
	current    {decimal} NOT NULL,
	weight     {decimal} NOT NULL,
	position   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_funds_bucket_position ON funds(bucket_id, position);

CREATE TABLE IF NOT EXISTS rebalance_records (
	id          {serial},
	created_at  {time} NOT NULL,
	threshold   {decimal} NOT NULL,
	total_value {decimal} NOT NULL
);

CREATE TABLE IF NOT EXISTS rebalance_suggestions (
	id            {serial},
	record_id     BIGINT NOT NULL REFERENCES rebalance_records(id),
	position      INTEGER NOT NULL,
	bucket_name   TEXT NOT NULL,
	fund_name     TEXT NOT NULL,
	fund_code     TEXT NOT NULL,
	current_value {decimal} NOT NULL,
	target_value  {decimal} NOT NULL,
	diff_value    {decimal} NOT NULL,
	advice        TEXT NOT NULL,
	reason        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_suggestions_record ON rebalance_suggestions(record_id, position);
`

// Migrate creates the tables if they do not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	types := db.columnTypes()
	schema := strings.NewReplacer(
		"{serial}", types.serial,
		"{id}", types.id,
		"{decimal}", types.decimal,
		"{time}", types.time,
	).Replace(schemaTemplate)

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return nil
}

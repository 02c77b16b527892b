package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
)

const buildRunsTableDDL = `
	CREATE TABLE IF NOT EXISTS build_runs (
		run_id String,
		started_at DateTime64(3),
		num_docs UInt64,
		unique_tokens UInt64,
		index_size_bytes UInt64,
		exact_dups_removed UInt64,
		near_dups_removed UInt64
	) ENGINE = MergeTree()
	ORDER BY started_at
`

const defaultDialTimeout = 10 * time.Second

// ClickHouseSink records one row per build run to a ClickHouse table,
// letting operators track index growth and duplicate rates across builds
// of the same corpus family. It is entirely optional: a build whose
// analytics_backend is not "clickhouse" runs without it.
type ClickHouseSink struct {
	conn driver.Conn
}

// NewClickHouseSink connects to addr/database and ensures build_runs exists.
func NewClickHouseSink(ctx context.Context, addr, database, username, password string) (*ClickHouseSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: defaultDialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening clickhouse connection: %w", err)
	}
	if err := conn.Exec(ctx, buildRunsTableDDL); err != nil {
		return nil, fmt.Errorf("creating build_runs table: %w", err)
	}
	return &ClickHouseSink{conn: conn}, nil
}

// RecordRun inserts one summary row for a finished build run, stamped with
// a fresh run id.
func (s *ClickHouseSink) RecordRun(ctx context.Context, startedAt time.Time, report Report) error {
	return s.conn.Exec(ctx,
		"INSERT INTO build_runs (run_id, started_at, num_docs, unique_tokens, index_size_bytes, exact_dups_removed, near_dups_removed) VALUES (?, ?, ?, ?, ?, ?, ?)",
		uuid.NewString(),
		startedAt,
		uint64(report.NumDocs),
		uint64(report.UniqueTokens),
		uint64(report.IndexSizeBytes),
		uint64(report.ExactDupsRemoved),
		uint64(report.NearDupsRemoved),
	)
}

// Close releases the underlying connection.
func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}

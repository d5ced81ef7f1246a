package record

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"primelab/internal/prime/models"
	"primelab/pkg/platform/tx"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS prime_records (
	id           UUID PRIMARY KEY,
	value        TEXT        NOT NULL,
	bits         INTEGER     NOT NULL,
	algorithm    TEXT        NOT NULL,
	attempts     INTEGER     NOT NULL,
	elapsed_ns   BIGINT      NOT NULL,
	test_time_ns BIGINT      NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS prime_records_run_idx ON prime_records (algorithm, bits)`,
}

// PostgresStore persists records in the prime_records table. Calls join a
// transaction carried by the context (see pkg/platform/tx).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table and index when missing, in one transaction.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		for _, stmt := range schema {
			if _, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("ensure prime_records schema: %w", err)
			}
		}
		return nil
	})
}

// Append inserts rec. Re-appending the same ID is a no-op.
func (s *PostgresStore) Append(ctx context.Context, rec *models.Record) error {
	query := `
		INSERT INTO prime_records (id, value, bits, algorithm, attempts, elapsed_ns, test_time_ns, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		rec.ID,
		rec.Value.String(),
		rec.Bits,
		string(rec.Algorithm),
		rec.Attempts,
		rec.Elapsed.Nanoseconds(),
		rec.TestTime.Nanoseconds(),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prime record: %w", err)
	}
	return nil
}

// ListByBits returns the records of one algorithm whose bit-length is in bits,
// oldest first.
func (s *PostgresStore) ListByBits(ctx context.Context, algorithm models.Algorithm, bits []int) ([]*models.Record, error) {
	query := `
		SELECT id, value, bits, algorithm, attempts, elapsed_ns, test_time_ns, created_at
		FROM prime_records
		WHERE algorithm = $1 AND bits = ANY($2)
		ORDER BY created_at, id
	`
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, string(algorithm), pq.Array(toInt64s(bits)))
	if err != nil {
		return nil, fmt.Errorf("query prime records: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		var (
			id                uuid.UUID
			value, alg        string
			nbits, attempts   int
			elapsed, testTime int64
			createdAt         time.Time
		)
		if err := rows.Scan(&id, &value, &nbits, &alg, &attempts, &elapsed, &testTime, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prime record: %w", err)
		}
		n, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return nil, fmt.Errorf("parse stored prime %q", value)
		}
		rec, err := models.NewRecord(id, n, nbits, models.Algorithm(alg), attempts,
			time.Duration(elapsed), time.Duration(testTime), createdAt)
		if err != nil {
			return nil, fmt.Errorf("stored record %s: %w", id, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prime records: %w", err)
	}
	return out, nil
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

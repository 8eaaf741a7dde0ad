package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/fathom-scraper/internal/entity"
)

const schema = `
	CREATE TABLE IF NOT EXISTS failed_scrapes (
		url                    TEXT        NOT NULL,
		kind                   TEXT        NOT NULL,
		failure_reason         TEXT        NOT NULL,
		attempts               INTEGER     NOT NULL,
		failure_count          INTEGER     NOT NULL DEFAULT 1,
		last_attempt_timestamp TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (url, kind)
	);
	CREATE INDEX IF NOT EXISTS failed_scrapes_last_attempt_idx
		ON failed_scrapes (last_attempt_timestamp DESC);
`

// FailedScrapeRepoImpl implements repository.FailedScrapeRepository on PostgreSQL.
type FailedScrapeRepoImpl struct {
	db *pgxpool.Pool
}

func NewFailedScrapeRepo(db *pgxpool.Pool) *FailedScrapeRepoImpl {
	return &FailedScrapeRepoImpl{db: db}
}

// EnsureSchema creates the journal table if it does not exist yet.
func (r *FailedScrapeRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create failed_scrapes schema: %w", err)
	}
	return nil
}

// SaveOrUpdate upserts the record for (url, kind), incrementing failure_count on conflict.
func (r *FailedScrapeRepoImpl) SaveOrUpdate(ctx context.Context, failed *entity.FailedScrape) error {
	query := `
		INSERT INTO failed_scrapes (url, kind, failure_reason, attempts, failure_count, last_attempt_timestamp)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (url, kind) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			attempts = EXCLUDED.attempts,
			failure_count = failed_scrapes.failure_count + 1,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp;
	`
	_, err := r.db.Exec(ctx, query,
		failed.URL,
		string(failed.Kind),
		failed.FailureReason,
		failed.Attempts,
		failed.LastAttemptTimestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert failed scrape: %w", err)
	}
	return nil
}

func (r *FailedScrapeRepoImpl) Delete(ctx context.Context, url string, kind entity.ScrapeKind) error {
	query := `DELETE FROM failed_scrapes WHERE url = $1 AND kind = $2;`
	if _, err := r.db.Exec(ctx, query, url, string(kind)); err != nil {
		return fmt.Errorf("delete failed scrape: %w", err)
	}
	return nil
}

// FindRecent returns up to limit records, most recent failure first.
func (r *FailedScrapeRepoImpl) FindRecent(ctx context.Context, limit int) ([]*entity.FailedScrape, error) {
	query := `
		SELECT url, kind, failure_reason, attempts, failure_count, last_attempt_timestamp
		FROM failed_scrapes
		ORDER BY last_attempt_timestamp DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed scrapes: %w", err)
	}
	defer rows.Close()

	var failed []*entity.FailedScrape
	for rows.Next() {
		var (
			fs   entity.FailedScrape
			kind string
		)
		if err := rows.Scan(
			&fs.URL,
			&kind,
			&fs.FailureReason,
			&fs.Attempts,
			&fs.FailureCount,
			&fs.LastAttemptTimestamp,
		); err != nil {
			return nil, err
		}
		fs.Kind = entity.ScrapeKind(kind)
		failed = append(failed, &fs)
	}

	return failed, rows.Err()
}

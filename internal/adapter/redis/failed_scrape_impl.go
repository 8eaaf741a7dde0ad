package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/pkg/logger"
	"github.com/user/fathom-scraper/pkg/utils"
)

const (
	failedScrapePrefix = "failed_scrape:"
	// failedScrapeIndex is a sorted set of record keys scored by last attempt time.
	failedScrapeIndex = "failed_scrapes"
)

const (
	fieldURL           = "url"
	fieldKind          = "kind"
	fieldReason        = "failure_reason"
	fieldAttempts      = "attempts"
	fieldFailureCount  = "failure_count"
	fieldLastAttemptAt = "last_attempt_timestamp"
)

// FailedScrapeRepoImpl implements repository.FailedScrapeRepository with one
// hash per (url, kind) that expires after ttl.
type FailedScrapeRepoImpl struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewFailedScrapeRepo(client *redis.Client, ttl time.Duration, log *slog.Logger) *FailedScrapeRepoImpl {
	return &FailedScrapeRepoImpl{client: client, ttl: ttl, logger: logger.OrDefault(log)}
}

// generateKey hashes the URL so keys stay short and free of separators.
func generateKey(url string, kind entity.ScrapeKind) string {
	return fmt.Sprintf("%s%s:%s", failedScrapePrefix, kind, utils.HashURL(url))
}

func (r *FailedScrapeRepoImpl) SaveOrUpdate(ctx context.Context, failed *entity.FailedScrape) error {
	key := generateKey(failed.URL, failed.Kind)
	ts := failed.LastAttemptTimestamp.UTC()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldURL, failed.URL,
			fieldKind, string(failed.Kind),
			fieldReason, failed.FailureReason,
			fieldAttempts, failed.Attempts,
			fieldLastAttemptAt, ts.Format(time.RFC3339Nano),
		)
		pipe.HIncrBy(ctx, key, fieldFailureCount, 1)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		pipe.ZAdd(ctx, failedScrapeIndex, redis.Z{Score: float64(ts.UnixMilli()), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save failed scrape: %w", err)
	}
	return nil
}

func (r *FailedScrapeRepoImpl) Delete(ctx context.Context, url string, kind entity.ScrapeKind) error {
	key := generateKey(url, kind)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, failedScrapeIndex, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete failed scrape: %w", err)
	}
	return nil
}

// FindRecent walks the index newest first, reading further batches until
// limit live records are found. Index entries whose hash has expired are
// skipped and pruned.
func (r *FailedScrapeRepoImpl) FindRecent(ctx context.Context, limit int) ([]*entity.FailedScrape, error) {
	if limit <= 0 {
		return nil, nil
	}
	failed, stale, err := collectRecent(ctx, limit, r.readIndex, r.loadHashes)
	if err != nil {
		return nil, err
	}

	if len(stale) > 0 {
		members := make([]any, len(stale))
		for i, key := range stale {
			members[i] = key
		}
		if err := r.client.ZRem(ctx, failedScrapeIndex, members...).Err(); err != nil {
			r.logger.Warn("Failed to prune expired failure journal entries", "count", len(stale), "error", err)
		}
	}
	return failed, nil
}

func (r *FailedScrapeRepoImpl) readIndex(ctx context.Context, start, stop int64) ([]string, error) {
	return r.client.ZRevRange(ctx, failedScrapeIndex, start, stop).Result()
}

func (r *FailedScrapeRepoImpl) loadHashes(ctx context.Context, keys []string) ([]map[string]string, error) {
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read failed scrapes: %w", err)
	}

	hashes := make([]map[string]string, len(cmds))
	for i, cmd := range cmds {
		hashes[i], _ = cmd.Result()
	}
	return hashes, nil
}

// indexReader returns index members ranked start..stop, newest first.
type indexReader func(ctx context.Context, start, stop int64) ([]string, error)

// hashLoader returns the fields stored under each key. An empty map means the
// hash has expired.
type hashLoader func(ctx context.Context, keys []string) ([]map[string]string, error)

// collectRecent pages through the index in batches of limit and returns up
// to limit decoded records plus the keys found to be stale.
func collectRecent(ctx context.Context, limit int, readIndex indexReader, load hashLoader) ([]*entity.FailedScrape, []string, error) {
	var (
		failed []*entity.FailedScrape
		stale  []string
	)
	batch := int64(limit)
	for start := int64(0); len(failed) < limit; start += batch {
		keys, err := readIndex(ctx, start, start+batch-1)
		if err != nil {
			return nil, nil, fmt.Errorf("read failed scrape index: %w", err)
		}
		if len(keys) == 0 {
			break
		}
		hashes, err := load(ctx, keys)
		if err != nil {
			return nil, nil, err
		}

		for i, fields := range hashes {
			if len(failed) == limit {
				break
			}
			if len(fields) == 0 {
				stale = append(stale, keys[i])
				continue
			}
			fs, err := decodeFailedScrape(fields)
			if err != nil {
				return nil, nil, fmt.Errorf("decode %s: %w", keys[i], err)
			}
			failed = append(failed, fs)
		}

		if int64(len(keys)) < batch {
			break
		}
	}
	return failed, stale, nil
}

func decodeFailedScrape(fields map[string]string) (*entity.FailedScrape, error) {
	fs := &entity.FailedScrape{
		URL:           fields[fieldURL],
		Kind:          entity.ScrapeKind(fields[fieldKind]),
		FailureReason: fields[fieldReason],
	}
	var err error
	if fs.Attempts, err = atoiField(fields, fieldAttempts); err != nil {
		return nil, err
	}
	if fs.FailureCount, err = atoiField(fields, fieldFailureCount); err != nil {
		return nil, err
	}
	if raw := fields[fieldLastAttemptAt]; raw != "" {
		if fs.LastAttemptTimestamp, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, fmt.Errorf("field %s: %w", fieldLastAttemptAt, err)
		}
	}
	return fs, nil
}

func atoiField(fields map[string]string, name string) (int, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return n, nil
}

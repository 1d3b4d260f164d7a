package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dateLayout = "2006-01-02"

	// Daily hashes are kept a month past their day so the stats window
	// always has data to read.
	retention = 32 * 24 * time.Hour
)

// Recorder counts page views in Redis, one hash per day keyed by
// request path. Recording is best-effort; a Redis outage never fails a
// request.
type Recorder struct {
	client *redis.Client
}

func NewRecorder(client *redis.Client) *Recorder {
	return &Recorder{client: client}
}

func dayKey(day time.Time) string {
	return fmt.Sprintf("pageviews:%s", day.UTC().Format(dateLayout))
}

// RecordPageView increments today's counter for the path.
func (r *Recorder) RecordPageView(ctx context.Context, path string) error {
	key := dayKey(time.Now())

	count, err := r.client.HIncrBy(ctx, key, path, 1).Result()
	if err != nil {
		return fmt.Errorf("failed to record page view: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, retention).Err(); err != nil {
			return fmt.Errorf("failed to set page view retention: %w", err)
		}
	}

	return nil
}

// DayStats is one day's per-path view counts.
type DayStats struct {
	Date  string           `json:"date"`
	Paths map[string]int64 `json:"paths"`
	Total int64            `json:"total"`
}

// Stats returns per-path counts for the last days, most recent first.
// Days with no recorded views appear with empty counts.
func (r *Recorder) Stats(ctx context.Context, days int) ([]DayStats, error) {
	if days < 1 {
		days = 1
	}

	now := time.Now().UTC()
	stats := make([]DayStats, 0, days)

	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -i)

		raw, err := r.client.HGetAll(ctx, dayKey(day)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read page views: %w", err)
		}

		ds := DayStats{
			Date:  day.Format(dateLayout),
			Paths: make(map[string]int64, len(raw)),
		}
		for path, value := range raw {
			var count int64
			if _, err := fmt.Sscanf(value, "%d", &count); err != nil {
				continue
			}
			ds.Paths[path] = count
			ds.Total += count
		}

		stats = append(stats, ds)
	}

	return stats, nil
}

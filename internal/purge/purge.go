package purge

import (
	"context"
	"time"
)

const (
	// PageSize is the most messages one fetch or bulk delete may cover.
	PageSize = 100
	// MaxAge is the platform's bulk delete ceiling.
	MaxAge = 14 * 24 * time.Hour
)

type Message struct {
	ID        string
	CreatedAt time.Time
}

// Channel is the slice of the platform the deletion loop needs.
type Channel interface {
	// Recent returns up to limit of the newest messages, newest first.
	Recent(ctx context.Context, limit int) ([]Message, error)
	Delete(ctx context.Context, ids []string) error
}

// DeleteAll removes every message younger than MaxAge, one page at a time.
// It stops when a page is empty or holds nothing deletable, so older
// messages stay behind. The returned count is accurate even with an error.
func DeleteAll(ctx context.Context, ch Channel, now func() time.Time) (int, error) {
	if now == nil {
		now = time.Now
	}
	deleted := 0
	seen := make(map[string]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		page, err := ch.Recent(ctx, PageSize)
		if err != nil {
			return deleted, err
		}
		if len(page) == 0 {
			return deleted, nil
		}

		cutoff := now().Add(-MaxAge)
		ids := make([]string, 0, len(page))
		for _, msg := range page {
			if !msg.CreatedAt.After(cutoff) {
				continue
			}
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			ids = append(ids, msg.ID)
		}
		if len(ids) == 0 {
			return deleted, nil
		}

		if err := ch.Delete(ctx, ids); err != nil {
			return deleted, err
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
		deleted += len(ids)
	}
}

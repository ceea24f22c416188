package purge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeChannel struct {
	messages []Message // newest first
	fetches  int
	failAt   int
}

func (f *fakeChannel) Recent(ctx context.Context, limit int) ([]Message, error) {
	f.fetches++
	if limit > len(f.messages) {
		limit = len(f.messages)
	}
	page := make([]Message, limit)
	copy(page, f.messages[:limit])
	return page, nil
}

func (f *fakeChannel) Delete(ctx context.Context, ids []string) error {
	if f.failAt > 0 && f.fetches >= f.failAt {
		return errors.New("missing access")
	}
	if len(ids) > PageSize {
		return fmt.Errorf("too many ids: %d", len(ids))
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := f.messages[:0]
	for _, msg := range f.messages {
		if _, ok := drop[msg.ID]; !ok {
			kept = append(kept, msg)
		}
	}
	f.messages = kept
	return nil
}

func buildChannel(now time.Time, young, old int) *fakeChannel {
	ch := &fakeChannel{}
	for i := 0; i < young; i++ {
		ch.messages = append(ch.messages, Message{ID: fmt.Sprintf("y%d", i), CreatedAt: now.Add(-time.Duration(i+1) * time.Minute)})
	}
	for i := 0; i < old; i++ {
		ch.messages = append(ch.messages, Message{ID: fmt.Sprintf("o%d", i), CreatedAt: now.Add(-MaxAge - time.Duration(i+1)*time.Hour)})
	}
	return ch
}

func TestDeleteAllYoungMessages(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ch := buildChannel(now, 250, 0)

	deleted, err := DeleteAll(context.Background(), ch, func() time.Time { return now })
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 250 {
		t.Fatalf("expected 250 deleted, got %d", deleted)
	}
	// three deleting pages plus the final empty fetch
	if ch.fetches != 4 {
		t.Fatalf("expected 4 fetches, got %d", ch.fetches)
	}
	if len(ch.messages) != 0 {
		t.Fatalf("expected empty channel, %d left", len(ch.messages))
	}
}

func TestDeleteAllStopsAtAgeCeiling(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ch := buildChannel(now, 130, 40)

	deleted, err := DeleteAll(context.Background(), ch, func() time.Time { return now })
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 130 {
		t.Fatalf("expected 130 deleted, got %d", deleted)
	}
	if len(ch.messages) != 40 {
		t.Fatalf("expected 40 old messages left, got %d", len(ch.messages))
	}
}

func TestDeleteAllReportsPartialProgress(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ch := buildChannel(now, 250, 0)
	ch.failAt = 2

	deleted, err := DeleteAll(context.Background(), ch, func() time.Time { return now })
	if err == nil {
		t.Fatalf("expected error")
	}
	if deleted != 100 {
		t.Fatalf("expected 100 deleted before failure, got %d", deleted)
	}
}

type stuckChannel struct{ page []Message }

func (s *stuckChannel) Recent(ctx context.Context, limit int) ([]Message, error) {
	return s.page, nil
}

func (s *stuckChannel) Delete(ctx context.Context, ids []string) error { return nil }

func TestDeleteAllTerminatesWhenPlatformLags(t *testing.T) {
	now := time.Now()
	ch := &stuckChannel{page: []Message{{ID: "1", CreatedAt: now}, {ID: "2", CreatedAt: now}}}
	deleted, err := DeleteAll(context.Background(), ch, func() time.Time { return now })
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2, got %d", deleted)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWarningsAddRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warnings.json")
	store := LoadWarnings(path, zap.NewNop())

	for i := 1; i <= 4; i++ {
		count := store.Add("g1", "u1", Warning{Moderator: "mod", Reason: fmt.Sprintf("r%d", i), Timestamp: time.Unix(int64(i), 0).UTC()})
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
	}

	removed, err := store.Remove("g1", "u1", 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Reason != "r2" {
		t.Fatalf("expected r2 removed, got %q", removed.Reason)
	}

	list := store.List("g1", "u1")
	if len(list) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(list))
	}
	for i, want := range []string{"r1", "r3", "r4"} {
		if list[i].Reason != want {
			t.Fatalf("index %d: expected %q, got %q", i, want, list[i].Reason)
		}
	}
}

func TestWarningsRemoveOutOfRange(t *testing.T) {
	store := LoadWarnings(filepath.Join(t.TempDir(), "warnings.json"), zap.NewNop())
	store.Add("g1", "u1", Warning{Reason: "only"})

	for _, index := range []int{-1, -5, 1, 7} {
		if _, err := store.Remove("g1", "u1", index); !errors.Is(err, ErrWarningNotFound) {
			t.Fatalf("index %d: expected ErrWarningNotFound, got %v", index, err)
		}
	}
	if _, err := store.Remove("g2", "nobody", 0); !errors.Is(err, ErrWarningNotFound) {
		t.Fatalf("expected ErrWarningNotFound for unknown member, got %v", err)
	}
	if got := store.List("g1", "u1"); len(got) != 1 || got[0].Reason != "only" {
		t.Fatalf("list changed: %+v", got)
	}
}

func TestWarningsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "warnings.json")
	store := LoadWarnings(path, zap.NewNop())
	stamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Add("g1", "u1", Warning{Moderator: "a#1", Reason: "spam", Timestamp: stamp})
	store.Add("g1", "u1", Warning{Moderator: "b#2", Reason: "caps", Timestamp: stamp.Add(time.Hour)})
	store.Add("g2", "u9", Warning{Moderator: "c#3", Reason: "links", Timestamp: stamp})

	reloaded := LoadWarnings(path, zap.NewNop())
	for _, key := range [][2]string{{"g1", "u1"}, {"g2", "u9"}} {
		want := store.List(key[0], key[1])
		got := reloaded.List(key[0], key[1])
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("%v: expected %+v, got %+v", key, want, got)
		}
	}
}

func TestWarningsCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warnings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := LoadWarnings(path, zap.NewNop())
	if got := store.List("g1", "u1"); len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}
}

func TestLogChannelsPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logChannels.json")
	channels := LoadLogChannels(path, zap.NewNop())
	if _, ok := channels.Get("g1"); ok {
		t.Fatalf("expected no channel")
	}
	channels.Set("g1", "c1")
	channels.Set("g1", "c2")

	reloaded := LoadLogChannels(path, zap.NewNop())
	if got, ok := reloaded.Get("g1"); !ok || got != "c2" {
		t.Fatalf("expected c2, got %q", got)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestHistoryAddListCleanup(t *testing.T) {
	history, err := NewHistory(":memory:")
	if err != nil {
		t.Fatalf("new history: %v", err)
	}
	defer history.Close()

	if err := history.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	now := time.Now()
	if err := history.Add(ctx, AuditEntry{GuildID: "g1", ActorID: "u1", Title: "Warn", Body: "spam", Level: "INFO", CreatedAt: now}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := history.Add(ctx, AuditEntry{GuildID: "g1", Title: "Old", Level: "INFO", CreatedAt: now.AddDate(0, 0, -40)}); err != nil {
		t.Fatalf("add old: %v", err)
	}

	entries, err := history.List(ctx, "g1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Warn" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	removed, err := history.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
}

package analytics

import (
	"context"
	"testing"
	"time"

	"gabers-bot/internal/storage"
)

func TestReport(t *testing.T) {
	history, err := storage.NewHistory(":memory:")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	defer history.Close()
	if err := history.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	now := time.Now()
	for _, entry := range []storage.AuditEntry{
		{GuildID: "g1", Title: "Warn", Level: "INFO", CreatedAt: now},
		{GuildID: "g1", Title: "Warn", Level: "INFO", CreatedAt: now},
		{GuildID: "g1", Title: "Ban", Level: "WARN", CreatedAt: now},
		{GuildID: "g2", Title: "Ban", Level: "WARN", CreatedAt: now},
	} {
		if err := history.Add(ctx, entry); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	report, err := New(history).Report(ctx, "g1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 3 || report.ByTitle["Warn"] != 2 || report.ByLevel["WARN"] != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

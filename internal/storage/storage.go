package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// History is the sqlite-backed record of every audit notification the bot
// produced. It backs the ping report and outlives the log channel itself.
type History struct {
	db *sql.DB
}

type AuditEntry struct {
	ID        int64
	GuildID   string
	ActorID   string
	Title     string
	Body      string
	Level     string
	CreatedAt time.Time
}

func NewHistory(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	return &History{db: db}, nil
}

func (h *History) Close() {
	if h.db != nil {
		_ = h.db.Close()
	}
}

func (h *History) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := h.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

func (h *History) Add(ctx context.Context, entry AuditEntry) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO audit_history (guild_id, actor_id, title, body, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.GuildID, entry.ActorID, entry.Title, entry.Body, entry.Level, entry.CreatedAt.Unix())
	return err
}

func (h *History) List(ctx context.Context, guildID string, since time.Time) ([]AuditEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, guild_id, actor_id, title, body, level, created_at
		FROM audit_history
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		var created int64
		if err := rows.Scan(&entry.ID, &entry.GuildID, &entry.ActorID, &entry.Title, &entry.Body, &entry.Level, &created); err != nil {
			return nil, err
		}
		entry.CreatedAt = time.Unix(created, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (h *History) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	res, err := h.db.ExecContext(ctx, `DELETE FROM audit_history WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}

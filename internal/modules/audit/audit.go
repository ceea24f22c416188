package audit

import (
	"context"
	"time"

	"gabers-bot/internal/storage"

	"go.uber.org/zap"
)

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
	LevelCrit = "CRIT"
)

type Entry struct {
	GuildID string
	ActorID string
	Level   string
	Title   string
	Body    string
	Color   int
}

// ChannelLookup resolves a guild's log channel.
type ChannelLookup interface {
	Get(guildID string) (string, bool)
}

// Deliverer posts an entry into a channel.
type Deliverer func(ctx context.Context, channelID string, entry Entry) error

type Logger struct {
	channels ChannelLookup
	history  *storage.History
	logger   *zap.Logger
	deliver  Deliverer
}

func NewLogger(channels ChannelLookup, history *storage.History, logger *zap.Logger) *Logger {
	return &Logger{channels: channels, history: history, logger: logger}
}

func (l *Logger) SetDeliverer(deliver Deliverer) {
	l.deliver = deliver
}

// Log records entry and posts it to the guild's log channel. Guilds without
// a log channel get no message. Failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if entry.Level == "" {
		entry.Level = LevelInfo
	}
	l.logger.Info("audit",
		zap.String("level", entry.Level),
		zap.String("guild_id", entry.GuildID),
		zap.String("actor_id", entry.ActorID),
		zap.String("title", entry.Title),
		zap.String("body", entry.Body),
	)

	if l.history != nil {
		record := storage.AuditEntry{
			GuildID:   entry.GuildID,
			ActorID:   entry.ActorID,
			Title:     entry.Title,
			Body:      entry.Body,
			Level:     entry.Level,
			CreatedAt: time.Now(),
		}
		if err := l.history.Add(ctx, record); err != nil {
			l.logger.Warn("audit history write failed", zap.Error(err))
		}
	}

	if l.channels == nil || l.deliver == nil {
		return
	}
	channelID, ok := l.channels.Get(entry.GuildID)
	if !ok {
		return
	}
	if err := l.deliver(ctx, channelID, entry); err != nil {
		l.logger.Warn("audit delivery failed", zap.String("guild_id", entry.GuildID), zap.String("channel_id", channelID), zap.Error(err))
	}
}

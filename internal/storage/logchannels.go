package storage

import (
	"sync"

	"go.uber.org/zap"
)

// LogChannels maps a guild to its audit log channel.
type LogChannels struct {
	mu       sync.RWMutex
	path     string
	logger   *zap.Logger
	channels map[string]string
}

func LoadLogChannels(path string, logger *zap.Logger) *LogChannels {
	l := &LogChannels{
		path:     path,
		logger:   logger,
		channels: make(map[string]string),
	}
	if err := readJSON(path, &l.channels); err != nil {
		logger.Error("log channels load failed", zap.String("path", path), zap.Error(err))
		l.channels = make(map[string]string)
	}
	if l.channels == nil {
		l.channels = make(map[string]string)
	}
	logger.Info("log channels loaded", zap.Int("guilds", len(l.channels)))
	return l
}

func (l *LogChannels) Get(guildID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	channelID, ok := l.channels[guildID]
	return channelID, ok && channelID != ""
}

func (l *LogChannels) Set(guildID, channelID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.channels[guildID] = channelID
	if err := writeJSON(l.path, l.channels); err != nil {
		l.logger.Error("log channels save failed", zap.String("path", l.path), zap.Error(err))
	}
}

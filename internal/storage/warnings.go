package storage

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrWarningNotFound = errors.New("warning does not exist")

type Warning struct {
	Moderator string    `json:"moderator"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Warnings maps guild -> member -> warnings in append order. Every mutation
// rewrites the whole file; a failed write is logged and the in-memory state
// is kept.
type Warnings struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	data   map[string]map[string][]Warning
}

func LoadWarnings(path string, logger *zap.Logger) *Warnings {
	w := &Warnings{
		path:   path,
		logger: logger,
		data:   make(map[string]map[string][]Warning),
	}
	if err := readJSON(path, &w.data); err != nil {
		logger.Error("warnings load failed", zap.String("path", path), zap.Error(err))
		w.data = make(map[string]map[string][]Warning)
	}
	if w.data == nil {
		w.data = make(map[string]map[string][]Warning)
	}
	return w
}

// Add appends a warning and returns the member's new warning count.
func (w *Warnings) Add(guildID, userID string, warning Warning) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	members := w.data[guildID]
	if members == nil {
		members = make(map[string][]Warning)
		w.data[guildID] = members
	}
	members[userID] = append(members[userID], warning)
	w.saveLocked()
	return len(members[userID])
}

// List returns a copy of the member's warnings in append order.
func (w *Warnings) List(guildID, userID string) []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.data[guildID][userID]
	out := make([]Warning, len(current))
	copy(out, current)
	return out
}

// Remove deletes the warning at the zero-based index. Out of range indexes
// leave the list untouched and return ErrWarningNotFound.
func (w *Warnings) Remove(guildID, userID string, index int) (Warning, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.data[guildID][userID]
	if index < 0 || index >= len(current) {
		return Warning{}, ErrWarningNotFound
	}
	removed := current[index]
	next := make([]Warning, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	w.data[guildID][userID] = next
	w.saveLocked()
	return removed, nil
}

func (w *Warnings) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return writeJSON(w.path, w.data)
}

func (w *Warnings) saveLocked() {
	if err := writeJSON(w.path, w.data); err != nil {
		w.logger.Error("warnings save failed", zap.String("path", w.path), zap.Error(err))
	}
}

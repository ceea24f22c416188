package hack

import (
	"strings"
	"sync"
	"time"

	"gabers-bot/internal/clock"

	"go.uber.org/zap"
)

type StopReason int

const (
	StoppedByReply StopReason = iota + 1
	StoppedByTimeout
	StoppedByGlobalStop
	Replaced
)

func (r StopReason) String() string {
	switch r {
	case StoppedByReply:
		return "reply"
	case StoppedByTimeout:
		return "timeout"
	case StoppedByGlobalStop:
		return "global_stop"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

type Config struct {
	Interval    time.Duration
	Window      time.Duration
	ReplyPhrase string
}

// Send delivers one spam message to the target.
type Send func(targetID string)

type task struct {
	targetID string
	send     Send
	tick     clock.Timer
	window   clock.Timer
	stopped  bool
}

// Manager owns every running spam task, at most one per target.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	clock  clock.Clock
	logger *zap.Logger
	tasks  map[string]*task
	epoch  uint64
}

func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Manager{
		cfg:    cfg,
		clock:  clock.Real{},
		logger: logger,
		tasks:  make(map[string]*task),
	}
}

func (m *Manager) WithClock(c clock.Clock) {
	m.clock = c
}

// Start begins spamming targetID, replacing any task already running for
// that target.
func (m *Manager) Start(targetID string, send Send) {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()
	m.StartIfCurrent(epoch, targetID, send)
}

// Epoch identifies the current StopAll generation. A caller that prepares a
// task over time takes the epoch first and passes it to StartIfCurrent.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// StartIfCurrent starts the task only when no StopAll happened since epoch.
func (m *Manager) StartIfCurrent(epoch uint64, targetID string, send Send) bool {
	t := &task{targetID: targetID, send: send}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.logger.Debug("hack start skipped after stop", zap.String("target_id", targetID))
		return false
	}
	if old := m.tasks[targetID]; old != nil {
		m.stopLocked(old, Replaced)
	}
	m.tasks[targetID] = t
	t.window = m.clock.AfterFunc(m.cfg.Window, func() { m.expire(t) })
	t.tick = m.clock.AfterFunc(m.cfg.Interval, func() { m.fire(t) })
	m.mu.Unlock()

	m.logger.Info("hack started", zap.String("target_id", targetID))
	return true
}

// Stop cancels the task for targetID and reports whether one was running.
func (m *Manager) Stop(targetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tasks[targetID]
	if t == nil {
		return false
	}
	m.stopLocked(t, Replaced)
	return true
}

// Reply handles a direct message from userID. handled is false when no task
// runs for that user; matched reports whether the reply contained the
// release phrase.
func (m *Manager) Reply(userID, content string) (handled, matched bool) {
	m.mu.Lock()
	t := m.tasks[userID]
	if t == nil {
		m.mu.Unlock()
		return false, false
	}
	m.stopLocked(t, StoppedByReply)
	m.mu.Unlock()

	phrase := strings.ToLower(m.cfg.ReplyPhrase)
	matched = phrase != "" && strings.Contains(strings.ToLower(content), phrase)
	return true, matched
}

// StopAll cancels every task and returns how many were running.
func (m *Manager) StopAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	count := len(m.tasks)
	for _, t := range m.tasks {
		m.stopLocked(t, StoppedByGlobalStop)
	}
	return count
}

func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manager) IsActive(targetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tasks[targetID]
	return ok
}

func (m *Manager) fire(t *task) {
	m.mu.Lock()
	if t.stopped {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	t.send(t.targetID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if t.stopped {
		return
	}
	t.tick = m.clock.AfterFunc(m.cfg.Interval, func() { m.fire(t) })
}

func (m *Manager) expire(t *task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.stopped {
		return
	}
	m.stopLocked(t, StoppedByTimeout)
}

func (m *Manager) stopLocked(t *task, reason StopReason) {
	if t.stopped {
		return
	}
	t.stopped = true
	if t.tick != nil {
		t.tick.Stop()
	}
	if t.window != nil {
		t.window.Stop()
	}
	if m.tasks[t.targetID] == t {
		delete(m.tasks, t.targetID)
	}
	m.logger.Info("hack stopped", zap.String("target_id", t.targetID), zap.Stringer("reason", reason))
}

package confirm

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"gabers-bot/internal/clock"
)

type Outcome int

const (
	Pending Outcome = iota
	Confirmed
	Cancelled
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed_out"
	default:
		return "pending"
	}
}

// Response tells the caller how to acknowledge a button click.
type Response int

const (
	// Unknown means the click does not belong to a live prompt.
	Unknown Response = iota
	// NotOwner means someone other than the invoker clicked; the prompt
	// stays open.
	NotOwner
	Accepted
)

const idPrefix = "confirm:"

// Engine tracks open prompts and resolves each exactly once.
type Engine struct {
	mu      sync.Mutex
	clock   clock.Clock
	seq     uint64
	pending map[string]*Prompt
}

type Prompt struct {
	id      string
	ownerID string
	engine  *Engine
	timer   clock.Timer
	done    chan struct{}
	outcome Outcome
}

func NewEngine() *Engine {
	return &Engine{clock: clock.Real{}, pending: make(map[string]*Prompt)}
}

func (e *Engine) WithClock(c clock.Clock) {
	e.clock = c
}

// Open registers a prompt that only ownerID can answer. It times out after
// timeout unless answered first.
func (e *Engine) Open(ownerID string, timeout time.Duration) *Prompt {
	e.mu.Lock()
	e.seq++
	p := &Prompt{
		id:      strconv.FormatUint(e.seq, 36),
		ownerID: ownerID,
		engine:  e,
		done:    make(chan struct{}),
	}
	e.pending[p.id] = p
	e.mu.Unlock()

	timer := e.clock.AfterFunc(timeout, func() { e.resolve(p, TimedOut) })
	e.mu.Lock()
	p.timer = timer
	e.mu.Unlock()
	return p
}

// Handle routes a component click. customID must be one produced by
// ConfirmID or CancelID.
func (e *Engine) Handle(customID, userID string) Response {
	id, yes, ok := parseCustomID(customID)
	if !ok {
		return Unknown
	}
	e.mu.Lock()
	p := e.pending[id]
	e.mu.Unlock()
	if p == nil {
		return Unknown
	}
	if userID != p.ownerID {
		return NotOwner
	}
	outcome := Cancelled
	if yes {
		outcome = Confirmed
	}
	if !e.resolve(p, outcome) {
		return Unknown
	}
	return Accepted
}

// OpenCount reports how many prompts are still waiting.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Engine) resolve(p *Prompt, outcome Outcome) bool {
	e.mu.Lock()
	if p.outcome != Pending {
		e.mu.Unlock()
		return false
	}
	p.outcome = outcome
	delete(e.pending, p.id)
	timer := p.timer
	e.mu.Unlock()

	if timer != nil && outcome != TimedOut {
		timer.Stop()
	}
	close(p.done)
	return true
}

func (p *Prompt) ConfirmID() string { return idPrefix + p.id + ":yes" }
func (p *Prompt) CancelID() string  { return idPrefix + p.id + ":no" }

// Wait blocks until the prompt reaches a terminal state. Cancelling ctx
// resolves the prompt as Cancelled.
func (p *Prompt) Wait(ctx context.Context) Outcome {
	select {
	case <-p.done:
	case <-ctx.Done():
		p.engine.resolve(p, Cancelled)
		<-p.done
	}
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.outcome
}

func IsConfirmID(customID string) bool {
	return strings.HasPrefix(customID, idPrefix)
}

func parseCustomID(customID string) (string, bool, bool) {
	if !IsConfirmID(customID) {
		return "", false, false
	}
	rest := strings.TrimPrefix(customID, idPrefix)
	id, answer, found := strings.Cut(rest, ":")
	if !found || id == "" {
		return "", false, false
	}
	switch answer {
	case "yes":
		return id, true, true
	case "no":
		return id, false, true
	default:
		return "", false, false
	}
}

// Branches are the side effects bound to each terminal state. Nil branches
// are skipped.
type Branches struct {
	Confirmed func()
	Cancelled func()
	TimedOut  func()
}

// Run waits for the prompt and runs exactly one branch.
func (p *Prompt) Run(ctx context.Context, b Branches) Outcome {
	outcome := p.Wait(ctx)
	var branch func()
	switch outcome {
	case Confirmed:
		branch = b.Confirmed
	case Cancelled:
		branch = b.Cancelled
	case TimedOut:
		branch = b.TimedOut
	}
	if branch != nil {
		branch()
	}
	return outcome
}

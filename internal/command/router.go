package command

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

type Invocation struct {
	Name string
	Args Args
}

// Parse splits a prefixed message into a command name and resolved args.
// It reports false when text does not start with prefix or names nothing.
func Parse(prefix, text string) (Invocation, bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return Invocation{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return Invocation{}, false
	}
	args := make(Args, 0, len(fields)-1)
	for _, field := range fields[1:] {
		args = append(args, ParseArg(field))
	}
	return Invocation{Name: strings.ToLower(fields[0]), Args: args}, true
}

type Handler[T any] func(ctx context.Context, event T, inv Invocation) error

// Router dispatches invocations by command name. T is whatever the caller
// needs to answer (for the bot, the inbound message).
type Router[T any] struct {
	mu       sync.RWMutex
	handlers map[string]Handler[T]
	executed atomic.Int64
}

func NewRouter[T any]() *Router[T] {
	return &Router[T]{handlers: make(map[string]Handler[T])}
}

func (r *Router[T]) Handle(handler Handler[T], names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		r.handlers[strings.ToLower(name)] = handler
	}
}

// Dispatch runs the handler for inv. Unknown commands are ignored and report
// false. Every recognised command bumps the executed counter.
func (r *Router[T]) Dispatch(ctx context.Context, event T, inv Invocation) (bool, error) {
	r.mu.RLock()
	handler, ok := r.handlers[inv.Name]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	r.executed.Add(1)
	return true, handler(ctx, event, inv)
}

func (r *Router[T]) Executed() int64 {
	return r.executed.Load()
}

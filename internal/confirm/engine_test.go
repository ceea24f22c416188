package confirm

import (
	"context"
	"testing"
	"time"

	"gabers-bot/internal/clock"
)

func newTestEngine() (*Engine, *clock.Fake) {
	fake := clock.NewFake(time.Unix(0, 0))
	engine := NewEngine()
	engine.WithClock(fake)
	return engine, fake
}

func TestConfirmRunsDestructiveBranchOnce(t *testing.T) {
	engine, _ := newTestEngine()
	prompt := engine.Open("owner", 20*time.Second)

	if resp := engine.Handle(prompt.ConfirmID(), "owner"); resp != Accepted {
		t.Fatalf("expected accepted, got %d", resp)
	}
	if resp := engine.Handle(prompt.ConfirmID(), "owner"); resp != Unknown {
		t.Fatalf("expected second click unknown, got %d", resp)
	}

	runs := 0
	outcome := prompt.Run(context.Background(), Branches{Confirmed: func() { runs++ }})
	if outcome != Confirmed || runs != 1 {
		t.Fatalf("expected one confirmed run, got %s/%d", outcome, runs)
	}
	if engine.OpenCount() != 0 {
		t.Fatalf("expected no open prompts")
	}
}

func TestCancel(t *testing.T) {
	engine, _ := newTestEngine()
	prompt := engine.Open("owner", 20*time.Second)
	engine.Handle(prompt.CancelID(), "owner")

	destroyed := false
	cancelled := false
	outcome := prompt.Run(context.Background(), Branches{
		Confirmed: func() { destroyed = true },
		Cancelled: func() { cancelled = true },
	})
	if outcome != Cancelled || destroyed || !cancelled {
		t.Fatalf("unexpected outcome %s destroyed=%t cancelled=%t", outcome, destroyed, cancelled)
	}
}

func TestOtherUserIgnored(t *testing.T) {
	engine, fake := newTestEngine()
	prompt := engine.Open("a", 20*time.Second)

	if resp := engine.Handle(prompt.ConfirmID(), "b"); resp != NotOwner {
		t.Fatalf("expected not owner, got %d", resp)
	}
	if engine.OpenCount() != 1 {
		t.Fatalf("prompt must stay open")
	}

	fake.Advance(10 * time.Second)
	if resp := engine.Handle(prompt.CancelID(), "a"); resp != Accepted {
		t.Fatalf("expected owner accepted after foreign click, got %d", resp)
	}
	if outcome := prompt.Wait(context.Background()); outcome != Cancelled {
		t.Fatalf("expected cancelled, got %s", outcome)
	}
}

func TestTimeoutTransitionsOnce(t *testing.T) {
	engine, fake := newTestEngine()
	prompt := engine.Open("owner", 20*time.Second)

	fake.Advance(19 * time.Second)
	if engine.OpenCount() != 1 {
		t.Fatalf("prompt closed early")
	}
	fake.Advance(time.Second)

	if resp := engine.Handle(prompt.ConfirmID(), "owner"); resp != Unknown {
		t.Fatalf("late click must be ignored, got %d", resp)
	}

	timeouts := 0
	destroyed := false
	outcome := prompt.Run(context.Background(), Branches{
		Confirmed: func() { destroyed = true },
		TimedOut:  func() { timeouts++ },
	})
	if outcome != TimedOut || destroyed || timeouts != 1 {
		t.Fatalf("unexpected outcome %s destroyed=%t timeouts=%d", outcome, destroyed, timeouts)
	}
	fake.Advance(time.Minute)
	if outcome := prompt.Wait(context.Background()); outcome != TimedOut {
		t.Fatalf("outcome changed to %s", outcome)
	}
}

func TestAnswerStopsTimer(t *testing.T) {
	engine, fake := newTestEngine()
	prompt := engine.Open("owner", 20*time.Second)
	engine.Handle(prompt.ConfirmID(), "owner")
	if fake.Pending() != 0 {
		t.Fatalf("expected timer stopped, %d pending", fake.Pending())
	}
}

func TestContextCancel(t *testing.T) {
	engine, _ := newTestEngine()
	prompt := engine.Open("owner", 20*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if outcome := prompt.Wait(ctx); outcome != Cancelled {
		t.Fatalf("expected cancelled, got %s", outcome)
	}
}

func TestMalformedIDs(t *testing.T) {
	engine, _ := newTestEngine()
	for _, id := range []string{"", "other", "confirm:", "confirm:1", "confirm:1:maybe", "confirm::yes"} {
		if resp := engine.Handle(id, "owner"); resp != Unknown {
			t.Fatalf("%q: expected unknown, got %d", id, resp)
		}
	}
}

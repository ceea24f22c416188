package command

import (
	"context"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	inv, ok := Parse("!", "!WARN <@!123456789012345678> spamming   links")
	if !ok {
		t.Fatalf("expected parse")
	}
	if inv.Name != "warn" {
		t.Fatalf("expected warn, got %q", inv.Name)
	}
	if inv.Args.Len() != 3 {
		t.Fatalf("expected 3 args, got %d", inv.Args.Len())
	}
	if id, ok := inv.Args.FirstUser(); !ok || id != "123456789012345678" {
		t.Fatalf("unexpected user %q", id)
	}
	if got := inv.Args.Join(1); got != "spamming links" {
		t.Fatalf("unexpected reason %q", got)
	}

	for _, text := range []string{"warn x", "!", "!   ", ""} {
		if _, ok := Parse("!", text); ok {
			t.Fatalf("expected %q to be ignored", text)
		}
	}
}

func TestParseArgKinds(t *testing.T) {
	cases := map[string]ArgKind{
		"<@1>":  UserRef,
		"<@!1>": UserRef,
		"<@&1>": RoleRef,
		"<#1>":  ChannelRef,
		"text":  RawToken,
		"<@x>":  RawToken,
	}
	for raw, want := range cases {
		if got := ParseArg(raw).Kind; got != want {
			t.Fatalf("%q: expected %d, got %d", raw, want, got)
		}
	}
}

func TestArgsLookup(t *testing.T) {
	inv, _ := Parse("!", "!channel move <#111> <#222>")
	if id, _ := inv.Args.FirstChannel(); id != "111" {
		t.Fatalf("expected first 111, got %q", id)
	}
	if id, _ := inv.Args.LastChannel(); id != "222" {
		t.Fatalf("expected last 222, got %q", id)
	}

	inv, _ = Parse("!", "!kick 123456789012345678")
	if id, ok := inv.Args.UserAt(0); !ok || id != "123456789012345678" {
		t.Fatalf("expected raw id, got %q", id)
	}
	if _, ok := inv.Args.UserAt(1); ok {
		t.Fatalf("expected no user at 1")
	}
	inv, _ = Parse("!", "!kick bob")
	if _, ok := inv.Args.UserAt(0); ok {
		t.Fatalf("name must not resolve to an id")
	}
}

func TestRouterDispatchCounts(t *testing.T) {
	router := NewRouter[string]()
	var seen []string
	router.Handle(func(ctx context.Context, event string, inv Invocation) error {
		seen = append(seen, event+":"+inv.Name)
		return nil
	}, "ping", "Pong")
	failure := errors.New("boom")
	router.Handle(func(ctx context.Context, event string, inv Invocation) error {
		return failure
	}, "fail")

	ctx := context.Background()
	if ok, err := router.Dispatch(ctx, "a", Invocation{Name: "ping"}); !ok || err != nil {
		t.Fatalf("expected ping handled, got %t %v", ok, err)
	}
	if ok, _ := router.Dispatch(ctx, "b", Invocation{Name: "pong"}); !ok {
		t.Fatalf("expected alias handled")
	}
	if ok, err := router.Dispatch(ctx, "c", Invocation{Name: "unknown"}); ok || err != nil {
		t.Fatalf("expected unknown ignored, got %t %v", ok, err)
	}
	if _, err := router.Dispatch(ctx, "d", Invocation{Name: "fail"}); !errors.Is(err, failure) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if router.Executed() != 3 {
		t.Fatalf("expected 3 executed, got %d", router.Executed())
	}
	if len(seen) != 2 || seen[1] != "b:pong" {
		t.Fatalf("unexpected calls %v", seen)
	}
}

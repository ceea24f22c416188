package command

import (
	"regexp"
	"strings"
)

type ArgKind int

const (
	RawToken ArgKind = iota
	UserRef
	ChannelRef
	RoleRef
)

// Arg is one positional token with its mention resolved.
type Arg struct {
	Kind ArgKind
	// ID is set for mentions.
	ID  string
	Raw string
}

var (
	userMention    = regexp.MustCompile(`^<@!?(\d+)>$`)
	roleMention    = regexp.MustCompile(`^<@&(\d+)>$`)
	channelMention = regexp.MustCompile(`^<#(\d+)>$`)
)

func ParseArg(raw string) Arg {
	if m := roleMention.FindStringSubmatch(raw); m != nil {
		return Arg{Kind: RoleRef, ID: m[1], Raw: raw}
	}
	if m := userMention.FindStringSubmatch(raw); m != nil {
		return Arg{Kind: UserRef, ID: m[1], Raw: raw}
	}
	if m := channelMention.FindStringSubmatch(raw); m != nil {
		return Arg{Kind: ChannelRef, ID: m[1], Raw: raw}
	}
	return Arg{Kind: RawToken, Raw: raw}
}

type Args []Arg

func (a Args) Len() int { return len(a) }

// Raw returns the token at i, or "" when absent.
func (a Args) Raw(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i].Raw
}

// Lower returns the lower-cased token at i.
func (a Args) Lower(i int) string {
	return strings.ToLower(a.Raw(i))
}

// Join concatenates tokens from index i onward with single spaces.
func (a Args) Join(from int) string {
	if from >= len(a) {
		return ""
	}
	if from < 0 {
		from = 0
	}
	parts := make([]string, 0, len(a)-from)
	for _, arg := range a[from:] {
		parts = append(parts, arg.Raw)
	}
	return strings.Join(parts, " ")
}

func (a Args) first(kind ArgKind) (string, bool) {
	for _, arg := range a {
		if arg.Kind == kind {
			return arg.ID, true
		}
	}
	return "", false
}

func (a Args) FirstUser() (string, bool)    { return a.first(UserRef) }
func (a Args) FirstRole() (string, bool)    { return a.first(RoleRef) }
func (a Args) FirstChannel() (string, bool) { return a.first(ChannelRef) }

func (a Args) LastChannel() (string, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Kind == ChannelRef {
			return a[i].ID, true
		}
	}
	return "", false
}

// UserAt resolves the token at i to a user ID, accepting a mention or a bare
// numeric ID.
func (a Args) UserAt(i int) (string, bool) {
	return a.idAt(i, UserRef)
}

// ChannelAt resolves the token at i to a channel ID.
func (a Args) ChannelAt(i int) (string, bool) {
	return a.idAt(i, ChannelRef)
}

func (a Args) idAt(i int, kind ArgKind) (string, bool) {
	if i < 0 || i >= len(a) {
		return "", false
	}
	arg := a[i]
	if arg.Kind == kind {
		return arg.ID, true
	}
	if arg.Kind == RawToken && isSnowflake(arg.Raw) {
		return arg.Raw, true
	}
	return "", false
}

func isSnowflake(value string) bool {
	if len(value) < 15 || len(value) > 20 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

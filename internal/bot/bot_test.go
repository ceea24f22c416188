package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gabers-bot/internal/command"
	"gabers-bot/internal/config"
	"gabers-bot/internal/confirm"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestBot(allowList ...string) *Bot {
	b := &Bot{
		cfg:    config.DefaultConfig(),
		logger: zap.NewNop(),
		gate:   permissions.NewGate(allowList),
		router: command.NewRouter[*request](),
	}
	b.registerCommands()
	return b
}

func newTestRequest(authorID string, perms int64) *request {
	guild := &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g1", Permissions: 0},
			{ID: "mod", Permissions: perms, Position: 3},
		},
	}
	return &request{
		msg: &discordgo.MessageCreate{Message: &discordgo.Message{
			GuildID:   "g1",
			ChannelID: "c1",
			Author:    &discordgo.User{ID: authorID, Username: authorID},
		}},
		guild:  guild,
		member: &discordgo.Member{Roles: []string{"mod"}},
	}
}

func dispatch(t *testing.T, b *Bot, req *request, text string) error {
	t.Helper()
	inv, ok := command.Parse(b.cfg.Prefix, text)
	if !ok {
		t.Fatalf("parse %q failed", text)
	}
	req.name = inv.Name
	handled, err := b.router.Dispatch(context.Background(), req, inv)
	if !handled {
		t.Fatalf("%q not handled", text)
	}
	return err
}

func TestGatedCommandsDenyUnprivilegedUsers(t *testing.T) {
	b := newTestBot()
	for _, text := range []string{
		"!kick @someone",
		"!ban all",
		"!zbrisi",
		"!timeout <@123456789012345678> 10m",
		"!untimeout <@123456789012345678>",
		"!admin",
		"!log set <#123456789012345678>",
		"!revealchannels",
		"!role add",
		"!channel create text general",
		"!voice mute",
		"!warn <@123456789012345678> spam",
		"!unwarn <@123456789012345678> 1",
		"!server rename new",
		"!rename <@123456789012345678> nick",
	} {
		err := dispatch(t, b, newTestRequest("stranger", 0), text)
		var deniedErr *accessDenied
		if !errors.As(err, &deniedErr) {
			t.Fatalf("%q: expected access denied, got %v", text, err)
		}
	}
	if b.router.Executed() != 15 {
		t.Fatalf("expected 15 executed commands, got %d", b.router.Executed())
	}
}

func TestVoiceIsAllowListOnly(t *testing.T) {
	b := newTestBot("trusted")
	err := dispatch(t, b, newTestRequest("owner", 0), "!voice mute <@123456789012345678>")
	var deniedErr *accessDenied
	if !errors.As(err, &deniedErr) {
		t.Fatalf("owner should be denied voice commands, got %v", err)
	}
	err = dispatch(t, b, newTestRequest("trusted", 0), "!voice dance")
	var invalidErr *validationError
	if !errors.As(err, &invalidErr) || invalidErr.message != "Neznan podukaz za voice!" {
		t.Fatalf("expected unknown subcommand, got %v", err)
	}
}

func TestCapabilityAdmitsModerators(t *testing.T) {
	b := newTestBot()
	err := dispatch(t, b, newTestRequest("mod", discordgo.PermissionManageRoles), "!role dance")
	var invalidErr *validationError
	if !errors.As(err, &invalidErr) || invalidErr.message != "Neznan podukaz za role!" {
		t.Fatalf("expected unknown role subcommand, got %v", err)
	}
	err = dispatch(t, b, newTestRequest("mod", discordgo.PermissionManageChannels), "!channel dance")
	if !errors.As(err, &invalidErr) || !strings.Contains(invalidErr.message, "Neznan podukaz za `channel`") {
		t.Fatalf("expected unknown channel subcommand, got %v", err)
	}
}

func TestValidationBeforePlatformCalls(t *testing.T) {
	b := newTestBot()
	cases := map[string]string{
		"!log set":                 "Označi kanal!",
		"!kick":                    "Moraš označiti uporabnika.",
		"!timeout":                 "Označi uporabnika!",
		"!warn":                    "Označi uporabnika za warn!",
		"!unwarn":                  "Označi uporabnika za odstranitev warna!",
		"!channel create forum x":  "Določi tip kanala: `text`, `voice` ali `category`.",
		"!channel create category": "Vpiši ime kategorije!",
		"!channel delete":          "Označi kanal!",
		"!role create":             "Vpiši ime role!",
		"!role setperm":            "Označi role!",
		"!server rename":           "Vpiši novo ime strežnika!",
	}
	for text, want := range cases {
		err := dispatch(t, b, newTestRequest("owner", 0), text)
		var invalidErr *validationError
		if !errors.As(err, &invalidErr) || invalidErr.message != want {
			t.Fatalf("%q: expected %q, got %v", text, want, err)
		}
	}
}

func TestLogWithoutSetIsIgnored(t *testing.T) {
	b := newTestBot()
	if err := dispatch(t, b, newTestRequest("stranger", 0), "!log show"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestUnknownCommandNotHandled(t *testing.T) {
	b := newTestBot()
	inv, _ := command.Parse("!", "!dance")
	handled, err := b.router.Dispatch(context.Background(), newTestRequest("owner", 0), inv)
	if handled || err != nil || b.router.Executed() != 0 {
		t.Fatalf("unknown command should be ignored")
	}
}

func TestFormatWarningsNumbersFromOne(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
	out := formatWarnings([]storage.Warning{
		{Moderator: "mod", Reason: "spam", Timestamp: at},
		{Moderator: "mod", Reason: "caps", Timestamp: at},
	})
	if !strings.HasPrefix(out, "**1.** Moderator: mod\nRazlog: spam") || !strings.Contains(out, "**2.** Moderator: mod\nRazlog: caps") {
		t.Fatalf("unexpected rendering %q", out)
	}
	if !strings.Contains(out, "4. 3. 2025 05:06:07") {
		t.Fatalf("unexpected timestamp in %q", out)
	}
}

func TestDeletableRoles(t *testing.T) {
	guild := &discordgo.Guild{ID: "g1", Roles: []*discordgo.Role{
		{ID: "g1", Name: "@everyone", Position: 0},
		{ID: "a", Name: "a", Position: 1},
		{ID: "b", Name: "b", Position: 4},
		{ID: "bot", Name: "bot", Position: 5, Managed: true},
		{ID: "c", Name: "c", Position: 3},
		{ID: "top", Name: "top", Position: 9},
	}}
	roles := deletableRoles(guild, 5)
	var names []string
	for _, role := range roles {
		names = append(names, role.Name)
	}
	if strings.Join(names, ",") != "b,c,a" {
		t.Fatalf("unexpected roles %v", names)
	}
}

func TestHasViewOverwrite(t *testing.T) {
	channel := &discordgo.Channel{PermissionOverwrites: []*discordgo.PermissionOverwrite{
		{ID: "u1", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel},
		{ID: "u2", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionSendMessages},
		{ID: "u3", Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionViewChannel},
	}}
	if !hasViewOverwrite(channel, "u1") || hasViewOverwrite(channel, "u2") || hasViewOverwrite(channel, "u3") {
		t.Fatalf("unexpected overwrite detection")
	}
}

func TestResolveChannel(t *testing.T) {
	guild := &discordgo.Guild{Channels: []*discordgo.Channel{
		{ID: "111111111111111111", Name: "general", Type: discordgo.ChannelTypeGuildText},
		{ID: "222222222222222222", Name: "Projekti", Type: discordgo.ChannelTypeGuildText},
		{ID: "333333333333333333", Name: "Projekti", Type: discordgo.ChannelTypeGuildCategory},
	}}
	inv, _ := command.Parse("!", "!channel move <#111111111111111111> Projekti")
	channel := resolveChannel(guild, inv.Args, 1, inv.Args.Raw(1), nil)
	if channel == nil || channel.Name != "general" {
		t.Fatalf("expected general, got %+v", channel)
	}
	isCategory := func(c *discordgo.Channel) bool { return c.Type == discordgo.ChannelTypeGuildCategory }
	category := resolveChannel(guild, inv.Args, 2, inv.Args.Join(2), isCategory)
	if category == nil || category.ID != "333333333333333333" {
		t.Fatalf("expected category, got %+v", category)
	}
}

func TestVoiceChannel(t *testing.T) {
	guild := &discordgo.Guild{VoiceStates: []*discordgo.VoiceState{{UserID: "u1", ChannelID: "v1"}}}
	if voiceChannel(guild, "u1") != "v1" || voiceChannel(guild, "u2") != "" {
		t.Fatalf("unexpected voice lookup")
	}
}

func TestConfirmButtonsCarryPromptIDs(t *testing.T) {
	engine := confirm.NewEngine()
	prompt := engine.Open("owner", time.Minute)
	defer engine.Handle(prompt.CancelID(), "owner")

	rows := confirmButtons(prompt, "Da", "Ne", true)
	row, ok := rows[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 2 {
		t.Fatalf("unexpected components %+v", rows)
	}
	yes := row.Components[0].(discordgo.Button)
	no := row.Components[1].(discordgo.Button)
	if yes.CustomID != prompt.ConfirmID() || no.CustomID != prompt.CancelID() || !yes.Disabled || !no.Disabled {
		t.Fatalf("unexpected buttons %+v %+v", yes, no)
	}
}

func TestPlatformErrorUnwraps(t *testing.T) {
	cause := errors.New("Missing Permissions")
	err := platform("Prišlo je do napake", cause)
	if !errors.Is(err, cause) || err.Error() != "Prišlo je do napake: Missing Permissions" {
		t.Fatalf("unexpected platform error %v", err)
	}
}

func TestHelpEmbedUsesPrefix(t *testing.T) {
	b := newTestBot()
	b.cfg.Prefix = "?"
	embed := b.helpEmbed(newTestRequest("owner", 0), "📖 Warn Komande", "warn", warnHelp)
	if embed.Description != "Seznam vseh podukazov za `?warn`:" || embed.Fields[0].Name != "?warn @user <razlog>" {
		t.Fatalf("unexpected help embed %+v", embed)
	}
}

func TestWarnIndex(t *testing.T) {
	for raw, want := range map[string]int{"1": 0, "3": 2} {
		got, err := warnIndex(raw)
		if err != nil || got != want {
			t.Fatalf("%q: expected %d, got %d (%v)", raw, want, got, err)
		}
	}
	for _, raw := range []string{"0", "-1", "abc", ""} {
		if _, err := warnIndex(raw); err == nil {
			t.Fatalf("%q: expected validation error", raw)
		}
	}
}

func TestUnwarnRejectsBadNumbers(t *testing.T) {
	const target = "123456789012345678"
	session, err := discordgo.New("Bot test")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := session.State.GuildAdd(&discordgo.Guild{ID: "g1"}); err != nil {
		t.Fatalf("guild add: %v", err)
	}
	if err := session.State.MemberAdd(&discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: target, Username: "target"}}); err != nil {
		t.Fatalf("member add: %v", err)
	}

	b := newTestBot()
	b.session = session
	b.warnings = storage.LoadWarnings(filepath.Join(t.TempDir(), "warnings.json"), zap.NewNop())
	b.warnings.Add("g1", target, storage.Warning{Moderator: "mod", Reason: "first", Timestamp: time.Now()})
	b.warnings.Add("g1", target, storage.Warning{Moderator: "mod", Reason: "second", Timestamp: time.Now()})

	for _, number := range []string{"abc", "0", "3"} {
		err := dispatch(t, b, newTestRequest("mod", discordgo.PermissionKickMembers), "!unwarn <@"+target+"> "+number)
		var invalidErr *validationError
		if !errors.As(err, &invalidErr) || !strings.Contains(invalidErr.message, "ne obstaja") {
			t.Fatalf("%q: expected missing warning error, got %v", number, err)
		}
	}
	if list := b.warnings.List("g1", target); len(list) != 2 || list[0].Reason != "first" {
		t.Fatalf("warnings changed: %+v", list)
	}
}

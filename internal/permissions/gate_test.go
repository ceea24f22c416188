package permissions

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestGateAllow(t *testing.T) {
	gate := NewGate([]string{"listed"})

	cases := []struct {
		name    string
		invoker Invoker
		req     Requirement
		want    bool
	}{
		{"owner", Invoker{UserID: "o", OwnerID: "o"}, OwnerOrAllowed, true},
		{"allow listed", Invoker{UserID: "listed", OwnerID: "o"}, OwnerOrAllowed, true},
		{"stranger", Invoker{UserID: "x", OwnerID: "o"}, OwnerOrAllowed, false},
		{"capability not enough without requirement", Invoker{UserID: "x", OwnerID: "o", Permissions: discordgo.PermissionKickMembers}, OwnerOrAllowed, false},
		{"capability held", Invoker{UserID: "x", OwnerID: "o", Permissions: discordgo.PermissionKickMembers}, WithCapability(discordgo.PermissionKickMembers), true},
		{"capability missing", Invoker{UserID: "x", OwnerID: "o", Permissions: discordgo.PermissionSendMessages}, WithCapability(discordgo.PermissionManageRoles), false},
		{"administrator", Invoker{UserID: "x", OwnerID: "o", Permissions: discordgo.PermissionAdministrator}, WithCapability(discordgo.PermissionManageChannels), true},
		{"owner excluded", Invoker{UserID: "o", OwnerID: "o"}, AllowListOnly, false},
		{"allow list only", Invoker{UserID: "listed", OwnerID: "o"}, AllowListOnly, true},
		{"empty user", Invoker{OwnerID: ""}, OwnerOrAllowed, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gate.Allow(tc.invoker, tc.req); got != tc.want {
				t.Fatalf("expected %t, got %t", tc.want, got)
			}
		})
	}
}

func TestGateReload(t *testing.T) {
	gate := NewGate(nil)
	if gate.IsAllowListed("u1") {
		t.Fatalf("unexpected allow")
	}
	gate.SetAllowList([]string{"u1"})
	if !gate.Allow(Invoker{UserID: "u1", OwnerID: "o"}, OwnerOrAllowed) {
		t.Fatalf("expected allow after reload")
	}
}

func TestGuildPermissionsAndPosition(t *testing.T) {
	guild := &discordgo.Guild{
		ID: "g",
		Roles: []*discordgo.Role{
			{ID: "g", Permissions: discordgo.PermissionSendMessages, Position: 0},
			{ID: "mod", Permissions: discordgo.PermissionKickMembers, Position: 5},
			{ID: "vip", Permissions: discordgo.PermissionAttachFiles, Position: 2},
		},
	}
	member := &discordgo.Member{Roles: []string{"mod", "vip"}}

	perms := GuildPermissions(guild, member)
	want := int64(discordgo.PermissionSendMessages | discordgo.PermissionKickMembers | discordgo.PermissionAttachFiles)
	if perms != want {
		t.Fatalf("expected %d, got %d", want, perms)
	}
	if pos := HighestPosition(guild, member); pos != 5 {
		t.Fatalf("expected 5, got %d", pos)
	}
}

func TestLookup(t *testing.T) {
	name, bit, ok := Lookup(`"deafen_members"`)
	if !ok || name != "DEAFEN_MEMBERS" || bit != discordgo.PermissionVoiceDeafenMembers {
		t.Fatalf("unexpected lookup %q %d %t", name, bit, ok)
	}
	if _, _, ok := Lookup("FLY"); ok {
		t.Fatalf("expected unknown permission")
	}
}

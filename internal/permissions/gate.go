package permissions

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Requirement describes who may run a gated action. Owner and allow-listed
// users always pass; Capability additionally admits members holding that
// permission bit. A zero Capability means owner/allow-list only.
type Requirement struct {
	Capability int64
	// AllowListOnly excludes the guild owner as well.
	AllowListOnly bool
}

var (
	OwnerOrAllowed = Requirement{}
	AllowListOnly  = Requirement{AllowListOnly: true}
)

func WithCapability(capability int64) Requirement {
	return Requirement{Capability: capability}
}

// Invoker carries the three facts the gate decides on.
type Invoker struct {
	UserID      string
	OwnerID     string
	Permissions int64
}

type Gate struct {
	mu        sync.RWMutex
	allowList map[string]struct{}
}

func NewGate(allowList []string) *Gate {
	g := &Gate{}
	g.SetAllowList(allowList)
	return g
}

// SetAllowList swaps the static allow-list, e.g. after a config reload.
func (g *Gate) SetAllowList(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	g.mu.Lock()
	g.allowList = next
	g.mu.Unlock()
}

func (g *Gate) IsAllowListed(userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.allowList[userID]
	return ok
}

func (g *Gate) Allow(invoker Invoker, req Requirement) bool {
	if invoker.UserID == "" {
		return false
	}
	if g.IsAllowListed(invoker.UserID) {
		return true
	}
	if req.AllowListOnly {
		return false
	}
	if invoker.OwnerID != "" && invoker.UserID == invoker.OwnerID {
		return true
	}
	if req.Capability == 0 {
		return false
	}
	if invoker.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return invoker.Permissions&req.Capability == req.Capability
}

// GuildPermissions folds the @everyone role and the member's roles into one
// permission set.
func GuildPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	perms := int64(0)
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
		if role.ID == guild.ID {
			perms |= role.Permissions
		}
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	return perms
}

// HighestPosition returns the position of the member's highest role.
func HighestPosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return 0
	}
	positions := make(map[string]int, len(guild.Roles))
	for _, role := range guild.Roles {
		positions[role.ID] = role.Position
	}
	highest := 0
	for _, roleID := range member.Roles {
		if pos, ok := positions[roleID]; ok && pos > highest {
			highest = pos
		}
	}
	return highest
}

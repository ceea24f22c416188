package permissions

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

type Group struct {
	Title string
	Names []string
}

var byName = map[string]int64{
	"KICK_MEMBERS":           discordgo.PermissionKickMembers,
	"BAN_MEMBERS":            discordgo.PermissionBanMembers,
	"TIMEOUT_MEMBERS":        discordgo.PermissionModerateMembers,
	"MANAGE_MESSAGES":        discordgo.PermissionManageMessages,
	"MUTE_MEMBERS":           discordgo.PermissionVoiceMuteMembers,
	"DEAFEN_MEMBERS":         discordgo.PermissionVoiceDeafenMembers,
	"MANAGE_NICKNAMES":       discordgo.PermissionManageNicknames,
	"MANAGE_ROLES":           discordgo.PermissionManageRoles,
	"MANAGE_CHANNELS":        discordgo.PermissionManageChannels,
	"MANAGE_GUILD":           discordgo.PermissionManageServer,
	"VIEW_AUDIT_LOG":         discordgo.PermissionViewAuditLogs,
	"SEND_MESSAGES":          discordgo.PermissionSendMessages,
	"READ_MESSAGE_HISTORY":   discordgo.PermissionReadMessageHistory,
	"CONNECT":                discordgo.PermissionVoiceConnect,
	"SPEAK":                  discordgo.PermissionVoiceSpeak,
	"USE_VAD":                discordgo.PermissionVoiceUseVAD,
	"PRIORITY_SPEAKER":       discordgo.PermissionVoicePrioritySpeaker,
	"STREAM":                 discordgo.PermissionVoiceStreamVideo,
	"ATTACH_FILES":           discordgo.PermissionAttachFiles,
	"ADD_REACTIONS":          discordgo.PermissionAddReactions,
	"EMBED_LINKS":            discordgo.PermissionEmbedLinks,
	"MENTION_EVERYONE":       discordgo.PermissionMentionEveryone,
	"MANAGE_THREADS":         discordgo.PermissionManageThreads,
	"CREATE_PUBLIC_THREADS":  discordgo.PermissionCreatePublicThreads,
	"CREATE_PRIVATE_THREADS": discordgo.PermissionCreatePrivateThreads,
	"USE_EXTERNAL_EMOJIS":    discordgo.PermissionUseExternalEmojis,
	"USE_EXTERNAL_STICKERS":  discordgo.PermissionUseExternalStickers,
	"MANAGE_EVENTS":          discordgo.PermissionManageEvents,
	"MODERATE_MEMBERS":       discordgo.PermissionModerateMembers,
}

// Groups is the listing shown by "role perms".
var Groups = []Group{
	{Title: "Moderacija", Names: []string{"KICK_MEMBERS", "BAN_MEMBERS", "TIMEOUT_MEMBERS", "MANAGE_MESSAGES", "MUTE_MEMBERS", "DEAFEN_MEMBERS", "MANAGE_NICKNAMES"}},
	{Title: "Strežnik", Names: []string{"MANAGE_ROLES", "MANAGE_CHANNELS", "MANAGE_GUILD", "VIEW_AUDIT_LOG", "MANAGE_EVENTS", "MODERATE_MEMBERS"}},
	{Title: "Besedilo & Voice", Names: []string{"SEND_MESSAGES", "READ_MESSAGE_HISTORY", "CONNECT", "SPEAK", "USE_VAD", "PRIORITY_SPEAKER", "STREAM"}},
	{Title: "Dodatno", Names: []string{"ATTACH_FILES", "ADD_REACTIONS", "EMBED_LINKS", "MENTION_EVERYONE", "MANAGE_THREADS", "CREATE_PUBLIC_THREADS", "CREATE_PRIVATE_THREADS", "USE_EXTERNAL_EMOJIS", "USE_EXTERNAL_STICKERS"}},
}

// Lookup resolves a user-typed permission name. Quotes and case are ignored.
func Lookup(raw string) (string, int64, bool) {
	name := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(raw, `"`, "")))
	bit, ok := byName[name]
	return name, bit, ok
}

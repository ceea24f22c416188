package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	roleColor  = 0x02B025
	permsColor = 0xF1C40F
)

func (b *Bot) cmdRole(ctx context.Context, req *request, inv command.Invocation) error {
	sub := inv.Args.Lower(0)
	if sub == "help" {
		return b.sendHelp(req, "📖 Role Komande", "role", roleHelp)
	}
	if err := b.require(req, permissions.WithCapability(discordgo.PermissionManageRoles), "Nimaš dovoljenja za upravljanje rol."); err != nil {
		return err
	}

	switch sub {
	case "add", "remove":
		return b.roleAssign(ctx, req, inv.Args, sub == "add")
	case "create":
		return b.roleCreate(ctx, req, inv.Args)
	case "delete":
		if inv.Args.Lower(1) == "all" {
			return b.roleDeleteAll(ctx, req)
		}
		return b.roleDelete(ctx, req, inv.Args)
	case "perms":
		_, err := b.send(req.channelID(), b.permsEmbed())
		return err
	case "setperm":
		return b.roleSetPerm(ctx, req, inv.Args)
	case "rperm":
		return b.roleRemovePerm(ctx, req, inv.Args)
	default:
		return invalid("Neznan podukaz za role!")
	}
}

func findRole(guild *discordgo.Guild, roleID string) *discordgo.Role {
	for _, role := range guild.Roles {
		if role.ID == roleID {
			return role
		}
	}
	return nil
}

func (b *Bot) mentionedRole(req *request, args command.Args, missing string) (*discordgo.Role, error) {
	roleID, ok := args.FirstRole()
	if !ok {
		return nil, invalid(missing)
	}
	role := findRole(req.guild, roleID)
	if role == nil {
		return nil, invalid("Role ni bilo mogoče najti.")
	}
	return role, nil
}

func (b *Bot) roleAssign(ctx context.Context, req *request, args command.Args, add bool) error {
	userID, okUser := args.FirstUser()
	roleID, okRole := args.FirstRole()
	if !okUser || !okRole {
		return invalid("Označi uporabnika in role!")
	}
	member, err := b.member(req.guildID(), userID)
	if err != nil || member.User == nil {
		return invalid("Uporabnika ni mogoče najti.")
	}
	role := findRole(req.guild, roleID)
	if role == nil {
		return invalid("Role ni bilo mogoče najti.")
	}

	if add {
		if err := b.session.GuildMemberRoleAdd(req.guildID(), userID, roleID); err != nil {
			return platform("Prišlo je do napake", err)
		}
		b.logAction(ctx, req, audit.LevelInfo, "➕ Role dodana",
			fmt.Sprintf("Role **%s** dodana uporabniku **%s**\nDodajal: %s", role.Name, member.User.String(), req.authorTag()), roleColor)
	} else {
		if err := b.session.GuildMemberRoleRemove(req.guildID(), userID, roleID); err != nil {
			return platform("Prišlo je do napake", err)
		}
		b.logAction(ctx, req, audit.LevelInfo, "➖ Role odstranjena",
			fmt.Sprintf("Role **%s** odstranjena uporabniku **%s**\nOdstranil: %s", role.Name, member.User.String(), req.authorTag()), roleColor)
	}
	b.done(req, "")
	return nil
}

func (b *Bot) roleCreate(ctx context.Context, req *request, args command.Args) error {
	name := args.Raw(1)
	if name == "" {
		return invalid("Vpiši ime role!")
	}
	params := &discordgo.RoleParams{Name: name}
	for i := 2; i < args.Len(); i++ {
		raw := args.Raw(i)
		if !strings.HasPrefix(raw, "#") {
			continue
		}
		color, ok := utils.ParseHexColor(raw)
		if !ok {
			return invalidf("Neveljavna barva: **%s** (uporabi #RRGGBB)", raw)
		}
		params.Color = &color
		break
	}

	role, err := b.session.GuildRoleCreate(req.guildID(), params)
	if err != nil {
		return platform("Prišlo je do napake", err)
	}
	if pos := b.botPosition(req.guild) - 1; pos > 0 {
		role.Position = pos
		if _, err := b.session.GuildRoleReorder(req.guildID(), []*discordgo.Role{role}); err != nil {
			b.logger.Warn("role reorder failed", zap.String("role_id", role.ID), zap.Error(err))
		}
	}
	b.logAction(ctx, req, audit.LevelInfo, "🆕 Role ustvarjena", fmt.Sprintf("**%s**\nUstvaril: %s", role.Name, req.authorTag()), roleColor)
	b.done(req, "")
	return nil
}

func (b *Bot) roleDelete(ctx context.Context, req *request, args command.Args) error {
	role, err := b.mentionedRole(req, args, "Označi role za brisanje!")
	if err != nil {
		return err
	}
	if role.Position >= b.botPosition(req.guild) {
		return invalidf("Bot ne more izbrisati role **%s**", role.Name)
	}
	if err := b.session.GuildRoleDelete(req.guildID(), role.ID); err != nil {
		return platform("Prišlo je do napake", err)
	}
	b.logAction(ctx, req, audit.LevelWarn, "🗑️ Role izbrisana", fmt.Sprintf("Role **%s** izbrisal: %s", role.Name, req.authorTag()), b.cfg.EmbedColors.Error)
	b.done(req, "")
	return nil
}

// deletableRoles lists roles below botPosition that are neither managed nor
// @everyone, highest first.
func deletableRoles(guild *discordgo.Guild, botPosition int) []*discordgo.Role {
	var out []*discordgo.Role
	for _, role := range guild.Roles {
		if role.Position >= botPosition || role.Managed || role.ID == guild.ID {
			continue
		}
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position > out[j].Position })
	return out
}

func (b *Bot) roleDeleteAll(ctx context.Context, req *request) error {
	danger := b.cfg.EmbedColors.Error
	return b.runConfirmation(ctx, req, confirmation{
		embed:    b.embed("⚠️ Potrditev", "Ali si prepričan, da želiš izbrisati **vse role**?\nBot bo preskočil role, ki jih ne more izbrisati.", danger),
		yesLabel: "✅ Da",
		noLabel:  "❌ Ne",
		confirmed: func(ctx context.Context) {
			limiter := b.pacer()
			deleted := 0
			var skipped []string
			for _, role := range deletableRoles(req.guild, b.botPosition(req.guild)) {
				if err := limiter.Wait(ctx); err != nil {
					break
				}
				if err := b.session.GuildRoleDelete(req.guildID(), role.ID); err != nil {
					skipped = append(skipped, role.Name)
					continue
				}
				deleted++
			}
			b.logAction(ctx, req, audit.LevelCrit, "🗑️ Delete All Roles",
				fmt.Sprintf("Izbrisal: %d role\nPreskočeno: %d\nPreskočene: %s", deleted, len(skipped), strings.Join(skipped, ", ")), danger)
			summary := fmt.Sprintf("Izbrisano: **%d** role\nPreskočeno: **%d** role", deleted, len(skipped))
			if len(skipped) > 0 {
				summary += "\nPreskočene: " + strings.Join(skipped, ", ")
			}
			b.done(req, summary)
		},
		cancelled: func(ctx context.Context) {
			b.done(req, "Preklicano.")
			b.logAction(ctx, req, audit.LevelInfo, "❌ Delete All Cancelled",
				fmt.Sprintf("Uporabnik %s je preklical brisanje vseh rol", req.authorTag()), danger)
		},
		timedOut: func(ctx context.Context, _ *discordgo.Message) {
			b.reply(req, "⌛ Preklicano", fmt.Sprintf("Ni bilo potrditve v %d sekundah.", b.cfg.ConfirmTimeoutSeconds), danger)
			b.logAction(ctx, req, audit.LevelInfo, "⌛ Delete All Timed Out",
				fmt.Sprintf("Uporabnik %s ni potrdil brisanja vseh rol", req.authorTag()), danger)
		},
	})
}

func (b *Bot) permsEmbed() *discordgo.MessageEmbed {
	p := b.cfg.Prefix
	embed := b.embed("🔐 Role Permissions",
		fmt.Sprintf("Seznam Discord dovoljenj. Za dodajanje: `%[1]srole setperm @role \"PERMISSION\"`\nZa odstranjevanje: `%[1]srole rperm @role \"PERMISSION\"` ali `all`", p),
		permsColor)
	for i, group := range permissions.Groups {
		names := make([]string, 0, len(group.Names))
		for _, name := range group.Names {
			names = append(names, "`"+name+"`")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   group.Title,
			Value:  strings.Join(names, "\n"),
			Inline: i < len(permissions.Groups)-1,
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Role Permissions • Informativni pregled"}
	return embed
}

func (b *Bot) editRolePermissions(req *request, role *discordgo.Role, perms int64) error {
	_, err := b.session.GuildRoleEdit(req.guildID(), role.ID, &discordgo.RoleParams{Permissions: &perms})
	return err
}

func (b *Bot) roleSetPerm(ctx context.Context, req *request, args command.Args) error {
	role, err := b.mentionedRole(req, args, "Označi role!")
	if err != nil {
		return err
	}
	name, bit, ok := permissions.Lookup(args.Join(2))
	if !ok {
		return invalidf("Neveljaven permission: **%s**", name)
	}
	if role.Position >= b.botPosition(req.guild) {
		return invalidf("Bot ne more urejati role **%s**", role.Name)
	}
	if err := b.editRolePermissions(req, role, role.Permissions|bit); err != nil {
		return platform("Prišlo je do napake", err)
	}
	b.logAction(ctx, req, audit.LevelWarn, "🔐 Permission dodan",
		fmt.Sprintf("Role **%s** je bil dodan permission:\n**%s**\nDodajal: %s", role.Name, name, req.authorTag()), roleColor)
	b.done(req, "")
	return nil
}

func (b *Bot) roleRemovePerm(ctx context.Context, req *request, args command.Args) error {
	role, err := b.mentionedRole(req, args, "Označi role!")
	if err != nil {
		return err
	}
	if role.Position >= b.botPosition(req.guild) {
		return invalidf("Bot ne more urejati role **%s**", role.Name)
	}
	name, bit, ok := permissions.Lookup(args.Join(2))
	if name == "ALL" {
		if err := b.editRolePermissions(req, role, 0); err != nil {
			return platform("Prišlo je do napake", err)
		}
		b.logAction(ctx, req, audit.LevelWarn, "🗑️ Vsi permissioni odstranjeni",
			fmt.Sprintf("Vsi permissioni role **%s** so bili odstranjeni.\nOdstranil: %s", role.Name, req.authorTag()), b.cfg.EmbedColors.Error)
		b.done(req, "")
		return nil
	}
	if !ok {
		return invalidf("Neveljaven permission: **%s**", name)
	}
	if err := b.editRolePermissions(req, role, role.Permissions&^bit); err != nil {
		return platform("Prišlo je do napake", err)
	}
	b.logAction(ctx, req, audit.LevelWarn, "❌ Permission odstranjen",
		fmt.Sprintf("Permission **%s** odstranjen iz role **%s**\nOdstranil: %s", name, role.Name, req.authorTag()), b.cfg.EmbedColors.Error)
	b.done(req, "")
	return nil
}

package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) registerCommands() {
	b.router.Handle(b.cmdPing, "ping")
	b.router.Handle(b.cmdHello, "zdravo")
	b.router.Handle(b.cmdDice, "kocka")
	b.router.Handle(b.cmdHelp, "komande")
	b.router.Handle(b.cmdAdmin, "admin")
	b.router.Handle(b.cmdLog, "log")
	b.router.Handle(b.cmdHack, "hack")
	b.router.Handle(b.cmdPurge, "zbrisi")
	b.router.Handle(b.cmdKick, "kick")
	b.router.Handle(b.cmdBan, "ban")
	b.router.Handle(b.cmdTimeout, "timeout")
	b.router.Handle(b.cmdUntimeout, "untimeout")
	b.router.Handle(b.cmdRole, "role")
	b.router.Handle(b.cmdChannel, "channel")
	b.router.Handle(b.cmdVoice, "voice")
	b.router.Handle(b.cmdWarn, "warn")
	b.router.Handle(b.cmdWarnings, "warnings")
	b.router.Handle(b.cmdUnwarn, "unwarn")
	b.router.Handle(b.cmdRevealChannels, "revealchannels")
	b.router.Handle(b.cmdRename, "rename")
	b.router.Handle(b.cmdServer, "server")
}

type helpEntry struct {
	usage       string
	description string
}

// helpEmbed renders a subcommand listing. Usages are written without the
// prefix; it is added here.
func (b *Bot) helpEmbed(req *request, title, namespace string, entries []helpEntry) *discordgo.MessageEmbed {
	embed := b.embed(title, fmt.Sprintf("Seznam vseh podukazov za `%s%s`:", b.cfg.Prefix, namespace), b.cfg.EmbedColors.Success)
	for _, entry := range entries {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  b.cfg.Prefix + entry.usage,
			Value: entry.description,
		})
	}
	embed.Footer = b.requestedBy(req)
	return embed
}

func (b *Bot) sendHelp(req *request, title, namespace string, entries []helpEntry) error {
	_, err := b.send(req.channelID(), b.helpEmbed(req, title, namespace, entries))
	return err
}

var roleHelp = []helpEntry{
	{"role add @uporabnik @role", "Doda role uporabniku.\n**Primer:** `role add @Janez @Moderator`"},
	{"role remove @uporabnik @role", "Odstrani role uporabniku.\n**Primer:** `role remove @Janez @Moderator`"},
	{"role create <ime> [#barva]", "Ustvari novo role.\n**Primer:** `role create VIP #FFD700`"},
	{"role delete @role / all", "Izbriše role ali vse role.\n**Primer:** `role delete @VIP`\n**Primer:** `role delete all`"},
	{"role perms", "Pokaže seznam vseh permissions in navodila za dodajanje."},
	{"role setperm @role \"PERMISSION\"", "Doda permission role.\n**Primer:** `role setperm @Moderator DEAFEN_MEMBERS`"},
	{"role rperm @role \"PERMISSION\" / all", "Odstrani permission role.\n**Primer:** `role rperm @Moderator DEAFEN_MEMBERS`\n**Primer:** `role rperm @Moderator all`"},
}

var channelHelp = []helpEntry{
	{"channel create <text|voice> <ime>", "Ustvari nov kanal (tekstovni ali glasovni).\n**Primer:** `channel create text splošno`"},
	{"channel create category <ime>", "Ustvari novo kategorijo.\n**Primer:** `channel create category Projekti`"},
	{"channel delete <#kanal | id>", "Izbriše izbran kanal.\n**Primer:** `channel delete #splošno`"},
	{"channel move <#kanal | ime> <#kategorija | ime>", "Premakne kanal v določeno kategorijo.\n**Primer:** `channel move #splošno Projekti`"},
	{"channel help", "Prikaže to pomoč."},
}

var voiceHelp = []helpEntry{
	{"voice kick @uporabnik", "Odstrani uporabnika iz voice kanala.\n**Primer:** `voice kick @Janez`"},
	{"voice move @uporabnik #kanal", "Premakne uporabnika v drug voice kanal.\n**Primer:** `voice move @Janez #Gaming`"},
	{"voice mute @uporabnik", "Utiša uporabnika v voice kanalu.\n**Primer:** `voice mute @Janez`"},
	{"voice unmute @uporabnik", "Odstrani utišanje uporabniku.\n**Primer:** `voice unmute @Janez`"},
	{"voice deafen @uporabnik", "Onemogoči zvok uporabniku (deafen).\n**Primer:** `voice deafen @Janez`"},
	{"voice undeafen @uporabnik", "Ponovno omogoči zvok uporabniku.\n**Primer:** `voice undeafen @Janez`"},
	{"voice help", "Prikaže to pomoč."},
}

var warnHelp = []helpEntry{
	{"warn @user <razlog>", "Doda warn določenemu uporabniku.\n**Primer:** `warn @Janez Spam v kanalu`"},
	{"warnings @user", "Prikaže vse warne uporabnika.\n**Primer:** `warnings @Janez`"},
	{"unwarn @user <št>", "Odstrani določen warn uporabniku po številki.\n**Primer:** `unwarn @Janez 1`"},
	{"warn help", "Prikaže to pomoč."},
}

var renameHelp = []helpEntry{
	{"rename @uporabnik \"novo_ime\"", "Spremeni nickname uporabnika.\n**Primer:** `rename @Janez \"Admin Janez\"`"},
	{"rename @uporabnik reset", "Ponastavi (resetira) nickname uporabnika.\n**Primer:** `rename @Janez reset`"},
	{"rename help", "Prikaže to pomoč."},
}

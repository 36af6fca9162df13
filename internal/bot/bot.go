// Package bot is the Discord front-end. It translates interactions into core
// service calls and engine results into user-facing text; no game logic
// lives here.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"railfactory/internal/game"
)

type Bot struct {
	session *discordgo.Session
	game    *game.Service
	log     *slog.Logger
	appID   string
}

func New(token string, gameSvc *game.Service, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		session: session,
		game:    gameSvc,
		log:     logger,
	}
	session.AddHandler(b.handleInteraction)
	return b, nil
}

// Open connects the gateway and registers slash commands. A non-empty
// commandGuildID scopes registration to one guild, which propagates
// instantly and is what you want in development.
func (b *Bot) Open(commandGuildID string) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	b.appID = b.session.State.User.ID
	for _, cmd := range commands() {
		if _, err := b.session.ApplicationCommandCreate(b.appID, commandGuildID, cmd); err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// ExecuteFollowUps forwards post-commit commands to the core service.
func (b *Bot) executeFollowUps(ctx context.Context, guildID string, followUps []game.FollowUp) {
	if len(followUps) == 0 {
		return
	}
	b.game.ExecuteFollowUps(ctx, guildID, followUps, nowFn())
}

func commands() []*discordgo.ApplicationCommand {
	roleChoices3 := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Forger (pipes)", Value: "forger"},
		{Name: "Welder (boxes)", Value: "welder"},
	}
	roleChoices4 := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Lumberjack (wood)", Value: "lumberjack"},
		{Name: "Smithy (steel)", Value: "smithy"},
		{Name: "Wheelwright (wheels)", Value: "wheelwright"},
		{Name: "Boilermaker (boilers)", Value: "boilermaker"},
		{Name: "Coachbuilder (cabins)", Value: "coachbuilder"},
		{Name: "Mechanic (trains)", Value: "mechanic"},
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "factory",
			Description: "Show your guild factory dashboard",
		},
		{
			Name:        "chop",
			Description: "Perform your manual action (one hour of production, 1h cooldown)",
		},
		{
			Name:        "buy",
			Description: "Buy one unit of an automation kind",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "Automation kind key, e.g. sawbot",
					Required:    true,
				},
			},
		},
		{
			Name:        "upgrade",
			Description: "Upgrade the shared tool or your role's click level",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "what",
					Description: "What to upgrade",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Axe", Value: "axe"},
						{Name: "Pickaxe", Value: "pickaxe"},
						{Name: "Click", Value: "click"},
					},
				},
			},
		},
		{
			Name:        "role",
			Description: "Choose or switch your specialization",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tier3",
					Description: "Tier-3 role",
					Choices:     roleChoices3,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tier4",
					Description: "Tier-4 role",
					Choices:     roleChoices4,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "confirm",
					Description: "Confirm a destructive tier-4 role switch",
				},
			},
		},
		{
			Name:        "toggle",
			Description: "Enable or disable your passive consumer production",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "Whether your passive production runs",
					Required:    true,
				},
			},
		},
		{
			Name:        "halt",
			Description: "Producers only: pause every downstream consumer in the guild",
		},
		{
			Name:        "advance",
			Description: "Advance the guild to the next tier (or prestige at tier 4)",
		},
		{
			Name:        "top",
			Description: "Guild contribution leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "tier",
					Description: "Tier to rank (defaults to current)",
				},
			},
		},
		{
			Name:        "refresh",
			Description: "Apply pending passive production for everyone in the guild",
		},
	}
}

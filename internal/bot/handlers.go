package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"railfactory/internal/economy"
	"railfactory/internal/game"
	"railfactory/internal/metrics"
)

var nowFn = time.Now

const interactionTimeout = 15 * time.Second

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	var name string
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name = i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		name = i.MessageComponentData().CustomID
	default:
		return
	}

	guildID := i.GuildID
	userID := interactionUserID(i)
	if guildID == "" || userID == "" {
		b.respond(i, "This game is played inside a server.")
		return
	}

	msg, components, err := b.dispatch(ctx, name, guildID, userID, i)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		msg = friendlyError(err)
	}
	metrics.CommandsHandled.WithLabelValues(name, outcome).Inc()
	b.respondWithComponents(i, msg, components)
}

func (b *Bot) dispatch(ctx context.Context, name, guildID, userID string, i *discordgo.InteractionCreate) (string, []discordgo.MessageComponent, error) {
	now := nowFn()
	switch name {
	case "factory", "btn_factory":
		view, err := b.game.Dashboard(ctx, guildID, userID, now)
		if err != nil {
			return "", nil, err
		}
		return renderDashboard(view), factoryButtons(), nil

	case "chop", "btn_chop":
		res, err := b.game.Chop(ctx, guildID, userID, now)
		if err != nil {
			if errors.Is(err, game.ErrCooldownActive) {
				return fmt.Sprintf("Still recovering. Next action <t:%d:R>.", res.NextAllowedAt.Unix()), nil, nil
			}
			return "", nil, err
		}
		return fmt.Sprintf("You produced **%s %s**. Next action <t:%d:R>.",
			formatAmount(res.Made), res.Resource, res.NextAllowedAt.Unix()), factoryButtons(), nil

	case "buy":
		kind := economy.AutomationKind(optionString(i, "kind"))
		res, err := b.game.BuyAutomation(ctx, guildID, userID, kind, now)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Bought **%s** #%d for %s %s.", res.ItemKey, res.NewCount, formatAmount(res.Cost), res.Resource), nil, nil

	case "upgrade":
		what := optionString(i, "what")
		var res game.PurchaseResult
		var err error
		switch what {
		case "axe", "pickaxe":
			res, err = b.game.UpgradeTool(ctx, guildID, userID, game.Tool(what), now)
		default:
			res, err = b.game.UpgradeClick(ctx, guildID, userID, now)
		}
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("**%s** is now level %d (cost %s %s).", res.ItemKey, res.NewCount, formatAmount(res.Cost), res.Resource), nil, nil

	case "role":
		if raw := optionString(i, "tier3"); raw != "" {
			role, err := game.ParseRole3(raw)
			if err != nil {
				return "", nil, err
			}
			if err := b.game.SetRole3(ctx, guildID, userID, role, now); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("You are now a **%s**.", role), nil, nil
		}
		if raw := optionString(i, "tier4"); raw != "" {
			role, err := game.ParseRole4(raw)
			if err != nil {
				return "", nil, err
			}
			if err := b.game.SetRole4(ctx, guildID, userID, role, optionBool(i, "confirm"), now); err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("You are now a **%s**.", role), nil, nil
		}
		return "Pick a tier3 or tier4 role.", nil, nil

	case "toggle":
		enabled := optionBool(i, "enabled")
		if err := b.game.SetPassive(ctx, guildID, userID, enabled, now); err != nil {
			return "", nil, err
		}
		if enabled {
			return "Passive production **enabled**.", nil, nil
		}
		return "Passive production **paused**. Your rate keeps showing; nothing is consumed.", nil, nil

	case "halt":
		followUps, err := b.game.HaltConsumers(ctx, guildID, userID, now)
		if err != nil {
			return "", nil, err
		}
		b.executeFollowUps(ctx, guildID, followUps)
		return "All downstream consumers paused. They can re-enable with /toggle.", nil, nil

	case "advance":
		res, followUps, err := b.game.Advance(ctx, guildID, userID, now)
		if err != nil {
			return "", nil, err
		}
		b.executeFollowUps(ctx, guildID, followUps)
		if res.Prestiged {
			msg := fmt.Sprintf("**PRESTIGE!** The factory resets to tier 1. Prestige points: %d.", res.PrestigePoints)
			if res.MVPUserID != "" {
				msg += fmt.Sprintf(" MVP: <@%s> (award #%d, permanent 1%% discount).", res.MVPUserID, res.MVPAwards)
			}
			return msg, nil, nil
		}
		return fmt.Sprintf("The guild advances to **tier %d**! New goal: %s.", res.ToTier, formatAmount(res.NewGoal)), nil, nil

	case "top":
		tier := int(optionInt(i, "tier"))
		if tier < 1 || tier > 4 {
			var err error
			if tier, err = b.game.GuildTier(ctx, guildID); err != nil {
				return "", nil, err
			}
		}
		rows, err := b.game.TopContributors(ctx, guildID, tier, 10)
		if err != nil {
			return "", nil, err
		}
		return renderLeaderboard(tier, rows), nil, nil

	case "refresh", "btn_refresh":
		sum, err := b.game.RefreshGuild(ctx, guildID, now)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Refreshed %d worker(s); %s material-equivalents produced.",
			sum.UsersRefreshed, formatAmount(sum.TotalGained)), factoryButtons(), nil
	}
	return "Unknown command.", nil, nil
}

func renderDashboard(v game.DashboardView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Tier %d factory** — progress %s / %s", v.Tier, formatAmount(v.Progress), formatAmount(v.Goal))
	if v.PrestigePoints > 0 {
		fmt.Fprintf(&sb, " · prestige %d", v.PrestigePoints)
	}
	sb.WriteString("\n")

	shown := 0
	for _, r := range economy.AllResources() {
		if q := v.Inventory[r]; q > 0 || r == economy.TierMetric(v.Tier) {
			fmt.Fprintf(&sb, "%s: %s  ", r, formatAmount(q))
			shown++
		}
	}
	if shown > 0 {
		sb.WriteString("\n")
	}

	if v.Role != "" {
		fmt.Fprintf(&sb, "Role: **%s** (click lv %d)", v.Role, v.ClickLevel)
		if !v.PassiveEnabled {
			sb.WriteString(" · passive paused")
		}
		sb.WriteString("\n")
	} else if v.Tier >= 3 {
		sb.WriteString("No role yet — pick one with /role.\n")
	}
	if v.Tier == 1 {
		fmt.Fprintf(&sb, "Axe lv %d\n", v.AxeLevel)
	}
	if v.Tier == 2 {
		fmt.Fprintf(&sb, "Pickaxe lv %d\n", v.PickaxeLevel)
	}
	for r, rate := range v.Rates {
		if rate > 0 {
			fmt.Fprintf(&sb, "Your rate: %s %s/s\n", formatAmount(rate), r)
		}
	}
	fmt.Fprintf(&sb, "Contributed (lifetime): %s", formatAmount(v.LifetimeContributed))
	return sb.String()
}

func renderLeaderboard(tier int, rows []game.ContributorRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("Nobody has contributed at tier %d yet.", tier)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Tier %d contributors**\n", tier)
	for _, r := range rows {
		fmt.Fprintf(&sb, "%d. <@%s> — %s\n", r.Rank, r.UserID, formatAmount(r.Contributed))
	}
	return sb.String()
}

func factoryButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Work", Style: discordgo.PrimaryButton, CustomID: "btn_chop"},
				discordgo.Button{Label: "Refresh", Style: discordgo.SecondaryButton, CustomID: "btn_refresh"},
				discordgo.Button{Label: "Dashboard", Style: discordgo.SecondaryButton, CustomID: "btn_factory"},
			},
		},
	}
}

func friendlyError(err error) string {
	switch {
	case errors.Is(err, game.ErrCooldownActive):
		return "Your manual action is still on cooldown."
	case errors.Is(err, game.ErrInsufficientFunds):
		return "The guild inventory cannot afford that."
	case errors.Is(err, game.ErrMaxLevel):
		return "That is already at maximum level."
	case errors.Is(err, game.ErrNoRole):
		return "Pick a role first with /role."
	case errors.Is(err, game.ErrWrongRole):
		return "Your role cannot do that."
	case errors.Is(err, game.ErrWrongTier):
		return "That is not available at the guild's current tier."
	case errors.Is(err, game.ErrUnknownAutomation):
		return "Unknown automation kind."
	case errors.Is(err, game.ErrConfirmRequired):
		return "Switching your tier-4 role wipes its automation. Re-run with confirm:true."
	case errors.Is(err, game.ErrGoalNotReached):
		return "The tier goal has not been reached yet."
	case errors.Is(err, game.ErrInvalidRole):
		return "Unknown role."
	case errors.Is(err, game.ErrTxConflict):
		return "The factory is busy, try again in a moment."
	}
	return "Something went wrong, try again."
}

func (b *Bot) respond(i *discordgo.InteractionCreate, msg string) {
	b.respondWithComponents(i, msg, nil)
}

func (b *Bot) respondWithComponents(i *discordgo.InteractionCreate, msg string, components []discordgo.MessageComponent) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    msg,
			Components: components,
		},
	})
	if err != nil {
		b.log.Error("interaction respond failed", "err", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionString(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func optionBool(i *discordgo.InteractionCreate, name string) bool {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.BoolValue()
		}
	}
	return false
}

func optionInt(i *discordgo.InteractionCreate, name string) int64 {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}

func formatAmount(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case v == float64(int64(v)):
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

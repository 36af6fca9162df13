package game

import (
	"context"
	"time"

	"railfactory/internal/economy"
	"railfactory/internal/metrics"
)

// Chop performs the acting user's manual action. Their own passive accrual is
// applied first, inside the same transaction, so the click always sees the
// just-accrued production.
func (s *Service) Chop(ctx context.Context, guildID, userID string, now time.Time) (ClickResult, error) {
	var out ClickResult
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		tick := PassiveTick(g, u, now)
		ApplyPotential(g, u, tick)
		res, err := Click(g, u, now)
		out = res
		return nil, err
	})
	return out, err
}

// BuyAutomation purchases one unit of an automation kind.
func (s *Service) BuyAutomation(ctx context.Context, guildID, userID string, kind economy.AutomationKind, now time.Time) (PurchaseResult, error) {
	var out PurchaseResult
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		res, err := BuyAutomation(g, u, kind, now)
		if err != nil {
			return nil, err
		}
		out = res
		return nil, nil
	})
	return out, err
}

// UpgradeTool raises the shared axe or pickaxe level.
func (s *Service) UpgradeTool(ctx context.Context, guildID, userID string, tool Tool, now time.Time) (PurchaseResult, error) {
	var out PurchaseResult
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		res, err := UpgradeTool(g, u, tool, now)
		if err != nil {
			return nil, err
		}
		out = res
		return nil, nil
	})
	return out, err
}

// UpgradeClick raises the shared click level of the user's active role.
func (s *Service) UpgradeClick(ctx context.Context, guildID, userID string, now time.Time) (PurchaseResult, error) {
	var out PurchaseResult
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		res, err := UpgradeClick(g, u, now)
		if err != nil {
			return nil, err
		}
		out = res
		return nil, nil
	})
	return out, err
}

// SetRole3 assigns or switches the tier-3 role.
func (s *Service) SetRole3(ctx context.Context, guildID, userID string, role economy.Role, now time.Time) error {
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		return nil, SetRole3(g, u, role)
	})
	return err
}

// SetRole4 assigns or (with confirm) switches the tier-4 role.
func (s *Service) SetRole4(ctx context.Context, guildID, userID string, role economy.Role, confirm bool, now time.Time) error {
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		return nil, SetRole4(g, u, role, confirm)
	})
	return err
}

// SetPassive flips the acting user's consumer passive toggle for their active
// role. Accrual up to now is applied first under the old toggle state.
func (s *Service) SetPassive(ctx context.Context, guildID, userID string, enabled bool, now time.Time) error {
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		role := u.ActiveRole(g.Tier)
		if role == "" {
			return nil, ErrNoRole
		}
		return nil, SetPassive(u, role, enabled)
	})
	return err
}

// PauseConsumers disables every consumer toggle at a tier, guild-wide. A
// refresh of all users runs first so paused users keep what they already
// accrued.
func (s *Service) PauseConsumers(ctx context.Context, guildID string, tier int, now time.Time) (int, error) {
	var changed int
	err := s.mutateGuildUsers(ctx, guildID, func(g *Guild, users []*User) error {
		RefreshUsers(g, users, now)
		changed = PauseConsumerToggles(users, tier)
		return nil
	})
	return changed, err
}

// HaltConsumers lets a producer request that all downstream consumer
// production at their tier be paused. The role guard runs inside the actor's
// transaction; the guild-wide toggle flip executes as a follow-up command
// after that transaction commits.
func (s *Service) HaltConsumers(ctx context.Context, guildID, userID string, now time.Time) ([]FollowUp, error) {
	return s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		if g.Tier < 3 {
			return nil, ErrWrongTier
		}
		role := u.ActiveRole(g.Tier)
		if role == "" {
			return nil, ErrNoRole
		}
		if role.Consumer() {
			return nil, ErrWrongRole
		}
		return []FollowUp{{Kind: FollowUpPauseConsumers, Tier: g.Tier}}, nil
	})
}

// Advance fires the explicit tier transition for a guild. All users are
// refreshed first so progress reflects every pending accrual; the prestige
// transition resets them all in the same transaction.
func (s *Service) Advance(ctx context.Context, guildID, userID string, now time.Time) (AdvanceResult, []FollowUp, error) {
	var out AdvanceResult
	err := s.mutateGuildUsers(ctx, guildID, func(g *Guild, users []*User) error {
		RefreshUsers(g, users, now)
		res, err := AdvanceTier(g, users)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return out, nil, err
	}
	var followUps []FollowUp
	if out.Prestiged {
		followUps = append(followUps, FollowUp{Kind: FollowUpRefreshGuild})
	}
	return out, followUps, nil
}

// RefreshGuild runs the fair-allocation batch accrual for every user of one
// guild inside a single transaction.
func (s *Service) RefreshGuild(ctx context.Context, guildID string, now time.Time) (RefreshSummary, error) {
	var sum RefreshSummary
	err := s.mutateGuildUsers(ctx, guildID, func(g *Guild, users []*User) error {
		sum = RefreshUsers(g, users, now)
		return nil
	})
	return sum, err
}

// SweepSummary reports one pass of RefreshAllGuilds.
type SweepSummary struct {
	GuildsProcessed int
	GuildsFailed    int
	UsersRefreshed  int
	TotalGained     float64
}

// RefreshAllGuilds applies passive accrual across every guild. One guild's
// failure is logged and counted, never aborts the sweep.
func (s *Service) RefreshAllGuilds(ctx context.Context, now time.Time) (SweepSummary, error) {
	var sweep SweepSummary
	ids, err := s.guildIDs(ctx)
	if err != nil {
		return sweep, err
	}
	for _, id := range ids {
		sum, err := s.RefreshGuild(ctx, id, now)
		if err != nil {
			sweep.GuildsFailed++
			metrics.RefreshFailures.Inc()
			s.log.Error("guild refresh failed", "guild_id", id, "err", err)
			continue
		}
		sweep.GuildsProcessed++
		sweep.UsersRefreshed += sum.UsersRefreshed
		sweep.TotalGained += sum.TotalGained
	}
	metrics.RefreshRuns.Inc()
	return sweep, nil
}

// ExecuteFollowUps runs the post-commit commands a mutator requested, in
// order, each in its own transaction.
func (s *Service) ExecuteFollowUps(ctx context.Context, guildID string, followUps []FollowUp, now time.Time) {
	for _, f := range followUps {
		var err error
		switch f.Kind {
		case FollowUpRefreshGuild:
			_, err = s.RefreshGuild(ctx, guildID, now)
		case FollowUpPauseConsumers:
			_, err = s.PauseConsumers(ctx, guildID, f.Tier, now)
		}
		if err != nil {
			s.log.Error("follow-up failed", "guild_id", guildID, "kind", int(f.Kind), "err", err)
		}
	}
}

// DashboardView is the render-ready state for one user's factory view.
type DashboardView struct {
	GuildID        string
	Tier           int
	Progress       float64
	Goal           float64
	PrestigePoints int
	Inventory      map[economy.Resource]float64
	Totals         map[economy.Resource]float64
	AxeLevel       int
	PickaxeLevel   int
	ClickLevel     int

	Role                economy.Role
	Automation          map[economy.AutomationKind]int
	Rates               map[economy.Resource]float64
	Contributed         map[int]float64
	LifetimeContributed float64
	PrestigeMVPAwards   int
	PassiveEnabled      bool
	NextClickAt         time.Time
}

// Dashboard applies the acting user's pending accrual and returns the
// resulting view. Re-invoking with the same clock is a no-op read.
func (s *Service) Dashboard(ctx context.Context, guildID, userID string, now time.Time) (DashboardView, error) {
	var out DashboardView
	_, err := s.Mutate(ctx, guildID, userID, func(g *Guild, u *User) ([]FollowUp, error) {
		ApplyPotential(g, u, PassiveTick(g, u, now))
		out = buildDashboard(g, u)
		return nil, nil
	})
	return out, err
}

func buildDashboard(g *Guild, u *User) DashboardView {
	p := g.Progress[g.Tier]
	view := DashboardView{
		GuildID:             g.ID,
		Tier:                g.Tier,
		Progress:            p.Progress,
		Goal:                p.Goal,
		PrestigePoints:      g.PrestigePoints,
		Inventory:           make(map[economy.Resource]float64, len(g.Inventory)),
		Totals:              make(map[economy.Resource]float64, len(g.Totals)),
		AxeLevel:            g.AxeLevel,
		PickaxeLevel:        g.PickaxeLevel,
		Role:                u.ActiveRole(g.Tier),
		Automation:          make(map[economy.AutomationKind]int, len(u.Automation)),
		Rates:               make(map[economy.Resource]float64, len(u.Rates)),
		Contributed:         make(map[int]float64, len(u.Contributed)),
		LifetimeContributed: u.LifetimeContributed,
		PrestigeMVPAwards:   u.PrestigeMVPAwards,
		PassiveEnabled:      true,
	}
	for r, v := range g.Inventory {
		view.Inventory[r] = v
	}
	for r, v := range g.Totals {
		view.Totals[r] = v
	}
	for k, v := range u.Automation {
		view.Automation[k] = v
	}
	for r, v := range u.Rates {
		view.Rates[r] = v
	}
	for tier, v := range u.Contributed {
		view.Contributed[tier] = v
	}
	if view.Role != "" {
		view.ClickLevel = g.ClickLevels[view.Role]
		if view.Role.Consumer() {
			view.PassiveEnabled = u.Passive.Enabled(view.Role)
		}
	}
	if !u.LastChopAt.IsZero() {
		view.NextClickAt = u.LastChopAt.Add(economy.ClickCooldown)
	}
	return view
}

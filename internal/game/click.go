package game

import (
	"time"

	"railfactory/internal/economy"
)

// ClickResult reports one committed manual action.
type ClickResult struct {
	Resource      economy.Resource
	Potential     float64
	Made          float64
	NextAllowedAt time.Time
}

// Click performs the tier-appropriate manual action: one hour of production
// at the relevant click level, compressed into a single click and applied
// through the tier's scarcity-aware flow. A fixed cooldown separates clicks.
func Click(g *Guild, u *User, now time.Time) (ClickResult, error) {
	if !u.LastChopAt.IsZero() {
		if wait := u.LastChopAt.Add(economy.ClickCooldown); now.Before(wait) {
			return ClickResult{NextAllowedAt: wait}, ErrCooldownActive
		}
	}

	var out ClickResult
	switch g.Tier {
	case 1:
		out.Resource = economy.Sticks
		out.Potential = economy.ClickPayout(g.AxeLevel)
	case 2:
		out.Resource = economy.Beams
		out.Potential = economy.ClickPayout(g.PickaxeLevel)
	case 3, 4:
		role := u.ActiveRole(g.Tier)
		if role == "" {
			return out, ErrNoRole
		}
		out.Resource = role.Output()
		out.Potential = economy.ClickPayout(g.ClickLevels[role])
	}

	var res FlowResult
	switch g.Tier {
	case 1, 2:
		res = ApplyBaseFlow(g, u, g.Tier, out.Resource, out.Potential)
	case 3:
		if u.Role3 == economy.RoleForger {
			res = ApplyTier3Flow(g, u, out.Potential, 0)
		} else {
			res = ApplyTier3Flow(g, u, 0, out.Potential)
		}
	case 4:
		res = ApplyTier4Flow(g, u, map[economy.Resource]float64{out.Resource: out.Potential})
	}

	u.LastChopAt = now
	out.Made = res.Made[out.Resource]
	out.NextAllowedAt = now.Add(economy.ClickCooldown)
	return out, nil
}

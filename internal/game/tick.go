package game

import (
	"time"

	"railfactory/internal/economy"
)

// TickResult is the potential production for one passive interval. It is not
// applied to any inventory; application goes through the scarcity-aware flow
// functions, or through the batch fair-allocation path.
type TickResult struct {
	ElapsedSeconds float64
	Role           economy.Role
	Potential      map[economy.Resource]float64
}

// PassiveTick computes a user's potential production since their own last
// tick and advances lastTick unconditionally, so the same interval can never
// accrue twice. Display rates are refreshed even when nothing accrued.
func PassiveTick(g *Guild, u *User, now time.Time) TickResult {
	var elapsed float64
	if !u.LastTick.IsZero() {
		elapsed = now.Sub(u.LastTick).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
	}
	u.LastTick = now

	res := TickResult{
		ElapsedSeconds: elapsed,
		Potential:      make(map[economy.Resource]float64),
	}

	switch g.Tier {
	case 1:
		rate := economy.TotalRate(u.Automation, economy.DefsForTier(1, ""))
		u.Rates[economy.Sticks] = rate
		res.Potential[economy.Sticks] = rate * elapsed
	case 2:
		rate := economy.TotalRate(u.Automation, economy.DefsForTier(2, ""))
		u.Rates[economy.Beams] = rate
		res.Potential[economy.Beams] = rate * elapsed
	case 3, 4:
		role := u.ActiveRole(g.Tier)
		res.Role = role
		if role == "" {
			return res
		}
		rate := economy.TotalRate(u.Automation, economy.DefsForRole(role))
		u.Rates[role.Output()] = rate
		potential := rate * elapsed
		if role.Consumer() && !u.Passive.Enabled(role) {
			potential = 0
		}
		res.Potential[role.Output()] = potential
	}
	return res
}

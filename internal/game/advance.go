package game

import (
	"math"

	"railfactory/internal/economy"
)

// AdvanceResult reports one tier transition.
type AdvanceResult struct {
	FromTier       int
	ToTier         int
	Prestiged      bool
	PrestigePoints int
	NewGoal        float64
	MVPUserID      string
	MVPAwards      int
}

// AdvanceTier fires the explicit tier transition. It never fires on its own:
// reaching the goal only unlocks the action. The tier-4 transition is the
// prestige loop: MVP is computed from the produced counters first, then the
// guild and every user are destructively reset.
func AdvanceTier(g *Guild, users []*User) (AdvanceResult, error) {
	cur := g.Progress[g.Tier]
	if cur.Goal <= 0 || cur.Progress < cur.Goal {
		return AdvanceResult{}, ErrGoalNotReached
	}

	out := AdvanceResult{FromTier: g.Tier}
	if g.Tier < 4 {
		next := g.Tier + 1
		goal := economy.GoalAfterAdvance(g.Tier, cur.Goal)
		g.Progress[next].Goal = goal
		g.Progress[next].Progress = 0
		g.Tier = next
		g.RecomputeProgress()
		out.ToTier = next
		out.NewGoal = goal
		out.PrestigePoints = g.PrestigePoints
		return out, nil
	}

	// Prestige: the MVP scan must run before the reset zeroes the produced
	// counters it reads.
	if mvp := ComputeMVP(users); mvp != nil {
		mvp.PrestigeMVPAwards++
		out.MVPUserID = mvp.ID
		out.MVPAwards = mvp.PrestigeMVPAwards
	}

	g.PrestigePoints++
	g.Tier = 1
	g.AxeLevel = 0
	g.PickaxeLevel = 0
	for role := range g.ClickLevels {
		g.ClickLevels[role] = 0
	}
	for _, r := range economy.AllResources() {
		g.Inventory[r] = 0
		g.Totals[r] = 0
	}
	for tier := 1; tier <= 4; tier++ {
		g.Progress[tier].Progress = 0
		g.Progress[tier].Goal = 0
	}
	g.Progress[1].Goal = economy.GoalAfterAdvance(4, 0)
	for _, u := range users {
		u.resetForPrestige()
	}

	out.ToTier = 1
	out.Prestiged = true
	out.PrestigePoints = g.PrestigePoints
	out.NewGoal = g.Progress[1].Goal
	return out, nil
}

type mvpScore struct {
	avgROI   float64
	roles    int
	produced float64
}

func (a mvpScore) better(b mvpScore) bool {
	if a.avgROI != b.avgROI {
		return a.avgROI > b.avgROI
	}
	if a.roles != b.roles {
		return a.roles > b.roles
	}
	return a.produced > b.produced
}

// ComputeMVP picks the user with the best average return on automation
// investment across their tier-3/4 roles. Investment is floored at 1 so
// zero-investment production never divides by zero.
func ComputeMVP(users []*User) *User {
	var best *User
	var bestScore mvpScore
	for _, u := range users {
		var score mvpScore
		var roiSum float64
		for _, role := range []economy.Role{u.Role3, u.Role4} {
			if role == "" {
				continue
			}
			quantity := u.Produced[role.Output()]
			var investment float64
			for _, def := range economy.DefsForRole(role) {
				investment += economy.TotalInvestment(def, u.Automation[def.Kind])
			}
			roiSum += quantity / math.Max(1, investment)
			score.roles++
			score.produced += quantity
		}
		if score.roles == 0 {
			continue
		}
		score.avgROI = roiSum / float64(score.roles)
		if best == nil || score.better(bestScore) {
			best = u
			bestScore = score
		}
	}
	return best
}

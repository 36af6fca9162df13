package game

import (
	"time"

	"railfactory/internal/economy"
)

// RefreshSummary reports one batch accrual pass over a guild's users.
type RefreshSummary struct {
	UsersRefreshed int     `json:"users_refreshed"`
	TotalGained    float64 `json:"total_gained"`
}

type userPotential struct {
	user      *User
	potential map[economy.Resource]float64
}

// RefreshUsers applies passive accrual for every user of a guild at once.
// Producer output lands unconstrained; every constrained stage is resolved
// against one snapshot of available inventory, scaling all competing demands
// by the same factor so no user can race the others within the tick window.
func RefreshUsers(g *Guild, users []*User, now time.Time) RefreshSummary {
	sum := RefreshSummary{UsersRefreshed: len(users)}
	pots := make([]userPotential, 0, len(users))
	for _, u := range users {
		tick := PassiveTick(g, u, now)
		pots = append(pots, userPotential{user: u, potential: tick.Potential})
	}

	switch g.Tier {
	case 1:
		for _, p := range pots {
			res := ApplyBaseFlow(g, p.user, 1, economy.Sticks, p.potential[economy.Sticks])
			sum.TotalGained += res.Credited
		}
	case 2:
		for _, p := range pots {
			res := ApplyBaseFlow(g, p.user, 2, economy.Beams, p.potential[economy.Beams])
			sum.TotalGained += res.Credited
		}
	case 3:
		for _, p := range pots {
			res := ApplyBaseFlow(g, p.user, 3, economy.Pipes, p.potential[economy.Pipes])
			sum.TotalGained += res.Credited
		}
		boxCapacity := g.Inventory[economy.Pipes] / economy.PipesPerBox
		sum.TotalGained += applyScaledStage(g, pots, 3, economy.Boxes,
			[]ingredient{{economy.Pipes, economy.PipesPerBox}}, boxCapacity)
	case 4:
		for _, p := range pots {
			res := ApplyBaseFlow(g, p.user, 4, economy.Wood, p.potential[economy.Wood])
			sum.TotalGained += res.Credited
			res = ApplyBaseFlow(g, p.user, 4, economy.Steel, p.potential[economy.Steel])
			sum.TotalGained += res.Credited
		}
		stages := []struct {
			output economy.Resource
			recipe []ingredient
		}{
			{economy.Wheels, wheelRecipe()},
			{economy.Boilers, boilerRecipe()},
			{economy.Cabins, cabinRecipe()},
			{economy.Trains, trainRecipe()},
		}
		for _, st := range stages {
			sum.TotalGained += applyScaledStage(g, pots, 4, st.output, st.recipe, stageCapacity(g, st.recipe))
		}
	}
	g.RecomputeProgress()
	return sum
}

// applyScaledStage resolves one constrained stage for all users: total demand
// is compared against the capacity snapshot and every user's potential is
// scaled by the same proportional factor.
func applyScaledStage(g *Guild, pots []userPotential, tier int, output economy.Resource, recipe []ingredient, capacity float64) float64 {
	var demand float64
	for _, p := range pots {
		demand += p.potential[output]
	}
	scale := economy.AllocationScale(demand, capacity)
	if scale <= 0 {
		return 0
	}
	var credited float64
	for _, p := range pots {
		want := p.potential[output]
		if want <= 0 {
			continue
		}
		res := newFlowResult()
		produce(g, p.user, tier, output, want*scale, recipe, &res)
		credited += res.Credited
	}
	return credited
}

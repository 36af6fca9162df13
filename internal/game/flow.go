package game

import (
	"math"

	"railfactory/internal/economy"
)

// FlowResult reports what a flow application actually committed.
type FlowResult struct {
	Made     map[economy.Resource]float64
	Consumed map[economy.Resource]float64
	Credited float64
}

func newFlowResult() FlowResult {
	return FlowResult{
		Made:     make(map[economy.Resource]float64),
		Consumed: make(map[economy.Resource]float64),
	}
}

type ingredient struct {
	resource economy.Resource
	perUnit  float64
}

func wheelRecipe() []ingredient {
	return []ingredient{{economy.Steel, economy.SteelPerWheel}, {economy.Wood, economy.WoodPerWheel}}
}

func boilerRecipe() []ingredient {
	return []ingredient{{economy.Steel, economy.SteelPerBoiler}}
}

func cabinRecipe() []ingredient {
	return []ingredient{{economy.Wood, economy.WoodPerCabin}}
}

func trainRecipe() []ingredient {
	return []ingredient{
		{economy.Wheels, economy.WheelsPerTrain},
		{economy.Boilers, economy.BoilersPerTrain},
		{economy.Cabins, economy.CabinsPerTrain},
	}
}

// stageCapacity is how many whole units the recipe's upstream inventory can
// still produce, independent of demand.
func stageCapacity(g *Guild, recipe []ingredient) float64 {
	capacity := math.Inf(1)
	for _, in := range recipe {
		capacity = math.Min(capacity, math.Floor(g.Inventory[in.resource]/in.perUnit))
	}
	return capacity
}

// produce commits `made` units of a conversion stage: consumes the recipe,
// adds output, and credits the producing user in material-equivalent units.
func produce(g *Guild, u *User, tier int, output economy.Resource, made float64, recipe []ingredient, res *FlowResult) {
	if made <= 0 {
		return
	}
	for _, in := range recipe {
		consumed := made * in.perUnit
		g.Spend(in.resource, consumed)
		res.Consumed[in.resource] += consumed
	}
	g.Add(output, made)
	u.recordProduced(output, made)
	credit := made * economy.CreditPerUnit(output)
	u.credit(tier, credit)
	res.Made[output] += made
	res.Credited += credit
}

// ApplyBaseFlow commits unconstrained base-material production (tiers 1 and
// 2, and the tier-4 wood/steel producers).
func ApplyBaseFlow(g *Guild, u *User, tier int, r economy.Resource, amount float64) FlowResult {
	res := newFlowResult()
	produce(g, u, tier, r, amount, nil, &res)
	g.RecomputeProgress()
	return res
}

// ApplyTier3Flow commits a single acting user's tier-3 potential. Pipes land
// unconstrained; boxes are capped by the pipes that actually exist.
func ApplyTier3Flow(g *Guild, u *User, pipesPotential, boxesPotential float64) FlowResult {
	res := newFlowResult()
	produce(g, u, 3, economy.Pipes, pipesPotential, nil, &res)
	if boxesPotential > 0 {
		capacity := g.Inventory[economy.Pipes] / economy.PipesPerBox
		made := math.Min(boxesPotential, capacity)
		produce(g, u, 3, economy.Boxes, made, []ingredient{{economy.Pipes, economy.PipesPerBox}}, &res)
	}
	g.RecomputeProgress()
	return res
}

// ApplyTier4Flow commits a single acting user's tier-4 potential in strict
// stage order; each stage only sees output the previous stages already
// applied.
func ApplyTier4Flow(g *Guild, u *User, potential map[economy.Resource]float64) FlowResult {
	res := newFlowResult()
	produce(g, u, 4, economy.Wood, potential[economy.Wood], nil, &res)
	produce(g, u, 4, economy.Steel, potential[economy.Steel], nil, &res)

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
		want := potential[st.output]
		if want <= 0 {
			continue
		}
		made := math.Min(want, stageCapacity(g, st.recipe))
		produce(g, u, 4, st.output, made, st.recipe, &res)
	}
	g.RecomputeProgress()
	return res
}

// ApplyPotential routes a tick's potential through the tier-appropriate
// single-user flow.
func ApplyPotential(g *Guild, u *User, tick TickResult) FlowResult {
	switch g.Tier {
	case 1:
		return ApplyBaseFlow(g, u, 1, economy.Sticks, tick.Potential[economy.Sticks])
	case 2:
		return ApplyBaseFlow(g, u, 2, economy.Beams, tick.Potential[economy.Beams])
	case 3:
		return ApplyTier3Flow(g, u, tick.Potential[economy.Pipes], tick.Potential[economy.Boxes])
	case 4:
		return ApplyTier4Flow(g, u, tick.Potential)
	}
	return newFlowResult()
}

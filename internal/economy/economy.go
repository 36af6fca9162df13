package economy

import (
	"math"
	"time"
)

// Resource is one of the shared guild inventory kinds.
type Resource string

const (
	Sticks  Resource = "sticks"
	Beams   Resource = "beams"
	Pipes   Resource = "pipes"
	Boxes   Resource = "boxes"
	Wood    Resource = "wood"
	Steel   Resource = "steel"
	Wheels  Resource = "wheels"
	Boilers Resource = "boilers"
	Cabins  Resource = "cabins"
	Trains  Resource = "trains"
)

func AllResources() []Resource {
	return []Resource{Sticks, Beams, Pipes, Boxes, Wood, Steel, Wheels, Boilers, Cabins, Trains}
}

// Role is a tier-3 or tier-4 specialization.
type Role string

const (
	RoleForger       Role = "forger"
	RoleWelder       Role = "welder"
	RoleLumberjack   Role = "lumberjack"
	RoleSmithy       Role = "smithy"
	RoleWheelwright  Role = "wheelwright"
	RoleBoilermaker  Role = "boilermaker"
	RoleCoachbuilder Role = "coachbuilder"
	RoleMechanic     Role = "mechanic"
)

func Tier3Roles() []Role {
	return []Role{RoleForger, RoleWelder}
}

func Tier4Roles() []Role {
	return []Role{RoleLumberjack, RoleSmithy, RoleWheelwright, RoleBoilermaker, RoleCoachbuilder, RoleMechanic}
}

// ClickRoles are every role with a shared click-upgrade level.
func ClickRoles() []Role {
	return append(Tier3Roles(), Tier4Roles()...)
}

func (r Role) Tier() int {
	switch r {
	case RoleForger, RoleWelder:
		return 3
	case RoleLumberjack, RoleSmithy, RoleWheelwright, RoleBoilermaker, RoleCoachbuilder, RoleMechanic:
		return 4
	}
	return 0
}

// Output is the resource the role produces.
func (r Role) Output() Resource {
	switch r {
	case RoleForger:
		return Pipes
	case RoleWelder:
		return Boxes
	case RoleLumberjack:
		return Wood
	case RoleSmithy:
		return Steel
	case RoleWheelwright:
		return Wheels
	case RoleBoilermaker:
		return Boilers
	case RoleCoachbuilder:
		return Cabins
	case RoleMechanic:
		return Trains
	}
	return ""
}

// Consumer roles drain a scarce upstream material and carry a per-user
// passive opt-out toggle.
func (r Role) Consumer() bool {
	switch r {
	case RoleWelder, RoleWheelwright, RoleBoilermaker, RoleCoachbuilder, RoleMechanic:
		return true
	}
	return false
}

// Conversion ratios. Every conversion stage consumes whole recipe units
// per produced unit.
const (
	PipesPerBox     = 6.0
	SteelPerWheel   = 2.0
	WoodPerWheel    = 1.0
	SteelPerBoiler  = 5.0
	WoodPerCabin    = 5.0
	WheelsPerTrain  = 8.0
	BoilersPerTrain = 1.0
	CabinsPerTrain  = 1.0
)

// CreditPerUnit is the material-equivalent contribution credited per
// produced unit of a resource, so cross-role contribution is comparable.
func CreditPerUnit(r Resource) float64 {
	switch r {
	case Boxes:
		return PipesPerBox
	case Wheels:
		return SteelPerWheel + WoodPerWheel
	case Boilers:
		return SteelPerBoiler
	case Cabins:
		return WoodPerCabin
	case Trains:
		return WheelsPerTrain + BoilersPerTrain + CabinsPerTrain
	}
	return 1
}

const (
	// ClickHourSeconds compresses one hour of production into a manual click.
	ClickHourSeconds = 3600.0
	ClickCooldown    = time.Hour

	MaxToolLevel = 5

	AffordEpsilon = 1e-6
)

var clickPower = [MaxToolLevel + 1]float64{1, 3, 8, 20, 60, 200}

// ClickPower is the per-second-equivalent power for a tool/click level,
// clamped to the table bounds.
func ClickPower(level int) float64 {
	if level < 0 {
		level = 0
	}
	if level > MaxToolLevel {
		level = MaxToolLevel
	}
	return clickPower[level]
}

// ClickPayout is the amount produced by one manual action at the given level.
func ClickPayout(level int) float64 {
	return ClickPower(level) * ClickHourSeconds
}

// ToolUpgradeCost is the cost of raising a shared tool or click level by one.
func ToolUpgradeCost(base float64, level int) float64 {
	return math.Floor(base * math.Pow(4, float64(level)))
}

const (
	AxeUpgradeBase     = 2_000.0
	PickaxeUpgradeBase = 2_000.0
	ClickUpgradeBase   = 500.0
)

// MVPDiscount is the compounding personal discount from prestige MVP awards.
func MVPDiscount(awards int) float64 {
	if awards <= 0 {
		return 1
	}
	return math.Pow(0.99, float64(awards))
}

// NextAutomationCost prices the next unit of an automation kind for a user
// who already owns `owned` of it.
func NextAutomationCost(def AutomationDef, owned, mvpAwards int) float64 {
	cost := math.Floor(def.BaseCost * math.Pow(def.Growth, float64(owned)))
	return cost * MVPDiscount(mvpAwards)
}

// CanAfford allows a small epsilon so accumulated float production cannot
// block a purchase the display says is affordable.
func CanAfford(balance, cost float64) bool {
	return balance+AffordEpsilon >= cost
}

// TotalRate sums owned×baseRate across the given automation defs.
func TotalRate(owned map[AutomationKind]int, defs []AutomationDef) float64 {
	var rate float64
	for _, def := range defs {
		if n := owned[def.Kind]; n > 0 {
			rate += float64(n) * def.BaseRate
		}
	}
	return rate
}

// AllocationScale is the proportional fair-allocation factor for one
// constrained stage: every competing demand is multiplied by it.
func AllocationScale(demand, capacity float64) float64 {
	if demand <= 0 {
		return 0
	}
	return math.Min(1, capacity/demand)
}

// Tier goals. Advancement multiplies or fixes the next goal; prestige
// returns to the base ladder.
const (
	Tier1Goal = 100_000.0
	Tier4Goal = 100_000_000.0
)

// GoalAfterAdvance returns the goal for the tier entered by advancing out of
// fromTier with the given current goal.
func GoalAfterAdvance(fromTier int, currentGoal float64) float64 {
	switch fromTier {
	case 1:
		return currentGoal * 10
	case 2:
		return currentGoal * 2
	case 3:
		return Tier4Goal
	case 4:
		return Tier1Goal
	}
	return currentGoal
}

// TierMetric is the inventory resource tier progress is recomputed from.
func TierMetric(tier int) Resource {
	switch tier {
	case 1:
		return Sticks
	case 2:
		return Beams
	case 3:
		return Boxes
	case 4:
		return Trains
	}
	return Sticks
}

package economy

// AutomationKind identifies one purchasable automation line.
type AutomationKind string

const (
	KindSawbot       AutomationKind = "sawbot"
	KindLumberMill   AutomationKind = "lumber_mill"
	KindSmelter      AutomationKind = "smelter"
	KindBlastFurnace AutomationKind = "blast_furnace"
	KindPipePress    AutomationKind = "pipe_press"
	KindRollingLine  AutomationKind = "rolling_line"
	KindWeldRig      AutomationKind = "weld_rig"
	KindWeldGantry   AutomationKind = "weld_gantry"
	KindHarvester    AutomationKind = "timber_harvester"
	KindSteelMill    AutomationKind = "steel_mill"
	KindWheelLathe   AutomationKind = "wheel_lathe"
	KindBoilerForge  AutomationKind = "boiler_forge"
	KindCoachShop    AutomationKind = "coach_shop"
	KindAssemblyBay  AutomationKind = "assembly_bay"
)

type AutomationDef struct {
	Kind         AutomationKind
	DisplayName  string
	Tier         int
	Role         Role // empty for tier 1/2 kinds, which are role-free
	Output       Resource
	CostResource Resource
	BaseCost     float64
	Growth       float64
	BaseRate     float64 // output units per second per owned unit
}

var catalog = []AutomationDef{
	{Kind: KindSawbot, DisplayName: "Sawbot", Tier: 1, Output: Sticks, CostResource: Sticks, BaseCost: 150, Growth: 1.15, BaseRate: 0.2},
	{Kind: KindLumberMill, DisplayName: "Lumber Mill", Tier: 1, Output: Sticks, CostResource: Sticks, BaseCost: 2_500, Growth: 1.22, BaseRate: 2.5},
	{Kind: KindSmelter, DisplayName: "Smelter", Tier: 2, Output: Beams, CostResource: Beams, BaseCost: 200, Growth: 1.14, BaseRate: 0.25},
	{Kind: KindBlastFurnace, DisplayName: "Blast Furnace", Tier: 2, Output: Beams, CostResource: Beams, BaseCost: 4_000, Growth: 1.23, BaseRate: 3},
	{Kind: KindPipePress, DisplayName: "Pipe Press", Tier: 3, Role: RoleForger, Output: Pipes, CostResource: Pipes, BaseCost: 500, Growth: 1.13, BaseRate: 0.5},
	{Kind: KindRollingLine, DisplayName: "Rolling Line", Tier: 3, Role: RoleForger, Output: Pipes, CostResource: Pipes, BaseCost: 8_000, Growth: 1.24, BaseRate: 6},
	{Kind: KindWeldRig, DisplayName: "Weld Rig", Tier: 3, Role: RoleWelder, Output: Boxes, CostResource: Boxes, BaseCost: 100, Growth: 1.16, BaseRate: 0.1},
	{Kind: KindWeldGantry, DisplayName: "Weld Gantry", Tier: 3, Role: RoleWelder, Output: Boxes, CostResource: Boxes, BaseCost: 1_500, Growth: 1.25, BaseRate: 1.2},
	{Kind: KindHarvester, DisplayName: "Timber Harvester", Tier: 4, Role: RoleLumberjack, Output: Wood, CostResource: Wood, BaseCost: 800, Growth: 1.15, BaseRate: 1},
	{Kind: KindSteelMill, DisplayName: "Steel Mill", Tier: 4, Role: RoleSmithy, Output: Steel, CostResource: Steel, BaseCost: 900, Growth: 1.15, BaseRate: 1},
	{Kind: KindWheelLathe, DisplayName: "Wheel Lathe", Tier: 4, Role: RoleWheelwright, Output: Wheels, CostResource: Wheels, BaseCost: 400, Growth: 1.17, BaseRate: 0.25},
	{Kind: KindBoilerForge, DisplayName: "Boiler Forge", Tier: 4, Role: RoleBoilermaker, Output: Boilers, CostResource: Boilers, BaseCost: 250, Growth: 1.18, BaseRate: 0.15},
	{Kind: KindCoachShop, DisplayName: "Coach Shop", Tier: 4, Role: RoleCoachbuilder, Output: Cabins, CostResource: Cabins, BaseCost: 250, Growth: 1.18, BaseRate: 0.15},
	{Kind: KindAssemblyBay, DisplayName: "Assembly Bay", Tier: 4, Role: RoleMechanic, Output: Trains, CostResource: Trains, BaseCost: 60, Growth: 1.2, BaseRate: 0.02},
}

// Catalog returns the full automation catalog in stable order.
func Catalog() []AutomationDef {
	out := make([]AutomationDef, len(catalog))
	copy(out, catalog)
	return out
}

func AutomationByKind(kind AutomationKind) (AutomationDef, bool) {
	for _, def := range catalog {
		if def.Kind == kind {
			return def, true
		}
	}
	return AutomationDef{}, false
}

// DefsForTier returns the automation kinds available at a tier. For tiers 3
// and 4 the role narrows the set; tiers 1 and 2 ignore it.
func DefsForTier(tier int, role Role) []AutomationDef {
	var out []AutomationDef
	for _, def := range catalog {
		if def.Tier != tier {
			continue
		}
		if def.Tier >= 3 && def.Role != role {
			continue
		}
		out = append(out, def)
	}
	return out
}

// DefsForRole returns the automation kinds owned exclusively by one role.
func DefsForRole(role Role) []AutomationDef {
	var out []AutomationDef
	for _, def := range catalog {
		if def.Role == role {
			out = append(out, def)
		}
	}
	return out
}

// TotalInvestment is the cumulative undiscounted cost of the first `owned`
// units of a kind, used for ROI computation.
func TotalInvestment(def AutomationDef, owned int) float64 {
	var total float64
	for i := 0; i < owned; i++ {
		total += NextAutomationCost(def, i, 0)
	}
	return total
}

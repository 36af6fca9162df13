package game

import (
	"time"

	"github.com/google/uuid"

	"railfactory/internal/economy"
)

// PurchaseResult reports one committed purchase.
type PurchaseResult struct {
	Kind     string
	ItemKey  string
	Cost     float64
	Resource economy.Resource
	NewCount int
}

func recordPurchase(g *Guild, u *User, now time.Time, role economy.Role, res PurchaseResult) {
	g.Ledger = append(g.Ledger, PurchaseEvent{
		ID:       uuid.NewString(),
		GuildID:  g.ID,
		UserID:   u.ID,
		At:       now,
		Tier:     g.Tier,
		Role:     role,
		Resource: res.Resource,
		Amount:   res.Cost,
		Kind:     res.Kind,
		ItemKey:  res.ItemKey,
	})
}

// BuyAutomation purchases the next unit of an automation kind for the acting
// user, spending shared guild inventory. The user's compounding MVP discount
// applies to their own purchases only.
func BuyAutomation(g *Guild, u *User, kind economy.AutomationKind, now time.Time) (PurchaseResult, error) {
	var out PurchaseResult
	def, ok := economy.AutomationByKind(kind)
	if !ok {
		return out, ErrUnknownAutomation
	}
	if def.Tier != g.Tier {
		return out, ErrWrongTier
	}
	if def.Tier >= 3 && def.Role != u.ActiveRole(def.Tier) {
		return out, ErrWrongRole
	}

	owned := u.Automation[def.Kind]
	cost := economy.NextAutomationCost(def, owned, u.PrestigeMVPAwards)
	if !economy.CanAfford(g.Inventory[def.CostResource], cost) {
		return out, ErrInsufficientFunds
	}
	g.Spend(def.CostResource, cost)
	u.Automation[def.Kind] = owned + 1
	g.RecomputeProgress()

	out = PurchaseResult{
		Kind:     "automation",
		ItemKey:  string(def.Kind),
		Cost:     cost,
		Resource: def.CostResource,
		NewCount: owned + 1,
	}
	recordPurchase(g, u, now, def.Role, out)
	return out, nil
}

// Tool identifies a shared tier-1/2 tool.
type Tool string

const (
	ToolAxe     Tool = "axe"
	ToolPickaxe Tool = "pickaxe"
)

// UpgradeTool raises the shared axe or pickaxe level by one.
func UpgradeTool(g *Guild, u *User, tool Tool, now time.Time) (PurchaseResult, error) {
	var out PurchaseResult
	var level *int
	var base float64
	var resource economy.Resource

	switch tool {
	case ToolAxe:
		if g.Tier != 1 {
			return out, ErrWrongTier
		}
		level, base, resource = &g.AxeLevel, economy.AxeUpgradeBase, economy.Sticks
	case ToolPickaxe:
		if g.Tier != 2 {
			return out, ErrWrongTier
		}
		level, base, resource = &g.PickaxeLevel, economy.PickaxeUpgradeBase, economy.Beams
	default:
		return out, ErrWrongTier
	}

	if *level >= economy.MaxToolLevel {
		return out, ErrMaxLevel
	}
	cost := economy.ToolUpgradeCost(base, *level)
	if !economy.CanAfford(g.Inventory[resource], cost) {
		return out, ErrInsufficientFunds
	}
	g.Spend(resource, cost)
	*level++
	g.RecomputeProgress()

	out = PurchaseResult{
		Kind:     "tool",
		ItemKey:  string(tool),
		Cost:     cost,
		Resource: resource,
		NewCount: *level,
	}
	recordPurchase(g, u, now, "", out)
	return out, nil
}

// UpgradeClick raises the shared click-upgrade level of the user's active
// role, paid in the role's own output resource.
func UpgradeClick(g *Guild, u *User, now time.Time) (PurchaseResult, error) {
	var out PurchaseResult
	if g.Tier < 3 {
		return out, ErrWrongTier
	}
	role := u.ActiveRole(g.Tier)
	if role == "" {
		return out, ErrNoRole
	}

	level := g.ClickLevels[role]
	if level >= economy.MaxToolLevel {
		return out, ErrMaxLevel
	}
	resource := role.Output()
	cost := economy.ToolUpgradeCost(economy.ClickUpgradeBase, level)
	if !economy.CanAfford(g.Inventory[resource], cost) {
		return out, ErrInsufficientFunds
	}
	g.Spend(resource, cost)
	g.ClickLevels[role] = level + 1
	g.RecomputeProgress()

	out = PurchaseResult{
		Kind:     "click",
		ItemKey:  string(role),
		Cost:     cost,
		Resource: resource,
		NewCount: level + 1,
	}
	recordPurchase(g, u, now, role, out)
	return out, nil
}

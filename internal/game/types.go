package game

import (
	"math"
	"time"

	"railfactory/internal/economy"
)

// TierProgress is the per-tier progress facet. Progress is always recomputed
// as min(goal, final-good inventory) for the active tier, never accumulated.
type TierProgress struct {
	Progress float64
	Goal     float64
}

// Guild is the shared-economy aggregate for one Discord server. It is loaded,
// mutated, and saved inside one transaction; no reference outlives the
// transaction that loaded it.
type Guild struct {
	ID             string
	Tier           int
	PrestigePoints int

	AxeLevel     int
	PickaxeLevel int
	ClickLevels  map[economy.Role]int

	Progress  map[int]*TierProgress
	Inventory map[economy.Resource]float64
	Totals    map[economy.Resource]float64

	// Ledger holds purchase events recorded by the current mutation; the
	// store drains it into the append-only ledger on save.
	Ledger []PurchaseEvent
}

func NewGuild(id string) *Guild {
	g := &Guild{
		ID:          id,
		Tier:        1,
		ClickLevels: make(map[economy.Role]int),
		Progress:    make(map[int]*TierProgress),
		Inventory:   make(map[economy.Resource]float64),
		Totals:      make(map[economy.Resource]float64),
	}
	for _, role := range economy.ClickRoles() {
		g.ClickLevels[role] = 0
	}
	for tier := 1; tier <= 4; tier++ {
		g.Progress[tier] = &TierProgress{}
	}
	g.Progress[1].Goal = economy.Tier1Goal
	for _, r := range economy.AllResources() {
		g.Inventory[r] = 0
		g.Totals[r] = 0
	}
	return g
}

// Add credits produced inventory and the matching lifetime total.
func (g *Guild) Add(r economy.Resource, amount float64) {
	if amount <= 0 {
		return
	}
	g.Inventory[r] += amount
	g.Totals[r] += amount
}

// Spend deducts from shared inventory, clamping float dust at zero.
func (g *Guild) Spend(r economy.Resource, amount float64) {
	v := g.Inventory[r] - amount
	if v < 0 {
		v = 0
	}
	g.Inventory[r] = v
}

// RecomputeProgress derives the active tier's progress from its metric
// inventory, so spending the final good visibly lowers progress.
func (g *Guild) RecomputeProgress() {
	p := g.Progress[g.Tier]
	p.Progress = math.Min(p.Goal, g.Inventory[economy.TierMetric(g.Tier)])
}

// PassiveToggles are the per-user opt-outs for consumer roles.
type PassiveToggles struct {
	Weld   bool
	Wheel  bool
	Boiler bool
	Coach  bool
	Mech   bool
}

func defaultToggles() PassiveToggles {
	return PassiveToggles{Weld: true, Wheel: true, Boiler: true, Coach: true, Mech: true}
}

func (p PassiveToggles) Enabled(role economy.Role) bool {
	switch role {
	case economy.RoleWelder:
		return p.Weld
	case economy.RoleWheelwright:
		return p.Wheel
	case economy.RoleBoilermaker:
		return p.Boiler
	case economy.RoleCoachbuilder:
		return p.Coach
	case economy.RoleMechanic:
		return p.Mech
	}
	return true
}

func (p *PassiveToggles) set(role economy.Role, enabled bool) {
	switch role {
	case economy.RoleWelder:
		p.Weld = enabled
	case economy.RoleWheelwright:
		p.Wheel = enabled
	case economy.RoleBoilermaker:
		p.Boiler = enabled
	case economy.RoleCoachbuilder:
		p.Coach = enabled
	case economy.RoleMechanic:
		p.Mech = enabled
	}
}

// User is the per-guild player aggregate.
type User struct {
	GuildID string
	ID      string

	Role3 economy.Role // "" = unassigned
	Role4 economy.Role

	Automation  map[economy.AutomationKind]int
	Rates       map[economy.Resource]float64
	Produced    map[economy.Resource]float64
	Contributed map[int]float64

	LifetimeContributed float64
	LastTick            time.Time
	LastChopAt          time.Time
	PrestigeMVPAwards   int

	Passive PassiveToggles
}

func NewUser(guildID, userID string) *User {
	u := &User{
		GuildID:     guildID,
		ID:          userID,
		Automation:  make(map[economy.AutomationKind]int),
		Rates:       make(map[economy.Resource]float64),
		Produced:    make(map[economy.Resource]float64),
		Contributed: make(map[int]float64),
		Passive:     defaultToggles(),
	}
	for tier := 1; tier <= 4; tier++ {
		u.Contributed[tier] = 0
	}
	return u
}

// ActiveRole returns the user's role for a tier, "" when none applies.
func (u *User) ActiveRole(tier int) economy.Role {
	switch tier {
	case 3:
		return u.Role3
	case 4:
		return u.Role4
	}
	return ""
}

func (u *User) recordProduced(r economy.Resource, amount float64) {
	if amount > 0 {
		u.Produced[r] += amount
	}
}

// credit books contribution in material-equivalent units.
func (u *User) credit(tier int, amount float64) {
	if amount <= 0 {
		return
	}
	u.Contributed[tier] += amount
	u.LifetimeContributed += amount
}

// resetForPrestige wipes everything except the permanent MVP awards and the
// manual-action cooldown.
func (u *User) resetForPrestige() {
	u.Role3 = ""
	u.Role4 = ""
	u.Automation = make(map[economy.AutomationKind]int)
	for r := range u.Rates {
		u.Rates[r] = 0
	}
	for r := range u.Produced {
		u.Produced[r] = 0
	}
	for tier := range u.Contributed {
		u.Contributed[tier] = 0
	}
	u.LifetimeContributed = 0
	u.Passive = defaultToggles()
}

// FollowUpKind tags a post-commit command a mutator asks the caller to run.
type FollowUpKind int

const (
	// FollowUpRefreshGuild re-runs the batch accrual for the whole guild.
	FollowUpRefreshGuild FollowUpKind = iota + 1
	// FollowUpPauseConsumers disables consumer passive toggles guild-wide
	// for the given tier.
	FollowUpPauseConsumers
)

type FollowUp struct {
	Kind FollowUpKind
	Tier int
}

// PurchaseEvent is one append-only ledger row.
type PurchaseEvent struct {
	ID       string           `json:"id"`
	GuildID  string           `json:"guild_id"`
	UserID   string           `json:"user_id"`
	At       time.Time        `json:"at"`
	Tier     int              `json:"tier"`
	Role     economy.Role     `json:"role"`
	Resource economy.Resource `json:"resource"`
	Amount   float64          `json:"amount"`
	Kind     string           `json:"kind"`
	ItemKey  string           `json:"item_key"`
}

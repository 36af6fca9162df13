package game

import (
	"errors"
	"math"
	"testing"

	"railfactory/internal/economy"
)

func TestBuyAutomationSpendsSharedInventory(t *testing.T) {
	g := NewGuild("g1")
	g.Inventory[economy.Sticks] = 1_000
	u := NewUser("g1", "u1")

	res, err := BuyAutomation(g, u, economy.KindSawbot, tickBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cost != 150 || res.Resource != economy.Sticks {
		t.Fatalf("cost=%v resource=%s", res.Cost, res.Resource)
	}
	if u.Automation[economy.KindSawbot] != 1 {
		t.Fatalf("owned = %d", u.Automation[economy.KindSawbot])
	}
	if g.Inventory[economy.Sticks] != 850 {
		t.Fatalf("inventory = %v, want 850", g.Inventory[economy.Sticks])
	}
	if len(g.Ledger) != 1 {
		t.Fatalf("ledger has %d events, want 1", len(g.Ledger))
	}
	ev := g.Ledger[0]
	if ev.Kind != "automation" || ev.ItemKey != "sawbot" || ev.Amount != 150 || ev.ID == "" {
		t.Fatalf("unexpected ledger event: %+v", ev)
	}
}

func TestBuyAutomationCostCurve(t *testing.T) {
	g := NewGuild("g1")
	g.Inventory[economy.Sticks] = 1e9
	u := NewUser("g1", "u1")

	def, _ := economy.AutomationByKind(economy.KindSawbot)
	var prev float64
	for i := 0; i < 5; i++ {
		res, err := BuyAutomation(g, u, economy.KindSawbot, tickBase)
		if err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
		want := math.Floor(def.BaseCost * math.Pow(def.Growth, float64(i)))
		if res.Cost != want {
			t.Fatalf("purchase %d cost = %v, want %v", i, res.Cost, want)
		}
		if res.Cost < prev {
			t.Fatalf("cost decreased at purchase %d", i)
		}
		prev = res.Cost
	}
}

func TestBuyAutomationGuards(t *testing.T) {
	g := NewGuild("g1")
	g.Inventory[economy.Pipes] = 1e9
	u := NewUser("g1", "u1")

	if _, err := BuyAutomation(g, u, "no_such_kind", tickBase); !errors.Is(err, ErrUnknownAutomation) {
		t.Fatalf("unknown kind: %v", err)
	}
	if _, err := BuyAutomation(g, u, economy.KindPipePress, tickBase); !errors.Is(err, ErrWrongTier) {
		t.Fatalf("tier-3 kind at tier 1: %v", err)
	}

	g.Tier = 3
	if _, err := BuyAutomation(g, u, economy.KindPipePress, tickBase); !errors.Is(err, ErrWrongRole) {
		t.Fatalf("role-less buy: %v", err)
	}
	u.Role3 = economy.RoleWelder
	if _, err := BuyAutomation(g, u, economy.KindPipePress, tickBase); !errors.Is(err, ErrWrongRole) {
		t.Fatalf("cross-role buy: %v", err)
	}
}

func TestBuyAutomationInsufficientFunds(t *testing.T) {
	g := NewGuild("g1")
	g.Inventory[economy.Sticks] = 149
	u := NewUser("g1", "u1")

	if _, err := BuyAutomation(g, u, economy.KindSawbot, tickBase); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(g.Ledger) != 0 {
		t.Fatalf("failed purchase wrote a ledger event")
	}
}

func TestBuyAutomationMVPDiscountIsPersonal(t *testing.T) {
	g := NewGuild("g1")
	g.Inventory[economy.Sticks] = 1_000
	mvp := NewUser("g1", "mvp")
	mvp.PrestigeMVPAwards = 1

	res, err := BuyAutomation(g, mvp, economy.KindSawbot, tickBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(res.Cost, 148.5) {
		t.Fatalf("discounted cost = %v, want 148.5", res.Cost)
	}
}

func TestUpgradeToolLifecycle(t *testing.T) {
	g := NewGuild("g1")
	g.Inventory[economy.Sticks] = 1e9
	u := NewUser("g1", "u1")

	for want := 1; want <= economy.MaxToolLevel; want++ {
		res, err := UpgradeTool(g, u, ToolAxe, tickBase)
		if err != nil {
			t.Fatalf("upgrade to %d: %v", want, err)
		}
		if res.NewCount != want || g.AxeLevel != want {
			t.Fatalf("level = %d, want %d", g.AxeLevel, want)
		}
	}
	if _, err := UpgradeTool(g, u, ToolAxe, tickBase); !errors.Is(err, ErrMaxLevel) {
		t.Fatalf("expected ErrMaxLevel, got %v", err)
	}
}

func TestUpgradeToolWrongTier(t *testing.T) {
	g := NewGuild("g1")
	u := NewUser("g1", "u1")
	if _, err := UpgradeTool(g, u, ToolPickaxe, tickBase); !errors.Is(err, ErrWrongTier) {
		t.Fatalf("pickaxe at tier 1: %v", err)
	}
	g.Tier = 2
	if _, err := UpgradeTool(g, u, ToolAxe, tickBase); !errors.Is(err, ErrWrongTier) {
		t.Fatalf("axe at tier 2: %v", err)
	}
}

func TestUpgradeClickPaysInRoleOutput(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3
	g.Inventory[economy.Pipes] = 1_000
	u := NewUser("g1", "u1")

	if _, err := UpgradeClick(g, u, tickBase); !errors.Is(err, ErrNoRole) {
		t.Fatalf("role-less upgrade: %v", err)
	}

	u.Role3 = economy.RoleForger
	res, err := UpgradeClick(g, u, tickBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resource != economy.Pipes || res.Cost != 500 {
		t.Fatalf("cost=%v resource=%s", res.Cost, res.Resource)
	}
	if g.ClickLevels[economy.RoleForger] != 1 {
		t.Fatalf("click level = %d", g.ClickLevels[economy.RoleForger])
	}
	if g.Inventory[economy.Pipes] != 500 {
		t.Fatalf("pipes = %v, want 500", g.Inventory[economy.Pipes])
	}
}

func TestSpendingFinalGoodLowersProgress(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3
	g.Progress[3].Goal = 2_000_000
	g.Inventory[economy.Boxes] = 500
	g.RecomputeProgress()
	u := NewUser("g1", "u1")
	u.Role3 = economy.RoleWelder

	if _, err := BuyAutomation(g, u, economy.KindWeldRig, tickBase); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Progress[3].Progress != 400 {
		t.Fatalf("progress = %v, want 400 after spending 100 boxes", g.Progress[3].Progress)
	}
}

package game

import (
	"errors"
	"testing"
	"time"

	"railfactory/internal/economy"
)

func TestFirstChopProducesOneHour(t *testing.T) {
	g := NewGuild("g1")
	u := NewUser("g1", "u1")
	now := tickBase

	res, err := Click(g, u, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resource != economy.Sticks {
		t.Fatalf("resource = %s, want sticks", res.Resource)
	}
	if res.Made != 3600 {
		t.Fatalf("made = %v, want 3600 at axe level 0", res.Made)
	}
	if !res.NextAllowedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("next allowed = %v", res.NextAllowedAt)
	}
	if g.Inventory[economy.Sticks] != 3600 {
		t.Fatalf("inventory = %v", g.Inventory[economy.Sticks])
	}
}

func TestChopCooldown(t *testing.T) {
	g := NewGuild("g1")
	u := NewUser("g1", "u1")

	if _, err := Click(g, u, tickBase); err != nil {
		t.Fatalf("first click: %v", err)
	}
	res, err := Click(g, u, tickBase.Add(30*time.Minute))
	if !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	if !res.NextAllowedAt.Equal(tickBase.Add(time.Hour)) {
		t.Fatalf("next allowed = %v, want %v", res.NextAllowedAt, tickBase.Add(time.Hour))
	}
	if _, err := Click(g, u, tickBase.Add(time.Hour)); err != nil {
		t.Fatalf("click at cooldown boundary: %v", err)
	}
}

func TestChopScalesWithToolLevel(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 2
	g.PickaxeLevel = 2 // power 8
	u := NewUser("g1", "u1")

	res, err := Click(g, u, tickBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Resource != economy.Beams {
		t.Fatalf("resource = %s, want beams", res.Resource)
	}
	if res.Made != 8*3600 {
		t.Fatalf("made = %v, want %v", res.Made, 8*3600)
	}
}

func TestChopTier3RequiresRole(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3
	u := NewUser("g1", "u1")

	if _, err := Click(g, u, tickBase); !errors.Is(err, ErrNoRole) {
		t.Fatalf("expected ErrNoRole, got %v", err)
	}
}

func TestChopWelderCappedByPipes(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3
	g.Inventory[economy.Pipes] = 12
	u := NewUser("g1", "u1")
	u.Role3 = economy.RoleWelder

	res, err := Click(g, u, tickBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(res.Made, 2) {
		t.Fatalf("boxes made = %v, want 2 (12 pipes / 6)", res.Made)
	}
	if res.Potential != 3600 {
		t.Fatalf("potential = %v, want 3600", res.Potential)
	}
}

func TestChopMechanicUsesClickLevel(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 4
	g.ClickLevels[economy.RoleMechanic] = 1 // power 3
	g.Inventory[economy.Wheels] = 80
	g.Inventory[economy.Boilers] = 10
	g.Inventory[economy.Cabins] = 10
	u := NewUser("g1", "u1")
	u.Role4 = economy.RoleMechanic

	res, err := Click(g, u, tickBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Potential != 3*3600 {
		t.Fatalf("potential = %v", res.Potential)
	}
	if res.Made != 10 {
		t.Fatalf("trains made = %v, want 10 (wheels bind)", res.Made)
	}
}

package game

import (
	"testing"
	"time"

	"railfactory/internal/economy"
)

func TestRefreshUsersTier1(t *testing.T) {
	g := NewGuild("g1")
	a := NewUser("g1", "a")
	a.Automation[economy.KindSawbot] = 5 // 1/s
	a.LastTick = tickBase
	b := NewUser("g1", "b")
	b.Automation[economy.KindSawbot] = 10 // 2/s
	b.LastTick = tickBase

	sum := RefreshUsers(g, []*User{a, b}, tickBase.Add(100*time.Second))
	if sum.UsersRefreshed != 2 {
		t.Fatalf("users refreshed = %d", sum.UsersRefreshed)
	}
	if !almostEqual(g.Inventory[economy.Sticks], 300) {
		t.Fatalf("inventory = %v, want 300", g.Inventory[economy.Sticks])
	}
	if !almostEqual(a.Contributed[1], 100) || !almostEqual(b.Contributed[1], 200) {
		t.Fatalf("contribution a=%v b=%v", a.Contributed[1], b.Contributed[1])
	}
}

func TestRefreshUsersScarcityIsProportional(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3
	g.Inventory[economy.Pipes] = 9 // capacity for 1.5 boxes

	a := NewUser("g1", "a")
	a.Role3 = economy.RoleWelder
	a.Automation[economy.KindWeldRig] = 2 // 0.2/s, wants 2 boxes over 10s
	a.LastTick = tickBase

	b := NewUser("g1", "b")
	b.Role3 = economy.RoleWelder
	b.Automation[economy.KindWeldRig] = 1 // 0.1/s, wants 1 box over 10s
	b.LastTick = tickBase

	RefreshUsers(g, []*User{a, b}, tickBase.Add(10*time.Second))

	// Demand 3 against capacity 1.5: everyone is scaled by the same 0.5.
	if !almostEqual(a.Produced[economy.Boxes], 1) {
		t.Fatalf("a made %v boxes, want 1", a.Produced[economy.Boxes])
	}
	if !almostEqual(b.Produced[economy.Boxes], 0.5) {
		t.Fatalf("b made %v boxes, want 0.5", b.Produced[economy.Boxes])
	}
	if !almostEqual(g.Inventory[economy.Pipes], 0) {
		t.Fatalf("pipes remaining = %v, want 0", g.Inventory[economy.Pipes])
	}
	if !almostEqual(g.Inventory[economy.Boxes], 1.5) {
		t.Fatalf("boxes = %v, want 1.5", g.Inventory[economy.Boxes])
	}
}

func TestRefreshUsersProducersFeedSameTick(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3

	forger := NewUser("g1", "f")
	forger.Role3 = economy.RoleForger
	forger.Automation[economy.KindPipePress] = 12 // 6/s → 60 pipes over 10s
	forger.LastTick = tickBase

	welder := NewUser("g1", "w")
	welder.Role3 = economy.RoleWelder
	welder.Automation[economy.KindWeldGantry] = 5 // 6/s → 60 boxes wanted
	welder.LastTick = tickBase

	RefreshUsers(g, []*User{forger, welder}, tickBase.Add(10*time.Second))

	// The welder only sees pipes the forger put in during the same pass.
	if !almostEqual(welder.Produced[economy.Boxes], 10) {
		t.Fatalf("welder made %v boxes, want 10 (60 pipes / 6)", welder.Produced[economy.Boxes])
	}
}

func TestRefreshUsersSameClockIsNoOp(t *testing.T) {
	g := NewGuild("g1")
	a := NewUser("g1", "a")
	a.Automation[economy.KindSawbot] = 5
	a.LastTick = tickBase

	now := tickBase.Add(time.Minute)
	RefreshUsers(g, []*User{a}, now)
	before := g.Inventory[economy.Sticks]
	sum := RefreshUsers(g, []*User{a}, now)
	if g.Inventory[economy.Sticks] != before {
		t.Fatalf("second pass accrued: %v -> %v", before, g.Inventory[economy.Sticks])
	}
	if sum.TotalGained != 0 {
		t.Fatalf("second pass gained %v", sum.TotalGained)
	}
}

func TestRefreshUsersTier4Pipeline(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 4

	jack := NewUser("g1", "jack")
	jack.Role4 = economy.RoleLumberjack
	jack.Automation[economy.KindHarvester] = 2 // 2/s → 200 wood
	jack.LastTick = tickBase

	smith := NewUser("g1", "smith")
	smith.Role4 = economy.RoleSmithy
	smith.Automation[economy.KindSteelMill] = 4 // 4/s → 400 steel
	smith.LastTick = tickBase

	wright := NewUser("g1", "wright")
	wright.Role4 = economy.RoleWheelwright
	wright.Automation[economy.KindWheelLathe] = 4 // 1/s → 100 wheels wanted
	wright.LastTick = tickBase

	RefreshUsers(g, []*User{jack, smith, wright}, tickBase.Add(100*time.Second))

	// 400 steel supports 200 wheels, 200 wood supports 200: demand 100 fits.
	if !almostEqual(wright.Produced[economy.Wheels], 100) {
		t.Fatalf("wheels made = %v, want 100", wright.Produced[economy.Wheels])
	}
	if !almostEqual(g.Inventory[economy.Steel], 200) {
		t.Fatalf("steel left = %v, want 200", g.Inventory[economy.Steel])
	}
	if !almostEqual(g.Inventory[economy.Wood], 100) {
		t.Fatalf("wood left = %v, want 100", g.Inventory[economy.Wood])
	}
}

func TestRefreshUsersTier4ScarcityScalesEveryone(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 4
	g.Inventory[economy.Steel] = 100
	g.Inventory[economy.Wood] = 50 // capacity for 50 whole wheels

	a := NewUser("g1", "a")
	a.Role4 = economy.RoleWheelwright
	a.Automation[economy.KindWheelLathe] = 24 // 6/s → wants 600 wheels
	a.LastTick = tickBase

	b := NewUser("g1", "b")
	b.Role4 = economy.RoleWheelwright
	b.Automation[economy.KindWheelLathe] = 16 // 4/s → wants 400 wheels
	b.LastTick = tickBase

	RefreshUsers(g, []*User{a, b}, tickBase.Add(100*time.Second))

	// Demand 1000 against capacity 50: everyone gets the same 0.05 scale.
	if !almostEqual(a.Produced[economy.Wheels], 30) {
		t.Fatalf("a made %v wheels, want 30", a.Produced[economy.Wheels])
	}
	if !almostEqual(b.Produced[economy.Wheels], 20) {
		t.Fatalf("b made %v wheels, want 20", b.Produced[economy.Wheels])
	}
	if !almostEqual(g.Inventory[economy.Wheels], 50) {
		t.Fatalf("wheels = %v, want 50", g.Inventory[economy.Wheels])
	}
	if !almostEqual(g.Inventory[economy.Steel], 0) || !almostEqual(g.Inventory[economy.Wood], 0) {
		t.Fatalf("leftovers steel=%v wood=%v", g.Inventory[economy.Steel], g.Inventory[economy.Wood])
	}
}

func TestPauseConsumerToggles(t *testing.T) {
	a := NewUser("g1", "a")
	a.Role4 = economy.RoleMechanic
	b := NewUser("g1", "b")
	b.Role4 = economy.RoleLumberjack
	c := NewUser("g1", "c")
	c.Role4 = economy.RoleBoilermaker
	c.Passive.Boiler = false

	changed := PauseConsumerToggles([]*User{a, b, c}, 4)
	if changed != 1 {
		t.Fatalf("changed = %d, want only the active mechanic", changed)
	}
	if a.Passive.Enabled(economy.RoleMechanic) {
		t.Fatalf("mechanic toggle still enabled")
	}
}

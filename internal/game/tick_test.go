package game

import (
	"testing"
	"time"

	"railfactory/internal/economy"
)

var tickBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPassiveTickFirstTickAccruesNothing(t *testing.T) {
	g := NewGuild("g1")
	u := NewUser("g1", "u1")
	u.Automation[economy.KindSawbot] = 10

	res := PassiveTick(g, u, tickBase)
	if res.ElapsedSeconds != 0 {
		t.Fatalf("first tick elapsed = %v, want 0", res.ElapsedSeconds)
	}
	if res.Potential[economy.Sticks] != 0 {
		t.Fatalf("first tick potential = %v, want 0", res.Potential[economy.Sticks])
	}
	if !u.LastTick.Equal(tickBase) {
		t.Fatalf("lastTick not advanced")
	}
}

func TestPassiveTickAccruesElapsedProduction(t *testing.T) {
	g := NewGuild("g1")
	u := NewUser("g1", "u1")
	u.Automation[economy.KindSawbot] = 2 // 0.4/s
	u.LastTick = tickBase

	res := PassiveTick(g, u, tickBase.Add(10*time.Second))
	if res.ElapsedSeconds != 10 {
		t.Fatalf("elapsed = %v, want 10", res.ElapsedSeconds)
	}
	if got := res.Potential[economy.Sticks]; got != 4 {
		t.Fatalf("potential = %v, want 4", got)
	}
	if got := u.Rates[economy.Sticks]; got != 0.4 {
		t.Fatalf("display rate = %v, want 0.4", got)
	}
}

func TestPassiveTickSameIntervalNeverAccruesTwice(t *testing.T) {
	g := NewGuild("g1")
	u := NewUser("g1", "u1")
	u.Automation[economy.KindSawbot] = 5
	u.LastTick = tickBase

	now := tickBase.Add(time.Minute)
	first := PassiveTick(g, u, now)
	second := PassiveTick(g, u, now)
	if first.Potential[economy.Sticks] <= 0 {
		t.Fatalf("expected first tick to accrue")
	}
	if second.Potential[economy.Sticks] != 0 {
		t.Fatalf("second tick at same clock accrued %v", second.Potential[economy.Sticks])
	}
}

func TestPassiveTickClockSkewClamped(t *testing.T) {
	g := NewGuild("g1")
	u := NewUser("g1", "u1")
	u.Automation[economy.KindSawbot] = 1
	u.LastTick = tickBase.Add(time.Hour)

	res := PassiveTick(g, u, tickBase)
	if res.ElapsedSeconds != 0 {
		t.Fatalf("negative elapsed must clamp to 0, got %v", res.ElapsedSeconds)
	}
	if !u.LastTick.Equal(tickBase) {
		t.Fatalf("lastTick must still advance to now")
	}
}

func TestPassiveTickWithoutRoleIsInert(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3
	u := NewUser("g1", "u1")
	u.LastTick = tickBase

	res := PassiveTick(g, u, tickBase.Add(time.Hour))
	if len(res.Potential) != 0 {
		t.Fatalf("role-less tier-3 user accrued %v", res.Potential)
	}
}

func TestPassiveTickDisabledConsumerKeepsRateZeroesPotential(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 3
	u := NewUser("g1", "u1")
	u.Role3 = economy.RoleWelder
	u.Automation[economy.KindWeldRig] = 3 // 0.3/s
	u.Passive.Weld = false
	u.LastTick = tickBase

	res := PassiveTick(g, u, tickBase.Add(10*time.Second))
	if got := res.Potential[economy.Boxes]; got != 0 {
		t.Fatalf("disabled consumer accrued %v", got)
	}
	if got := u.Rates[economy.Boxes]; got != 0.3 {
		t.Fatalf("display rate = %v, want 0.3 even while paused", got)
	}
}

func TestPassiveTickTier4UsesRole4(t *testing.T) {
	g := NewGuild("g1")
	g.Tier = 4
	u := NewUser("g1", "u1")
	u.Role4 = economy.RoleSmithy
	u.Automation[economy.KindSteelMill] = 2 // 2/s
	u.LastTick = tickBase

	res := PassiveTick(g, u, tickBase.Add(5*time.Second))
	if got := res.Potential[economy.Steel]; got != 10 {
		t.Fatalf("steel potential = %v, want 10", got)
	}
	if res.Role != economy.RoleSmithy {
		t.Fatalf("tick role = %s", res.Role)
	}
}

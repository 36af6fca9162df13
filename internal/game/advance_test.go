package game

import (
	"errors"
	"testing"
	"time"

	"railfactory/internal/economy"
)

func TestAdvanceRequiresGoal(t *testing.T) {
	g := NewGuild("g1")
	g.Inventory[economy.Sticks] = economy.Tier1Goal - 1
	g.RecomputeProgress()

	if _, err := AdvanceTier(g, nil); !errors.Is(err, ErrGoalNotReached) {
		t.Fatalf("expected ErrGoalNotReached, got %v", err)
	}
	if g.Tier != 1 {
		t.Fatalf("failed advance changed tier to %d", g.Tier)
	}
}

func TestAdvanceGoalLadder(t *testing.T) {
	g := NewGuild("g1")

	steps := []struct {
		metric   economy.Resource
		fill     float64
		wantTier int
		wantGoal float64
	}{
		{economy.Sticks, economy.Tier1Goal, 2, 1_000_000},
		{economy.Beams, 1_000_000, 3, 2_000_000},
		{economy.Boxes, 2_000_000, 4, economy.Tier4Goal},
	}
	for _, st := range steps {
		g.Inventory[st.metric] = st.fill
		g.RecomputeProgress()
		res, err := AdvanceTier(g, nil)
		if err != nil {
			t.Fatalf("advance to %d: %v", st.wantTier, err)
		}
		if res.ToTier != st.wantTier || g.Tier != st.wantTier {
			t.Fatalf("tier = %d, want %d", g.Tier, st.wantTier)
		}
		if res.NewGoal != st.wantGoal || g.Progress[st.wantTier].Goal != st.wantGoal {
			t.Fatalf("goal = %v, want %v", g.Progress[st.wantTier].Goal, st.wantGoal)
		}
	}
}

func prestigeReadyGuild() (*Guild, []*User) {
	g := NewGuild("g1")
	g.Tier = 4
	g.Progress[4].Goal = economy.Tier4Goal
	g.Inventory[economy.Trains] = economy.Tier4Goal
	g.RecomputeProgress()
	g.AxeLevel = 5
	g.ClickLevels[economy.RoleMechanic] = 3

	grinder := NewUser("g1", "grinder")
	grinder.Role4 = economy.RoleMechanic
	grinder.Automation[economy.KindAssemblyBay] = 2
	grinder.Produced[economy.Trains] = 50_000
	grinder.LastChopAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	idler := NewUser("g1", "idler")
	idler.Role4 = economy.RoleLumberjack
	idler.Automation[economy.KindHarvester] = 40
	idler.Produced[economy.Wood] = 1_000

	return g, []*User{grinder, idler}
}

func TestPrestigeResetsEverything(t *testing.T) {
	g, users := prestigeReadyGuild()
	grinder := users[0]

	res, err := AdvanceTier(g, users)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Prestiged || res.ToTier != 1 {
		t.Fatalf("result = %+v", res)
	}
	if g.Tier != 1 || g.PrestigePoints != 1 {
		t.Fatalf("tier=%d prestige=%d", g.Tier, g.PrestigePoints)
	}
	if g.Progress[1].Goal != economy.Tier1Goal || g.Progress[1].Progress != 0 {
		t.Fatalf("tier-1 progress facet = %+v", g.Progress[1])
	}
	if g.AxeLevel != 0 || g.ClickLevels[economy.RoleMechanic] != 0 {
		t.Fatalf("shared levels survived prestige")
	}
	for _, r := range economy.AllResources() {
		if g.Inventory[r] != 0 || g.Totals[r] != 0 {
			t.Fatalf("%s survived prestige", r)
		}
	}
	for _, u := range users {
		if u.Role3 != "" || u.Role4 != "" || len(u.Automation) != 0 || u.LifetimeContributed != 0 {
			t.Fatalf("user %s not reset: %+v", u.ID, u)
		}
	}
	if grinder.LastChopAt.IsZero() {
		t.Fatalf("manual cooldown must survive prestige")
	}
}

func TestPrestigeAwardsMVPOnce(t *testing.T) {
	g, users := prestigeReadyGuild()
	grinder := users[0]

	res, err := AdvanceTier(g, users)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MVPUserID != grinder.ID {
		t.Fatalf("mvp = %s, want %s", res.MVPUserID, grinder.ID)
	}
	if grinder.PrestigeMVPAwards != 1 || res.MVPAwards != 1 {
		t.Fatalf("awards = %d", grinder.PrestigeMVPAwards)
	}
	if users[1].PrestigeMVPAwards != 0 {
		t.Fatalf("non-mvp got an award")
	}
}

func TestComputeMVPFloorsInvestment(t *testing.T) {
	// Producing with zero automation investment divides by 1, not 0.
	free := NewUser("g1", "free")
	free.Role4 = economy.RoleLumberjack
	free.Produced[economy.Wood] = 10

	heavy := NewUser("g1", "heavy")
	heavy.Role4 = economy.RoleSmithy
	heavy.Automation[economy.KindSteelMill] = 10
	heavy.Produced[economy.Steel] = 100

	mvp := ComputeMVP([]*User{free, heavy})
	if mvp == nil || mvp.ID != "free" {
		t.Fatalf("zero-investment ROI of 10 should beat a heavy spender")
	}
}

func TestComputeMVPSkipsRolelessUsers(t *testing.T) {
	bystander := NewUser("g1", "bystander")
	if mvp := ComputeMVP([]*User{bystander}); mvp != nil {
		t.Fatalf("role-less user won MVP")
	}
}

func TestComputeMVPPrefersMoreRolesOnTie(t *testing.T) {
	one := NewUser("g1", "one")
	one.Role3 = economy.RoleForger
	one.Produced[economy.Pipes] = 10

	both := NewUser("g1", "both")
	both.Role3 = economy.RoleForger
	both.Role4 = economy.RoleLumberjack
	both.Produced[economy.Pipes] = 10
	both.Produced[economy.Wood] = 10

	mvp := ComputeMVP([]*User{one, both})
	if mvp == nil || mvp.ID != "both" {
		t.Fatalf("equal ROI must tie-break on role count")
	}
}

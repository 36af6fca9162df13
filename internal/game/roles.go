package game

import (
	"railfactory/internal/economy"
)

// clearRoleState wipes the automation and display rates of every kind owned
// by the given roles. Used by the destructive role-switch paths; nothing is
// refunded.
func clearRoleState(u *User, roles []economy.Role) {
	for _, role := range roles {
		for _, def := range economy.DefsForRole(role) {
			delete(u.Automation, def.Kind)
		}
		u.Rates[role.Output()] = 0
	}
}

// SetRole3 assigns the tier-3 specialization. Switching away from an existing
// role destroys the user's tier-3 automation and rates.
func SetRole3(g *Guild, u *User, role economy.Role) error {
	if g.Tier != 3 {
		return ErrWrongTier
	}
	if role.Tier() != 3 {
		return ErrInvalidRole
	}
	if u.Role3 == role {
		return nil
	}
	if u.Role3 != "" {
		clearRoleState(u, economy.Tier3Roles())
	}
	u.Role3 = role
	return nil
}

// SetRole4 assigns the tier-4 specialization. Switching an already-assigned
// role requires confirmation and resets all tier-4 automation, rates, and
// passive toggles to defaults.
func SetRole4(g *Guild, u *User, role economy.Role, confirm bool) error {
	if g.Tier != 4 {
		return ErrWrongTier
	}
	if role.Tier() != 4 {
		return ErrInvalidRole
	}
	if u.Role4 == role {
		return nil
	}
	if u.Role4 != "" {
		if !confirm {
			return ErrConfirmRequired
		}
		clearRoleState(u, economy.Tier4Roles())
		p := defaultToggles()
		u.Passive.Wheel = p.Wheel
		u.Passive.Boiler = p.Boiler
		u.Passive.Coach = p.Coach
		u.Passive.Mech = p.Mech
	}
	u.Role4 = role
	return nil
}

// SetPassive flips the user's own consumer-role passive toggle. The rate
// keeps being computed and displayed; only the potential is forced to zero.
func SetPassive(u *User, role economy.Role, enabled bool) error {
	if !role.Consumer() {
		return ErrInvalidRole
	}
	if u.ActiveRole(role.Tier()) != role {
		return ErrWrongRole
	}
	u.Passive.set(role, enabled)
	return nil
}

// PauseConsumerToggles force-disables the passive toggles of every consumer
// role at a tier, for all given users. Executed as a follow-up command after
// the triggering transaction committed.
func PauseConsumerToggles(users []*User, tier int) int {
	var changed int
	for _, u := range users {
		role := u.ActiveRole(tier)
		if role == "" || !role.Consumer() {
			continue
		}
		if u.Passive.Enabled(role) {
			u.Passive.set(role, false)
			changed++
		}
	}
	return changed
}

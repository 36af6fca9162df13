package game

import (
	"errors"

	"railfactory/internal/economy"
)

var (
	ErrCooldownActive    = errors.New("manual action cooldown still active")
	ErrInsufficientFunds = errors.New("insufficient shared inventory")
	ErrMaxLevel          = errors.New("level already at maximum")
	ErrNoRole            = errors.New("no role assigned for this tier")
	ErrWrongRole         = errors.New("action not available for assigned role")
	ErrInvalidRole       = errors.New("unknown role")
	ErrWrongTier         = errors.New("action not available at current tier")
	ErrUnknownAutomation = errors.New("unknown automation kind")
	ErrConfirmRequired   = errors.New("role switch resets tier-4 progress; confirmation required")
	ErrGoalNotReached    = errors.New("tier goal not reached")
	ErrTxConflict        = errors.New("transaction conflict after retries")
)

// ParseRole3 maps a raw command argument onto a tier-3 role.
func ParseRole3(raw string) (economy.Role, error) {
	for _, r := range economy.Tier3Roles() {
		if string(r) == raw {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// ParseRole4 maps a raw command argument onto a tier-4 role.
func ParseRole4(raw string) (economy.Role, error) {
	for _, r := range economy.Tier4Roles() {
		if string(r) == raw {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

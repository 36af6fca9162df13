package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"railfactory/internal/economy"
	"railfactory/internal/metrics"
)

// Service is the transactional entry point into the shared economy. Every
// action re-reads persisted state inside a serializable transaction; no
// aggregate is cached across actions.
type Service struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewService(db *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, log: logger}
}

const (
	txMaxAttempts  = 5
	txRetryBackoff = 100 * time.Millisecond
)

// withSerializableTx runs fn in a SERIALIZABLE transaction, retrying the
// whole function from scratch on write conflicts with linear backoff.
func (s *Service) withSerializableTx(ctx context.Context, fn func(pgx.Tx) error) error {
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		metrics.TxRetries.Inc()
		if attempt == txMaxAttempts {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, time.Duration(attempt)*txRetryBackoff); err != nil {
			return err
		}
	}
	return ErrTxConflict
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// loadGuildTx creates zero-default rows for a first-seen guild and loads the
// full aggregate. Tier-scoped facets exist for all four tiers regardless of
// the active tier.
func (s *Service) loadGuildTx(ctx context.Context, tx pgx.Tx, guildID string) (*Guild, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO game.guilds (id, tier)
		VALUES ($1, 1)
		ON CONFLICT (id) DO NOTHING
	`, guildID); err != nil {
		return nil, err
	}
	for tier := 1; tier <= 4; tier++ {
		goal := 0.0
		if tier == 1 {
			goal = economy.Tier1Goal
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.guild_tiers (guild_id, tier, progress, goal)
			VALUES ($1, $2, 0, $3)
			ON CONFLICT (guild_id, tier) DO NOTHING
		`, guildID, tier, goal); err != nil {
			return nil, err
		}
	}
	for _, r := range economy.AllResources() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.guild_resources (guild_id, resource, quantity, total)
			VALUES ($1, $2, 0, 0)
			ON CONFLICT (guild_id, resource) DO NOTHING
		`, guildID, string(r)); err != nil {
			return nil, err
		}
	}
	for _, role := range economy.ClickRoles() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.guild_click_levels (guild_id, role, level)
			VALUES ($1, $2, 0)
			ON CONFLICT (guild_id, role) DO NOTHING
		`, guildID, string(role)); err != nil {
			return nil, err
		}
	}

	g := NewGuild(guildID)
	if err := tx.QueryRow(ctx, `
		SELECT tier, prestige_points, axe_level, pickaxe_level
		FROM game.guilds
		WHERE id = $1
		FOR UPDATE
	`, guildID).Scan(&g.Tier, &g.PrestigePoints, &g.AxeLevel, &g.PickaxeLevel); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT tier, progress, goal
		FROM game.guild_tiers
		WHERE guild_id = $1
	`, guildID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var tier int
		var p TierProgress
		if err := rows.Scan(&tier, &p.Progress, &p.Goal); err != nil {
			rows.Close()
			return nil, err
		}
		g.Progress[tier] = &p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `
		SELECT resource, quantity, total
		FROM game.guild_resources
		WHERE guild_id = $1
	`, guildID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var resource string
		var quantity, total float64
		if err := rows.Scan(&resource, &quantity, &total); err != nil {
			rows.Close()
			return nil, err
		}
		g.Inventory[economy.Resource(resource)] = quantity
		g.Totals[economy.Resource(resource)] = total
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `
		SELECT role, level
		FROM game.guild_click_levels
		WHERE guild_id = $1
	`, guildID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var role string
		var level int
		if err := rows.Scan(&role, &level); err != nil {
			rows.Close()
			return nil, err
		}
		g.ClickLevels[economy.Role(role)] = level
	}
	rows.Close()
	return g, rows.Err()
}

func (s *Service) saveGuildTx(ctx context.Context, tx pgx.Tx, g *Guild) error {
	if _, err := tx.Exec(ctx, `
		UPDATE game.guilds
		SET tier = $1, prestige_points = $2, axe_level = $3, pickaxe_level = $4, updated_at = now()
		WHERE id = $5
	`, g.Tier, g.PrestigePoints, g.AxeLevel, g.PickaxeLevel, g.ID); err != nil {
		return err
	}
	for tier, p := range g.Progress {
		if _, err := tx.Exec(ctx, `
			UPDATE game.guild_tiers
			SET progress = $1, goal = $2
			WHERE guild_id = $3 AND tier = $4
		`, p.Progress, p.Goal, g.ID, tier); err != nil {
			return err
		}
	}
	for _, r := range economy.AllResources() {
		if _, err := tx.Exec(ctx, `
			UPDATE game.guild_resources
			SET quantity = $1, total = $2
			WHERE guild_id = $3 AND resource = $4
		`, g.Inventory[r], g.Totals[r], g.ID, string(r)); err != nil {
			return err
		}
	}
	for _, role := range economy.ClickRoles() {
		if _, err := tx.Exec(ctx, `
			UPDATE game.guild_click_levels
			SET level = $1
			WHERE guild_id = $2 AND role = $3
		`, g.ClickLevels[role], g.ID, string(role)); err != nil {
			return err
		}
	}
	if err := appendPurchaseEventsTx(ctx, tx, g.Ledger); err != nil {
		return err
	}
	g.Ledger = nil
	return nil
}

func (s *Service) loadUserTx(ctx context.Context, tx pgx.Tx, guildID, userID string) (*User, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO game.users (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`, guildID, userID); err != nil {
		return nil, err
	}
	for tier := 1; tier <= 4; tier++ {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.user_tiers (guild_id, user_id, tier, contributed)
			VALUES ($1, $2, $3, 0)
			ON CONFLICT (guild_id, user_id, tier) DO NOTHING
		`, guildID, userID, tier); err != nil {
			return nil, err
		}
	}

	u := NewUser(guildID, userID)
	var role3, role4 string
	var lastTick, lastChop *time.Time
	if err := tx.QueryRow(ctx, `
		SELECT role3, role4, last_tick, last_chop_at, prestige_mvp_awards, lifetime_contributed,
		       weld_passive, wheel_passive, boiler_passive, coach_passive, mech_passive
		FROM game.users
		WHERE guild_id = $1 AND user_id = $2
		FOR UPDATE
	`, guildID, userID).Scan(&role3, &role4, &lastTick, &lastChop, &u.PrestigeMVPAwards, &u.LifetimeContributed,
		&u.Passive.Weld, &u.Passive.Wheel, &u.Passive.Boiler, &u.Passive.Coach, &u.Passive.Mech); err != nil {
		return nil, err
	}
	u.Role3 = economy.Role(role3)
	u.Role4 = economy.Role(role4)
	if lastTick != nil {
		u.LastTick = *lastTick
	}
	if lastChop != nil {
		u.LastChopAt = *lastChop
	}

	rows, err := tx.Query(ctx, `
		SELECT tier, contributed
		FROM game.user_tiers
		WHERE guild_id = $1 AND user_id = $2
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var tier int
		var contributed float64
		if err := rows.Scan(&tier, &contributed); err != nil {
			rows.Close()
			return nil, err
		}
		u.Contributed[tier] = contributed
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `
		SELECT kind, owned
		FROM game.user_automation
		WHERE guild_id = $1 AND user_id = $2
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var kind string
		var owned int
		if err := rows.Scan(&kind, &owned); err != nil {
			rows.Close()
			return nil, err
		}
		u.Automation[economy.AutomationKind(kind)] = owned
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, q := range []struct {
		query string
		dst   map[economy.Resource]float64
	}{
		{`SELECT resource, per_sec FROM game.user_rates WHERE guild_id = $1 AND user_id = $2`, u.Rates},
		{`SELECT resource, produced FROM game.user_produced WHERE guild_id = $1 AND user_id = $2`, u.Produced},
	} {
		rows, err = tx.Query(ctx, q.query, guildID, userID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var resource string
			var v float64
			if err := rows.Scan(&resource, &v); err != nil {
				rows.Close()
				return nil, err
			}
			q.dst[economy.Resource(resource)] = v
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *Service) saveUserTx(ctx context.Context, tx pgx.Tx, u *User) error {
	var lastTick, lastChop *time.Time
	if !u.LastTick.IsZero() {
		lastTick = &u.LastTick
	}
	if !u.LastChopAt.IsZero() {
		lastChop = &u.LastChopAt
	}
	if _, err := tx.Exec(ctx, `
		UPDATE game.users
		SET role3 = $1, role4 = $2, last_tick = $3, last_chop_at = $4,
		    prestige_mvp_awards = $5, lifetime_contributed = $6,
		    weld_passive = $7, wheel_passive = $8, boiler_passive = $9,
		    coach_passive = $10, mech_passive = $11, updated_at = now()
		WHERE guild_id = $12 AND user_id = $13
	`, string(u.Role3), string(u.Role4), lastTick, lastChop,
		u.PrestigeMVPAwards, u.LifetimeContributed,
		u.Passive.Weld, u.Passive.Wheel, u.Passive.Boiler, u.Passive.Coach, u.Passive.Mech,
		u.GuildID, u.ID); err != nil {
		return err
	}
	for tier, contributed := range u.Contributed {
		if _, err := tx.Exec(ctx, `
			UPDATE game.user_tiers
			SET contributed = $1
			WHERE guild_id = $2 AND user_id = $3 AND tier = $4
		`, contributed, u.GuildID, u.ID, tier); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM game.user_automation
		WHERE guild_id = $1 AND user_id = $2
	`, u.GuildID, u.ID); err != nil {
		return err
	}
	for kind, owned := range u.Automation {
		if owned <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.user_automation (guild_id, user_id, kind, owned)
			VALUES ($1, $2, $3, $4)
		`, u.GuildID, u.ID, string(kind), owned); err != nil {
			return err
		}
	}
	for resource, perSec := range u.Rates {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.user_rates (guild_id, user_id, resource, per_sec)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (guild_id, user_id, resource) DO UPDATE SET per_sec = EXCLUDED.per_sec
		`, u.GuildID, u.ID, string(resource), perSec); err != nil {
			return err
		}
	}
	for resource, produced := range u.Produced {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.user_produced (guild_id, user_id, resource, produced)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (guild_id, user_id, resource) DO UPDATE SET produced = EXCLUDED.produced
		`, u.GuildID, u.ID, string(resource), produced); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) loadAllUsersTx(ctx context.Context, tx pgx.Tx, guildID string) ([]*User, error) {
	rows, err := tx.Query(ctx, `
		SELECT user_id
		FROM game.users
		WHERE guild_id = $1
		ORDER BY user_id
	`, guildID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(ids))
	for _, id := range ids {
		u, err := s.loadUserTx(ctx, tx, guildID, id)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Mutator reads and writes the guild and acting-user aggregates and may
// request follow-up commands to run after the transaction commits.
type Mutator func(g *Guild, u *User) ([]FollowUp, error)

// Mutate is the single transactional entry point for user-triggered actions:
// load guild+user, apply the mutator, persist both aggregates. A mutator
// error rolls the whole transaction back; nothing is partially applied.
func (s *Service) Mutate(ctx context.Context, guildID, userID string, fn Mutator) ([]FollowUp, error) {
	var followUps []FollowUp
	err := s.withSerializableTx(ctx, func(tx pgx.Tx) error {
		g, err := s.loadGuildTx(ctx, tx, guildID)
		if err != nil {
			return err
		}
		u, err := s.loadUserTx(ctx, tx, guildID, userID)
		if err != nil {
			return err
		}
		fus, err := fn(g, u)
		if err != nil {
			return err
		}
		if err := s.saveGuildTx(ctx, tx, g); err != nil {
			return err
		}
		if err := s.saveUserTx(ctx, tx, u); err != nil {
			return err
		}
		followUps = fus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return followUps, nil
}

// mutateGuildUsers runs fn against the guild and every one of its users,
// persisting everything. Used by the batch refresh, prestige, and
// pause-consumers paths.
func (s *Service) mutateGuildUsers(ctx context.Context, guildID string, fn func(g *Guild, users []*User) error) error {
	return s.withSerializableTx(ctx, func(tx pgx.Tx) error {
		g, err := s.loadGuildTx(ctx, tx, guildID)
		if err != nil {
			return err
		}
		users, err := s.loadAllUsersTx(ctx, tx, guildID)
		if err != nil {
			return err
		}
		if err := fn(g, users); err != nil {
			return err
		}
		if err := s.saveGuildTx(ctx, tx, g); err != nil {
			return err
		}
		for _, u := range users {
			if err := s.saveUserTx(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) guildIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM game.guilds ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

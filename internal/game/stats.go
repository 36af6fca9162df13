package game

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"railfactory/internal/economy"
)

// ContributorRow is one leaderboard entry, ranked by material-equivalent
// contribution for a tier.
type ContributorRow struct {
	Rank        int64   `json:"rank"`
	UserID      string  `json:"user_id"`
	Contributed float64 `json:"contributed"`
}

// GuildTier reads a guild's current tier without touching any accrual state.
// A guild that has never been played is reported at tier 1.
func (s *Service) GuildTier(ctx context.Context, guildID string) (int, error) {
	tier := 1
	err := s.db.QueryRow(ctx, `
		SELECT tier FROM game.guilds WHERE id = $1
	`, guildID).Scan(&tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 1, nil
		}
		return 0, err
	}
	return tier, nil
}

// TopContributors returns the top-N users for one tier of a guild, computed
// from the persisted counters; historical accrual is never recomputed.
func (s *Service) TopContributors(ctx context.Context, guildID string, tier, limit int) ([]ContributorRow, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := s.db.Query(ctx, `
		SELECT user_id, contributed
		FROM game.user_tiers
		WHERE guild_id = $1 AND tier = $2 AND contributed > 0
		ORDER BY contributed DESC, user_id
		LIMIT $3
	`, guildID, tier, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ContributorRow
	var rank int64 = 1
	for rows.Next() {
		var r ContributorRow
		if err := rows.Scan(&r.UserID, &r.Contributed); err != nil {
			return nil, err
		}
		r.Rank = rank
		rank++
		out = append(out, r)
	}
	return out, rows.Err()
}

// UserRank returns one user's rank and contribution for a tier.
func (s *Service) UserRank(ctx context.Context, guildID, userID string, tier int) (ContributorRow, error) {
	var out ContributorRow
	err := s.db.QueryRow(ctx, `
		WITH ranked AS (
			SELECT user_id, contributed,
			       RANK() OVER (ORDER BY contributed DESC) AS rank
			FROM game.user_tiers
			WHERE guild_id = $1 AND tier = $2
		)
		SELECT user_id, contributed, rank
		FROM ranked
		WHERE user_id = $3
	`, guildID, tier, userID).Scan(&out.UserID, &out.Contributed, &out.Rank)
	return out, err
}

// ProductionShareRow relates one user's raw production of a resource to the
// guild-wide total for that resource.
type ProductionShareRow struct {
	UserID   string  `json:"user_id"`
	Resource string  `json:"resource"`
	Produced float64 `json:"produced"`
	Share    float64 `json:"share"`
}

// ProductionShares returns role-relative production percentages for a
// resource across a guild, highest first.
func (s *Service) ProductionShares(ctx context.Context, guildID string, resource economy.Resource, limit int) ([]ProductionShareRow, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := s.db.Query(ctx, `
		WITH totals AS (
			SELECT COALESCE(SUM(produced), 0) AS total
			FROM game.user_produced
			WHERE guild_id = $1 AND resource = $2
		)
		SELECT up.user_id, up.produced,
		       CASE WHEN t.total > 0 THEN up.produced / t.total ELSE 0 END AS share
		FROM game.user_produced up, totals t
		WHERE up.guild_id = $1 AND up.resource = $2 AND up.produced > 0
		ORDER BY up.produced DESC, up.user_id
		LIMIT $3
	`, guildID, string(resource), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductionShareRow
	for rows.Next() {
		var r ProductionShareRow
		if err := rows.Scan(&r.UserID, &r.Produced, &r.Share); err != nil {
			return nil, err
		}
		r.Resource = string(resource)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RoleTotalsRow aggregates lifetime production per resource for a guild.
type RoleTotalsRow struct {
	Resource string  `json:"resource"`
	Produced float64 `json:"produced"`
	Users    int64   `json:"users"`
}

// RoleTotals returns aggregate production by resource across all users of a
// guild.
func (s *Service) RoleTotals(ctx context.Context, guildID string) ([]RoleTotalsRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT resource, COALESCE(SUM(produced), 0), COUNT(*) FILTER (WHERE produced > 0)
		FROM game.user_produced
		WHERE guild_id = $1
		GROUP BY resource
		ORDER BY resource
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoleTotalsRow
	for rows.Next() {
		var r RoleTotalsRow
		if err := rows.Scan(&r.Resource, &r.Produced, &r.Users); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

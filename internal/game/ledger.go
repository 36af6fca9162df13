package game

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"railfactory/internal/economy"
)

func appendPurchaseEventsTx(ctx context.Context, tx pgx.Tx, events []PurchaseEvent) error {
	for _, ev := range events {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.purchase_events (id, guild_id, user_id, at, tier, role, resource, amount, kind, item_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, ev.ID, ev.GuildID, ev.UserID, ev.At, ev.Tier, string(ev.Role), string(ev.Resource), ev.Amount, ev.Kind, ev.ItemKey); err != nil {
			return err
		}
	}
	return nil
}

// PurchaseFilter narrows a ledger range query. Zero values mean "any".
type PurchaseFilter struct {
	Role     economy.Role
	Resource economy.Resource
	From     time.Time
	To       time.Time
	Limit    int
}

// PurchaseEvents range-queries the append-only ledger. The simulation never
// reads these back; they exist for external analytics only.
func (s *Service) PurchaseEvents(ctx context.Context, guildID string, filter PurchaseFilter) ([]PurchaseEvent, error) {
	query := `
		SELECT id, guild_id, user_id, at, tier, role, resource, amount, kind, item_key
		FROM game.purchase_events
		WHERE guild_id = $1
	`
	args := []any{guildID}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		query += ` AND role = $` + strconv.Itoa(len(args))
	}
	if filter.Resource != "" {
		args = append(args, string(filter.Resource))
		query += ` AND resource = $` + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND at >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND at < $` + strconv.Itoa(len(args))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += ` ORDER BY at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseEvent
	for rows.Next() {
		var ev PurchaseEvent
		var role, resource string
		if err := rows.Scan(&ev.ID, &ev.GuildID, &ev.UserID, &ev.At, &ev.Tier, &role, &resource, &ev.Amount, &ev.Kind, &ev.ItemKey); err != nil {
			return nil, err
		}
		ev.Role = economy.Role(role)
		ev.Resource = economy.Resource(resource)
		out = append(out, ev)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"errors"
	"time"

	"rps_link/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const gameColumns = `id, host_id, host_move, comment, mode, archived, archived_at, created_at`

const playColumns = `id, game_id, guest_id, guest_move, host_move, outcome, played_at`

type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) CreateGame(ctx context.Context, g *domain.Game) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO games (id, host_id, host_move, comment, mode, archived, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID,
		g.HostID,
		g.HostMove,
		g.Comment,
		g.Mode,
		g.Archived,
		g.CreatedAt,
	)
	return err
}

func (r *GameRepository) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadPlays(ctx, []*domain.Game{g}); err != nil {
		return nil, err
	}
	return g, nil
}

// AppendPlay locks the game row, re-checks that it still accepts plays and
// inserts. The (game_id, guest_id) unique index makes a second play by the
// same guest a no-op insert.
func (r *GameRepository) AppendPlay(ctx context.Context, p *domain.Play) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		mode     domain.GameMode
		archived bool
	)
	err = tx.QueryRow(ctx, `SELECT mode, archived FROM games WHERE id = $1 FOR UPDATE`, p.GameID).Scan(&mode, &archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if archived {
		return ErrPlayRejected
	}

	var already bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM plays WHERE game_id = $1 AND guest_id = $2)`,
		p.GameID, p.GuestID,
	).Scan(&already); err != nil {
		return err
	}
	if already {
		return ErrDuplicatePlay
	}

	if mode == domain.GameModeSingle {
		var resolved bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM plays WHERE game_id = $1)`, p.GameID).Scan(&resolved); err != nil {
			return err
		}
		if resolved {
			return ErrPlayRejected
		}
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO plays (`+playColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (game_id, guest_id) DO NOTHING`,
		p.ID,
		p.GameID,
		p.GuestID,
		p.GuestMove,
		p.HostMove,
		p.Outcome,
		p.PlayedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicatePlay
	}

	return tx.Commit(ctx)
}

// SetArchived flips the archived flag once. It never clears it.
func (r *GameRepository) SetArchived(ctx context.Context, gameID string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE games SET archived = TRUE, archived_at = $2
		 WHERE id = $1 AND archived = FALSE`,
		gameID, at,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)`, gameID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *GameRepository) ListHostGames(ctx context.Context, hostID string, limit int) ([]*domain.Game, error) {
	return r.listGames(ctx,
		`SELECT `+gameColumns+`
		 FROM games
		 WHERE host_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		hostID, normalizeLimit(limit),
	)
}

func (r *GameRepository) ListGuestGames(ctx context.Context, guestID string, limit int) ([]*domain.Game, error) {
	return r.listGames(ctx,
		`SELECT g.id, g.host_id, g.host_move, g.comment, g.mode, g.archived, g.archived_at, g.created_at
		 FROM guest_games gg
		 JOIN games g ON g.id = gg.game_id
		 WHERE gg.user_id = $1
		 ORDER BY gg.added_at DESC
		 LIMIT $2`,
		guestID, normalizeLimit(limit),
	)
}

func (r *GameRepository) AddGuestGame(ctx context.Context, guestID, gameID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO guest_games (user_id, game_id, added_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id, game_id) DO NOTHING`,
		guestID, gameID,
	)
	return err
}

func (r *GameRepository) listGames(ctx context.Context, query string, args ...any) ([]*domain.Game, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadPlays(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *GameRepository) loadPlays(ctx context.Context, games []*domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	ids := make([]string, 0, len(games))
	byID := make(map[string]*domain.Game, len(games))
	for _, g := range games {
		g.Plays = []domain.Play{}
		ids = append(ids, g.ID)
		byID[g.ID] = g
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+playColumns+`
		 FROM plays
		 WHERE game_id = ANY($1)
		 ORDER BY played_at, id`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Play
		if err := rows.Scan(&p.ID, &p.GameID, &p.GuestID, &p.GuestMove, &p.HostMove, &p.Outcome, &p.PlayedAt); err != nil {
			return err
		}
		if g, ok := byID[p.GameID]; ok {
			g.Plays = append(g.Plays, p)
		}
	}
	return rows.Err()
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	if err := row.Scan(
		&g.ID,
		&g.HostID,
		&g.HostMove,
		&g.Comment,
		&g.Mode,
		&g.Archived,
		&g.ArchivedAt,
		&g.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}

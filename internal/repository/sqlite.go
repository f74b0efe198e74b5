package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rps_link/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	host_id     TEXT NOT NULL REFERENCES users(id),
	host_move   TEXT NOT NULL CHECK (host_move IN ('ROCK', 'PAPER', 'SCISSORS')),
	comment     TEXT NOT NULL DEFAULT '',
	mode        TEXT NOT NULL DEFAULT 'feed' CHECK (mode IN ('single', 'feed')),
	archived    INTEGER NOT NULL DEFAULT 0,
	archived_at DATETIME,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_host ON games (host_id, created_at);

CREATE TABLE IF NOT EXISTS plays (
	id         TEXT PRIMARY KEY,
	game_id    TEXT NOT NULL REFERENCES games(id),
	guest_id   TEXT NOT NULL REFERENCES users(id),
	guest_move TEXT NOT NULL CHECK (guest_move IN ('ROCK', 'PAPER', 'SCISSORS')),
	host_move  TEXT NOT NULL CHECK (host_move IN ('ROCK', 'PAPER', 'SCISSORS')),
	outcome    TEXT NOT NULL CHECK (outcome IN ('HOST', 'GUEST', 'DRAW')),
	played_at  DATETIME NOT NULL,
	UNIQUE (game_id, guest_id)
);

CREATE TABLE IF NOT EXISTS guest_games (
	user_id  TEXT NOT NULL REFERENCES users(id),
	game_id  TEXT NOT NULL REFERENCES games(id),
	added_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, game_id)
);
`

// SQLiteStore is a single-file Store for small deployments and local runs.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one writer at a time; immediate transactions serialize AppendPlay
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, created_at) VALUES (?, ?, ?)`,
		u.ID, u.DisplayName, u.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) RenameUser(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET display_name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateGame(ctx context.Context, g *domain.Game) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, host_id, host_move, comment, mode, archived, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.HostID, string(g.HostMove), g.Comment, string(g.Mode), g.Archived, g.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanSQLiteGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadPlays(ctx, []*domain.Game{g}); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SQLiteStore) AppendPlay(ctx context.Context, p *domain.Play) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		mode     string
		archived bool
	)
	err = tx.QueryRowContext(ctx, `SELECT mode, archived FROM games WHERE id = ?`, p.GameID).Scan(&mode, &archived)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if archived {
		return ErrPlayRejected
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plays WHERE game_id = ? AND guest_id = ?`, p.GameID, p.GuestID,
	).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicatePlay
	}

	if domain.GameMode(mode) == domain.GameModeSingle {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM plays WHERE game_id = ?`, p.GameID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return ErrPlayRejected
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO plays (`+playColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game_id, guest_id) DO NOTHING`,
		p.ID, p.GameID, p.GuestID, string(p.GuestMove), string(p.HostMove), string(p.Outcome), p.PlayedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicatePlay
	}

	return tx.Commit()
}

func (s *SQLiteStore) SetArchived(ctx context.Context, gameID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET archived = 1, archived_at = ? WHERE id = ? AND archived = 0`,
		at, gameID,
	)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE id = ?`, gameID).Scan(&count); err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *SQLiteStore) ListHostGames(ctx context.Context, hostID string, limit int) ([]*domain.Game, error) {
	return s.listGames(ctx,
		`SELECT `+gameColumns+` FROM games WHERE host_id = ? ORDER BY created_at DESC LIMIT ?`,
		hostID, normalizeLimit(limit),
	)
}

func (s *SQLiteStore) ListGuestGames(ctx context.Context, guestID string, limit int) ([]*domain.Game, error) {
	return s.listGames(ctx,
		`SELECT g.id, g.host_id, g.host_move, g.comment, g.mode, g.archived, g.archived_at, g.created_at
		 FROM guest_games gg
		 JOIN games g ON g.id = gg.game_id
		 WHERE gg.user_id = ?
		 ORDER BY gg.added_at DESC, gg.rowid DESC
		 LIMIT ?`,
		guestID, normalizeLimit(limit),
	)
}

func (s *SQLiteStore) AddGuestGame(ctx context.Context, guestID, gameID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO guest_games (user_id, game_id, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, game_id) DO NOTHING`,
		guestID, gameID, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) listGames(ctx context.Context, query string, args ...any) ([]*domain.Game, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Game
	for rows.Next() {
		g, err := scanSQLiteGame(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadPlays(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) loadPlays(ctx context.Context, games []*domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Game, len(games))
	args := make([]any, 0, len(games))
	for _, g := range games {
		g.Plays = []domain.Play{}
		byID[g.ID] = g
		args = append(args, g.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playColumns+` FROM plays WHERE game_id IN (`+placeholders+`) ORDER BY played_at, id`,
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                           domain.Play
			guestMove, hostMove, result string
		)
		if err := rows.Scan(&p.ID, &p.GameID, &p.GuestID, &guestMove, &hostMove, &result, &p.PlayedAt); err != nil {
			return err
		}
		p.GuestMove = domain.Move(guestMove)
		p.HostMove = domain.Move(hostMove)
		p.Outcome = domain.Outcome(result)
		if g, ok := byID[p.GameID]; ok {
			g.Plays = append(g.Plays, p)
		}
	}
	return rows.Err()
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteGame(row sqlScanner) (*domain.Game, error) {
	var (
		g          domain.Game
		move, mode string
		archivedAt sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.HostID, &move, &g.Comment, &mode, &g.Archived, &archivedAt, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.HostMove = domain.Move(move)
	g.Mode = domain.GameMode(mode)
	if archivedAt.Valid {
		t := archivedAt.Time
		g.ArchivedAt = &t
	}
	return &g, nil
}

var _ Store = (*SQLiteStore)(nil)

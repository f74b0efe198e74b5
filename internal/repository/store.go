package repository

import (
	"context"
	"errors"
	"time"

	"rps_link/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePlay means the guest already has a play on the game.
	ErrDuplicatePlay = errors.New("duplicate play")
	// ErrPlayRejected means the game stopped accepting plays between the
	// caller's read and the write (archived, or a single game got resolved).
	ErrPlayRejected = errors.New("play rejected")
)

// DefaultListLimit caps dashboard list queries.
const DefaultListLimit = 200

// Store is the persistence and identity backend the game service runs on.
// AppendPlay is a conditional write: it must refuse a second play by the
// same guest, any play on an archived game, and a second play on a single
// game, atomically with the insert.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	RenameUser(ctx context.Context, id, name string) error

	CreateGame(ctx context.Context, g *domain.Game) error
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	AppendPlay(ctx context.Context, p *domain.Play) error
	SetArchived(ctx context.Context, gameID string, at time.Time) (bool, error)

	ListHostGames(ctx context.Context, hostID string, limit int) ([]*domain.Game, error)
	ListGuestGames(ctx context.Context, guestID string, limit int) ([]*domain.Game, error)
	AddGuestGame(ctx context.Context, guestID, gameID string) error

	Ping(ctx context.Context) error
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}

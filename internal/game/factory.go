package game

import (
	"time"

	"rps_link/internal/domain"

	"github.com/google/uuid"
)

// Factory stamps ids and timestamps onto new games and plays.
type Factory struct {
	NewID func() string
	Now   func() time.Time
}

func NewFactory() *Factory {
	return &Factory{
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

func (f *Factory) CreateGame(hostID string, move domain.Move, comment string, mode domain.GameMode) (*domain.Game, error) {
	return NewGame(f.NewID(), hostID, move, comment, mode, f.Now())
}

func (f *Factory) Play(g *domain.Game, guestID string, move domain.Move) (*domain.Play, error) {
	return SubmitMove(g, guestID, move, f.NewID(), f.Now())
}

func (f *Factory) Archive(g *domain.Game, actorID string) (bool, error) {
	return Archive(g, actorID, f.Now())
}

package game

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"rps_link/internal/domain"
)

var (
	ErrInvalidMove    = errors.New("invalid move")
	ErrInvalidMode    = errors.New("invalid game mode")
	ErrMissingHost    = errors.New("host is required")
	ErrMissingGuest   = errors.New("guest is required")
	ErrCommentTooLong = errors.New("comment too long")
	ErrGameArchived   = errors.New("game is no longer accepting moves")
	ErrAlreadyPlayed  = errors.New("guest already played this game")
	ErrGameResolved   = errors.New("game already resolved")
	ErrHostCannotPlay = errors.New("host cannot play own game")
	ErrNotHost        = errors.New("only the host can do this")
)

// NormalizeComment trims the comment and enforces the length cap.
// A comment of exactly MaxCommentLength runes is accepted.
func NormalizeComment(comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > domain.MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return comment, nil
}

// NewGame builds a game in its initial open state with no plays.
func NewGame(id, hostID string, move domain.Move, comment string, mode domain.GameMode, now time.Time) (*domain.Game, error) {
	if !move.Valid() {
		return nil, ErrInvalidMove
	}
	if hostID == "" {
		return nil, ErrMissingHost
	}
	if mode == "" {
		mode = domain.GameModeFeed
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	comment, err := NormalizeComment(comment)
	if err != nil {
		return nil, err
	}

	return &domain.Game{
		ID:        id,
		HostID:    hostID,
		HostMove:  move,
		Comment:   comment,
		Mode:      mode,
		CreatedAt: now.UTC(),
		Plays:     []domain.Play{},
	}, nil
}

// CheckPlayable runs every submission guard without mutating g. When the
// guest has already played (or a single game is resolved) the existing play
// is returned with the error.
func CheckPlayable(g *domain.Game, guestID string, move domain.Move) (*domain.Play, error) {
	if !move.Valid() {
		return nil, ErrInvalidMove
	}
	if guestID == "" {
		return nil, ErrMissingGuest
	}
	if guestID == g.HostID {
		return nil, ErrHostCannotPlay
	}
	if p, ok := LatestPlayBy(g, guestID); ok {
		return p, ErrAlreadyPlayed
	}
	if g.Archived {
		return nil, ErrGameArchived
	}
	if g.Mode == domain.GameModeSingle && len(g.Plays) > 0 {
		p := g.Plays[len(g.Plays)-1]
		return &p, ErrGameResolved
	}
	return nil, nil
}

// SubmitMove resolves a guest's move against the host move and appends the
// resulting play. The outcome is computed here once and never again.
func SubmitMove(g *domain.Game, guestID string, move domain.Move, playID string, now time.Time) (*domain.Play, error) {
	if existing, err := CheckPlayable(g, guestID, move); err != nil {
		return existing, err
	}

	outcome, err := DetermineWinner(g.HostMove, move)
	if err != nil {
		return nil, err
	}

	p := domain.Play{
		ID:        playID,
		GameID:    g.ID,
		GuestID:   guestID,
		GuestMove: move,
		HostMove:  g.HostMove,
		Outcome:   outcome,
		PlayedAt:  now.UTC(),
	}
	g.Plays = append(g.Plays, p)
	return &p, nil
}

// Archive closes the game for further play. Archiving an archived game is a
// no-op and reports changed=false.
func Archive(g *domain.Game, actorID string, now time.Time) (bool, error) {
	if actorID == "" || actorID != g.HostID {
		return false, ErrNotHost
	}
	if g.Archived {
		return false, nil
	}
	t := now.UTC()
	g.Archived = true
	g.ArchivedAt = &t
	return true, nil
}

// LatestPlayBy finds the newest play recorded for guestID. Duplicate plays
// from a lost race are tolerated; the last one in the log wins.
func LatestPlayBy(g *domain.Game, guestID string) (*domain.Play, bool) {
	if g == nil || guestID == "" {
		return nil, false
	}
	for i := len(g.Plays) - 1; i >= 0; i-- {
		if g.Plays[i].GuestID == guestID {
			p := g.Plays[i]
			return &p, true
		}
	}
	return nil, false
}

// HasPlayed reports whether guestID has any play on g.
func HasPlayed(g *domain.Game, guestID string) bool {
	_, ok := LatestPlayBy(g, guestID)
	return ok
}

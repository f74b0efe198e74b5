package domain

import "time"

// Move - one of the three hand shapes
type Move string

const (
	MoveRock     Move = "ROCK"
	MovePaper    Move = "PAPER"
	MoveScissors Move = "SCISSORS"
)

// Moves lists every valid move in display order.
var Moves = []Move{MoveRock, MovePaper, MoveScissors}

// Valid reports whether m is one of the three known moves.
func (m Move) Valid() bool {
	switch m {
	case MoveRock, MovePaper, MoveScissors:
		return true
	}
	return false
}

// Outcome - who won a single play
type Outcome string

const (
	OutcomeHost  Outcome = "HOST"
	OutcomeGuest Outcome = "GUEST"
	OutcomeDraw  Outcome = "DRAW"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeHost, OutcomeGuest, OutcomeDraw:
		return true
	}
	return false
}

// GameMode - rule set that decides how many plays a game accepts
type GameMode string

const (
	// GameModeSingle accepts exactly one play from one guest.
	GameModeSingle GameMode = "single"
	// GameModeFeed accepts one play per guest, any number of guests.
	GameModeFeed GameMode = "feed"
)

// Valid reports whether m is a known mode.
func (m GameMode) Valid() bool {
	return m == GameModeSingle || m == GameModeFeed
}

// MaxCommentLength is the longest comment a host may attach, in runes.
const MaxCommentLength = 100

// Game is a hosted challenge. HostMove and Comment never change after creation.
type Game struct {
	ID         string     `db:"id" json:"id"`
	HostID     string     `db:"host_id" json:"host_id"`
	HostMove   Move       `db:"host_move" json:"host_move"`
	Comment    string     `db:"comment" json:"comment,omitempty"`
	Mode       GameMode   `db:"mode" json:"mode"`
	Archived   bool       `db:"archived" json:"archived"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`

	// Plays is append-only, ordered by PlayedAt.
	Plays []Play `json:"plays"`
}

// Play is one guest's round against the game's host move.
type Play struct {
	ID        string    `db:"id" json:"id"`
	GameID    string    `db:"game_id" json:"game_id"`
	GuestID   string    `db:"guest_id" json:"guest_id"`
	GuestMove Move      `db:"guest_move" json:"guest_move"`
	HostMove  Move      `db:"host_move" json:"host_move"` // snapshot at play time
	Outcome   Outcome   `db:"outcome" json:"outcome"`
	PlayedAt  time.Time `db:"played_at" json:"played_at"`
}

// Clone returns a deep copy so callers can mutate without racing the store.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	cp := *g
	if g.ArchivedAt != nil {
		t := *g.ArchivedAt
		cp.ArchivedAt = &t
	}
	cp.Plays = append([]Play(nil), g.Plays...)
	return &cp
}

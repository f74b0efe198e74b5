package service

import "time"

const (
	EventPlayRecorded = "play_recorded"
	EventGameArchived = "game_archived"
)

// GameEvent tells subscribers that a game changed. It never carries moves:
// anyone holding the link may listen, and a guest who has not played must
// not learn the host move. Clients refetch the game to see details.
type GameEvent struct {
	Type    string    `json:"type"`
	GameID  string    `json:"game_id"`
	GuestID string    `json:"guest_id,omitempty"`
	Plays   int       `json:"plays"`
	At      time.Time `json:"at"`
}

// Notifier receives events after the write they describe has been stored.
type Notifier interface {
	Publish(ev GameEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(GameEvent) {}

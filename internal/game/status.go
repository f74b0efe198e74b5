package game

import (
	"fmt"
	"sort"
	"time"

	"rps_link/internal/domain"
)

// Role - how a viewer relates to a game
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// RoleOf returns RoleHost for the game's creator and RoleGuest for anyone else.
func RoleOf(g *domain.Game, viewerID string) Role {
	if viewerID != "" && g.HostID == viewerID {
		return RoleHost
	}
	return RoleGuest
}

// DisplayStatus groups games on a dashboard. It is derived, never stored.
type DisplayStatus string

const (
	StatusOpen             DisplayStatus = "OPEN"
	StatusActive           DisplayStatus = "ACTIVE"
	StatusWaitingForResult DisplayStatus = "WAITING_FOR_RESULT"
	StatusCompleted        DisplayStatus = "COMPLETED"
	StatusArchived         DisplayStatus = "ARCHIVED"
)

// Classify derives the display status of g for viewerID.
// Archived wins over everything else.
func Classify(g *domain.Game, viewerID string) DisplayStatus {
	if g.Archived {
		return StatusArchived
	}

	if RoleOf(g, viewerID) == RoleGuest {
		p, ok := LatestPlayBy(g, viewerID)
		if !ok {
			return StatusOpen
		}
		if !p.Outcome.Valid() {
			return StatusWaitingForResult
		}
		return StatusCompleted
	}

	if len(g.Plays) == 0 {
		return StatusOpen
	}
	if g.Mode == domain.GameModeSingle {
		if !g.Plays[len(g.Plays)-1].Outcome.Valid() {
			return StatusWaitingForResult
		}
		return StatusCompleted
	}
	return StatusActive
}

// SortForDashboard puts archived games after live ones, newest first
// within each group.
func SortForDashboard(games []*domain.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.Archived != b.Archived {
			return !a.Archived
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Summary counts outcomes across a game's plays.
type Summary struct {
	Plays     int `json:"plays"`
	Guests    int `json:"guests"`
	HostWins  int `json:"host_wins"`
	GuestWins int `json:"guest_wins"`
	Draws     int `json:"draws"`
}

// Tally counts plays by outcome. Duplicate plays from one guest count once,
// using that guest's latest play.
func Tally(g *domain.Game) Summary {
	latest := make(map[string]domain.Play, len(g.Plays))
	for _, p := range g.Plays {
		latest[p.GuestID] = p
	}

	s := Summary{Plays: len(g.Plays), Guests: len(latest)}
	for _, p := range latest {
		switch p.Outcome {
		case domain.OutcomeHost:
			s.HostWins++
		case domain.OutcomeGuest:
			s.GuestWins++
		case domain.OutcomeDraw:
			s.Draws++
		}
	}
	return s
}

var monthLabels = [...]string{
	"Jan.", "Feb.", "Mar.", "Apr.", "May.", "Jun.",
	"Jul.", "Aug.", "Sep.", "Oct.", "Nov.", "Dec.",
}

// FormatGameDate renders t like "Mar. 7, 09:05".
func FormatGameDate(t time.Time) string {
	return fmt.Sprintf("%s %d, %02d:%02d", monthLabels[t.Month()-1], t.Day(), t.Hour(), t.Minute())
}

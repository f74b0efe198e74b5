package service

import (
	"time"

	"rps_link/internal/domain"
	"rps_link/internal/game"
)

const (
	TabMyGames    = "my_games"
	TabGuestGames = "guest_games"
)

type PlayView struct {
	ID        string         `json:"id"`
	GuestID   string         `json:"guest_id"`
	GuestName string         `json:"guest_name,omitempty"`
	GuestMove domain.Move    `json:"guest_move"`
	HostMove  domain.Move    `json:"host_move"`
	Outcome   domain.Outcome `json:"outcome"`
	Result    game.Result    `json:"result,omitempty"`
	PlayedAt  time.Time      `json:"played_at"`
	DateLabel string         `json:"date_label"`
}

// GameView is a game as one viewer may see it. HostMove is empty for a
// guest who has not played yet.
type GameView struct {
	ID         string             `json:"id"`
	HostID     string             `json:"host_id"`
	HostName   string             `json:"host_name"`
	Comment    string             `json:"comment,omitempty"`
	Mode       domain.GameMode    `json:"mode"`
	Role       game.Role          `json:"role"`
	Status     game.DisplayStatus `json:"status"`
	Archived   bool               `json:"archived"`
	ArchivedAt *time.Time         `json:"archived_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	DateLabel  string             `json:"date_label"`
	HostMove   domain.Move        `json:"host_move,omitempty"`
	CanPlay    bool               `json:"can_play"`
	MyPlay     *PlayView          `json:"my_play,omitempty"`
	Plays      []PlayView         `json:"plays,omitempty"`
	Summary    *game.Summary      `json:"summary,omitempty"`
}

// View projects g for viewerID. names maps user ids to display names and
// may be nil.
func View(g *domain.Game, viewerID string, names map[string]string) GameView {
	role := game.RoleOf(g, viewerID)
	v := GameView{
		ID:         g.ID,
		HostID:     g.HostID,
		HostName:   nameOf(names, g.HostID),
		Comment:    g.Comment,
		Mode:       g.Mode,
		Role:       role,
		Status:     game.Classify(g, viewerID),
		Archived:   g.Archived,
		ArchivedAt: g.ArchivedAt,
		CreatedAt:  g.CreatedAt,
		DateLabel:  game.FormatGameDate(g.CreatedAt),
	}

	if role == game.RoleHost {
		v.HostMove = g.HostMove
		v.Plays = make([]PlayView, 0, len(g.Plays))
		for _, p := range g.Plays {
			pv := playView(p, game.RoleHost)
			pv.GuestName = nameOf(names, p.GuestID)
			v.Plays = append(v.Plays, pv)
		}
		sum := game.Tally(g)
		v.Summary = &sum
		return v
	}

	if p, ok := game.LatestPlayBy(g, viewerID); ok {
		pv := playView(*p, game.RoleGuest)
		v.MyPlay = &pv
		v.HostMove = p.HostMove
		return v
	}

	if viewerID != "" {
		_, err := game.CheckPlayable(g, viewerID, domain.MoveRock)
		v.CanPlay = err == nil
	}
	return v
}

func playView(p domain.Play, role game.Role) PlayView {
	return PlayView{
		ID:        p.ID,
		GuestID:   p.GuestID,
		GuestMove: p.GuestMove,
		HostMove:  p.HostMove,
		Outcome:   p.Outcome,
		Result:    game.ResultFor(p.Outcome, role),
		PlayedAt:  p.PlayedAt,
		DateLabel: game.FormatGameDate(p.PlayedAt),
	}
}

type DashboardEntry struct {
	GameID    string             `json:"game_id"`
	Status    game.DisplayStatus `json:"status"`
	HostName  string             `json:"host_name"`
	Comment   string             `json:"comment,omitempty"`
	Mode      domain.GameMode    `json:"mode"`
	Archived  bool               `json:"archived"`
	CreatedAt time.Time          `json:"created_at"`
	DateLabel string             `json:"date_label"`

	// Move is the viewer's own move: the host move on hosted games, the
	// guest move on played ones.
	Move     domain.Move    `json:"move,omitempty"`
	HostMove domain.Move    `json:"host_move,omitempty"`
	Outcome  domain.Outcome `json:"outcome,omitempty"`
	Result   game.Result    `json:"result,omitempty"`
	Summary  *game.Summary  `json:"summary,omitempty"`
}

type Dashboard struct {
	MyGames    []DashboardEntry `json:"my_games"`
	GuestGames []DashboardEntry `json:"guest_games"`
	DefaultTab string           `json:"default_tab"`
}

func buildDashboard(viewerID string, hosted, joined []*domain.Game, names map[string]string) *Dashboard {
	d := &Dashboard{
		MyGames:    make([]DashboardEntry, 0, len(hosted)),
		GuestGames: make([]DashboardEntry, 0, len(joined)),
		DefaultTab: TabMyGames,
	}

	for _, g := range hosted {
		e := baseEntry(g, viewerID, names)
		e.Move = g.HostMove
		e.HostMove = g.HostMove
		sum := game.Tally(g)
		e.Summary = &sum
		d.MyGames = append(d.MyGames, e)
	}

	for _, g := range joined {
		e := baseEntry(g, viewerID, names)
		if p, ok := game.LatestPlayBy(g, viewerID); ok {
			e.Move = p.GuestMove
			e.HostMove = p.HostMove
			e.Outcome = p.Outcome
			e.Result = game.ResultFor(p.Outcome, game.RoleGuest)
		}
		d.GuestGames = append(d.GuestGames, e)
	}

	if len(d.MyGames) == 0 && len(d.GuestGames) > 0 {
		d.DefaultTab = TabGuestGames
	}
	return d
}

func baseEntry(g *domain.Game, viewerID string, names map[string]string) DashboardEntry {
	return DashboardEntry{
		GameID:    g.ID,
		Status:    game.Classify(g, viewerID),
		HostName:  nameOf(names, g.HostID),
		Comment:   g.Comment,
		Mode:      g.Mode,
		Archived:  g.Archived,
		CreatedAt: g.CreatedAt,
		DateLabel: game.FormatGameDate(g.CreatedAt),
	}
}

func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return domain.DefaultDisplayName
}

package game

import (
	"testing"
	"time"

	"rps_link/internal/domain"
)

func TestClassify(t *testing.T) {
	played := []domain.Play{{ID: "p1", GuestID: "guestA", Outcome: domain.OutcomeHost}}
	pending := []domain.Play{{ID: "p1", GuestID: "guestA"}}

	tests := []struct {
		name   string
		game   domain.Game
		viewer string
		want   DisplayStatus
	}{
		{"archived beats all", domain.Game{HostID: "host", Archived: true, Plays: played}, "guestA", StatusArchived},
		{"archived host", domain.Game{HostID: "host", Archived: true}, "host", StatusArchived},
		{"guest not played", domain.Game{HostID: "host", Mode: domain.GameModeFeed, Plays: played}, "guestB", StatusOpen},
		{"guest played", domain.Game{HostID: "host", Mode: domain.GameModeFeed, Plays: played}, "guestA", StatusCompleted},
		{"guest play missing outcome", domain.Game{HostID: "host", Plays: pending}, "guestA", StatusWaitingForResult},
		{"anonymous viewer", domain.Game{HostID: "host"}, "", StatusOpen},
		{"host no plays", domain.Game{HostID: "host", Mode: domain.GameModeFeed}, "host", StatusOpen},
		{"host feed with plays", domain.Game{HostID: "host", Mode: domain.GameModeFeed, Plays: played}, "host", StatusActive},
		{"host single resolved", domain.Game{HostID: "host", Mode: domain.GameModeSingle, Plays: played}, "host", StatusCompleted},
		{"host single pending", domain.Game{HostID: "host", Mode: domain.GameModeSingle, Plays: pending}, "host", StatusWaitingForResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.game
			if got := Classify(&g, tt.viewer); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyDoesNotMutate(t *testing.T) {
	g := &domain.Game{HostID: "host", Mode: domain.GameModeFeed, Plays: []domain.Play{{GuestID: "a", Outcome: domain.OutcomeDraw}}}
	before := g.Clone()
	_ = Classify(g, "host")
	_ = Classify(g, "a")
	if g.Archived != before.Archived || len(g.Plays) != len(before.Plays) || g.Plays[0] != before.Plays[0] {
		t.Fatalf("Classify mutated the game")
	}
}

func TestRoleOf(t *testing.T) {
	g := &domain.Game{HostID: "host"}
	if RoleOf(g, "host") != RoleHost {
		t.Fatalf("host not recognised")
	}
	if RoleOf(g, "someone") != RoleGuest {
		t.Fatalf("guest not recognised")
	}
	if RoleOf(&domain.Game{}, "") != RoleGuest {
		t.Fatalf("empty ids must not match host")
	}
}

func TestSortForDashboard(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	games := []*domain.Game{
		{ID: "old-archived", Archived: true, CreatedAt: base},
		{ID: "old-live", CreatedAt: base.Add(time.Hour)},
		{ID: "new-archived", Archived: true, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "new-live", CreatedAt: base.Add(2 * time.Hour)},
	}

	SortForDashboard(games)

	want := []string{"new-live", "old-live", "new-archived", "old-archived"}
	for i, id := range want {
		if games[i].ID != id {
			t.Fatalf("position %d = %s; want %s", i, games[i].ID, id)
		}
	}
}

func TestTally(t *testing.T) {
	g := &domain.Game{Plays: []domain.Play{
		{GuestID: "a", Outcome: domain.OutcomeHost},
		{GuestID: "b", Outcome: domain.OutcomeGuest},
		{GuestID: "c", Outcome: domain.OutcomeDraw},
		{GuestID: "a", Outcome: domain.OutcomeGuest}, // duplicate from a race
	}}

	s := Tally(g)
	if s.Plays != 4 || s.Guests != 3 {
		t.Fatalf("plays/guests = %d/%d; want 4/3", s.Plays, s.Guests)
	}
	if s.HostWins != 0 || s.GuestWins != 2 || s.Draws != 1 {
		t.Fatalf("tally = %+v", s)
	}
}

func TestFormatGameDate(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 3, 7, 9, 5, 0, 0, time.UTC), "Mar. 7, 09:05"},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), "Dec. 31, 23:59"},
		{time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "May. 1, 00:00"},
	}
	for _, tc := range cases {
		if got := FormatGameDate(tc.in); got != tc.want {
			t.Fatalf("FormatGameDate(%s) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"rps_link/internal/domain"
)

var t0 = time.Date(2025, 3, 7, 9, 5, 0, 0, time.UTC)

func mustGame(t *testing.T, move domain.Move, comment string, mode domain.GameMode) *domain.Game {
	t.Helper()
	g, err := NewGame("g1", "host", move, comment, mode, t0)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func TestNewGame(t *testing.T) {
	g := mustGame(t, domain.MoveRock, "  pizza?  ", "")

	if g.HostMove != domain.MoveRock {
		t.Fatalf("host move = %s; want ROCK", g.HostMove)
	}
	if g.Comment != "pizza?" {
		t.Fatalf("comment = %q; want trimmed %q", g.Comment, "pizza?")
	}
	if g.Archived {
		t.Fatalf("new game must not be archived")
	}
	if g.Mode != domain.GameModeFeed {
		t.Fatalf("default mode = %s; want feed", g.Mode)
	}
	if len(g.Plays) != 0 {
		t.Fatalf("new game has %d plays", len(g.Plays))
	}
	if !g.CreatedAt.Equal(t0) {
		t.Fatalf("created_at = %s; want %s", g.CreatedAt, t0)
	}
}

func TestNewGameValidation(t *testing.T) {
	cases := []struct {
		name    string
		host    string
		move    domain.Move
		comment string
		mode    domain.GameMode
		want    error
	}{
		{"missing move", "host", "", "", "", ErrInvalidMove},
		{"bad move", "host", "LIZARD", "", "", ErrInvalidMove},
		{"missing host", "", domain.MoveRock, "", "", ErrMissingHost},
		{"bad mode", "host", domain.MoveRock, "", "tournament", ErrInvalidMode},
		{"comment 101", "host", domain.MoveRock, strings.Repeat("a", 101), "", ErrCommentTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGame("g1", tc.host, tc.move, tc.comment, tc.mode, t0)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v; want %v", err, tc.want)
			}
		})
	}
}

func TestNormalizeCommentBoundary(t *testing.T) {
	exact := strings.Repeat("x", domain.MaxCommentLength)
	if got, err := NormalizeComment(exact); err != nil || got != exact {
		t.Fatalf("100 chars rejected: %v", err)
	}
	if _, err := NormalizeComment(exact + "x"); !errors.Is(err, ErrCommentTooLong) {
		t.Fatalf("101 chars err = %v; want ErrCommentTooLong", err)
	}
	// runes, not bytes
	emoji := strings.Repeat("✊", domain.MaxCommentLength)
	if _, err := NormalizeComment(emoji); err != nil {
		t.Fatalf("100 multi-byte runes rejected: %v", err)
	}
	// surrounding whitespace does not count
	if _, err := NormalizeComment("   " + exact + "   "); err != nil {
		t.Fatalf("padded 100 chars rejected: %v", err)
	}
}

func TestSubmitMoveHostWins(t *testing.T) {
	g := mustGame(t, domain.MoveRock, "pizza?", domain.GameModeFeed)

	p, err := SubmitMove(g, "guestA", domain.MoveScissors, "p1", t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if p.Outcome != domain.OutcomeHost {
		t.Fatalf("outcome = %s; want HOST", p.Outcome)
	}
	if p.HostMove != domain.MoveRock {
		t.Fatalf("host move snapshot = %s; want ROCK", p.HostMove)
	}
	if Classify(g, "guestA") != StatusCompleted {
		t.Fatalf("guestA status = %s; want COMPLETED", Classify(g, "guestA"))
	}
}

func TestSubmitMoveDraw(t *testing.T) {
	g := mustGame(t, domain.MovePaper, "", domain.GameModeSingle)
	p, err := SubmitMove(g, "guestA", domain.MovePaper, "p1", t0)
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if p.Outcome != domain.OutcomeDraw {
		t.Fatalf("outcome = %s; want DRAW", p.Outcome)
	}
}

func TestSubmitMoveFeedKeepsPlaysIndependent(t *testing.T) {
	g := mustGame(t, domain.MoveScissors, "", domain.GameModeFeed)

	pa, err := SubmitMove(g, "guestA", domain.MoveRock, "p1", t0)
	if err != nil {
		t.Fatalf("guestA: %v", err)
	}
	pb, err := SubmitMove(g, "guestB", domain.MovePaper, "p2", t0.Add(time.Second))
	if err != nil {
		t.Fatalf("guestB: %v", err)
	}

	if pa.Outcome != domain.OutcomeGuest {
		t.Fatalf("guestA outcome = %s; want GUEST", pa.Outcome)
	}
	if pb.Outcome != domain.OutcomeHost {
		t.Fatalf("guestB outcome = %s; want HOST", pb.Outcome)
	}
	if len(g.Plays) != 2 {
		t.Fatalf("plays = %d; want 2", len(g.Plays))
	}
	if got := Classify(g, "host"); got != StatusActive {
		t.Fatalf("host status = %s; want ACTIVE", got)
	}
}

func TestSubmitMoveIsIdempotentPerGuest(t *testing.T) {
	g := mustGame(t, domain.MoveRock, "", domain.GameModeFeed)
	first, err := SubmitMove(g, "guestA", domain.MovePaper, "p1", t0)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	for _, m := range domain.Moves {
		existing, err := SubmitMove(g, "guestA", m, "p-again", t0.Add(time.Hour))
		if !errors.Is(err, ErrAlreadyPlayed) {
			t.Fatalf("resubmit %s err = %v; want ErrAlreadyPlayed", m, err)
		}
		if existing == nil || existing.ID != first.ID || existing.Outcome != first.Outcome {
			t.Fatalf("resubmit %s returned %+v; want original play", m, existing)
		}
	}
	if len(g.Plays) != 1 {
		t.Fatalf("plays = %d; want 1", len(g.Plays))
	}
}

func TestSubmitMoveSingleModeAcceptsOneGuest(t *testing.T) {
	g := mustGame(t, domain.MoveRock, "", domain.GameModeSingle)
	if _, err := SubmitMove(g, "guestA", domain.MovePaper, "p1", t0); err != nil {
		t.Fatalf("guestA: %v", err)
	}

	existing, err := SubmitMove(g, "guestB", domain.MoveScissors, "p2", t0)
	if !errors.Is(err, ErrGameResolved) {
		t.Fatalf("guestB err = %v; want ErrGameResolved", err)
	}
	if existing == nil || existing.GuestID != "guestA" {
		t.Fatalf("expected guestA's play back, got %+v", existing)
	}
	if got := Classify(g, "host"); got != StatusCompleted {
		t.Fatalf("host status = %s; want COMPLETED", got)
	}
}

func TestSubmitMoveGuards(t *testing.T) {
	g := mustGame(t, domain.MoveRock, "", domain.GameModeFeed)

	if _, err := SubmitMove(g, "host", domain.MovePaper, "p1", t0); !errors.Is(err, ErrHostCannotPlay) {
		t.Fatalf("host play err = %v; want ErrHostCannotPlay", err)
	}
	if _, err := SubmitMove(g, "", domain.MovePaper, "p1", t0); !errors.Is(err, ErrMissingGuest) {
		t.Fatalf("anonymous play err = %v; want ErrMissingGuest", err)
	}
	if _, err := SubmitMove(g, "guestA", "LIZARD", "p1", t0); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("bad move err = %v; want ErrInvalidMove", err)
	}
	if len(g.Plays) != 0 {
		t.Fatalf("rejected submissions recorded %d plays", len(g.Plays))
	}
}

func TestArchiveBlocksFurtherPlays(t *testing.T) {
	g := mustGame(t, domain.MoveScissors, "", domain.GameModeFeed)
	if _, err := SubmitMove(g, "guestA", domain.MoveRock, "p1", t0); err != nil {
		t.Fatalf("guestA: %v", err)
	}

	changed, err := Archive(g, "host", t0.Add(time.Hour))
	if err != nil || !changed {
		t.Fatalf("Archive = %v, %v; want true, nil", changed, err)
	}

	if _, err := SubmitMove(g, "guestC", domain.MoveRock, "p2", t0); !errors.Is(err, ErrGameArchived) {
		t.Fatalf("guestC err = %v; want ErrGameArchived", err)
	}
	if len(g.Plays) != 1 {
		t.Fatalf("plays = %d; want 1", len(g.Plays))
	}
	if g.Plays[0].Outcome != domain.OutcomeGuest {
		t.Fatalf("archive changed recorded outcome to %s", g.Plays[0].Outcome)
	}

	// guestA still sees their own result
	if p, err := SubmitMove(g, "guestA", domain.MovePaper, "p3", t0); !errors.Is(err, ErrAlreadyPlayed) || p == nil {
		t.Fatalf("guestA resubmit = %+v, %v; want existing play + ErrAlreadyPlayed", p, err)
	}
}

func TestArchiveIsMonotonicAndHostOnly(t *testing.T) {
	g := mustGame(t, domain.MoveRock, "", domain.GameModeFeed)

	if _, err := Archive(g, "guestA", t0); !errors.Is(err, ErrNotHost) {
		t.Fatalf("guest archive err = %v; want ErrNotHost", err)
	}
	if g.Archived {
		t.Fatalf("guest was able to archive")
	}

	if _, err := Archive(g, "host", t0); err != nil {
		t.Fatalf("host archive: %v", err)
	}
	first := *g.ArchivedAt

	changed, err := Archive(g, "host", t0.Add(time.Hour))
	if err != nil || changed {
		t.Fatalf("second archive = %v, %v; want false, nil", changed, err)
	}
	if !g.Archived || !g.ArchivedAt.Equal(first) {
		t.Fatalf("second archive modified state")
	}
}

func TestLatestPlayByToleratesDuplicates(t *testing.T) {
	g := mustGame(t, domain.MoveRock, "", domain.GameModeFeed)
	g.Plays = append(g.Plays,
		domain.Play{ID: "a1", GuestID: "guestA", Outcome: domain.OutcomeHost},
		domain.Play{ID: "b1", GuestID: "guestB", Outcome: domain.OutcomeDraw},
		domain.Play{ID: "a2", GuestID: "guestA", Outcome: domain.OutcomeGuest},
	)

	p, ok := LatestPlayBy(g, "guestA")
	if !ok || p.ID != "a2" {
		t.Fatalf("LatestPlayBy = %+v, %v; want a2", p, ok)
	}
	if _, ok := LatestPlayBy(g, "guestC"); ok {
		t.Fatalf("guestC should have no play")
	}
	if HasPlayed(g, "") {
		t.Fatalf("empty guest id matched a play")
	}
}

func TestFactory(t *testing.T) {
	n := 0
	f := &Factory{
		NewID: func() string { n++; return "id-" + string(rune('0'+n)) },
		Now:   func() time.Time { return t0 },
	}

	g, err := f.CreateGame("host", domain.MovePaper, "", domain.GameModeFeed)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if g.ID != "id-1" {
		t.Fatalf("game id = %s; want id-1", g.ID)
	}
	p, err := f.Play(g, "guest", domain.MoveRock)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if p.ID != "id-2" || p.GameID != "id-1" {
		t.Fatalf("play ids = %s/%s; want id-2/id-1", p.ID, p.GameID)
	}
	if changed, err := f.Archive(g, "host"); err != nil || !changed {
		t.Fatalf("Archive = %v, %v", changed, err)
	}
}

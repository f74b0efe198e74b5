package game

import (
	"strings"

	"rps_link/internal/domain"
)

// beats maps each move to the move it defeats.
var beats = map[domain.Move]domain.Move{
	domain.MoveRock:     domain.MoveScissors,
	domain.MoveScissors: domain.MovePaper,
	domain.MovePaper:    domain.MoveRock,
}

// ParseMove accepts "rock", " Paper ", "SCISSORS" and so on. Anything
// outside the three moves is ErrInvalidMove.
func ParseMove(s string) (domain.Move, error) {
	m := domain.Move(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", ErrInvalidMove
	}
	return m, nil
}

// DetermineWinner compares the host's move against a guest's move.
func DetermineWinner(host, guest domain.Move) (domain.Outcome, error) {
	if !host.Valid() || !guest.Valid() {
		return "", ErrInvalidMove
	}
	if host == guest {
		return domain.OutcomeDraw, nil
	}
	if beats[host] == guest {
		return domain.OutcomeHost, nil
	}
	return domain.OutcomeGuest, nil
}

// Invert swaps the winning side. DRAW stays DRAW.
func Invert(o domain.Outcome) domain.Outcome {
	switch o {
	case domain.OutcomeHost:
		return domain.OutcomeGuest
	case domain.OutcomeGuest:
		return domain.OutcomeHost
	}
	return o
}

// Result is an outcome seen from one side of the table.
type Result string

const (
	ResultWon  Result = "won"
	ResultLost Result = "lost"
	ResultDraw Result = "draw"
)

// ResultFor translates an outcome into a result for the given role.
func ResultFor(o domain.Outcome, role Role) Result {
	if !o.Valid() {
		return ""
	}
	if o == domain.OutcomeDraw {
		return ResultDraw
	}
	if (o == domain.OutcomeHost) == (role == RoleHost) {
		return ResultWon
	}
	return ResultLost
}

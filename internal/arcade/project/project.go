// Package project derives UI-ready view models from game sessions. The
// projector is pure: it never mutates the session and never talks to
// the ledger, so callers can re-project on every state change.
package project

import (
	"fmt"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/rules"
)

// StatusKind classifies the headline status of a session.
type StatusKind int

const (
	// StatusWaiting means the game has no second player yet.
	StatusWaiting StatusKind = iota
	// StatusTurn means the game is active and someone is to move.
	StatusTurn
	// StatusDraw means the game ended with no winner.
	StatusDraw
	// StatusWon means the game ended with a winner.
	StatusWon
)

// ViewModel is everything a renderer needs to draw one session.
type ViewModel struct {
	GameID    uint64
	Kind      domain.Kind
	Board     []domain.Cell
	LocalSeat domain.Seat
	IsMyTurn  bool

	// Selectable holds the targets the local player may currently
	// dispatch: empty unless it is their turn and no action is pending.
	Selectable []int

	// Selected is the locally highlighted target, nil when none.
	Selected *int

	// Pending reports an in-flight action awaiting confirmation.
	Pending bool

	Status     StatusKind
	StatusLine string

	// Opponent is the other player's address, shortened for display.
	// Empty for spectators and for games still waiting on a joiner.
	Opponent string

	TurnOwner domain.Seat
	Winner    domain.Seat
	StakeTier uint8
}

// Project builds the view model for a session as seen by the given
// wallet address. Spectators get a view with SeatNone and nothing
// selectable.
func Project(session domain.GameSession, localAddress string) ViewModel {
	seat := session.SeatOf(localAddress)
	vm := ViewModel{
		GameID:    session.ID,
		Kind:      session.Kind,
		Board:     append([]domain.Cell(nil), session.Board...),
		LocalSeat: seat,
		Selected:  session.Selected,
		Pending:   session.Pending != nil,
		Opponent:  domain.ShortAddress(session.Opponent(localAddress)),
		TurnOwner: session.TurnOwner,
		Winner:    session.Winner,
		StakeTier: session.StakeTier,
	}

	vm.IsMyTurn = session.Phase == domain.PhaseActive &&
		seat != domain.SeatNone &&
		seat == session.TurnOwner

	if vm.IsMyTurn && session.Pending == nil {
		if ruleset, err := rules.For(session.Kind); err == nil {
			vm.Selectable = ruleset.LegalTargets(session.Board)
		}
	}

	vm.Status, vm.StatusLine = status(session, vm.IsMyTurn)
	return vm
}

// status derives the cabinet headline from phase and outcome.
func status(session domain.GameSession, myTurn bool) (StatusKind, string) {
	switch session.Phase {
	case domain.PhaseAwaitingOpponent:
		return StatusWaiting, "WAITING FOR PLAYER O TO JOIN..."
	case domain.PhaseFinished:
		if session.Outcome == domain.OutcomeDraw {
			return StatusDraw, "GAME ENDED IN A DRAW!"
		}
		return StatusWon, fmt.Sprintf("GAME WON BY %s!", seatSymbol(session.Winner))
	default:
		line := fmt.Sprintf("CURRENT TURN: %s", seatSymbol(session.TurnOwner))
		if myTurn {
			line += " (YOUR TURN!)"
		}
		return StatusTurn, line
	}
}

func seatSymbol(seat domain.Seat) string {
	if seat == domain.SeatB {
		return "O"
	}
	return "X"
}

// Package rules holds the pure, per-game rule modules: board shape,
// move legality, turn ownership, and advisory terminal detection.
//
// The legality and turn computations here mirror the ledger contract
// exactly, but they are advisory only. They exist so the client can
// reject doomed submissions before paying for them and style "your
// turn" ahead of confirmation; the ledger remains authoritative and a
// disagreeing notification always wins.
package rules

import (
	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/platform/errors"
)

// Rules is the fixed capability set every game variant supplies.
// All functions are pure; no rule module performs I/O.
type Rules interface {
	// Kind identifies the variant.
	Kind() domain.Kind
	// BoardSize returns the total cell count.
	BoardSize() int
	// TargetCell maps a requested position or column to the concrete
	// board index a move would occupy. Occupied cells and full columns
	// fail with an IllegalPosition error.
	TargetCell(board []domain.Cell, requested int) (int, error)
	// LegalTargets returns the set of requestable positions or columns.
	LegalTargets(board []domain.Cell) []int
	// TurnOwner computes which seat moves next purely from move-count
	// parity: even count means seat A, odd means seat B.
	TurnOwner(moveCount uint32) domain.Seat
	// Terminal inspects the board around the last placed cell and
	// reports a display-only outcome. lastCell < 0 means unknown, in
	// which case only a draw by full board can be detected.
	Terminal(board []domain.Cell, lastCell int) (domain.Outcome, domain.Seat)
}

// For returns the rule module for a game kind.
func For(kind domain.Kind) (Rules, error) {
	switch kind {
	case domain.KindTicTacToe:
		return gridRules{}, nil
	case domain.KindConnectFour:
		return gravityRules{}, nil
	default:
		return nil, errors.New(errors.CodeUnknown, "unknown game kind")
	}
}

// turnOwner is the parity rule shared by both variants. It must stay
// identical to the contract's own computation.
func turnOwner(moveCount uint32) domain.Seat {
	if moveCount%2 == 0 {
		return domain.SeatA
	}
	return domain.SeatB
}

// lineThrough reports whether the mark at index idx of a rows x cols
// board sits on a straight line of at least winLen equal marks. The
// four directions cover horizontals, verticals, and both diagonals.
func lineThrough(board []domain.Cell, rows, cols, idx, winLen int) bool {
	mark := board[idx]
	if mark == domain.CellEmpty {
		return false
	}
	row, col := idx/cols, idx%cols

	dirs := [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		count := 1

		r, c := row+d[0], col+d[1]
		for r >= 0 && r < rows && c >= 0 && c < cols && board[r*cols+c] == mark {
			count++
			r += d[0]
			c += d[1]
		}

		r, c = row-d[0], col-d[1]
		for r >= 0 && r < rows && c >= 0 && c < cols && board[r*cols+c] == mark {
			count++
			r -= d[0]
			c -= d[1]
		}

		if count >= winLen {
			return true
		}
	}
	return false
}

// boardFull reports whether no empty cell remains.
func boardFull(board []domain.Cell) bool {
	for _, cell := range board {
		if cell == domain.CellEmpty {
			return false
		}
	}
	return true
}

// seatForMark maps a board mark back to the seat that plays it.
func seatForMark(mark domain.Cell) domain.Seat {
	switch mark {
	case domain.CellA:
		return domain.SeatA
	case domain.CellB:
		return domain.SeatB
	default:
		return domain.SeatNone
	}
}

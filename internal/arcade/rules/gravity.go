package rules

import (
	"fmt"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/platform/errors"
)

const (
	gravityRows   = 6
	gravityCols   = 7
	gravityWinLen = 4
)

// gravityRules is the 7x6 connect-four variant. Moves address columns;
// a piece settles on the lowest empty row of the chosen column. The
// board is row-major with row 0 on top, so a column is full exactly
// when its top cell is occupied.
type gravityRules struct{}

func (gravityRules) Kind() domain.Kind { return domain.KindConnectFour }

func (gravityRules) BoardSize() int { return gravityRows * gravityCols }

func (gravityRules) TargetCell(board []domain.Cell, requested int) (int, error) {
	if requested < 0 || requested >= gravityCols {
		return 0, errors.WithMetadata(errors.CodeIllegalPosition,
			"column out of range",
			map[string]string{"column": fmt.Sprint(requested)})
	}
	for row := gravityRows - 1; row >= 0; row-- {
		idx := row*gravityCols + requested
		if board[idx] == domain.CellEmpty {
			return idx, nil
		}
	}
	return 0, errors.WithMetadata(errors.CodeIllegalPosition,
		"column is full",
		map[string]string{"column": fmt.Sprint(requested)})
}

func (gravityRules) LegalTargets(board []domain.Cell) []int {
	targets := make([]int, 0, gravityCols)
	for col := 0; col < gravityCols; col++ {
		if board[col] == domain.CellEmpty {
			targets = append(targets, col)
		}
	}
	return targets
}

func (gravityRules) TurnOwner(moveCount uint32) domain.Seat {
	return turnOwner(moveCount)
}

func (gravityRules) Terminal(board []domain.Cell, lastCell int) (domain.Outcome, domain.Seat) {
	if lastCell >= 0 && lastCell < len(board) &&
		lineThrough(board, gravityRows, gravityCols, lastCell, gravityWinLen) {
		return domain.OutcomeWon, seatForMark(board[lastCell])
	}
	if boardFull(board) {
		return domain.OutcomeDraw, domain.SeatNone
	}
	return domain.OutcomeNone, domain.SeatNone
}

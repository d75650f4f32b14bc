package rules

import (
	"fmt"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/platform/errors"
)

const (
	gridRows   = 3
	gridCols   = 3
	gridWinLen = 3
)

// gridRules is the 3x3 tic-tac-toe variant. Moves address cells
// directly by board index.
type gridRules struct{}

func (gridRules) Kind() domain.Kind { return domain.KindTicTacToe }

func (gridRules) BoardSize() int { return gridRows * gridCols }

func (gridRules) TargetCell(board []domain.Cell, requested int) (int, error) {
	if requested < 0 || requested >= gridRows*gridCols {
		return 0, errors.WithMetadata(errors.CodeIllegalPosition,
			"position out of range",
			map[string]string{"position": fmt.Sprint(requested)})
	}
	if board[requested] != domain.CellEmpty {
		return 0, errors.WithMetadata(errors.CodeIllegalPosition,
			"cell already occupied",
			map[string]string{"position": fmt.Sprint(requested)})
	}
	return requested, nil
}

func (gridRules) LegalTargets(board []domain.Cell) []int {
	targets := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == domain.CellEmpty {
			targets = append(targets, i)
		}
	}
	return targets
}

func (gridRules) TurnOwner(moveCount uint32) domain.Seat {
	return turnOwner(moveCount)
}

func (gridRules) Terminal(board []domain.Cell, lastCell int) (domain.Outcome, domain.Seat) {
	if lastCell >= 0 && lastCell < len(board) &&
		lineThrough(board, gridRows, gridCols, lastCell, gridWinLen) {
		return domain.OutcomeWon, seatForMark(board[lastCell])
	}
	if boardFull(board) {
		return domain.OutcomeDraw, domain.SeatNone
	}
	return domain.OutcomeNone, domain.SeatNone
}

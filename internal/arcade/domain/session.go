package domain

import (
	"strings"
	"time"
)

// Kind selects which rule module governs a session. Fixed at creation.
type Kind uint8

const (
	// KindUnspecified represents an invalid kind value.
	KindUnspecified Kind = 0
	// KindTicTacToe is the 3x3 grid game.
	KindTicTacToe Kind = 1
	// KindConnectFour is the 7x6 gravity-drop game.
	KindConnectFour Kind = 2
)

// Cell is the state of a single board position. Values mirror the
// ledger's board encoding.
type Cell uint8

const (
	CellEmpty Cell = 0
	CellA     Cell = 1
	CellB     Cell = 2
)

// Seat is one of the two playing positions in a session.
type Seat uint8

const (
	// SeatNone means no seat: a spectator, or an undecided winner slot.
	SeatNone Seat = 0
	// SeatA is the creator's seat (mark X on the ledger).
	SeatA Seat = 1
	// SeatB is the joiner's seat (mark O on the ledger).
	SeatB Seat = 2
)

// Mark returns the board cell value the seat plays.
func (s Seat) Mark() Cell {
	switch s {
	case SeatA:
		return CellA
	case SeatB:
		return CellB
	default:
		return CellEmpty
	}
}

// Phase is the session lifecycle stage. Values mirror the ledger's
// status encoding and only ever advance.
type Phase uint8

const (
	PhaseAwaitingOpponent Phase = 0
	PhaseActive           Phase = 1
	PhaseFinished         Phase = 2
)

// Outcome is the terminal result of a session. Defined only once the
// phase is Finished.
type Outcome uint8

const (
	OutcomeNone Outcome = 0
	OutcomeDraw Outcome = 1
	OutcomeWon  Outcome = 2
)

// ActionKind identifies a locally initiated ledger action.
type ActionKind uint8

const (
	ActionUnspecified ActionKind = iota
	ActionCreate
	ActionJoin
	ActionMove
	ActionWithdraw
)

// String returns the wire name of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionJoin:
		return "join"
	case ActionMove:
		return "move"
	case ActionWithdraw:
		return "withdraw"
	default:
		return "unspecified"
	}
}

// PendingAction describes the single in-flight local action allowed per
// session. Its presence blocks re-entrant dispatch until the external
// transaction resolves.
type PendingAction struct {
	ID          string
	Kind        ActionKind
	Target      int
	StakeTier   uint8
	SubmittedAt time.Time
}

// GameSession is the local view of one tracked game. Board, phase,
// outcome, and move count are derived exclusively from ledger
// notifications and queries, never from local speculation.
type GameSession struct {
	ID        uint64
	Kind      Kind
	Board     []Cell
	SeatA     string
	SeatB     string
	TurnOwner Seat
	MoveCount uint32
	Phase     Phase
	Outcome   Outcome
	Winner    Seat
	StakeTier uint8

	// Pending is the at-most-one outstanding local action.
	Pending *PendingAction

	// Selected is the not-yet-submitted cell or column choice. Ephemeral
	// display state, distinct from Pending, free to change or clear.
	Selected *int
}

// Snapshot is a point-in-time authoritative read of full game state
// from the ledger, as returned by the query collaborator.
type Snapshot struct {
	SeatA     string
	SeatB     string
	TurnOwner Seat
	MoveCount uint32
	Phase     Phase
	Outcome   Outcome
	Winner    Seat
	StakeTier uint8
	Board     []Cell
}

// SeatOf returns the seat bound to the given wallet address, or
// SeatNone for a spectator. Addresses compare case-insensitively.
func (g *GameSession) SeatOf(address string) Seat {
	if address == "" {
		return SeatNone
	}
	if EqualAddress(address, g.SeatA) {
		return SeatA
	}
	if g.SeatB != "" && EqualAddress(address, g.SeatB) {
		return SeatB
	}
	return SeatNone
}

// Opponent returns the other player's address relative to the given
// identity, or empty when no opponent is seated.
func (g *GameSession) Opponent(address string) string {
	switch g.SeatOf(address) {
	case SeatA:
		return g.SeatB
	case SeatB:
		return g.SeatA
	default:
		return ""
	}
}

// Clone returns a deep copy safe to hand to callers.
func (g *GameSession) Clone() GameSession {
	out := *g
	out.Board = append([]Cell(nil), g.Board...)
	if g.Pending != nil {
		pending := *g.Pending
		out.Pending = &pending
	}
	if g.Selected != nil {
		selected := *g.Selected
		out.Selected = &selected
	}
	return out
}

// EqualAddress compares two wallet addresses case-insensitively.
func EqualAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// ShortAddress abbreviates a wallet address for display, keeping the
// leading and trailing runs intact.
func ShortAddress(address string) string {
	if len(address) <= 14 {
		return address
	}
	return address[:8] + "..." + address[len(address)-6:]
}

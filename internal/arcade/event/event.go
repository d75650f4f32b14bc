// Package event defines the ledger notification types and the bounded,
// deduplicated event log shown in the activity feed.
package event

import (
	"fmt"
	"time"

	"github.com/gridstake/arcade/internal/arcade/domain"
)

// Kind identifies the type of a ledger notification.
type Kind string

const (
	// KindGameCreated records a new game opened with a stake.
	KindGameCreated Kind = "game.created"
	// KindGameJoined records an opponent taking seat B.
	KindGameJoined Kind = "game.joined"
	// KindMoveMade records a confirmed move.
	KindMoveMade Kind = "move.made"
	// KindGameWon records a terminal win and prize payout.
	KindGameWon Kind = "game.won"
	// KindGameDraw records a terminal draw and stake refund.
	KindGameDraw Kind = "game.draw"
	// KindActionConfirmed is a synthetic local entry appended when an
	// in-flight action of ours confirms. It never arrives from the feed.
	KindActionConfirmed Kind = "action.confirmed"
)

// IsValid reports whether the notification kind is one the engine knows.
func (k Kind) IsValid() bool {
	switch k {
	case KindGameCreated, KindGameJoined, KindMoveMade, KindGameWon, KindGameDraw, KindActionConfirmed:
		return true
	}
	return false
}

// Notification is a single asynchronous message from the ledger
// describing a state change. Delivery is at-least-once and unordered;
// consumers must deduplicate and must not assume arrival order matches
// move order.
type Notification struct {
	Kind   Kind
	GameID uint64

	// GameCreated fields.
	Creator     string
	StakeTier   uint8
	StakeAmount uint64

	// GameJoined fields.
	Joiner string

	// MoveMade fields.
	Mover      string
	TargetCell int
	Mark       domain.Cell

	// GameWon fields.
	Winner string
	Prize  uint64

	// GameDraw fields.
	Refund uint64

	// ActionConfirmed fields. Action names what confirmed ("create",
	// "join", "move", "withdraw"); lobby-scoped confirmations carry no
	// meaningful GameID, so the action name is the discriminator.
	Action string

	// BlockSeq orders the notification on the ledger.
	BlockSeq uint64
	// SourceTx is the transaction that emitted the notification.
	SourceTx string
	// ObservedAt is when this client first saw the notification.
	ObservedAt time.Time
}

// DedupKey identifies a notification across redundant deliveries. Two
// deliveries of the same on-chain event produce the same key.
func (n Notification) DedupKey() string {
	return fmt.Sprintf("%s|%d|%s|%d|%d", n.Kind, n.GameID, n.SourceTx, n.TargetCell, n.Mark)
}

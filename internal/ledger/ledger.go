// Package ledger declares the boundary contracts the engine requires of
// its external collaborators: authoritative queries, transaction
// submission, the notification feed, and the wallet identity. The
// engine never looks past these interfaces; rules enforcement, payouts,
// and escrow all live behind them.
package ledger

import (
	"context"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/event"
)

// Querier reads authoritative snapshots from the ledger. Every result
// is the truth at call time; the engine uses them exclusively for
// remote-wins upserts.
type Querier interface {
	// GameInfo returns the game's metadata snapshot. The Board field is
	// not populated; fetch it with Board.
	GameInfo(ctx context.Context, gameID uint64) (domain.Snapshot, error)
	// Board returns the ordered cell sequence.
	Board(ctx context.Context, gameID uint64) ([]domain.Cell, error)
	// StakeOption returns the stake amount for a tier, in the ledger's
	// smallest unit.
	StakeOption(ctx context.Context, tier uint8) (uint64, error)
	// NextGameID returns the ledger's next unassigned game id; all
	// existing games have smaller ids.
	NextGameID(ctx context.Context) (uint64, error)
	// Balance returns the withdrawable balance accrued by an address.
	Balance(ctx context.Context, address string) (uint64, error)
}

// Action describes a requested ledger state change.
type Action struct {
	Kind      domain.ActionKind
	GameKind  domain.Kind
	GameID    uint64
	Target    int
	StakeTier uint8
}

// Receipt reports a confirmed transaction. GameID is populated for
// create actions, where the contract assigns the id.
type Receipt struct {
	TxID   string
	GameID uint64
}

// Submitter hands validated actions to the wallet and transaction
// machinery. Submit blocks until the transaction confirms or is
// rejected; a rejection error carries the collaborator's
// human-readable cause.
type Submitter interface {
	Submit(ctx context.Context, action Action, payment uint64) (Receipt, error)
}

// Identity exposes the connected wallet address.
type Identity interface {
	Address() string
}

// Feed delivers ledger notifications. Delivery is at-least-once with no
// ordering guarantee; the channel closes when the feed shuts down.
type Feed interface {
	Notifications() <-chan event.Notification
	Close() error
}

// StaticIdentity is an Identity fixed at construction.
type StaticIdentity string

// Address implements Identity.
func (s StaticIdentity) Address() string { return string(s) }

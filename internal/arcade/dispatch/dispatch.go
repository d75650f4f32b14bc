// Package dispatch validates locally requested actions against the
// session store and rule modules before anything reaches the
// transaction collaborator, and enforces the one-outstanding-action
// discipline per session.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/event"
	"github.com/gridstake/arcade/internal/arcade/reconcile"
	"github.com/gridstake/arcade/internal/arcade/rules"
	"github.com/gridstake/arcade/internal/arcade/store"
	"github.com/gridstake/arcade/internal/arcade/telemetry"
	"github.com/gridstake/arcade/internal/ledger"
	"github.com/gridstake/arcade/internal/platform/errors"
)

// Result is the terminal outcome of a dispatched action.
type Result struct {
	Receipt ledger.Receipt
	Err     error
}

// Handle lets the caller await an in-flight action. The action keeps
// running even if the caller stops waiting; submitted transactions
// cannot be cancelled.
type Handle struct {
	ActionID string
	done     <-chan Result
}

// Await blocks until the action resolves or the context ends.
func (h *Handle) Await(ctx context.Context) (ledger.Receipt, error) {
	select {
	case <-ctx.Done():
		return ledger.Receipt{}, ctx.Err()
	case result := <-h.done:
		return result.Receipt, result.Err
	}
}

// Dispatcher validates and submits local actions for one connection.
type Dispatcher struct {
	kind       domain.Kind
	sessions   *store.Store
	reconciler *reconcile.Reconciler
	querier    ledger.Querier
	submitter  ledger.Submitter
	identity   ledger.Identity
	emitter    *telemetry.Emitter
	tracer     trace.Tracer

	clock func() time.Time
	newID func() string
}

// New creates a dispatcher bound to one game kind.
func New(kind domain.Kind, sessions *store.Store, reconciler *reconcile.Reconciler,
	querier ledger.Querier, submitter ledger.Submitter, identity ledger.Identity,
	emitter *telemetry.Emitter) *Dispatcher {
	return &Dispatcher{
		kind:       kind,
		sessions:   sessions,
		reconciler: reconciler,
		querier:    querier,
		submitter:  submitter,
		identity:   identity,
		emitter:    emitter,
		tracer:     otel.Tracer("arcade/dispatch"),
		clock:      time.Now,
		newID:      uuid.NewString,
	}
}

// ProposeMove validates a move against the current session and its rule
// module, and submits it if every check passes. Validation failures are
// synchronous and never reach the transaction collaborator.
func (d *Dispatcher) ProposeMove(ctx context.Context, gameID uint64, requested int) (*Handle, error) {
	ctx, span := d.tracer.Start(ctx, "dispatch.propose_move",
		trace.WithAttributes(attribute.Int64("game.id", int64(gameID))))
	defer span.End()

	session, ok := d.sessions.Get(gameID)
	if !ok {
		return nil, errors.WithMetadata(errors.CodeNotFound,
			"unknown game id",
			map[string]string{"game_id": fmt.Sprint(gameID)})
	}
	if session.Phase != domain.PhaseActive {
		return nil, errors.WithMetadata(errors.CodeInvalidPhase,
			"moves are only legal in an active game",
			map[string]string{"game_id": fmt.Sprint(gameID)})
	}
	if session.SeatOf(d.identity.Address()) != session.TurnOwner {
		return nil, errors.New(errors.CodeNotYourTurn, "it is not your turn")
	}
	// An outstanding action trumps everything about the move itself:
	// until it resolves, no second dispatch is considered at all.
	// MarkPending below remains the atomic guard against races.
	if session.Pending != nil {
		return nil, errors.WithMetadata(errors.CodeConflict,
			"an action is already awaiting confirmation",
			map[string]string{"game_id": fmt.Sprint(gameID), "pending": session.Pending.Kind.String()})
	}

	ruleset, err := rules.For(session.Kind)
	if err != nil {
		return nil, err
	}
	if _, err := ruleset.TargetCell(session.Board, requested); err != nil {
		return nil, err
	}

	pending := domain.PendingAction{
		ID:          d.newID(),
		Kind:        domain.ActionMove,
		Target:      requested,
		SubmittedAt: d.clock(),
	}
	if err := d.sessions.MarkPending(gameID, pending); err != nil {
		return nil, err
	}

	action := ledger.Action{Kind: domain.ActionMove, GameKind: session.Kind, GameID: gameID, Target: requested}
	return d.submitSessionScoped(ctx, pending.ID, gameID, action, 0), nil
}

// ProposeCreate opens a new game at the given stake tier. The stake
// payment is read from the ledger at submission time. Scoped to the
// lobby: one unconfirmed create or withdraw at a time.
func (d *Dispatcher) ProposeCreate(ctx context.Context, stakeTier uint8) (*Handle, error) {
	ctx, span := d.tracer.Start(ctx, "dispatch.propose_create",
		trace.WithAttributes(attribute.Int("stake.tier", int(stakeTier))))
	defer span.End()

	pending := domain.PendingAction{
		ID:          d.newID(),
		Kind:        domain.ActionCreate,
		StakeTier:   stakeTier,
		SubmittedAt: d.clock(),
	}
	if err := d.sessions.MarkLobbyPending(pending); err != nil {
		return nil, err
	}

	payment, err := d.querier.StakeOption(ctx, stakeTier)
	if err != nil {
		d.sessions.ClearLobbyPending()
		return nil, fmt.Errorf("query stake option: %w", err)
	}

	action := ledger.Action{Kind: domain.ActionCreate, GameKind: d.kind, StakeTier: stakeTier}
	done := make(chan Result, 1)
	go func() {
		bg := context.WithoutCancel(ctx)
		receipt, err := d.submitter.Submit(bg, action, payment)
		d.sessions.ClearLobbyPending()
		if err != nil {
			done <- Result{Err: d.rejected(bg, action, err)}
			return
		}
		// The contract assigned the game id; track the new session
		// immediately so the caller can view it without an explicit load.
		if _, err := d.reconciler.Load(bg, receipt.GameID, d.kind); err != nil {
			done <- Result{Receipt: receipt, Err: err}
			return
		}
		d.confirm(receipt, receipt.GameID, domain.ActionCreate)
		done <- Result{Receipt: receipt}
	}()
	return &Handle{ActionID: pending.ID, done: done}, nil
}

// ProposeJoin takes seat B of an open game. The expected stake tier is
// the one the open-games listing displayed; if the ledger now reports a
// different tier the join fails with StakeMismatch instead of paying a
// stake the user never saw.
func (d *Dispatcher) ProposeJoin(ctx context.Context, gameID uint64, expectedTier uint8) (*Handle, error) {
	ctx, span := d.tracer.Start(ctx, "dispatch.propose_join",
		trace.WithAttributes(attribute.Int64("game.id", int64(gameID))))
	defer span.End()

	session, err := d.reconciler.Load(ctx, gameID, d.kind)
	if err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, "game not found on ledger", err)
	}
	if session.Phase != domain.PhaseAwaitingOpponent {
		return nil, errors.WithMetadata(errors.CodeInvalidPhase,
			"game is not awaiting an opponent",
			map[string]string{"game_id": fmt.Sprint(gameID)})
	}
	if session.StakeTier != expectedTier {
		return nil, errors.WithMetadata(errors.CodeStakeMismatch,
			"stake tier changed since the listing was displayed",
			map[string]string{
				"expected": fmt.Sprint(expectedTier),
				"current":  fmt.Sprint(session.StakeTier),
			})
	}

	pending := domain.PendingAction{
		ID:          d.newID(),
		Kind:        domain.ActionJoin,
		StakeTier:   session.StakeTier,
		SubmittedAt: d.clock(),
	}
	if err := d.sessions.MarkPending(gameID, pending); err != nil {
		return nil, err
	}

	payment, err := d.querier.StakeOption(ctx, session.StakeTier)
	if err != nil {
		d.sessions.ClearPending(gameID)
		return nil, fmt.Errorf("query stake option: %w", err)
	}

	action := ledger.Action{Kind: domain.ActionJoin, GameKind: d.kind, GameID: gameID, StakeTier: session.StakeTier}
	return d.submitSessionScoped(ctx, pending.ID, gameID, action, payment), nil
}

// ProposeWithdraw claims the wallet's accrued balance. Lobby-scoped.
func (d *Dispatcher) ProposeWithdraw(ctx context.Context) (*Handle, error) {
	ctx, span := d.tracer.Start(ctx, "dispatch.propose_withdraw")
	defer span.End()

	pending := domain.PendingAction{
		ID:          d.newID(),
		Kind:        domain.ActionWithdraw,
		SubmittedAt: d.clock(),
	}
	if err := d.sessions.MarkLobbyPending(pending); err != nil {
		return nil, err
	}

	action := ledger.Action{Kind: domain.ActionWithdraw, GameKind: d.kind}
	done := make(chan Result, 1)
	go func() {
		bg := context.WithoutCancel(ctx)
		receipt, err := d.submitter.Submit(bg, action, 0)
		d.sessions.ClearLobbyPending()
		if err != nil {
			done <- Result{Err: d.rejected(bg, action, err)}
			return
		}
		d.confirm(receipt, 0, domain.ActionWithdraw)
		done <- Result{Receipt: receipt}
	}()
	return &Handle{ActionID: pending.ID, done: done}, nil
}

// submitSessionScoped runs the shared post-validation path for actions
// bound to a tracked session: submit, then on confirmation clear the
// pending mark, force a query-driven refresh (the optimistic path is
// never trusted alone), record the confirmation, and drop any stale
// selection. On rejection only the pending mark is cleared; the board
// is untouched and no retry is attempted.
func (d *Dispatcher) submitSessionScoped(ctx context.Context, actionID string, gameID uint64, action ledger.Action, payment uint64) *Handle {
	done := make(chan Result, 1)
	go func() {
		bg := context.WithoutCancel(ctx)
		receipt, err := d.submitter.Submit(bg, action, payment)
		d.sessions.ClearPending(gameID)
		if err != nil {
			done <- Result{Err: d.rejected(bg, action, err)}
			return
		}
		if _, err := d.reconciler.Refresh(bg, gameID); err != nil {
			done <- Result{Receipt: receipt, Err: err}
			return
		}
		d.confirm(receipt, gameID, action.Kind)
		d.sessions.ClearSelection(gameID)
		done <- Result{Receipt: receipt}
	}()
	return &Handle{ActionID: actionID, done: done}
}

// confirm appends the synthetic local log entry for a confirmed action.
// The action name distinguishes lobby-scoped confirmations, whose game
// id is not meaningful, from session-scoped ones.
func (d *Dispatcher) confirm(receipt ledger.Receipt, gameID uint64, kind domain.ActionKind) {
	d.reconciler.RecordLocal(event.Notification{
		Kind:       event.KindActionConfirmed,
		GameID:     gameID,
		Action:     kind.String(),
		SourceTx:   receipt.TxID,
		ObservedAt: d.clock(),
	})
}

// rejected wraps a collaborator failure verbatim and records a
// diagnostic. The user must explicitly re-propose; nothing retries.
func (d *Dispatcher) rejected(ctx context.Context, action ledger.Action, cause error) error {
	_ = d.emitter.Emit(ctx, telemetry.Event{
		Severity:  telemetry.SeverityError,
		Component: "dispatch",
		Message:   "transaction rejected",
		Attrs: map[string]string{
			"action":  action.Kind.String(),
			"game_id": fmt.Sprint(action.GameID),
		},
	})
	return errors.Wrap(errors.CodeExternalRejected, cause.Error(), cause)
}

// Package reconcile merges asynchronous ledger notifications and
// authoritative query snapshots into the session store, keeping the
// local view consistent without ever contradicting the ledger.
package reconcile

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/event"
	"github.com/gridstake/arcade/internal/arcade/store"
	"github.com/gridstake/arcade/internal/arcade/telemetry"
	"github.com/gridstake/arcade/internal/ledger"
	"github.com/gridstake/arcade/internal/platform/errors"
)

// Reconciler applies inbound notifications to the event log and session
// store, and performs query-driven refreshes. It is the only writer of
// board state.
type Reconciler struct {
	store   *store.Store
	log     *event.Log
	querier ledger.Querier
	emitter *telemetry.Emitter
	tracer  trace.Tracer
}

// New creates a reconciler. The emitter may be nil to disable
// diagnostics.
func New(sessions *store.Store, log *event.Log, querier ledger.Querier, emitter *telemetry.Emitter) *Reconciler {
	return &Reconciler{
		store:   sessions,
		log:     log,
		querier: querier,
		emitter: emitter,
		tracer:  otel.Tracer("arcade/reconcile"),
	}
}

// Apply ingests one notification: records it in the event log
// (idempotently) and folds it into the session store. Duplicate,
// stale, and untracked-game deliveries are absorbed silently apart
// from a diagnostic event; the feed must never see them as failures.
func (r *Reconciler) Apply(ctx context.Context, n event.Notification) error {
	ctx, span := r.tracer.Start(ctx, "reconcile.apply",
		trace.WithAttributes(
			attribute.String("notification.kind", string(n.Kind)),
			attribute.Int64("game.id", int64(n.GameID)),
		))
	defer span.End()

	if !n.Kind.IsValid() {
		r.diagnose(ctx, telemetry.SeverityWarn, "unknown notification kind", n)
		return nil
	}

	if !r.log.Record(n) {
		// Redundant delivery of an already-seen on-chain event.
		r.diagnose(ctx, telemetry.SeverityInfo, "duplicate notification ignored", n)
		return nil
	}

	if _, err := r.store.ApplyNotification(n); err != nil {
		switch {
		case stderrors.Is(err, errors.New(errors.CodeStaleNotification, "")):
			r.diagnose(ctx, telemetry.SeverityWarn, "stale notification discarded", n)
			return nil
		case stderrors.Is(err, errors.New(errors.CodeNotFound, "")):
			// Notifications cover every game on the contract; games we
			// are not tracking are not ours to mirror.
			return nil
		default:
			return err
		}
	}
	return nil
}

// Drain consumes the notification channel until the context ends or
// the channel closes. Run it on a single goroutine; it is the engine's
// one inbound event loop.
func (r *Reconciler) Drain(ctx context.Context, notifications <-chan event.Notification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if err := r.Apply(ctx, n); err != nil {
				return err
			}
		}
	}
}

// Load fetches the authoritative snapshot and board for a game and
// upserts the session, creating it on first load. A query failure
// leaves any prior session state untouched.
func (r *Reconciler) Load(ctx context.Context, gameID uint64, kind domain.Kind) (domain.GameSession, error) {
	ctx, span := r.tracer.Start(ctx, "reconcile.load",
		trace.WithAttributes(attribute.Int64("game.id", int64(gameID))))
	defer span.End()

	snap, err := r.querier.GameInfo(ctx, gameID)
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("query game info: %w", err)
	}
	board, err := r.querier.Board(ctx, gameID)
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("query board: %w", err)
	}
	snap.Board = board

	return r.store.UpsertFromQuery(gameID, kind, snap)
}

// Refresh re-queries an already-tracked session.
func (r *Reconciler) Refresh(ctx context.Context, gameID uint64) (domain.GameSession, error) {
	session, ok := r.store.Get(gameID)
	if !ok {
		return domain.GameSession{}, errors.WithMetadata(errors.CodeNotFound,
			"cannot refresh untracked game",
			map[string]string{"game_id": fmt.Sprint(gameID)})
	}
	return r.Load(ctx, gameID, session.Kind)
}

// RecordLocal appends a synthetic, locally originated entry (such as an
// action confirmation) to the event log.
func (r *Reconciler) RecordLocal(n event.Notification) {
	r.log.Record(n)
}

func (r *Reconciler) diagnose(ctx context.Context, severity telemetry.Severity, message string, n event.Notification) {
	_ = r.emitter.Emit(ctx, telemetry.Event{
		Severity:  severity,
		Component: "reconcile",
		Message:   message,
		Attrs: map[string]string{
			"kind":      string(n.Kind),
			"game_id":   fmt.Sprint(n.GameID),
			"source_tx": n.SourceTx,
		},
	})
}

package arcade

import (
	"context"
	"time"

	"github.com/gridstake/arcade/internal/arcade/dispatch"
	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/event"
	"github.com/gridstake/arcade/internal/arcade/listing"
	"github.com/gridstake/arcade/internal/arcade/project"
	"github.com/gridstake/arcade/internal/arcade/reconcile"
	"github.com/gridstake/arcade/internal/arcade/store"
	"github.com/gridstake/arcade/internal/arcade/telemetry"
	"github.com/gridstake/arcade/internal/ledger"
)

// Client is one connection's engine: session store, event log,
// reconciler, and dispatcher, wired to a ledger. Every Client is
// independent; nothing is shared between connections and nothing lives
// at package scope.
type Client struct {
	kind       domain.Kind
	sessions   *store.Store
	log        *event.Log
	reconciler *reconcile.Reconciler
	dispatcher *dispatch.Dispatcher
	querier    ledger.Querier
	feed       ledger.Feed
	identity   ledger.Identity

	refreshEvery time.Duration
}

// NewClient wires a connection-scoped engine. The feed may be nil when
// the caller only wants query-driven state (the drain loop then idles).
func NewClient(kind domain.Kind, querier ledger.Querier, submitter ledger.Submitter,
	feed ledger.Feed, identity ledger.Identity, emitter *telemetry.Emitter,
	refreshEvery time.Duration) *Client {
	sessions := store.New()
	log := event.NewLog(event.DefaultCapacity)
	reconciler := reconcile.New(sessions, log, querier, emitter)
	dispatcher := dispatch.New(kind, sessions, reconciler, querier, submitter, identity, emitter)
	return &Client{
		kind:         kind,
		sessions:     sessions,
		log:          log,
		reconciler:   reconciler,
		dispatcher:   dispatcher,
		querier:      querier,
		feed:         feed,
		identity:     identity,
		refreshEvery: refreshEvery,
	}
}

// Run drains the notification feed and refreshes tracked sessions on a
// ticker until the context ends. Notifications reconcile immediately;
// the ticker is the safety net for anything the feed dropped.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		if c.feed == nil {
			<-ctx.Done()
			done <- nil
			return
		}
		done <- c.reconciler.Drain(ctx, c.feed.Notifications())
	}()

	ticker := time.NewTicker(c.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-done
			return ctx.Err()
		case err := <-done:
			return err
		case <-ticker.C:
			c.refreshTracked(ctx)
		}
	}
}

func (c *Client) refreshTracked(ctx context.Context) {
	for _, gameID := range c.sessions.Tracked() {
		// Best effort; a failed refresh leaves the session as-is and
		// the next tick tries again.
		_, _ = c.reconciler.Refresh(ctx, gameID)
	}
}

// Close releases the feed. The store and log need no teardown.
func (c *Client) Close() error {
	if c.feed == nil {
		return nil
	}
	return c.feed.Close()
}

// LoadGame starts tracking a game from its authoritative snapshot.
func (c *Client) LoadGame(ctx context.Context, gameID uint64) (domain.GameSession, error) {
	return c.reconciler.Load(ctx, gameID, c.kind)
}

// View projects a tracked session for the local wallet. The second
// return is false when the game is untracked.
func (c *Client) View(gameID uint64) (project.ViewModel, bool) {
	session, ok := c.sessions.Get(gameID)
	if !ok {
		return project.ViewModel{}, false
	}
	return project.Project(session, c.identity.Address()), true
}

// Events returns the retained activity feed entries, most recent first.
func (c *Client) Events() []event.Entry {
	return c.log.Entries()
}

// OpenGames rebuilds the joinable-games listing from the ledger.
func (c *Client) OpenGames(ctx context.Context) ([]listing.OpenGame, error) {
	return listing.Rebuild(ctx, c.querier)
}

// Balance reads the local wallet's withdrawable balance.
func (c *Client) Balance(ctx context.Context) (uint64, error) {
	return c.querier.Balance(ctx, c.identity.Address())
}

// Select highlights a target on a tracked session. Selection is
// ephemeral and free; it never touches the ledger.
func (c *Client) Select(gameID uint64, target int) error {
	return c.sessions.Select(gameID, target)
}

// ClearSelection drops any highlighted target.
func (c *Client) ClearSelection(gameID uint64) {
	c.sessions.ClearSelection(gameID)
}

// Leave stops tracking a session, discarding its pending and selection
// state. Ledger-side the game continues without us.
func (c *Client) Leave(gameID uint64) {
	c.sessions.Evict(gameID)
}

// CreateGame proposes a new game at the given stake tier.
func (c *Client) CreateGame(ctx context.Context, stakeTier uint8) (*dispatch.Handle, error) {
	return c.dispatcher.ProposeCreate(ctx, stakeTier)
}

// JoinGame proposes taking seat B of an open game at the listed tier.
func (c *Client) JoinGame(ctx context.Context, gameID uint64, expectedTier uint8) (*dispatch.Handle, error) {
	return c.dispatcher.ProposeJoin(ctx, gameID, expectedTier)
}

// MakeMove proposes a move on a tracked session.
func (c *Client) MakeMove(ctx context.Context, gameID uint64, target int) (*dispatch.Handle, error) {
	return c.dispatcher.ProposeMove(ctx, gameID, target)
}

// Withdraw proposes claiming the wallet's accrued balance.
func (c *Client) Withdraw(ctx context.Context) (*dispatch.Handle, error) {
	return c.dispatcher.ProposeWithdraw(ctx)
}

// Package store holds the authoritative local cache of tracked game
// sessions. Ledger data always wins over local speculation: the only
// locally originated state it carries is the pending-action guard and
// the ephemeral board selection.
package store

import (
	"fmt"
	"sync"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/event"
	"github.com/gridstake/arcade/internal/arcade/rules"
	"github.com/gridstake/arcade/internal/platform/errors"
)

// Store caches per-game-id session state. All methods are safe for
// concurrent use; every mutation is atomic under one lock so state is
// never observable mid-transition. Sessions are fully independent per
// game id.
type Store struct {
	mu       sync.RWMutex
	sessions map[uint64]*domain.GameSession

	// lobbyPending guards create and withdraw submissions, which have
	// no game id to hang a session on yet.
	lobbyPending *domain.PendingAction
}

// New creates an empty session store.
func New() *Store {
	return &Store{sessions: make(map[uint64]*domain.GameSession)}
}

// Get returns a copy of the tracked session, if any.
func (s *Store) Get(gameID uint64) (domain.GameSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[gameID]
	if !ok {
		return domain.GameSession{}, false
	}
	return session.Clone(), true
}

// Tracked returns the ids of all tracked sessions.
func (s *Store) Tracked() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint64, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// UpsertFromQuery overwrites the session with a freshly fetched
// authoritative snapshot, creating the session on first load. This is
// the conflict-resolution backstop: whenever local and remote views may
// have diverged, remote wins unconditionally. Pending and selection
// state survive the overwrite; they are cleared through their own
// operations.
func (s *Store) UpsertFromQuery(gameID uint64, kind domain.Kind, snap domain.Snapshot) (domain.GameSession, error) {
	ruleset, err := rules.For(kind)
	if err != nil {
		return domain.GameSession{}, err
	}
	// A board that does not fit the rule module would send every later
	// legality check out of bounds. Reject the snapshot wholesale; the
	// prior session state stays intact and a later refresh can retry.
	if len(snap.Board) != ruleset.BoardSize() {
		return domain.GameSession{}, errors.WithMetadata(errors.CodeUnknown,
			"snapshot board does not match the game kind",
			map[string]string{
				"game_id": fmt.Sprint(gameID),
				"cells":   fmt.Sprint(len(snap.Board)),
				"want":    fmt.Sprint(ruleset.BoardSize()),
			})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[gameID]
	if !ok {
		session = &domain.GameSession{ID: gameID, Kind: kind}
		s.sessions[gameID] = session
	} else if session.Kind != kind {
		return domain.GameSession{}, errors.WithMetadata(errors.CodeUnknown,
			"session kind cannot change",
			map[string]string{"game_id": fmt.Sprint(gameID)})
	}

	session.Board = append([]domain.Cell(nil), snap.Board...)
	session.SeatA = snap.SeatA
	session.SeatB = snap.SeatB
	session.TurnOwner = snap.TurnOwner
	session.MoveCount = snap.MoveCount
	session.Phase = snap.Phase
	session.Outcome = snap.Outcome
	session.Winner = snap.Winner
	session.StakeTier = snap.StakeTier

	return session.Clone(), nil
}

// ApplyNotification incrementally updates a tracked session from one
// streamed event. Updates that would violate move-count monotonicity or
// the one-directional phase lifecycle are discarded with a
// StaleNotification error; out-of-order and replayed deliveries are
// expected, and the query backstop repairs any gap they leave.
func (s *Store) ApplyNotification(n event.Notification) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[n.GameID]
	if !ok {
		return domain.GameSession{}, errors.WithMetadata(errors.CodeNotFound,
			"notification for untracked game",
			map[string]string{"game_id": fmt.Sprint(n.GameID)})
	}

	ruleset, err := rules.For(session.Kind)
	if err != nil {
		return domain.GameSession{}, err
	}

	switch n.Kind {
	case event.KindGameCreated:
		// Tracked sessions already carry creation state from the query
		// that loaded them; a creation notification is a replay.
		return session.Clone(), stale(n, "creation already recorded")

	case event.KindGameJoined:
		if session.Phase != domain.PhaseAwaitingOpponent {
			return session.Clone(), stale(n, "join for a session past the waiting phase")
		}
		session.SeatB = n.Joiner
		session.Phase = domain.PhaseActive
		session.TurnOwner = ruleset.TurnOwner(session.MoveCount)

	case event.KindMoveMade:
		if session.Phase != domain.PhaseActive {
			return session.Clone(), stale(n, "move outside the active phase")
		}
		if n.TargetCell < 0 || n.TargetCell >= len(session.Board) {
			return session.Clone(), stale(n, "move target out of range")
		}
		if session.Board[n.TargetCell] != domain.CellEmpty {
			return session.Clone(), stale(n, "move target already occupied")
		}
		// The mark of move N is fixed by parity; a mismatch means this
		// delivery skipped ahead of an undelivered earlier move.
		if n.Mark != ruleset.TurnOwner(session.MoveCount).Mark() {
			return session.Clone(), stale(n, "move arrived out of order")
		}
		session.Board[n.TargetCell] = n.Mark
		session.MoveCount++
		session.TurnOwner = ruleset.TurnOwner(session.MoveCount)

	case event.KindGameWon:
		if session.Outcome != domain.OutcomeNone {
			return session.Clone(), stale(n, "outcome already recorded")
		}
		session.Phase = domain.PhaseFinished
		session.Outcome = domain.OutcomeWon
		session.Winner = session.SeatOf(n.Winner)

	case event.KindGameDraw:
		if session.Outcome != domain.OutcomeNone {
			return session.Clone(), stale(n, "outcome already recorded")
		}
		session.Phase = domain.PhaseFinished
		session.Outcome = domain.OutcomeDraw
		session.Winner = domain.SeatNone

	default:
		return session.Clone(), stale(n, "unknown notification kind")
	}

	return session.Clone(), nil
}

// MarkPending records the single allowed in-flight action for a
// session. A second mark before the first clears fails with Conflict.
func (s *Store) MarkPending(gameID uint64, action domain.PendingAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[gameID]
	if !ok {
		return errors.WithMetadata(errors.CodeNotFound,
			"cannot mark pending on untracked game",
			map[string]string{"game_id": fmt.Sprint(gameID)})
	}
	if session.Pending != nil {
		return errors.WithMetadata(errors.CodeConflict,
			"an action is already awaiting confirmation",
			map[string]string{"game_id": fmt.Sprint(gameID), "pending": session.Pending.Kind.String()})
	}
	session.Pending = &action
	return nil
}

// ClearPending removes the in-flight marker. Idempotent; safe to call
// when nothing is pending.
func (s *Store) ClearPending(gameID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[gameID]; ok {
		session.Pending = nil
	}
}

// MarkLobbyPending guards actions with no session scope yet: create and
// withdraw.
func (s *Store) MarkLobbyPending(action domain.PendingAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lobbyPending != nil {
		return errors.WithMetadata(errors.CodeConflict,
			"an action is already awaiting confirmation",
			map[string]string{"pending": s.lobbyPending.Kind.String()})
	}
	s.lobbyPending = &action
	return nil
}

// ClearLobbyPending removes the lobby-scoped in-flight marker. Idempotent.
func (s *Store) ClearLobbyPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbyPending = nil
}

// LobbyPending returns a copy of the lobby-scoped in-flight action.
func (s *Store) LobbyPending() (domain.PendingAction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lobbyPending == nil {
		return domain.PendingAction{}, false
	}
	return *s.lobbyPending, true
}

// Select records the not-yet-submitted cell or column choice. Free and
// synchronous; changing or clearing it touches nothing else.
func (s *Store) Select(gameID uint64, target int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[gameID]
	if !ok {
		return errors.WithMetadata(errors.CodeNotFound,
			"cannot select on untracked game",
			map[string]string{"game_id": fmt.Sprint(gameID)})
	}
	session.Selected = &target
	return nil
}

// ClearSelection removes the selection. Idempotent.
func (s *Store) ClearSelection(gameID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[gameID]; ok {
		session.Selected = nil
	}
}

// Evict forgets a session entirely, along with its pending and
// selection state. Only explicit navigation away evicts; there is no
// automatic garbage collection.
func (s *Store) Evict(gameID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, gameID)
}

func stale(n event.Notification, reason string) error {
	return errors.WithMetadata(errors.CodeStaleNotification, reason, map[string]string{
		"game_id":   fmt.Sprint(n.GameID),
		"kind":      string(n.Kind),
		"source_tx": n.SourceTx,
	})
}

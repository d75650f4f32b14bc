// Package zmqledger implements the ledger boundary over the gateway's
// ZeroMQ protocol: a REQ socket for queries and submission, and a SUB
// socket for the notification feed. Payloads are msgpack envelopes.
package zmqledger

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/event"
	"github.com/gridstake/arcade/internal/ledger"
)

// Feed topics published by the gateway. Topic names match the
// notification kinds one to one.
const (
	topicGameCreated = "game.created"
	topicGameJoined  = "game.joined"
	topicMoveMade    = "move.made"
	topicGameWon     = "game.won"
	topicGameDraw    = "game.draw"
)

// feedTopics lists every subscription the feed socket sets.
var feedTopics = []string{
	topicGameCreated,
	topicGameJoined,
	topicMoveMade,
	topicGameWon,
	topicGameDraw,
}

// eventEnvelope is the msgpack payload published on every feed topic.
// Fields irrelevant to a topic are zero.
type eventEnvelope struct {
	GameID      uint64 `msgpack:"game_id"`
	Creator     string `msgpack:"creator,omitempty"`
	StakeTier   uint8  `msgpack:"stake_tier,omitempty"`
	StakeAmount uint64 `msgpack:"stake_amount,omitempty"`
	Joiner      string `msgpack:"joiner,omitempty"`
	Mover       string `msgpack:"mover,omitempty"`
	TargetCell  int    `msgpack:"target_cell,omitempty"`
	Mark        uint8  `msgpack:"mark,omitempty"`
	Winner      string `msgpack:"winner,omitempty"`
	Prize       uint64 `msgpack:"prize,omitempty"`
	Refund      uint64 `msgpack:"refund,omitempty"`
	BlockSeq    uint64 `msgpack:"block_seq"`
	SourceTx    string `msgpack:"source_tx"`
}

// decodeNotification maps one SUB frame pair onto a notification.
func decodeNotification(topic string, payload []byte, observedAt time.Time) (event.Notification, error) {
	kind := event.Kind(topic)
	if !kind.IsValid() || kind == event.KindActionConfirmed {
		return event.Notification{}, fmt.Errorf("unknown feed topic %q", topic)
	}

	var env eventEnvelope
	if err := msgpack.Unmarshal(payload, &env); err != nil {
		return event.Notification{}, fmt.Errorf("decode %s payload: %w", topic, err)
	}

	return event.Notification{
		Kind:        kind,
		GameID:      env.GameID,
		Creator:     env.Creator,
		StakeTier:   env.StakeTier,
		StakeAmount: env.StakeAmount,
		Joiner:      env.Joiner,
		Mover:       env.Mover,
		TargetCell:  env.TargetCell,
		Mark:        domain.Cell(env.Mark),
		Winner:      env.Winner,
		Prize:       env.Prize,
		Refund:      env.Refund,
		BlockSeq:    env.BlockSeq,
		SourceTx:    env.SourceTx,
		ObservedAt:  observedAt,
	}, nil
}

// Gateway request methods.
const (
	methodGameInfo    = "game_info"
	methodBoard       = "board"
	methodStakeOption = "stake_option"
	methodNextGameID  = "next_game_id"
	methodBalance     = "balance"
	methodSubmit      = "submit"
)

// request is the msgpack envelope sent on the REQ socket.
type request struct {
	RequestID string `msgpack:"request_id"`
	Method    string `msgpack:"method"`

	GameID  uint64 `msgpack:"game_id,omitempty"`
	Tier    uint8  `msgpack:"tier,omitempty"`
	Address string `msgpack:"address,omitempty"`

	// Submission fields.
	Action    string `msgpack:"action,omitempty"`
	GameKind  uint8  `msgpack:"game_kind,omitempty"`
	Target    int    `msgpack:"target,omitempty"`
	StakeTier uint8  `msgpack:"stake_tier,omitempty"`
	Payment   uint64 `msgpack:"payment,omitempty"`
}

// response is the gateway's reply envelope. OK=false carries a
// human-readable error; the remaining fields depend on the method.
type response struct {
	OK    bool   `msgpack:"ok"`
	Error string `msgpack:"error,omitempty"`

	// game_info fields, mirroring the contract's view call.
	PlayerX   string `msgpack:"player_x,omitempty"`
	PlayerO   string `msgpack:"player_o,omitempty"`
	Turn      uint8  `msgpack:"turn,omitempty"`
	MoveCount uint32 `msgpack:"move_count,omitempty"`
	Winner    uint8  `msgpack:"winner,omitempty"`
	StakeTier uint8  `msgpack:"stake_tier,omitempty"`
	Status    uint8  `msgpack:"status,omitempty"`

	Board  []uint8 `msgpack:"board,omitempty"`
	Amount uint64  `msgpack:"amount,omitempty"`

	TxID   string `msgpack:"tx_id,omitempty"`
	GameID uint64 `msgpack:"game_id,omitempty"`
}

// snapshotFromResponse maps the gateway's game_info reply onto the
// domain snapshot. The contract encodes status 0/1/2 for waiting,
// active, and finished, the mover as mark 1 (X) or 2 (O), and a zero
// winner mark on a draw.
func snapshotFromResponse(rep response) (domain.Snapshot, error) {
	snap := domain.Snapshot{
		SeatA:     rep.PlayerX,
		SeatB:     rep.PlayerO,
		MoveCount: rep.MoveCount,
		StakeTier: rep.StakeTier,
	}

	switch rep.Status {
	case 0:
		snap.Phase = domain.PhaseAwaitingOpponent
	case 1:
		snap.Phase = domain.PhaseActive
	case 2:
		snap.Phase = domain.PhaseFinished
	default:
		return domain.Snapshot{}, fmt.Errorf("unknown game status %d", rep.Status)
	}

	switch rep.Turn {
	case 0:
		snap.TurnOwner = domain.SeatNone
	case 1:
		snap.TurnOwner = domain.SeatA
	case 2:
		snap.TurnOwner = domain.SeatB
	default:
		return domain.Snapshot{}, fmt.Errorf("unknown turn mark %d", rep.Turn)
	}

	if snap.Phase == domain.PhaseFinished {
		switch rep.Winner {
		case 0:
			snap.Outcome = domain.OutcomeDraw
		case 1:
			snap.Outcome = domain.OutcomeWon
			snap.Winner = domain.SeatA
		case 2:
			snap.Outcome = domain.OutcomeWon
			snap.Winner = domain.SeatB
		default:
			return domain.Snapshot{}, fmt.Errorf("unknown winner mark %d", rep.Winner)
		}
	}

	return snap, nil
}

// boardFromResponse converts the wire board into cells, rejecting any
// mark outside {empty, X, O}.
func boardFromResponse(raw []uint8) ([]domain.Cell, error) {
	board := make([]domain.Cell, len(raw))
	for i, mark := range raw {
		if mark > uint8(domain.CellB) {
			return nil, fmt.Errorf("cell %d holds unknown mark %d", i, mark)
		}
		board[i] = domain.Cell(mark)
	}
	return board, nil
}

// submitRequest builds the submission envelope for an action.
func submitRequest(requestID string, action ledger.Action, payment uint64) request {
	return request{
		RequestID: requestID,
		Method:    methodSubmit,
		GameID:    action.GameID,
		Action:    action.Kind.String(),
		GameKind:  uint8(action.GameKind),
		Target:    action.Target,
		StakeTier: action.StakeTier,
		Payment:   payment,
	}
}

package zmqledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	zmq "github.com/pebbe/zmq4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/ledger"
	"github.com/gridstake/arcade/internal/platform/timeouts"
)

// Client talks to the gateway over a REQ socket. It implements both
// ledger.Querier and ledger.Submitter. Each round trip opens a fresh
// socket; REQ sockets are lockstep and a timed-out socket cannot be
// reused.
type Client struct {
	addr         string
	queryTimeout time.Duration
	newID        func() string
}

// NewClient creates a gateway client for the given endpoint, such as
// "tcp://gateway:5555".
func NewClient(addr string) *Client {
	return &Client{
		addr:         addr,
		queryTimeout: timeouts.GatewayQuery,
		newID:        uuid.NewString,
	}
}

// GameInfo implements ledger.Querier.
func (c *Client) GameInfo(ctx context.Context, gameID uint64) (domain.Snapshot, error) {
	rep, err := c.roundTrip(ctx, request{
		RequestID: c.newID(),
		Method:    methodGameInfo,
		GameID:    gameID,
	}, c.queryTimeout)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snapshotFromResponse(rep)
}

// Board implements ledger.Querier.
func (c *Client) Board(ctx context.Context, gameID uint64) ([]domain.Cell, error) {
	rep, err := c.roundTrip(ctx, request{
		RequestID: c.newID(),
		Method:    methodBoard,
		GameID:    gameID,
	}, c.queryTimeout)
	if err != nil {
		return nil, err
	}
	return boardFromResponse(rep.Board)
}

// StakeOption implements ledger.Querier.
func (c *Client) StakeOption(ctx context.Context, tier uint8) (uint64, error) {
	rep, err := c.roundTrip(ctx, request{
		RequestID: c.newID(),
		Method:    methodStakeOption,
		Tier:      tier,
	}, c.queryTimeout)
	if err != nil {
		return 0, err
	}
	return rep.Amount, nil
}

// NextGameID implements ledger.Querier.
func (c *Client) NextGameID(ctx context.Context) (uint64, error) {
	rep, err := c.roundTrip(ctx, request{
		RequestID: c.newID(),
		Method:    methodNextGameID,
	}, c.queryTimeout)
	if err != nil {
		return 0, err
	}
	return rep.GameID, nil
}

// Balance implements ledger.Querier.
func (c *Client) Balance(ctx context.Context, address string) (uint64, error) {
	rep, err := c.roundTrip(ctx, request{
		RequestID: c.newID(),
		Method:    methodBalance,
		Address:   address,
	}, c.queryTimeout)
	if err != nil {
		return 0, err
	}
	return rep.Amount, nil
}

// Submit implements ledger.Submitter. The gateway replies only once the
// transaction confirms or the contract rejects it, so the round trip
// waits without a client-side timeout unless the context sets one.
func (c *Client) Submit(ctx context.Context, action ledger.Action, payment uint64) (ledger.Receipt, error) {
	rep, err := c.roundTrip(ctx, submitRequest(c.newID(), action, payment), 0)
	if err != nil {
		return ledger.Receipt{}, err
	}
	return ledger.Receipt{TxID: rep.TxID, GameID: rep.GameID}, nil
}

// roundTrip performs one REQ/REP exchange. fallback bounds the receive
// when the context has no deadline; zero means wait indefinitely.
func (c *Client) roundTrip(ctx context.Context, req request, fallback time.Duration) (response, error) {
	if err := ctx.Err(); err != nil {
		return response{}, err
	}

	raw, err := msgpack.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("encode %s request: %w", req.Method, err)
	}

	sock, err := zmq.NewSocket(zmq.REQ)
	if err != nil {
		return response{}, fmt.Errorf("open gateway socket: %w", err)
	}
	defer sock.Close()
	if err := sock.SetLinger(0); err != nil {
		return response{}, fmt.Errorf("configure gateway socket: %w", err)
	}
	if err := sock.Connect(c.addr); err != nil {
		return response{}, fmt.Errorf("connect gateway %s: %w", c.addr, err)
	}

	timeout := fallback
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return response{}, context.DeadlineExceeded
		}
	}
	recvTimeout := time.Duration(-1)
	if timeout > 0 {
		recvTimeout = timeout
	}
	if err := sock.SetRcvtimeo(recvTimeout); err != nil {
		return response{}, fmt.Errorf("configure gateway socket: %w", err)
	}

	if _, err := sock.SendBytes(raw, 0); err != nil {
		return response{}, fmt.Errorf("send %s request: %w", req.Method, err)
	}
	msg, err := sock.RecvBytes(0)
	if err != nil {
		return response{}, fmt.Errorf("receive %s reply: %w", req.Method, err)
	}

	var rep response
	if err := msgpack.Unmarshal(msg, &rep); err != nil {
		return response{}, fmt.Errorf("decode %s reply: %w", req.Method, err)
	}
	if !rep.OK {
		return response{}, fmt.Errorf("%s", rep.Error)
	}
	return rep, nil
}

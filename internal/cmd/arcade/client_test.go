package arcade

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/ledger"
)

const testWallet = "0xaaa0000000000000000000000000000000000001"

type fakeQuerier struct {
	mu        sync.Mutex
	snapshots map[uint64]domain.Snapshot
	boards    map[uint64][]domain.Cell
	infoCalls int
}

func (f *fakeQuerier) GameInfo(_ context.Context, gameID uint64) (domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	snap, ok := f.snapshots[gameID]
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("no game %d", gameID)
	}
	return snap, nil
}

func (f *fakeQuerier) Board(_ context.Context, gameID uint64) ([]domain.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	board, ok := f.boards[gameID]
	if !ok {
		return nil, fmt.Errorf("no board %d", gameID)
	}
	return append([]domain.Cell(nil), board...), nil
}

func (f *fakeQuerier) StakeOption(context.Context, uint8) (uint64, error) { return 10, nil }
func (f *fakeQuerier) NextGameID(context.Context) (uint64, error)        { return 0, nil }

func (f *fakeQuerier) Balance(_ context.Context, address string) (uint64, error) {
	if address != testWallet {
		return 0, nil
	}
	return 500, nil
}

func (f *fakeQuerier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infoCalls
}

type fakeSubmitter struct{}

func (fakeSubmitter) Submit(context.Context, ledger.Action, uint64) (ledger.Receipt, error) {
	return ledger.Receipt{TxID: "0xtx"}, nil
}

func newTestClient(refresh time.Duration) (*Client, *fakeQuerier) {
	querier := &fakeQuerier{
		snapshots: map[uint64]domain.Snapshot{
			7: {SeatA: testWallet, SeatB: "0xbbb", Phase: domain.PhaseActive, TurnOwner: domain.SeatA},
		},
		boards: map[uint64][]domain.Cell{7: make([]domain.Cell, 9)},
	}
	client := NewClient(domain.KindTicTacToe, querier, fakeSubmitter{}, nil,
		ledger.StaticIdentity(testWallet), nil, refresh)
	return client, querier
}

func TestClientLoadAndView(t *testing.T) {
	client, _ := newTestClient(time.Minute)

	if _, ok := client.View(7); ok {
		t.Fatal("view succeeded before load")
	}
	if _, err := client.LoadGame(context.Background(), 7); err != nil {
		t.Fatalf("load: %v", err)
	}

	vm, ok := client.View(7)
	if !ok {
		t.Fatal("view failed after load")
	}
	if vm.LocalSeat != domain.SeatA || !vm.IsMyTurn {
		t.Fatalf("view = %+v", vm)
	}
}

func TestClientSelectionLifecycle(t *testing.T) {
	client, _ := newTestClient(time.Minute)
	if _, err := client.LoadGame(context.Background(), 7); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := client.Select(7, 4); err != nil {
		t.Fatalf("select: %v", err)
	}
	vm, _ := client.View(7)
	if vm.Selected == nil || *vm.Selected != 4 {
		t.Fatalf("selected = %v", vm.Selected)
	}

	client.ClearSelection(7)
	vm, _ = client.View(7)
	if vm.Selected != nil {
		t.Fatal("selection not cleared")
	}
}

func TestClientLeaveEvicts(t *testing.T) {
	client, _ := newTestClient(time.Minute)
	if _, err := client.LoadGame(context.Background(), 7); err != nil {
		t.Fatalf("load: %v", err)
	}

	client.Leave(7)
	if _, ok := client.View(7); ok {
		t.Fatal("view succeeded after leave")
	}
}

func TestClientBalance(t *testing.T) {
	client, _ := newTestClient(time.Minute)
	balance, err := client.Balance(context.Background())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 500 {
		t.Fatalf("balance = %d", balance)
	}
}

func TestClientRunRefreshesTrackedSessions(t *testing.T) {
	client, querier := newTestClient(10 * time.Millisecond)
	if _, err := client.LoadGame(context.Background(), 7); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := querier.calls()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := client.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("run returned %v", err)
	}

	if querier.calls() <= before {
		t.Fatal("ticker never refreshed the tracked session")
	}
}

// Package listing rebuilds the joinable-games list from ledger queries.
// The listing is a throwaway read model: every rebuild scans the id
// space from scratch rather than maintaining incremental state.
package listing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/ledger"
)

// OpenGame is one joinable entry: a game still waiting for seat B.
type OpenGame struct {
	GameID      uint64
	Creator     string
	StakeTier   uint8
	StakeAmount uint64
}

// Rebuild scans game ids 0..NextGameID and returns the games awaiting
// an opponent, paired with their stake amounts. Ids whose query fails
// are skipped; the ledger reports nonexistent games as errors and a
// listing rebuild must not abort on them.
func Rebuild(ctx context.Context, querier ledger.Querier) ([]OpenGame, error) {
	ctx, span := otel.Tracer("arcade/listing").Start(ctx, "listing.rebuild")
	defer span.End()

	nextID, err := querier.NextGameID(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("listing.next_game_id", int64(nextID)))

	var open []OpenGame
	stakes := map[uint8]uint64{}
	for id := uint64(0); id < nextID; id++ {
		snap, err := querier.GameInfo(ctx, id)
		if err != nil {
			continue
		}
		if snap.Phase != domain.PhaseAwaitingOpponent {
			continue
		}
		amount, ok := stakes[snap.StakeTier]
		if !ok {
			amount, err = querier.StakeOption(ctx, snap.StakeTier)
			if err != nil {
				continue
			}
			stakes[snap.StakeTier] = amount
		}
		open = append(open, OpenGame{
			GameID:      id,
			Creator:     snap.SeatA,
			StakeTier:   snap.StakeTier,
			StakeAmount: amount,
		})
	}
	span.SetAttributes(attribute.Int("listing.open_games", len(open)))
	return open, nil
}

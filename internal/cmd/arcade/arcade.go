// Package arcade parses arcade command flags and starts the client
// runtime: one connection-scoped engine driving the session store, the
// feed drain loop, and the periodic refresh.
package arcade

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/arcade/telemetry"
	"github.com/gridstake/arcade/internal/ledger"
	"github.com/gridstake/arcade/internal/ledger/zmqledger"
	entrypoint "github.com/gridstake/arcade/internal/platform/cmd"
	"github.com/gridstake/arcade/internal/platform/timeouts"
)

// Config holds arcade command configuration.
type Config struct {
	GatewayAddr   string        `env:"GRIDSTAKE_GATEWAY_ADDR" envDefault:"tcp://127.0.0.1:5555"`
	FeedAddr      string        `env:"GRIDSTAKE_FEED_ADDR" envDefault:"tcp://127.0.0.1:5556"`
	WalletAddress string        `env:"GRIDSTAKE_WALLET_ADDRESS"`
	Game          string        `env:"GRIDSTAKE_GAME" envDefault:"tictactoe"`
	RefreshEvery  time.Duration `env:"GRIDSTAKE_REFRESH_INTERVAL" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GatewayAddr, "gateway", cfg.GatewayAddr, "The gateway REQ endpoint")
	fs.StringVar(&cfg.FeedAddr, "feed", cfg.FeedAddr, "The gateway publish endpoint")
	fs.StringVar(&cfg.WalletAddress, "wallet", cfg.WalletAddress, "The wallet address to play as")
	fs.StringVar(&cfg.Game, "game", cfg.Game, "The game cabinet: tictactoe or connect4")
	fs.DurationVar(&cfg.RefreshEvery, "refresh", cfg.RefreshEvery, "Interval between authoritative refreshes")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.RefreshEvery <= 0 {
		cfg.RefreshEvery = timeouts.Refresh
	}
	return cfg, nil
}

// GameKind resolves the configured cabinet name.
func (c Config) GameKind() (domain.Kind, error) {
	switch c.Game {
	case "tictactoe":
		return domain.KindTicTacToe, nil
	case "connect4":
		return domain.KindConnectFour, nil
	default:
		return 0, fmt.Errorf("unknown game %q", c.Game)
	}
}

// Run starts the arcade client runtime.
func Run(ctx context.Context, cfg Config) error {
	kind, err := cfg.GameKind()
	if err != nil {
		return err
	}
	if cfg.WalletAddress == "" {
		return fmt.Errorf("wallet address is required")
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArcade, func(ctx context.Context) error {
		emitter := telemetry.NewEmitter(telemetry.LogSink{})

		gateway := zmqledger.NewClient(cfg.GatewayAddr)
		feed, err := zmqledger.NewFeed(cfg.FeedAddr, emitter)
		if err != nil {
			return err
		}

		client := NewClient(kind, gateway, gateway, feed,
			ledger.StaticIdentity(cfg.WalletAddress), emitter, cfg.RefreshEvery)
		defer client.Close()

		return client.Run(ctx)
	})
}

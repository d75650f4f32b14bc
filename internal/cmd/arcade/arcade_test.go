package arcade

import (
	"flag"
	"testing"
	"time"

	"github.com/gridstake/arcade/internal/arcade/domain"
	"github.com/gridstake/arcade/internal/platform/timeouts"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("arcade", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.GatewayAddr != "tcp://127.0.0.1:5555" {
		t.Fatalf("gateway addr = %q", cfg.GatewayAddr)
	}
	if cfg.Game != "tictactoe" {
		t.Fatalf("game = %q", cfg.Game)
	}
	if cfg.RefreshEvery != 10*time.Second {
		t.Fatalf("refresh interval = %v", cfg.RefreshEvery)
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("arcade", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-game", "connect4",
		"-wallet", "0xaaa",
		"-refresh", "3s",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Game != "connect4" || cfg.WalletAddress != "0xaaa" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.RefreshEvery != 3*time.Second {
		t.Fatalf("refresh interval = %v", cfg.RefreshEvery)
	}
}

func TestParseConfigRefreshFallback(t *testing.T) {
	fs := flag.NewFlagSet("arcade", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-refresh", "0s"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.RefreshEvery != timeouts.Refresh {
		t.Fatalf("refresh interval = %v, want %v", cfg.RefreshEvery, timeouts.Refresh)
	}
}

func TestConfigGameKind(t *testing.T) {
	kind, err := Config{Game: "tictactoe"}.GameKind()
	if err != nil || kind != domain.KindTicTacToe {
		t.Fatalf("tictactoe = %v %v", kind, err)
	}
	kind, err = Config{Game: "connect4"}.GameKind()
	if err != nil || kind != domain.KindConnectFour {
		t.Fatalf("connect4 = %v %v", kind, err)
	}
	if _, err := (Config{Game: "checkers"}).GameKind(); err == nil {
		t.Fatal("expected error for unknown game")
	}
}

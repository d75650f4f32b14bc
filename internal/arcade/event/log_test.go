package event

import (
	"fmt"
	"testing"
	"time"
)

func moveNotification(gameID uint64, tx string, cell int) Notification {
	return Notification{
		Kind:       KindMoveMade,
		GameID:     gameID,
		Mover:      "0xaaa0000000000000000000000000000000000001",
		TargetCell: cell,
		Mark:       1,
		SourceTx:   tx,
		ObservedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordIsIdempotentPerDedupKey(t *testing.T) {
	log := NewLog(DefaultCapacity)

	n := moveNotification(7, "0xtx1", 4)
	if !log.Record(n) {
		t.Fatal("first record should be accepted")
	}
	if log.Record(n) {
		t.Fatal("second identical record should be a no-op")
	}
	if log.Len() != 1 {
		t.Fatalf("log holds %d entries, want 1", log.Len())
	}
}

func TestRecordDistinguishesPayloads(t *testing.T) {
	log := NewLog(DefaultCapacity)

	if !log.Record(moveNotification(7, "0xtx1", 4)) {
		t.Fatal("first move not recorded")
	}
	if !log.Record(moveNotification(7, "0xtx2", 5)) {
		t.Fatal("distinct move treated as duplicate")
	}
	if log.Len() != 2 {
		t.Fatalf("log holds %d entries, want 2", log.Len())
	}
}

func TestEntriesAreMostRecentFirst(t *testing.T) {
	log := NewLog(DefaultCapacity)
	log.Record(moveNotification(1, "0xtx1", 0))
	log.Record(moveNotification(1, "0xtx2", 1))

	entries := log.Entries()
	if entries[0].SourceTx != "0xtx2" {
		t.Fatalf("newest entry first, got %s", entries[0].SourceTx)
	}
	if entries[1].SourceTx != "0xtx1" {
		t.Fatalf("oldest entry last, got %s", entries[1].SourceTx)
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	log := NewLog(3)
	for i := 0; i < 5; i++ {
		log.Record(moveNotification(1, fmt.Sprintf("0xtx%d", i), i))
	}

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("log holds %d entries, want 3", len(entries))
	}
	if entries[0].SourceTx != "0xtx4" || entries[2].SourceTx != "0xtx2" {
		t.Fatalf("unexpected retention window: %s..%s", entries[0].SourceTx, entries[2].SourceTx)
	}

	// An evicted entry may be recorded again; retention bounds the
	// dedup window.
	if !log.Record(moveNotification(1, "0xtx0", 0)) {
		t.Fatal("evicted entry should be recordable again")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	log := NewLog(DefaultCapacity)
	log.Record(moveNotification(1, "0xtx1", 0))

	entries := log.Entries()
	entries[0].SourceTx = "mutated"

	if log.Entries()[0].SourceTx != "0xtx1" {
		t.Fatal("caller mutation leaked into log")
	}
}

func TestKindIsValid(t *testing.T) {
	if !KindGameWon.IsValid() {
		t.Fatal("game.won should be valid")
	}
	if Kind("bogus").IsValid() {
		t.Fatal("unknown kind should be invalid")
	}
}

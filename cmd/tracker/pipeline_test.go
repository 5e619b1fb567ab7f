package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"hearthy.dev/internal/carddb"
	"hearthy.dev/internal/persistence/capture"
	"hearthy.dev/internal/persistence/indexdb"
	"hearthy.dev/internal/persistence/snapshot"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker"
)

const game = `{"type":"POWER","protocol_version":"1.0","seq":1,"ops":[{"op":"CREATE_GAME","entity":1,"tags":[{"tag":204,"value":2}],"players":[{"entity":2,"player_id":1,"name":"Alice"},{"entity":3,"player_id":2,"name":"Bob"}]}]}
not json
{"type":"POWER","protocol_version":"1.0","seq":2,"ops":[{"op":"FULL_ENTITY","entity":4,"card_id":"CS2_029","tags":[{"tag":49,"value":3},{"tag":50,"value":1}]}]}
{"type":"POWER","protocol_version":"1.0","seq":3,"ops":[{"op":"TAG_CHANGE","entity":99,"tag":49,"value":1}]}
{"type":"POWER","protocol_version":"1.0","seq":4,"ops":[{"op":"TAG_CHANGE","entity":4,"tag":49,"value":1}]}
{"type":"POWER","protocol_version":"1.0","seq":5,"ops":[{"op":"TAG_CHANGE","entity":1,"tag":204,"value":3}]}
`

func TestPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard, "", 0)
	cards := carddb.New(carddb.CardDef{ID: "CS2_029", Name: "Fireball"})

	idx, err := indexdb.OpenSQLite(filepath.Join(dir, "index.db"), cards, logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	dec, err := protocol.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var out bytes.Buffer
	snapDir := filepath.Join(dir, "snapshots")
	tr := tracker.New(tracker.Config{
		Cards:     cards,
		Logger:    logger,
		NewGameID: func() string { return "g1" },
		Sinks: []tracker.Sink{
			persistSink{snapshotDir: snapDir, index: idx, log: logger},
			printSink{out: &out, cards: cards},
		},
	})
	p := &pipeline{dec: dec, tr: tr, capture: capture.NewWriter(filepath.Join(dir, "captures")), log: logger}

	if err := p.run(context.Background(), strings.NewReader(game)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := p.capture.Close(); err != nil {
		t.Fatalf("capture close: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("index close: %v", err)
	}
	if p.accepted != 4 || p.rejected != 2 {
		t.Fatalf("accepted=%d rejected=%d", p.accepted, p.rejected)
	}

	text := out.String()
	for _, want := range []string{
		"+ [2: 'Alice' of Player? in ?]",
		"+ [4: 'Fireball' of Player1 in Hand]",
		"~ [4: 'Fireball' of Player1 in Play]\n\ttag 49:ZONE HAND -> PLAY",
		"game g1 over at seq=5",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	var captured int
	if err := capture.ReadFile(p.capture.PathFor("g1"), func([]byte) error { captured++; return nil }); err != nil {
		t.Fatalf("read capture: %v", err)
	}
	if captured != 4 {
		t.Fatalf("captured %d packets", captured)
	}

	h, err := snapshot.ReadHeader(snapshot.PathFor(snapDir, "g1"))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Digest != tr.World().Digest() || h.Seq != 5 || h.Entities != 4 {
		t.Fatalf("header: %+v", h)
	}

	idx, err = indexdb.OpenSQLite(filepath.Join(dir, "index.db"), cards, logger)
	if err != nil {
		t.Fatalf("reopen index: %v", err)
	}
	defer idx.Close()
	games, err := idx.ListGames(context.Background(), 1)
	if err != nil || len(games) != 1 || games[0].Digest != h.Digest {
		t.Fatalf("games: %+v err=%v", games, err)
	}
}

func TestPipelineStopsOnCancel(t *testing.T) {
	dec, err := protocol.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	p := &pipeline{dec: dec, tr: tracker.New(tracker.Config{}), log: log.New(io.Discard, "", 0)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.run(ctx, strings.NewReader(game)); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.accepted != 0 {
		t.Fatalf("accepted after cancel: %d", p.accepted)
	}
}

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"hearthy.dev/internal/carddb"
	"hearthy.dev/internal/persistence/capture"
	"hearthy.dev/internal/persistence/snapshot"
)

var packets = []string{
	`{"type":"POWER","protocol_version":"1.0","seq":1,"ops":[{"op":"CREATE_GAME","entity":1,"players":[{"entity":2,"player_id":1,"name":"Alice"}]}]}`,
	`{"type":"POWER","protocol_version":"1.0","seq":2,"ops":[{"op":"FULL_ENTITY","entity":4,"card_id":"CS2_029","tags":[{"tag":49,"value":3}]}]}`,
	`{"type":"POWER","protocol_version":"1.0","seq":3,"ops":[{"op":"TAG_CHANGE","entity":1,"tag":204,"value":3}]}`,
}

func writeCapture(t *testing.T, dir string, lines []string) string {
	t.Helper()
	w := capture.NewWriter(dir)
	for _, l := range lines {
		if err := w.Write("g1", []byte(l)); err != nil {
			t.Fatalf("capture write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("capture close: %v", err)
	}
	return w.PathFor("g1")
}

func TestReplayMatchesSnapshot(t *testing.T) {
	dir := t.TempDir()
	cards := carddb.New(carddb.CardDef{ID: "CS2_029", Name: "Fireball"})
	path := writeCapture(t, dir, packets)

	var out bytes.Buffer
	res, err := replay(path, cards, &out)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Packets != 3 || res.Rejected != 0 || !res.Over {
		t.Fatalf("result: %+v", res)
	}
	if !strings.Contains(out.String(), "+ [4: 'Fireball' of Player? in Hand]") {
		t.Fatalf("output: %s", out.String())
	}

	snapPath := snapshot.PathFor(dir, "g1")
	s := res.Summary
	if err := snapshot.WriteSnapshot(snapPath, snapshot.FromEntities("g1", s.Seq, s.Digest, s.Entities)); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	h, err := snapshot.ReadHeader(snapPath)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if err := verify(res, h); err != nil {
		t.Fatalf("verify: %v", err)
	}

	short, err := replay(writeCapture(t, filepath.Join(dir, "short"), packets[:2]), cards, &out)
	if err != nil {
		t.Fatalf("replay short: %v", err)
	}
	if err := verify(short, h); err == nil {
		t.Fatalf("expected mismatch for truncated capture")
	}
}

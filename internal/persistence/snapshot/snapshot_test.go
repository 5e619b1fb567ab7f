package snapshot

import (
	"path/filepath"
	"testing"

	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/tracker/entity"
	"hearthy.dev/internal/tracker/world"
)

func TestSnapshotRoundTrip(t *testing.T) {
	es := []*entity.Entity{
		entity.New(1, tag.P(tag.State, tag.Int(3)), tag.P(tag.CardType, tag.Int(1))),
		entity.New(2, tag.P(tag.CustomName, tag.Text("Alice")), tag.P(tag.PlayerID, tag.Int(1))),
		entity.New(4, tag.P(tag.PowerName, tag.Text("CS2_029")), tag.P(tag.Zone, tag.Int(1)), tag.P(tag.Damage, tag.Int(0))),
	}
	w := world.New()
	w.Load(es)

	path := PathFor(t.TempDir(), "g1")
	snap := FromEntities("g1", 42, w.Digest(), w.Entities())
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.GameID != "g1" || h.Seq != 42 || h.Entities != 3 || h.Version != Version {
		t.Fatalf("header: %+v", h)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	restored := world.New()
	restored.Load(got.ToEntities())
	if restored.Digest() != got.Header.Digest {
		t.Fatalf("digest mismatch after round trip")
	}
	e, _ := restored.Get(4)
	if !e.Contains(tag.Damage) || e.Get(tag.Damage) != tag.Int(0) {
		t.Fatalf("zero value lost: %v", e.Get(tag.Damage))
	}
	if e.Get(tag.PowerName) != tag.Text("CS2_029") {
		t.Fatalf("text value lost: %v", e.Get(tag.PowerName))
	}
}

func TestReadSnapshotMissing(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.snap.zst")); err == nil {
		t.Fatalf("expected error")
	}
}

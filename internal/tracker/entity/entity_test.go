package entity

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"hearthy.dev/internal/hs/tag"
)

var (
	_ Container = (*Entity)(nil)
	_ Container = (*MutableEntity)(nil)
	_ Container = (*View)(nil)
)

type fakeCards map[string]string

func (f fakeCards) CardName(id string) (string, error) {
	if n, ok := f[id]; ok {
		return n, nil
	}
	return "", errors.New("card not found")
}

var probeTags = []tag.Tag{tag.CustomName, tag.PowerName, tag.Zone, tag.Controller, tag.Cost, tag.Atk, tag.Health, tag.Tag(9999)}

func TestFreezeMatchesDirectConstruction(t *testing.T) {
	lists := [][]tag.Pair{
		nil,
		{tag.P(tag.Zone, tag.Int(3))},
		{tag.P(tag.PowerName, tag.Text("CS2_029")), tag.P(tag.Cost, tag.Int(4)), tag.P(tag.Controller, tag.Int(2))},
		{tag.P(tag.Cost, tag.Int(0)), tag.P(tag.Zone, tag.Int(1))},
	}
	for i, pairs := range lists {
		direct := New(i, pairs...)
		frozen := NewMutable(i, pairs...).Freeze()
		if direct.ID() != frozen.ID() {
			t.Fatalf("case %d: id mismatch %d vs %d", i, direct.ID(), frozen.ID())
		}
		for _, tg := range probeTags {
			if direct.Get(tg) != frozen.Get(tg) {
				t.Fatalf("case %d tag %v: direct=%v frozen=%v", i, tg, direct.Get(tg), frozen.Get(tg))
			}
			if direct.Contains(tg) != frozen.Contains(tg) {
				t.Fatalf("case %d tag %v: contains mismatch", i, tg)
			}
		}
		if direct.String() != frozen.String() {
			t.Fatalf("case %d: describe mismatch %q vs %q", i, direct.String(), frozen.String())
		}
	}
}

func TestUnwrittenTagsAreAbsent(t *testing.T) {
	m := NewMutable(1)
	e := New(2)
	for _, tg := range probeTags {
		if m.Get(tg).IsSet() || m.Contains(tg) {
			t.Fatalf("mutable: tag %v unexpectedly present", tg)
		}
		if e.Get(tg).IsSet() || e.Contains(tg) {
			t.Fatalf("entity: tag %v unexpectedly present", tg)
		}
	}
}

func TestZeroValueIsPresent(t *testing.T) {
	e := New(1, tag.P(tag.Damage, tag.Int(0)))
	if !e.Contains(tag.Damage) {
		t.Fatalf("expected DAMAGE=0 to be present")
	}
	if got := e.Get(tag.Damage); got != tag.Int(0) {
		t.Fatalf("got %v", got)
	}
}

func TestMutableSetLastWriteWins(t *testing.T) {
	m := NewMutable(5, tag.P(tag.Zone, tag.Int(2)))
	m.Set(tag.Zone, tag.Int(3))
	if got := m.Get(tag.Zone); got != tag.Int(3) {
		t.Fatalf("after first set: %v", got)
	}
	m.Set(tag.Zone, tag.Int(1))
	if got := m.Get(tag.Zone); got != tag.Int(1) {
		t.Fatalf("after second set: %v", got)
	}
	m.Set(tag.Zone, tag.Absent)
	if m.Contains(tag.Zone) {
		t.Fatalf("absent write should clear the tag")
	}
}

func TestFreezeKeepsIdentityAndBlocksWrites(t *testing.T) {
	m := NewMutable(9, tag.P(tag.Cost, tag.Int(1)))
	e := m.Freeze()
	if e.ID() != 9 || e.Get(tag.Cost) != tag.Int(1) {
		t.Fatalf("frozen entity lost state: %v", e)
	}
	if again := m.Freeze(); again != e {
		t.Fatalf("second Freeze returned a different entity")
	}
	if !m.Frozen() {
		t.Fatalf("expected Frozen() after Freeze")
	}
	if m.Get(tag.Cost) != tag.Int(1) {
		t.Fatalf("stale handle read changed")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on Set after Freeze")
		}
		if e.Get(tag.Cost) != tag.Int(1) {
			t.Fatalf("frozen entity mutated")
		}
	}()
	m.Set(tag.Cost, tag.Int(7))
}

func TestFreezeEmptyEntity(t *testing.T) {
	e := NewMutable(4).Freeze()
	if e.Len() != 0 {
		t.Fatalf("expected no tags, got %d", e.Len())
	}
	if got := e.String(); got != "[4: '?' of Player? in ?]" {
		t.Fatalf("describe: %q", got)
	}
}

func TestPairsSortedCopy(t *testing.T) {
	e := New(1, tag.P(tag.Zone, tag.Int(1)), tag.P(tag.PowerName, tag.Text("X")), tag.P(tag.Cost, tag.Int(2)))
	ps := e.Pairs()
	if len(ps) != 3 || ps[0].Tag != tag.PowerName || ps[1].Tag != tag.Cost || ps[2].Tag != tag.Zone {
		t.Fatalf("unexpected order: %+v", ps)
	}
	ps[0].Value = tag.Text("Y")
	if e.Get(tag.PowerName) != tag.Text("X") {
		t.Fatalf("Pairs leaked internal map")
	}
}

func TestDescribeCustomName(t *testing.T) {
	e := New(7, tag.P(tag.CustomName, tag.Text("Bob")))
	got := e.Describe(fakeCards{})
	if got != "[7: 'Bob' of Player? in ?]" {
		t.Fatalf("describe: %q", got)
	}
}

func TestDescribeCustomNameWinsOverPower(t *testing.T) {
	e := New(2,
		tag.P(tag.CustomName, tag.Text("Alice")),
		tag.P(tag.PowerName, tag.Text("HERO_08")),
		tag.P(tag.Controller, tag.Int(1)),
		tag.P(tag.Zone, tag.Int(1)),
	)
	if got := e.Describe(fakeCards{"HERO_08": "Jaina Proudmoore"}); got != "[2: 'Alice' of Player1 in Play]" {
		t.Fatalf("describe: %q", got)
	}
}

func TestDescribeCardLookup(t *testing.T) {
	m := NewMutable(3,
		tag.P(tag.PowerName, tag.Text("CARD_001")),
		tag.P(tag.Zone, tag.Int(2)),
		tag.P(tag.Controller, tag.Int(1)),
	)
	e := m.Freeze()

	if got := e.Describe(fakeCards{}); got != "[3: 'CARD_001' of Player1 in Deck]" {
		t.Fatalf("lookup failure fallback: %q", got)
	}
	if got := e.Describe(nil); got != "[3: 'CARD_001' of Player1 in Deck]" {
		t.Fatalf("nil lookup fallback: %q", got)
	}
	if got := e.Describe(fakeCards{"CARD_001": "Wisp"}); got != "[3: 'Wisp' of Player1 in Deck]" {
		t.Fatalf("lookup hit: %q", got)
	}
}

func TestDescribeNeverFails(t *testing.T) {
	lists := [][]tag.Pair{
		nil,
		{tag.P(tag.Zone, tag.Int(0))},
		{tag.P(tag.Zone, tag.Int(123))},
		{tag.P(tag.Zone, tag.Text("weird"))},
		{tag.P(tag.PowerName, tag.Text(""))},
		{tag.P(tag.Controller, tag.Int(0))},
	}
	for i, pairs := range lists {
		got := New(100+i, pairs...).Describe(fakeCards{})
		if !strings.HasPrefix(got, "[") || !strings.Contains(got, ": ") {
			t.Fatalf("case %d: malformed %q", i, got)
		}
		if !strings.HasPrefix(got, fmt.Sprintf("[%d: ", 100+i)) {
			t.Fatalf("case %d: id missing in %q", i, got)
		}
	}
	if got := New(1, tag.P(tag.Zone, tag.Int(123))).String(); got != "[1: '?' of Player? in 123]" {
		t.Fatalf("unknown zone: %q", got)
	}
}

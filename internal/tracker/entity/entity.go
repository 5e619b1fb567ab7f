// Package entity models game entities as tag maps.
//
// A MutableEntity accumulates tag writes while it is built from the update
// stream and is frozen exactly once into an Entity. A View overlays
// speculative writes on any Container without touching it.
package entity

import (
	"hearthy.dev/internal/hs/tag"
)

// Container is the read side shared by every entity variant.
type Container interface {
	ID() int
	// Get returns tag.Absent for tags with no entry.
	Get(t tag.Tag) tag.Value
	Contains(t tag.Tag) bool
	Describe(cards CardLookup) string
}

// CardLookup resolves a card reference to its display name. A nil
// CardLookup behaves like one that knows no cards.
type CardLookup interface {
	CardName(cardID string) (string, error)
}

type base struct {
	id   int
	tags map[tag.Tag]tag.Value
}

func newBase(id int, pairs []tag.Pair) base {
	b := base{id: id, tags: make(map[tag.Tag]tag.Value, len(pairs))}
	for _, p := range pairs {
		b.put(p.Tag, p.Value)
	}
	return b
}

func (b *base) put(t tag.Tag, v tag.Value) {
	if !v.IsSet() {
		delete(b.tags, t)
		return
	}
	b.tags[t] = v
}

func (b *base) ID() int { return b.id }

func (b *base) Get(t tag.Tag) tag.Value { return b.tags[t] }

func (b *base) Contains(t tag.Tag) bool {
	_, ok := b.tags[t]
	return ok
}

func (b *base) Len() int { return len(b.tags) }

// Pairs returns a copy of the tag list ordered by tag id.
func (b *base) Pairs() []tag.Pair {
	out := make([]tag.Pair, 0, len(b.tags))
	for t, v := range b.tags {
		out = append(out, tag.Pair{Tag: t, Value: v})
	}
	tag.SortPairs(out)
	return out
}

// Entity is the frozen form. Its tags never change after construction and
// it may be shared freely by read-only holders.
type Entity struct {
	base
}

func New(id int, pairs ...tag.Pair) *Entity {
	return &Entity{base: newBase(id, pairs)}
}

func (e *Entity) Describe(cards CardLookup) string { return describe(e, cards) }

func (e *Entity) String() string { return e.Describe(nil) }

// MutableEntity is an entity under construction. It owns its tag map until
// Freeze hands the map to the returned Entity.
type MutableEntity struct {
	base
	frozen *Entity
}

func NewMutable(id int, pairs ...tag.Pair) *MutableEntity {
	return &MutableEntity{base: newBase(id, pairs)}
}

// Set stores v under t, replacing any prior value. Setting tag.Absent
// removes the entry. Set panics once the entity has been frozen.
func (m *MutableEntity) Set(t tag.Tag, v tag.Value) {
	if m.frozen != nil {
		panic("entity: Set on frozen entity")
	}
	m.put(t, v)
}

// Freeze ends the mutable phase and returns the immutable entity sharing
// this entity's id and tags. Calling it again returns the same Entity.
// Reads through m stay valid and observe the frozen state.
func (m *MutableEntity) Freeze() *Entity {
	if m.frozen == nil {
		m.frozen = &Entity{base: m.base}
	}
	return m.frozen
}

func (m *MutableEntity) Frozen() bool { return m.frozen != nil }

func (m *MutableEntity) Describe(cards CardLookup) string { return describe(m, cards) }

func (m *MutableEntity) String() string { return m.Describe(nil) }

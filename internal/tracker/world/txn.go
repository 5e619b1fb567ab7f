package world

import (
	"strings"

	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker/entity"
)

// Txn stages one batch of updates. New entities are built as
// MutableEntity values; committed entities are only ever touched through a
// View, so a rolled back or failed batch leaves the world untouched.
type Txn struct {
	w       *World
	created map[int]*entity.MutableEntity
	views   map[int]*entity.View
	order   []int
	closed  bool
}

// Commit reports what a transaction changed.
type Commit struct {
	Created []*entity.Entity
	Changed []Changed
}

type Changed struct {
	Entity  *entity.Entity
	Prev    *entity.Entity
	Changes []entity.Change
}

// Diff renders the change as a View over the previous entity.
func (c Changed) Diff(cards entity.CardLookup) string {
	v := entity.NewView(c.Prev)
	for _, ch := range c.Changes {
		v.Set(ch.Tag, ch.After)
	}
	return v.Describe(cards)
}

func (c Commit) Empty() bool { return len(c.Created) == 0 && len(c.Changed) == 0 }

func (t *Txn) check() error {
	if t.closed {
		return protocol.Errorf(protocol.ErrInternal, "transaction closed")
	}
	return nil
}

func (t *Txn) touch(id int) {
	for _, o := range t.order {
		if o == id {
			return
		}
	}
	t.order = append(t.order, id)
}

// Create stages a new entity. The id must not exist yet.
func (t *Txn) Create(id int, pairs ...tag.Pair) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.w.entities[id]; ok {
		return protocol.Errorf(protocol.ErrConflict, "entity %d already exists", id)
	}
	if _, ok := t.created[id]; ok {
		return protocol.Errorf(protocol.ErrConflict, "entity %d already created", id)
	}
	t.created[id] = entity.NewMutable(id, pairs...)
	t.touch(id)
	return nil
}

// Set writes one tag of a staged or committed entity.
func (t *Txn) Set(id int, tg tag.Tag, v tag.Value) error {
	if err := t.check(); err != nil {
		return err
	}
	if m, ok := t.created[id]; ok {
		m.Set(tg, v)
		return nil
	}
	view, ok := t.views[id]
	if !ok {
		e, exists := t.w.entities[id]
		if !exists {
			return protocol.Errorf(protocol.ErrNotFound, "entity %d", id)
		}
		view = entity.NewView(e)
		t.views[id] = view
		t.touch(id)
	}
	view.Set(tg, v)
	return nil
}

// Get returns the entity as this transaction currently sees it.
func (t *Txn) Get(id int) (entity.Container, bool) {
	if m, ok := t.created[id]; ok {
		return m, true
	}
	if v, ok := t.views[id]; ok {
		return v, true
	}
	e, ok := t.w.entities[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// Pending returns every touched entity in first-touch order.
func (t *Txn) Pending() []entity.Container {
	out := make([]entity.Container, 0, len(t.order))
	for _, id := range t.order {
		c, _ := t.Get(id)
		out = append(out, c)
	}
	return out
}

// Describe renders every pending entity, one block per entity.
func (t *Txn) Describe(cards entity.CardLookup) string {
	parts := make([]string, 0, len(t.order))
	for _, c := range t.Pending() {
		parts = append(parts, c.Describe(cards))
	}
	return strings.Join(parts, "\n")
}

// Commit freezes created entities and folds each view's net changes into a
// fresh frozen entity. Overrides equal to the committed value are dropped.
func (t *Txn) Commit() (Commit, error) {
	var out Commit
	if err := t.check(); err != nil {
		return out, err
	}
	for _, id := range t.order {
		if m, ok := t.created[id]; ok {
			e := m.Freeze()
			t.w.entities[id] = e
			out.Created = append(out.Created, e)
			continue
		}
		view := t.views[id]
		var net []entity.Change
		for _, c := range view.Changes() {
			if after := view.Get(c.Tag); after != c.Before {
				net = append(net, entity.Change{Tag: c.Tag, Before: c.Before, After: after})
			}
		}
		if len(net) == 0 {
			continue
		}
		prev := t.w.entities[id]
		m := entity.NewMutable(id, prev.Pairs()...)
		for _, c := range net {
			m.Set(c.Tag, c.After)
		}
		e := m.Freeze()
		t.w.entities[id] = e
		out.Changed = append(out.Changed, Changed{Entity: e, Prev: prev, Changes: net})
	}
	t.close()
	return out, nil
}

// Rollback discards the transaction. It is safe to call after Commit.
func (t *Txn) Rollback() {
	if t.closed {
		return
	}
	t.close()
}

func (t *Txn) close() {
	t.closed = true
	if t.w.open == t {
		t.w.open = nil
	}
}

// Package world holds the committed entity state of one game and the
// transactions that move it forward.
package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker/entity"
)

// World maps entity ids to frozen entities. It is not safe for concurrent
// use; a single goroutine owns it.
type World struct {
	entities map[int]*entity.Entity
	open     *Txn
}

func New() *World {
	return &World{entities: map[int]*entity.Entity{}}
}

func (w *World) Get(id int) (*entity.Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

func (w *World) Len() int { return len(w.entities) }

// Entities returns the committed entities ordered by id.
func (w *World) Entities() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Load replaces the committed state, e.g. from a snapshot.
func (w *World) Load(es []*entity.Entity) {
	w.entities = make(map[int]*entity.Entity, len(es))
	for _, e := range es {
		w.entities[e.ID()] = e
	}
}

// Preview overlays pairs on a committed entity without changing it.
func (w *World) Preview(id int, pairs ...tag.Pair) (*entity.View, error) {
	e, ok := w.entities[id]
	if !ok {
		return nil, protocol.Errorf(protocol.ErrNotFound, "entity %d", id)
	}
	v := entity.NewView(e)
	for _, p := range pairs {
		v.Set(p.Tag, p.Value)
	}
	return v, nil
}

// Digest hashes every committed tag in id/tag order.
func (w *World) Digest() string {
	h := sha256.New()
	for _, e := range w.Entities() {
		fmt.Fprintf(h, "E%d\n", e.ID())
		for _, p := range e.Pairs() {
			if s, ok := p.Value.Text(); ok {
				fmt.Fprintf(h, "%d=s:%q\n", int(p.Tag), s)
			} else {
				fmt.Fprintf(h, "%d=i:%s\n", int(p.Tag), p.Value.String())
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Begin opens a transaction. Only one may be open at a time.
func (w *World) Begin() (*Txn, error) {
	if w.open != nil {
		return nil, protocol.Errorf(protocol.ErrInternal, "transaction already open")
	}
	t := &Txn{
		w:       w,
		created: map[int]*entity.MutableEntity{},
		views:   map[int]*entity.View{},
	}
	w.open = t
	return t, nil
}

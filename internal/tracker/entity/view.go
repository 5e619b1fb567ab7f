package entity

import (
	"fmt"
	"strings"

	"hearthy.dev/internal/hs/tag"
)

// View is a copy-on-write overlay over a Container. It records only the
// tags written through it and never writes to the wrapped container.
//
// The wrapped container is borrowed: it must outlive the view and must not
// be mutated while the view is in use.
type View struct {
	base  Container
	delta map[tag.Tag]tag.Value
	order []tag.Tag
}

// Change is one overridden tag of a View.
type Change struct {
	Tag    tag.Tag
	Before tag.Value // as seen through the wrapped container
	After  tag.Value
}

func NewView(c Container) *View {
	return &View{base: c, delta: map[tag.Tag]tag.Value{}}
}

func (v *View) ID() int { return v.base.ID() }

// Base returns the wrapped container.
func (v *View) Base() Container { return v.base }

func (v *View) Get(t tag.Tag) tag.Value {
	if val, ok := v.delta[t]; ok && val.IsSet() {
		return val
	}
	return v.base.Get(t)
}

// Set records val as an override unless it equals the value currently
// observable through the view. Overrides are never pruned: writing the
// wrapped value back after an override keeps an entry equal to it.
func (v *View) Set(t tag.Tag, val tag.Value) {
	if v.Get(t) == val {
		return
	}
	if _, ok := v.delta[t]; !ok {
		v.order = append(v.order, t)
	}
	v.delta[t] = val
}

func (v *View) Contains(t tag.Tag) bool { return v.Get(t).IsSet() }

// Len is the number of overridden tags.
func (v *View) Len() int { return len(v.delta) }

// Changes lists the overrides in the order they were first recorded.
func (v *View) Changes() []Change {
	out := make([]Change, 0, len(v.order))
	for _, t := range v.order {
		out = append(out, Change{Tag: t, Before: v.base.Get(t), After: v.delta[t]})
	}
	return out
}

// Describe renders the effective entity followed by one line per override.
func (v *View) Describe(cards CardLookup) string {
	var b strings.Builder
	b.WriteString(describe(v, cards))
	for _, c := range v.Changes() {
		before := "(unset)"
		if !c.Before.IsZero() {
			before = tag.FormatValue(c.Tag, c.Before)
		}
		fmt.Fprintf(&b, "\n\ttag %d:%s %s -> %s", int(c.Tag), tag.FormatName(c.Tag), before, tag.FormatValue(c.Tag, c.After))
	}
	return b.String()
}

func (v *View) String() string { return v.Describe(nil) }

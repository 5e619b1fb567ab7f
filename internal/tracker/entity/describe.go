package entity

import (
	"fmt"

	"hearthy.dev/internal/hs/enums"
	"hearthy.dev/internal/hs/tag"
)

type reader interface {
	ID() int
	Get(t tag.Tag) tag.Value
}

// describe renders "[<id>: '<label>' of Player<controller> in <Zone>]".
// Missing data degrades to "?" and card lookup errors to the raw card id.
func describe(r reader, cards CardLookup) string {
	label := "?"
	if custom := r.Get(tag.CustomName); !custom.IsZero() {
		label = custom.String()
	} else if power := r.Get(tag.PowerName); !power.IsZero() {
		label = power.String()
		if cards != nil {
			if name, err := cards.CardName(power.String()); err == nil {
				label = name
			}
		}
	}

	where := "?"
	if zone := r.Get(tag.Zone); !zone.IsZero() {
		if n, ok := zone.Int(); ok {
			where = enums.Zone(n).Title()
		} else {
			where = zone.String()
		}
	}

	// Controller is interpolated as-is, absent included.
	whom := "Player" + r.Get(tag.Controller).String()

	return fmt.Sprintf("[%d: '%s' of %s in %s]", r.ID(), label, whom, where)
}

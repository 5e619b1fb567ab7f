package tag

import "hearthy.dev/internal/hs/enums"

// FormatName renders a tag id for diff output.
func FormatName(t Tag) string {
	if n, ok := names[t]; ok {
		return n
	}
	return "UNKNOWN"
}

// FormatValue renders v in the vocabulary of tag t: enum-typed tags use
// their enum names, everything else the raw value.
func FormatValue(t Tag, v Value) string {
	n, ok := v.Int()
	if !ok {
		return v.String()
	}
	switch t {
	case Zone:
		return enums.Zone(n).String()
	case CardType:
		return enums.CardType(n).String()
	case State:
		return enums.State(n).String()
	case PlayState:
		return enums.PlayState(n).String()
	case Step, NextStep:
		return enums.Step(n).String()
	}
	return v.String()
}

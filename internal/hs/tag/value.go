package tag

import "strconv"

type kind uint8

const (
	kindAbsent kind = iota
	kindInt
	kindText
)

// Value is what an entity stores under a tag: an integer, a text (pseudo
// tags only) or nothing. The zero Value is the absent sentinel, distinct
// from Int(0). Values are comparable with ==.
type Value struct {
	kind kind
	num  int
	str  string
}

// Absent is returned for tags an entity has no entry for.
var Absent = Value{}

func Int(n int) Value     { return Value{kind: kindInt, num: n} }
func Text(s string) Value { return Value{kind: kindText, str: s} }

func (v Value) IsSet() bool { return v.kind != kindAbsent }

// IsZero is true for absent, Int(0) and Text("").
func (v Value) IsZero() bool {
	switch v.kind {
	case kindInt:
		return v.num == 0
	case kindText:
		return v.str == ""
	default:
		return true
	}
}

func (v Value) IsText() bool { return v.kind == kindText }

func (v Value) Int() (int, bool) {
	if v.kind != kindInt {
		return 0, false
	}
	return v.num, true
}

func (v Value) Text() (string, bool) {
	if v.kind != kindText {
		return "", false
	}
	return v.str, true
}

// String renders the raw value; absent renders as "?".
func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return strconv.Itoa(v.num)
	case kindText:
		return v.str
	default:
		return "?"
	}
}

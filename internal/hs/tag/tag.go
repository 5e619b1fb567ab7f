// Package tag defines game tag identifiers and the values stored under them.
package tag

import (
	"sort"
	"strconv"
)

// Tag identifies one property of a game entity. Negative tags are
// pseudo tags synthesized by the tracker and never sent by the game.
type Tag int

const (
	CustomName Tag = -1 // player or custom display name (text)
	PowerName  Tag = -2 // card reference (text)

	PlayState     Tag = 17
	Step          Tag = 19
	Turn          Tag = 20
	CurrentPlayer Tag = 23
	FirstPlayer   Tag = 24
	HeroEntity    Tag = 27
	PlayerID      Tag = 30
	Exhausted     Tag = 43
	Damage        Tag = 44
	Health        Tag = 45
	Atk           Tag = 47
	Cost          Tag = 48
	Zone          Tag = 49
	Controller    Tag = 50
	EntityID      Tag = 53
	NextStep      Tag = 198
	CardType      Tag = 202
	State         Tag = 204
	ZonePosition  Tag = 263
	Armor         Tag = 292
)

var names = map[Tag]string{
	CustomName:    "CUSTOM_NAME",
	PowerName:     "POWER_NAME",
	PlayState:     "PLAYSTATE",
	Step:          "STEP",
	Turn:          "TURN",
	CurrentPlayer: "CURRENT_PLAYER",
	FirstPlayer:   "FIRST_PLAYER",
	HeroEntity:    "HERO_ENTITY",
	PlayerID:      "PLAYER_ID",
	Exhausted:     "EXHAUSTED",
	Damage:        "DAMAGE",
	Health:        "HEALTH",
	Atk:           "ATK",
	Cost:          "COST",
	Zone:          "ZONE",
	Controller:    "CONTROLLER",
	EntityID:      "ENTITY_ID",
	NextStep:      "NEXT_STEP",
	CardType:      "CARDTYPE",
	State:         "STATE",
	ZonePosition:  "ZONE_POSITION",
	Armor:         "ARMOR",
}

func (t Tag) Known() bool { _, ok := names[t]; return ok }

func (t Tag) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return strconv.Itoa(int(t))
}

// Pseudo reports whether t is a tracker-synthesized text tag.
func (t Tag) Pseudo() bool { return t < 0 }

// Pair is one tag/value entry of an entity's initial tag list.
type Pair struct {
	Tag   Tag
	Value Value
}

func P(t Tag, v Value) Pair { return Pair{Tag: t, Value: v} }

// SortPairs orders pairs by tag id.
func SortPairs(ps []Pair) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Tag < ps[j].Tag })
}

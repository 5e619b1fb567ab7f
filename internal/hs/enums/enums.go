package enums

import (
	"strconv"
	"strings"
)

type Zone int

const (
	ZoneInvalid         Zone = 0
	ZonePlay            Zone = 1
	ZoneDeck            Zone = 2
	ZoneHand            Zone = 3
	ZoneGraveyard       Zone = 4
	ZoneRemovedFromGame Zone = 5
	ZoneSetAside        Zone = 6
	ZoneSecret          Zone = 7
)

var zoneNames = map[Zone]string{
	ZoneInvalid:         "INVALID",
	ZonePlay:            "PLAY",
	ZoneDeck:            "DECK",
	ZoneHand:            "HAND",
	ZoneGraveyard:       "GRAVEYARD",
	ZoneRemovedFromGame: "REMOVEDFROMGAME",
	ZoneSetAside:        "SETASIDE",
	ZoneSecret:          "SECRET",
}

func (z Zone) Known() bool { _, ok := zoneNames[z]; return ok }

func (z Zone) String() string { return name(zoneNames, z) }

// Title is the display form used in entity descriptions ("Hand", "Removedfromgame").
func (z Zone) Title() string {
	n, ok := zoneNames[z]
	if !ok {
		return strconv.Itoa(int(z))
	}
	return n[:1] + strings.ToLower(n[1:])
}

type CardType int

const (
	CardTypeInvalid     CardType = 0
	CardTypeGame        CardType = 1
	CardTypePlayer      CardType = 2
	CardTypeHero        CardType = 3
	CardTypeMinion      CardType = 4
	CardTypeSpell       CardType = 5
	CardTypeEnchantment CardType = 6
	CardTypeWeapon      CardType = 7
	CardTypeItem        CardType = 8
	CardTypeToken       CardType = 9
	CardTypeHeroPower   CardType = 10
)

var cardTypeNames = map[CardType]string{
	CardTypeInvalid:     "INVALID",
	CardTypeGame:        "GAME",
	CardTypePlayer:      "PLAYER",
	CardTypeHero:        "HERO",
	CardTypeMinion:      "MINION",
	CardTypeSpell:       "SPELL",
	CardTypeEnchantment: "ENCHANTMENT",
	CardTypeWeapon:      "WEAPON",
	CardTypeItem:        "ITEM",
	CardTypeToken:       "TOKEN",
	CardTypeHeroPower:   "HERO_POWER",
}

func (c CardType) Known() bool { _, ok := cardTypeNames[c]; return ok }

func (c CardType) String() string { return name(cardTypeNames, c) }

// ParseCardType maps a card catalog type string back to its value.
func ParseCardType(s string) (CardType, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for k, v := range cardTypeNames {
		if v == s {
			return k, true
		}
	}
	return CardTypeInvalid, false
}

// State is the game entity's lifecycle (tag STATE).
type State int

const (
	StateInvalid  State = 0
	StateLoading  State = 1
	StateRunning  State = 2
	StateComplete State = 3
)

var stateNames = map[State]string{
	StateInvalid:  "INVALID",
	StateLoading:  "LOADING",
	StateRunning:  "RUNNING",
	StateComplete: "COMPLETE",
}

func (s State) Known() bool { _, ok := stateNames[s]; return ok }

func (s State) String() string { return name(stateNames, s) }

type PlayState int

const (
	PlayStateInvalid      PlayState = 0
	PlayStatePlaying      PlayState = 1
	PlayStateWinning      PlayState = 2
	PlayStateLosing       PlayState = 3
	PlayStateWon          PlayState = 4
	PlayStateLost         PlayState = 5
	PlayStateTied         PlayState = 6
	PlayStateDisconnected PlayState = 7
	PlayStateConceded     PlayState = 8
)

var playStateNames = map[PlayState]string{
	PlayStateInvalid:      "INVALID",
	PlayStatePlaying:      "PLAYING",
	PlayStateWinning:      "WINNING",
	PlayStateLosing:       "LOSING",
	PlayStateWon:          "WON",
	PlayStateLost:         "LOST",
	PlayStateTied:         "TIED",
	PlayStateDisconnected: "DISCONNECTED",
	PlayStateConceded:     "CONCEDED",
}

func (p PlayState) Known() bool { _, ok := playStateNames[p]; return ok }

func (p PlayState) String() string { return name(playStateNames, p) }

type Step int

const (
	StepInvalid          Step = 0
	StepBeginFirst       Step = 1
	StepBeginShuffle     Step = 2
	StepBeginDraw        Step = 3
	StepBeginMulligan    Step = 4
	StepMainBegin        Step = 5
	StepMainReady        Step = 6
	StepMainResource     Step = 7
	StepMainDraw         Step = 8
	StepMainStart        Step = 9
	StepMainAction       Step = 10
	StepMainCombat       Step = 11
	StepMainEnd          Step = 12
	StepMainNext         Step = 13
	StepFinalWrapup      Step = 14
	StepFinalGameover    Step = 15
	StepMainCleanup      Step = 16
	StepMainStartTrigger Step = 17
)

var stepNames = map[Step]string{
	StepInvalid:          "INVALID",
	StepBeginFirst:       "BEGIN_FIRST",
	StepBeginShuffle:     "BEGIN_SHUFFLE",
	StepBeginDraw:        "BEGIN_DRAW",
	StepBeginMulligan:    "BEGIN_MULLIGAN",
	StepMainBegin:        "MAIN_BEGIN",
	StepMainReady:        "MAIN_READY",
	StepMainResource:     "MAIN_RESOURCE",
	StepMainDraw:         "MAIN_DRAW",
	StepMainStart:        "MAIN_START",
	StepMainAction:       "MAIN_ACTION",
	StepMainCombat:       "MAIN_COMBAT",
	StepMainEnd:          "MAIN_END",
	StepMainNext:         "MAIN_NEXT",
	StepFinalWrapup:      "FINAL_WRAPUP",
	StepFinalGameover:    "FINAL_GAMEOVER",
	StepMainCleanup:      "MAIN_CLEANUP",
	StepMainStartTrigger: "MAIN_START_TRIGGERS",
}

func (s Step) Known() bool { _, ok := stepNames[s]; return ok }

func (s Step) String() string { return name(stepNames, s) }

func name[K ~int](names map[K]string, k K) string {
	if n, ok := names[k]; ok {
		return n
	}
	return strconv.Itoa(int(k))
}

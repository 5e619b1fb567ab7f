package enums

import "testing"

func TestZoneTitle(t *testing.T) {
	cases := map[Zone]string{
		ZoneHand:            "Hand",
		ZoneDeck:            "Deck",
		ZoneRemovedFromGame: "Removedfromgame",
		Zone(77):            "77",
	}
	for z, want := range cases {
		if got := z.Title(); got != want {
			t.Fatalf("Zone(%d).Title()=%q want %q", int(z), got, want)
		}
	}
}

func TestParseCardType(t *testing.T) {
	ct, ok := ParseCardType(" minion ")
	if !ok || ct != CardTypeMinion {
		t.Fatalf("ParseCardType: got %v ok=%v", ct, ok)
	}
	if _, ok := ParseCardType("DRAGON"); ok {
		t.Fatalf("expected unknown type")
	}
	if got := CardTypeHeroPower.String(); got != "HERO_POWER" {
		t.Fatalf("String: %q", got)
	}
}

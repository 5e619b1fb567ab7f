package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrBadRequest,
		ErrConflict,
		ErrNotFound,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("apply: %w", Errorf(ErrConflict, "entity %d exists", 4))
	if got := CodeOf(err); got != ErrConflict {
		t.Fatalf("CodeOf wrapped: %q", got)
	}
	if got := CodeOf(errors.New("boom")); got != ErrInternal {
		t.Fatalf("CodeOf foreign: %q", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Fatalf("CodeOf nil: %q", got)
	}
	if got := Errorf(ErrNotFound, "entity %d", 9).Error(); got != "E_NOT_FOUND: entity 9" {
		t.Fatalf("Error(): %q", got)
	}
}

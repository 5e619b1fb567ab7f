package protocol

import (
	"errors"
	"fmt"
)

const (
	// Wire validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Update application.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrConflict   = "E_CONFLICT"
	ErrNotFound   = "E_NOT_FOUND"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrConflict:        {},
	ErrNotFound:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// Error is a coded failure raised while decoding or applying a packet.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code carried by err, or ErrInternal for foreign errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrInternal
}

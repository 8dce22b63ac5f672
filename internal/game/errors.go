// internal/game/errors.go
//
// Error taxonomy for the match engine.
// Every rejection carries a stable machine-readable reason code on top of one
// of the sentinel kinds below; the HTTP layer maps kinds to status codes and
// reason codes to response bodies.

package game

import "errors"

// Sentinel error kinds. Classify with errors.Is.
var (
	ErrNotFound   = errors.New("not_found")    // game/room absent
	ErrForbidden  = errors.New("forbidden")    // actor is not a participant
	ErrWrongPhase = errors.New("wrong_phase")  // action illegal in current status
	ErrBadPayload = errors.New("bad_payload")  // malformed or rule-violating payload
	ErrConflict   = errors.New("conflict")     // lost the compare-and-swap race
	ErrInternal   = errors.New("server_error") // store unavailable or unexpected fault
)

// Rejection is a terminal validation failure: one of the sentinel kinds plus
// a stable reason code suitable for clients.
type Rejection struct {
	kind error
	Code string
}

func (e *Rejection) Error() string { return e.Code }

func (e *Rejection) Unwrap() error { return e.kind }

// Reject builds a Rejection of the given kind with a stable reason code.
func Reject(kind error, code string) error {
	return &Rejection{kind: kind, Code: code}
}

// ReasonCode extracts the stable reason code from an engine error. Errors that
// carry no code (store faults, conflicts after retry) collapse to their kind's
// generic name so internals never leak.
func ReasonCode(err error) string {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Code
	}
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrWrongPhase, ErrBadPayload, ErrConflict, ErrInternal} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ErrInternal.Error()
}

package conversation

import (
	"errors"
	"fmt"
)

// FaultKind classifies the ways handling an inbound message can fail.
type FaultKind string

const (
	FaultUnknownConversationType FaultKind = "UNKNOWN_CONVERSATION_TYPE"
	FaultUnknownState            FaultKind = "UNKNOWN_STATE"
	FaultHandler                 FaultKind = "HANDLER_FAILURE"
)

var (
	// ErrUnknownConversationType is returned by Registry.Lookup for a key
	// that was never registered.
	ErrUnknownConversationType = errors.New("conversation: unknown conversation type")

	// ErrDuplicateKey is returned by Registry.Register when a key is
	// registered twice. Registration happens once at startup, so this is an
	// integrity check rather than a runtime condition.
	ErrDuplicateKey = errors.New("conversation: duplicate conversation key")

	// ErrTurnDecided is returned when a state handler calls Transition or
	// End more than once within a single turn.
	ErrTurnDecided = errors.New("conversation: turn outcome already decided")
)

// Error wraps a failure inside a resolved state handler so callers can
// surface it to operator-visible logging while the tracker has already sent
// the user-facing apology.
type Error struct {
	Kind   FaultKind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("conversation: %s (%s)", e.Kind, e.Reason)
	}
	return fmt.Sprintf("conversation: %s (%s): %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// userMessage is the apology sent for each fault kind. Integrity faults get
// the lost-track message because the stored state is being discarded;
// handler failures ask the user to retry because the state is preserved.
func userMessage(kind FaultKind) string {
	switch kind {
	case FaultUnknownConversationType, FaultUnknownState:
		return "Sorry, I completely lost track of what we were talking about. Never mind - it probably wasn't important!"
	default:
		return fmt.Sprintf("Gah, sorry, I hit a problem (%s) while trying to reply to you. It's frustrating being a computer sometimes. Try again and let's see if I can get it right this time!", kind)
	}
}

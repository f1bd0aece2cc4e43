package conversation

import (
	"context"
	"fmt"
)

// StateFunc handles one inbound message while the conversation sits in the
// state it is registered under. It may send messages through the turn and
// must call turn.Transition or turn.End at most once in total; calling
// neither means the same state handles the next reply with unchanged data.
type StateFunc func(ctx context.Context, turn *Turn, text string, data map[string]any) error

// Conversation is one multi-turn dialog type. Implementations declare a
// closed table of named states so that an unrecognized stored state name is
// a data-integrity fault caught by table lookup, and may opt in to handling
// unsolicited messages via HandleSpontaneous.
type Conversation interface {
	// Key is the stable identifier persisted alongside conversation state.
	Key() string

	// States maps state names to their handlers. The map must be the same
	// on every call for a given conversation value.
	States() map[string]StateFunc

	// HandleSpontaneous is offered messages that arrive while no
	// conversation is active for the recipient. It reports whether it
	// handled the message; when it did, any sends and at most one
	// Transition on the turn take effect.
	HandleSpontaneous(ctx context.Context, turn *Turn, text string) (bool, error)
}

type turnOutcome int

const (
	outcomePending turnOutcome = iota
	outcomeTransition
	outcomeEnd
)

// Turn is the capability handed to conversation code for one invocation. It
// carries the recipient binding, routes sends through the tracker's
// messenger, and records the single allowed persistence decision.
type Turn struct {
	tracker   *Tracker
	conv      Conversation
	recipient string

	outcome  turnOutcome
	newState string
	newData  map[string]any
}

// Recipient returns the phone number this turn is bound to.
func (t *Turn) Recipient() string {
	return t.recipient
}

// Send delivers an outbound message to the bound recipient.
func (t *Turn) Send(ctx context.Context, text string) error {
	return t.tracker.messenger.Send(ctx, t.recipient, text)
}

// Transition records that the conversation should persist in newState with
// the given data and be resumed there on the recipient's next message. The
// target state must exist in the conversation's state table.
func (t *Turn) Transition(newState string, data map[string]any) error {
	if t.outcome != outcomePending {
		return ErrTurnDecided
	}
	if _, ok := t.conv.States()[newState]; !ok {
		return fmt.Errorf("conversation: %s has no state %q", t.conv.Key(), newState)
	}
	if data == nil {
		data = map[string]any{}
	}
	t.outcome = outcomeTransition
	t.newState = newState
	t.newData = data
	return nil
}

// End records that the conversation is over and its persisted trace should
// be removed.
func (t *Turn) End() error {
	if t.outcome != outcomePending {
		return ErrTurnDecided
	}
	t.outcome = outcomeEnd
	return nil
}

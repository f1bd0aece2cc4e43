package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"household-agent/internal/dialog"
	"household-agent/internal/domain"
)

// StateStore is the durable per-recipient conversation state contract
// consumed by the Tracker.
type StateStore interface {
	// Get returns the recipient's state, or nil when none is stored.
	Get(ctx context.Context, recipient string) (*domain.ConversationState, error)
	// Put overwrites the recipient's state wholesale.
	Put(ctx context.Context, state domain.ConversationState) error
	// Delete removes the recipient's state; deleting an absent state is
	// not an error.
	Delete(ctx context.Context, recipient string) error
}

// Messenger delivers outbound messages. The notification transport behind it
// is out of scope here.
type Messenger interface {
	Send(ctx context.Context, recipient, text string) error
}

// Tracker routes inbound messages to conversation state handlers and applies
// the persistence outcome each turn decides.
type Tracker struct {
	states    StateStore
	registry  *Registry
	messenger Messenger
	logger    *slog.Logger
}

func NewTracker(states StateStore, registry *Registry, messenger Messenger, logger *slog.Logger) (*Tracker, error) {
	if states == nil {
		return nil, errors.New("conversation: state store must not be nil")
	}
	if registry == nil {
		return nil, errors.New("conversation: registry must not be nil")
	}
	if messenger == nil {
		return nil, errors.New("conversation: messenger must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{states: states, registry: registry, messenger: messenger, logger: logger}, nil
}

// HandleInbound processes one inbound message. With no stored state the
// message is offered to every registered conversation type in registration
// order; with stored state it is routed to the matching state handler.
// Store failures are not masked and fail the whole invocation.
func (t *Tracker) HandleInbound(ctx context.Context, sender, text string) error {
	state, err := t.states.Get(ctx, sender)
	if err != nil {
		return fmt.Errorf("conversation: read state for %q: %w", sender, err)
	}
	if state == nil {
		return t.handleSpontaneous(ctx, sender, text)
	}
	return t.handleDirected(ctx, *state, text)
}

// RunTurn opens a turn for a conversation outside of inbound dispatch, e.g.
// a periodic check-in initiating a dialog, and applies the turn's outcome
// once fn returns without error.
func (t *Tracker) RunTurn(ctx context.Context, conv Conversation, recipient string, fn func(context.Context, *Turn) error) error {
	turn := t.newTurn(conv, recipient)
	if err := fn(ctx, turn); err != nil {
		return err
	}
	return t.applyOutcome(ctx, turn)
}

func (t *Tracker) newTurn(conv Conversation, recipient string) *Turn {
	return &Turn{tracker: t, conv: conv, recipient: recipient}
}

func (t *Tracker) handleSpontaneous(ctx context.Context, sender, text string) error {
	for _, reg := range t.registry.All() {
		conv := reg.Factory(sender)
		turn := t.newTurn(conv, sender)
		handled, err := conv.HandleSpontaneous(ctx, turn, text)
		if err != nil {
			// One broken handler must not block the others.
			t.logger.Error("spontaneous handler failed",
				"conversation", reg.Key, "sender", sender, "err", err)
			continue
		}
		if handled {
			return t.applyOutcome(ctx, turn)
		}
	}
	if err := t.messenger.Send(ctx, sender, dialog.GenericReply()); err != nil {
		return fmt.Errorf("conversation: send fallback reply: %w", err)
	}
	return nil
}

func (t *Tracker) handleDirected(ctx context.Context, state domain.ConversationState, text string) error {
	factory, err := t.registry.Lookup(state.ConversationKey)
	if err != nil {
		return t.clearBrokenState(ctx, state, FaultUnknownConversationType, err)
	}
	conv := factory(state.Recipient)
	handler, ok := conv.States()[state.State]
	if !ok {
		return t.clearBrokenState(ctx, state, FaultUnknownState,
			fmt.Errorf("conversation: %s has no state %q", state.ConversationKey, state.State))
	}

	turn := t.newTurn(conv, state.Recipient)
	if err := handler(ctx, turn, text, state.Data); err != nil {
		// Preserve the stored state so the turn can be retried once the
		// underlying bug is fixed, and surface the failure upward.
		if sendErr := t.messenger.Send(ctx, state.Recipient, userMessage(FaultHandler)); sendErr != nil {
			t.logger.Error("failed to send handler-failure apology",
				"recipient", state.Recipient, "err", sendErr)
		}
		return &Error{Kind: FaultHandler, Reason: state.ConversationKey + "/" + state.State, Err: err}
	}
	return t.applyOutcome(ctx, turn)
}

// clearBrokenState handles a data-integrity fault: the stored record cannot
// be resolved to a handler, so apologize and delete it rather than leaving
// the user permanently stuck. The fault is logged, not returned.
func (t *Tracker) clearBrokenState(ctx context.Context, state domain.ConversationState, kind FaultKind, cause error) error {
	t.logger.Error("clearing unresolvable conversation state",
		"recipient", state.Recipient, "conversation", state.ConversationKey,
		"state", state.State, "fault", string(kind), "err", cause)
	if err := t.messenger.Send(ctx, state.Recipient, userMessage(kind)); err != nil {
		t.logger.Error("failed to send lost-track apology", "recipient", state.Recipient, "err", err)
	}
	if err := t.states.Delete(ctx, state.Recipient); err != nil {
		return fmt.Errorf("conversation: clear state for %q: %w", state.Recipient, err)
	}
	return nil
}

func (t *Tracker) applyOutcome(ctx context.Context, turn *Turn) error {
	switch turn.outcome {
	case outcomeTransition:
		err := t.states.Put(ctx, domain.ConversationState{
			Recipient:       turn.recipient,
			ConversationKey: turn.conv.Key(),
			State:           turn.newState,
			Data:            turn.newData,
		})
		if err != nil {
			return fmt.Errorf("conversation: persist state for %q: %w", turn.recipient, err)
		}
	case outcomeEnd:
		if err := t.states.Delete(ctx, turn.recipient); err != nil {
			return fmt.Errorf("conversation: end conversation for %q: %w", turn.recipient, err)
		}
	}
	return nil
}

// Package greeting is a small check-in dialog: ask how the household is
// doing and react to the answer.
package greeting

import (
	"context"
	"regexp"
	"strings"

	"household-agent/internal/conversation"
)

// Key identifies this conversation type in persisted state.
const Key = "greeting.Greeting"

// ActionKey is the schedule binding for the daily hello.
const ActionKey = "DailyGreeting"

const (
	stateRespond = "respond"
	stateDone    = "done"
)

var badMood = regexp.MustCompile(`[nN]ot .*(?:good|great)`)

// Conversation greets one recipient and follows up on their reply.
type Conversation struct {
	recipient string
}

// NewFactory returns the registry factory for greetings.
func NewFactory() conversation.Factory {
	return func(recipient string) conversation.Conversation {
		return &Conversation{recipient: recipient}
	}
}

func (c *Conversation) Key() string {
	return Key
}

func (c *Conversation) States() map[string]conversation.StateFunc {
	return map[string]conversation.StateFunc{
		stateRespond: c.respond,
		stateDone:    c.done,
	}
}

func (c *Conversation) HandleSpontaneous(context.Context, *conversation.Turn, string) (bool, error) {
	return false, nil
}

// Initiate opens the dialog.
func (c *Conversation) Initiate(ctx context.Context, turn *conversation.Turn) error {
	if err := turn.Send(ctx, "Hi! How are you today?"); err != nil {
		return err
	}
	return turn.Transition(stateRespond, nil)
}

func (c *Conversation) respond(ctx context.Context, turn *conversation.Turn, text string, _ map[string]any) error {
	lowered := strings.ToLower(text)
	var reply string
	switch {
	case badMood.MatchString(text):
		reply = "Oh, I'm sorry to hear that :("
	case strings.Contains(lowered, "good") || strings.Contains(lowered, "great"):
		reply = "That's great to hear!"
	default:
		reply = "Thanks for sharing!"
	}
	if err := turn.Send(ctx, reply); err != nil {
		return err
	}
	return turn.Transition(stateDone, nil)
}

func (c *Conversation) done(ctx context.Context, turn *conversation.Turn, _ string, _ map[string]any) error {
	if err := turn.Send(ctx, "Have a great day!"); err != nil {
		return err
	}
	return turn.End()
}

// GreetAll opens a greeting with every recipient. Used by the scheduled
// daily hello.
func GreetAll(ctx context.Context, tracker *conversation.Tracker, recipients []string) error {
	for _, recipient := range recipients {
		conv := &Conversation{recipient: recipient}
		if err := tracker.RunTurn(ctx, conv, recipient, conv.Initiate); err != nil {
			return err
		}
	}
	return nil
}

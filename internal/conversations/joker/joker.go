// Package joker answers joke requests. It is the one conversation type that
// handles spontaneous messages, including a multi-turn knock-knock exchange.
package joker

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"household-agent/internal/conversation"
)

// Key identifies this conversation type in persisted state.
const Key = "bagatelles.Joker"

const (
	stateBeToldWhoIsThere   = "be_told_who_is_there"
	stateRespondToPunchline = "respond_to_punchline"
)

var wordPattern = regexp.MustCompile(`[a-z'-]+`)

var punchlineReactions = []string{
	"Hilarious.",
	"Don't give up the day job...",
	"Ha. Ha.",
	"Side-splitting...",
}

// JokeSource supplies jokes to tell.
type JokeSource interface {
	Random(ctx context.Context) (string, error)
}

// Conversation trades jokes with one recipient.
type Conversation struct {
	recipient string
	jokes     JokeSource
}

// NewFactory returns the registry factory for the joker.
func NewFactory(jokes JokeSource) conversation.Factory {
	return func(recipient string) conversation.Conversation {
		return &Conversation{recipient: recipient, jokes: jokes}
	}
}

func (c *Conversation) Key() string {
	return Key
}

func (c *Conversation) States() map[string]conversation.StateFunc {
	return map[string]conversation.StateFunc{
		stateBeToldWhoIsThere:   c.beToldWhoIsThere,
		stateRespondToPunchline: c.respondToPunchline,
	}
}

// HandleSpontaneous picks up joke requests, incoming knock-knock jokes, and
// laughter.
func (c *Conversation) HandleSpontaneous(ctx context.Context, turn *conversation.Turn, text string) (bool, error) {
	lowered := strings.ToLower(text)
	words := wordPattern.FindAllString(lowered, -1)

	switch {
	case containsWord(words, "joke"):
		joke, err := c.jokes.Random(ctx)
		if err != nil {
			return false, fmt.Errorf("joker: fetch joke: %w", err)
		}
		return true, turn.Send(ctx, joke)
	case strings.Contains(lowered, "knock knock"):
		if err := turn.Send(ctx, "Who's there?"); err != nil {
			return true, err
		}
		return true, turn.Transition(stateBeToldWhoIsThere, nil)
	case containsWord(words, "ha") || containsWord(words, "ha-ha") ||
		containsWord(words, "haha") || containsWord(words, "funny"):
		return true, turn.Send(ctx, "I'm a laugh a minute!")
	}
	return false, nil
}

func (c *Conversation) beToldWhoIsThere(ctx context.Context, turn *conversation.Turn, text string, _ map[string]any) error {
	subject := text
	if subject != "" {
		subject = strings.ToUpper(subject[:1]) + subject[1:]
	}
	if err := turn.Send(ctx, subject+" who?"); err != nil {
		return err
	}
	return turn.Transition(stateRespondToPunchline, nil)
}

func (c *Conversation) respondToPunchline(ctx context.Context, turn *conversation.Turn, _ string, _ map[string]any) error {
	if err := turn.Send(ctx, punchlineReactions[rand.Intn(len(punchlineReactions))]); err != nil {
		return err
	}
	return turn.End()
}

func containsWord(words []string, want string) bool {
	for _, w := range words {
		if w == want {
			return true
		}
	}
	return false
}

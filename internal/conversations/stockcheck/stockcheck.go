// Package stockcheck is the periodic larder inventory dialog: it asks the
// household how much of each overdue item is left, records the counts, and
// schedules its own next run.
package stockcheck

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"household-agent/internal/conversation"
	"household-agent/internal/dialog"
	"household-agent/internal/domain"
)

const (
	// Key identifies this conversation type in persisted state.
	Key = "larder.StockCheck"

	// ActionKey is the schedule binding for the recurring check.
	ActionKey = "StockCheck"

	stateGetUserGoahead = "get_user_goahead"
	stateInterpretCount = "interpret_count"

	// rescheduleMeanHours centers the randomized delay until the next
	// check; actual delays fall between half and one-and-a-half times this.
	rescheduleMeanHours = 24
)

var numberPattern = regexp.MustCompile(`[\d.]+`)

var openers = []string{
	"Is now a good time for a quick stock check?",
	"Mind checking the larder for me?",
	"I just wanted to check if you're running out of anything. Is now a good time?",
	"Could you check on some things in the fridge and cupboards for me?",
}

var closers = []string{
	"OK, that's everything. Thank you!",
	"Thanks a lot - that's all I needed.",
	"And that's a wrap. Thanks for your help!",
	"OK sweet - that's all I needed right now. Have a good day!",
	"Thanks, my records are now up to date. Have a great rest of your day!",
}

// Inventory is the larder collaborator the dialog reads and updates.
type Inventory interface {
	ItemsDueUpdate(ctx context.Context) ([]domain.LarderItem, error)
	UpdateQuantity(ctx context.Context, name string, quantity float64) error
}

// Rescheduler books the next check.
type Rescheduler interface {
	DoWithDelay(ctx context.Context, actionKey string, delay time.Duration) error
}

// Conversation runs one stock check with one recipient.
type Conversation struct {
	recipient string
	inventory Inventory
	scheduler Rescheduler
}

// NewFactory returns the registry factory for stock checks.
func NewFactory(inventory Inventory, scheduler Rescheduler) conversation.Factory {
	return func(recipient string) conversation.Conversation {
		return &Conversation{recipient: recipient, inventory: inventory, scheduler: scheduler}
	}
}

func (c *Conversation) Key() string {
	return Key
}

func (c *Conversation) States() map[string]conversation.StateFunc {
	return map[string]conversation.StateFunc{
		stateGetUserGoahead: c.getUserGoahead,
		stateInterpretCount: c.interpretCount,
	}
}

// HandleSpontaneous declines everything; stock checks only start from the
// scheduler.
func (c *Conversation) HandleSpontaneous(context.Context, *conversation.Turn, string) (bool, error) {
	return false, nil
}

// Initiate opens the dialog and waits for the go-ahead.
func (c *Conversation) Initiate(ctx context.Context, turn *conversation.Turn) error {
	if err := turn.Send(ctx, dialog.Greeting()+" "+openers[rand.Intn(len(openers))]); err != nil {
		return err
	}
	return turn.Transition(stateGetUserGoahead, nil)
}

func (c *Conversation) getUserGoahead(ctx context.Context, turn *conversation.Turn, text string, _ map[string]any) error {
	switch dialog.YesOrNo(text) {
	case "yes":
		if err := turn.Send(ctx, "Great, let's get started."); err != nil {
			return err
		}
		return c.askNextQuestion(ctx, turn)
	case "no":
		if err := turn.Send(ctx, "That's ok! Another time then."); err != nil {
			return err
		}
		if err := turn.End(); err != nil {
			return err
		}
		return c.Reschedule(ctx)
	default:
		return turn.Send(ctx, "Sorry, I didn't quite get that. Try again?")
	}
}

// askNextQuestion asks about the next overdue item, or wraps up when none
// remain.
func (c *Conversation) askNextQuestion(ctx context.Context, turn *conversation.Turn) error {
	due, err := c.inventory.ItemsDueUpdate(ctx)
	if err != nil {
		return fmt.Errorf("stockcheck: list due items: %w", err)
	}
	if len(due) == 0 {
		return c.finish(ctx, turn)
	}
	item := due[0]
	var question string
	if item.GroupNoun != "" {
		question = fmt.Sprintf("How many %s of %s do you have?", dialog.Plural(item.GroupNoun), item.Name)
	} else {
		question = fmt.Sprintf("How many %s do you have?", dialog.Plural(item.Name))
	}
	if err := turn.Send(ctx, question); err != nil {
		return err
	}
	return turn.Transition(stateInterpretCount, map[string]any{"current_item": item.Name})
}

func (c *Conversation) interpretCount(ctx context.Context, turn *conversation.Turn, text string, data map[string]any) error {
	currentItem, ok := data["current_item"].(string)
	if !ok || currentItem == "" {
		return fmt.Errorf("stockcheck: stored data is missing current_item")
	}
	match := numberPattern.FindString(text)
	quantity, parseErr := strconv.ParseFloat(match, 64)
	if match == "" || parseErr != nil {
		return turn.Send(ctx, "Sorry, didn't catch that. I don't understand number words, yet, so can you use digits?")
	}
	if err := c.inventory.UpdateQuantity(ctx, currentItem, quantity); err != nil {
		return fmt.Errorf("stockcheck: record count for %q: %w", currentItem, err)
	}
	return c.askNextQuestion(ctx, turn)
}

func (c *Conversation) finish(ctx context.Context, turn *conversation.Turn) error {
	if err := turn.Send(ctx, closers[rand.Intn(len(closers))]); err != nil {
		return err
	}
	if err := turn.End(); err != nil {
		return err
	}
	return c.Reschedule(ctx)
}

// Reschedule books the next check at a randomized delay between half and
// one-and-a-half times the mean, so checks drift around the day instead of
// always landing at the same hour.
func (c *Conversation) Reschedule(ctx context.Context) error {
	low := rescheduleMeanHours / 2
	high := rescheduleMeanHours * 3 / 2
	delay := time.Duration(low+rand.Intn(high-low+1)) * time.Hour
	return c.scheduler.DoWithDelay(ctx, ActionKey, delay)
}

// MaybeCheckStock is the scheduled entry point: when any items are due a
// count it opens a stock check with each recipient, otherwise it just books
// the next run.
func MaybeCheckStock(ctx context.Context, tracker *conversation.Tracker, inventory Inventory, scheduler Rescheduler, recipients []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	due, err := inventory.ItemsDueUpdate(ctx)
	if err != nil {
		return fmt.Errorf("stockcheck: list due items: %w", err)
	}
	for _, recipient := range recipients {
		conv := &Conversation{recipient: recipient, inventory: inventory, scheduler: scheduler}
		if len(due) > 0 {
			logger.Info("stock check needed for one or more items, initiating", "recipient", recipient)
			if err := tracker.RunTurn(ctx, conv, recipient, conv.Initiate); err != nil {
				return err
			}
		} else {
			logger.Info("stock is up to date, will not request stock check", "recipient", recipient)
			if err := conv.Reschedule(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

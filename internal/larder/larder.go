// Package larder tracks pantry stock levels and decides which items are due
// another count.
package larder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"household-agent/internal/domain"
)

// Store is the inventory persistence contract consumed by the Service.
type Store interface {
	GetContents(ctx context.Context) ([]domain.LarderItem, error)
	GetItem(ctx context.Context, name string) (domain.LarderItem, error)
	PutItem(ctx context.Context, item domain.LarderItem) error
}

// Service answers inventory questions for the stock-check conversation.
type Service struct {
	store Store
	clock func() time.Time
}

type Option func(*Service)

// WithClock injects the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("larder: store must not be nil")
	}
	s := &Service{
		store: store,
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ItemsDueUpdate returns items whose last count has gone stale. Items with
// no check frequency are never due.
func (s *Service) ItemsDueUpdate(ctx context.Context) ([]domain.LarderItem, error) {
	contents, err := s.store.GetContents(ctx)
	if err != nil {
		return nil, fmt.Errorf("larder: list contents: %w", err)
	}
	now := s.clock()
	var due []domain.LarderItem
	for _, item := range contents {
		if item.CheckFrequencyDays <= 0 {
			continue
		}
		if item.LastChecked.AddDate(0, 0, item.CheckFrequencyDays).Before(now) {
			due = append(due, item)
		}
	}
	return due, nil
}

// UpdateQuantity records a fresh count for an item, stamping it as checked
// now.
func (s *Service) UpdateQuantity(ctx context.Context, name string, quantity float64) error {
	item, err := s.store.GetItem(ctx, name)
	if err != nil {
		return fmt.Errorf("larder: update quantity for %q: %w", name, err)
	}
	item.Quantity = quantity
	item.LastChecked = s.clock()
	if err := s.store.PutItem(ctx, item); err != nil {
		return fmt.Errorf("larder: update quantity for %q: %w", name, err)
	}
	return nil
}

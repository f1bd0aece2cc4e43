package domain

import (
	"errors"
	"time"
)

// LarderItem is one tracked pantry item. Name doubles as the primary key and
// the human-readable name used in questions to the user.
type LarderItem struct {
	Name               string
	LastChecked        time.Time
	Quantity           float64
	GroupNoun          string // tin, carton, bottle, jar, ...; empty when counted bare
	CheckFrequencyDays int
	MinAmount          float64 // buy if fewer than this
	TargetAmount       float64 // buy back to at least this many
	BuyVia             string  // which shopping site, if any
	ShopOptions        []ShopOption
}

// ShopOption is a product listing to buy, in preference order.
type ShopOption struct {
	ProductID string
	Quantity  float64
}

// Validate checks cross-field consistency of an item.
func (i LarderItem) Validate() error {
	if i.Name == "" {
		return errors.New("domain: larder item name must not be empty")
	}
	if i.BuyVia != "" && len(i.ShopOptions) == 0 {
		return errors.New("domain: shopOptions must not be empty when buyVia is set")
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"household-agent/internal/domain"
)

// ErrItemNotFound is returned when a larder item does not exist.
var ErrItemNotFound = errors.New("repository: larder item not found")

// LarderStore persists pantry inventory keyed by item name.
type LarderStore struct {
	api       dynamodbAPI
	tableName string
}

func NewLarderStore(api dynamodbAPI, tableName string) (*LarderStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &LarderStore{api: api, tableName: tableName}, nil
}

// GetContents returns every tracked item.
func (s *LarderStore) GetContents(ctx context.Context) ([]domain.LarderItem, error) {
	out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: LarderStore.GetContents: %w", err)
	}
	items := make([]domain.LarderItem, 0, len(out.Items))
	for _, raw := range out.Items {
		item, err := itemToLarderItem(raw)
		if err != nil {
			return nil, fmt.Errorf("repository: LarderStore.GetContents decode: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// GetItem fetches one item by name.
func (s *LarderStore) GetItem(ctx context.Context, name string) (domain.LarderItem, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"ItemName": strValue(name),
		},
	})
	if err != nil {
		return domain.LarderItem{}, fmt.Errorf("repository: LarderStore.GetItem: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.LarderItem{}, fmt.Errorf("%w: %q", ErrItemNotFound, name)
	}
	item, err := itemToLarderItem(out.Item)
	if err != nil {
		return domain.LarderItem{}, fmt.Errorf("repository: LarderStore.GetItem decode: %w", err)
	}
	return item, nil
}

// PutItem writes an item, replacing any previous record for its name.
func (s *LarderStore) PutItem(ctx context.Context, item domain.LarderItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("repository: LarderStore.PutItem: %w", err)
	}
	encoded, err := larderItemToItem(item)
	if err != nil {
		return fmt.Errorf("repository: LarderStore.PutItem encode: %w", err)
	}
	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      encoded,
	}); err != nil {
		return fmt.Errorf("repository: LarderStore.PutItem: %w", err)
	}
	return nil
}

func larderItemToItem(item domain.LarderItem) (map[string]types.AttributeValue, error) {
	out := map[string]types.AttributeValue{
		"ItemName":    strValue(item.Name),
		"LastChecked": numValue(item.LastChecked.UTC().Unix()),
		"Quantity":    floatValue(item.Quantity),
	}
	if item.GroupNoun != "" {
		out["GroupNoun"] = strValue(item.GroupNoun)
	}
	if item.CheckFrequencyDays > 0 {
		out["CheckFrequencyInDays"] = numValue(int64(item.CheckFrequencyDays))
	}
	if item.MinAmount > 0 {
		out["MinAmount"] = floatValue(item.MinAmount)
	}
	if item.TargetAmount > 0 {
		out["TargetAmount"] = floatValue(item.TargetAmount)
	}
	if item.BuyVia != "" {
		out["BuyVia"] = strValue(item.BuyVia)
		options, err := json.Marshal(item.ShopOptions)
		if err != nil {
			return nil, err
		}
		out["ShopOptions"] = strValue(string(options))
	}
	return out, nil
}

func itemToLarderItem(raw map[string]types.AttributeValue) (domain.LarderItem, error) {
	name, err := strAttr(raw, "ItemName")
	if err != nil {
		return domain.LarderItem{}, err
	}
	lastChecked, err := intAttr(raw, "LastChecked")
	if err != nil {
		return domain.LarderItem{}, err
	}
	quantity, err := floatAttr(raw, "Quantity")
	if err != nil {
		return domain.LarderItem{}, err
	}
	groupNoun, err := optStrAttr(raw, "GroupNoun")
	if err != nil {
		return domain.LarderItem{}, err
	}
	checkFrequency, err := optIntAttr(raw, "CheckFrequencyInDays")
	if err != nil {
		return domain.LarderItem{}, err
	}
	minAmount, err := optFloatAttr(raw, "MinAmount")
	if err != nil {
		return domain.LarderItem{}, err
	}
	targetAmount, err := optFloatAttr(raw, "TargetAmount")
	if err != nil {
		return domain.LarderItem{}, err
	}
	buyVia, err := optStrAttr(raw, "BuyVia")
	if err != nil {
		return domain.LarderItem{}, err
	}
	var options []domain.ShopOption
	if rawOptions, err := optStrAttr(raw, "ShopOptions"); err != nil {
		return domain.LarderItem{}, err
	} else if rawOptions != "" {
		if err := json.Unmarshal([]byte(rawOptions), &options); err != nil {
			return domain.LarderItem{}, fmt.Errorf("decode shop options: %w", err)
		}
	}
	return domain.LarderItem{
		Name:               name,
		LastChecked:        time.Unix(lastChecked, 0).UTC(),
		Quantity:           quantity,
		GroupNoun:          groupNoun,
		CheckFrequencyDays: int(checkFrequency),
		MinAmount:          minAmount,
		TargetAmount:       targetAmount,
		BuyVia:             buyVia,
		ShopOptions:        options,
	}, nil
}

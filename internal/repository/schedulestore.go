package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"household-agent/internal/domain"
)

const (
	// The schedule is bucketed by day, so due queries can't look back an
	// unbounded period. Overdue tasks get run and rescheduled frequently, so
	// a few days of lookback is plenty.
	overdueLookbackDays = 3

	actionKeyIndex = "ActionKeyIndex"
)

// ScheduleStore persists schedule entries in a table partitioned by epoch
// day with a `seconds#actionKey` sort key. The zero-padded seconds prefix
// makes lexicographic sort-key order equal chronological order, so a range
// condition both selects due entries and returns them deterministically
// ordered, and the full sort key addresses the (dueTime, actionKey) identity
// for deletes. A GSI on ActionKey serves per-key lookups.
type ScheduleStore struct {
	api       dynamodbAPI
	tableName string
}

func NewScheduleStore(api dynamodbAPI, tableName string) (*ScheduleStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &ScheduleStore{api: api, tableName: tableName}, nil
}

// GetDue returns every entry due at or before now, oldest bucket first.
func (s *ScheduleStore) GetDue(ctx context.Context, now time.Time) ([]domain.ScheduleEntry, error) {
	maxSortKey := fmt.Sprintf("%012d#~", now.UTC().Unix())
	var due []domain.ScheduleEntry
	for offset := overdueLookbackDays; offset >= 0; offset-- {
		day := epochDay(now.AddDate(0, 0, -offset))
		out, err := s.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("EpochDay = :day AND EntrySK <= :max"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":day": numValue(day),
				":max": strValue(maxSortKey),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("repository: ScheduleStore.GetDue query day %d: %w", day, err)
		}
		for _, item := range out.Items {
			entry, err := itemToScheduleEntry(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ScheduleStore.GetDue decode: %w", err)
			}
			due = append(due, entry)
		}
	}
	return due, nil
}

// GetByActionKey returns every pending entry for the action key.
func (s *ScheduleStore) GetByActionKey(ctx context.Context, actionKey string) ([]domain.ScheduleEntry, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(actionKeyIndex),
		KeyConditionExpression: aws.String("ActionKey = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": strValue(actionKey),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ScheduleStore.GetByActionKey: %w", err)
	}
	entries := make([]domain.ScheduleEntry, 0, len(out.Items))
	for _, item := range out.Items {
		entry, err := itemToScheduleEntry(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ScheduleStore.GetByActionKey decode: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Put appends a schedule entry. No dedup is applied.
func (s *ScheduleStore) Put(ctx context.Context, entry domain.ScheduleEntry) error {
	if entry.ActionKey == "" {
		return errors.New("repository: ScheduleStore.Put: action key is required")
	}
	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      scheduleEntryItem(entry),
	}); err != nil {
		return fmt.Errorf("repository: ScheduleStore.Put: %w", err)
	}
	return nil
}

// Delete removes the entry addressed by its full (dueTime, actionKey)
// identity.
func (s *ScheduleStore) Delete(ctx context.Context, entry domain.ScheduleEntry) error {
	if _, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"EpochDay": numValue(epochDay(entry.DueTimeUTC)),
			"EntrySK":  strValue(entrySortKey(entry)),
		},
	}); err != nil {
		return fmt.Errorf("repository: ScheduleStore.Delete: %w", err)
	}
	return nil
}

func epochDay(t time.Time) int64 {
	return t.UTC().Unix() / (24 * 60 * 60)
}

func entrySortKey(entry domain.ScheduleEntry) string {
	return fmt.Sprintf("%012d#%s", entry.DueTimeUTC.UTC().Unix(), entry.ActionKey)
}

func scheduleEntryItem(entry domain.ScheduleEntry) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"EpochDay":  numValue(epochDay(entry.DueTimeUTC)),
		"EntrySK":   strValue(entrySortKey(entry)),
		"EpochTime": numValue(entry.DueTimeUTC.UTC().Unix()),
		"ActionKey": strValue(entry.ActionKey),
	}
}

func itemToScheduleEntry(item map[string]types.AttributeValue) (domain.ScheduleEntry, error) {
	epochTime, err := intAttr(item, "EpochTime")
	if err != nil {
		return domain.ScheduleEntry{}, err
	}
	actionKey, err := strAttr(item, "ActionKey")
	if err != nil {
		return domain.ScheduleEntry{}, err
	}
	return domain.ScheduleEntry{
		DueTimeUTC: time.Unix(epochTime, 0).UTC(),
		ActionKey:  actionKey,
	}, nil
}

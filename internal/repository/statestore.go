package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"household-agent/internal/domain"
)

// StateStore persists at most one conversation state per recipient. The
// table is keyed solely by recipient, so a plain PutItem naturally enforces
// the one-record invariant and DeleteItem on an absent record is a no-op.
type StateStore struct {
	api       dynamodbAPI
	tableName string
}

func NewStateStore(api dynamodbAPI, tableName string) (*StateStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &StateStore{api: api, tableName: tableName}, nil
}

// Get returns the recipient's conversation state, or nil when none exists.
func (s *StateStore) Get(ctx context.Context, recipient string) (*domain.ConversationState, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"Recipient": strValue(recipient),
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: StateStore.Get: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}
	state, err := itemToConversationState(out.Item)
	if err != nil {
		return nil, fmt.Errorf("repository: StateStore.Get decode: %w", err)
	}
	return &state, nil
}

// Put overwrites the recipient's conversation state wholesale.
func (s *StateStore) Put(ctx context.Context, state domain.ConversationState) error {
	if state.Recipient == "" {
		return errors.New("repository: StateStore.Put: recipient is required")
	}
	item, err := conversationStateItem(state)
	if err != nil {
		return fmt.Errorf("repository: StateStore.Put encode: %w", err)
	}
	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("repository: StateStore.Put: %w", err)
	}
	return nil
}

// Delete removes the recipient's conversation state. Absent records delete
// cleanly.
func (s *StateStore) Delete(ctx context.Context, recipient string) error {
	if _, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"Recipient": strValue(recipient),
		},
	}); err != nil {
		return fmt.Errorf("repository: StateStore.Delete: %w", err)
	}
	return nil
}

func conversationStateItem(state domain.ConversationState) (map[string]types.AttributeValue, error) {
	data := state.Data
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		"Recipient":       strValue(state.Recipient),
		"ConversationKey": strValue(state.ConversationKey),
		"State":           strValue(state.State),
		"Data":            strValue(string(encoded)),
	}, nil
}

func itemToConversationState(item map[string]types.AttributeValue) (domain.ConversationState, error) {
	recipient, err := strAttr(item, "Recipient")
	if err != nil {
		return domain.ConversationState{}, err
	}
	key, err := strAttr(item, "ConversationKey")
	if err != nil {
		return domain.ConversationState{}, err
	}
	stateName, err := strAttr(item, "State")
	if err != nil {
		return domain.ConversationState{}, err
	}
	raw, err := strAttr(item, "Data")
	if err != nil {
		return domain.ConversationState{}, err
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return domain.ConversationState{}, fmt.Errorf("decode data: %w", err)
	}
	return domain.ConversationState{
		Recipient:       recipient,
		ConversationKey: key,
		State:           stateName,
		Data:            data,
	}, nil
}

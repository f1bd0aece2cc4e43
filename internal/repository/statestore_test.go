package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"household-agent/internal/domain"
)

func mustStateStore(t *testing.T, db *fakeDynamo) *StateStore {
	t.Helper()
	s, err := NewStateStore(db, "test-conversations")
	require.NoError(t, err)
	return s
}

func TestNewStateStore_ValidatesArgs(t *testing.T) {
	_, err := NewStateStore(nil, "t")
	require.Error(t, err)
	_, err = NewStateStore(&fakeDynamo{}, " ")
	require.Error(t, err)
}

func TestStateStore_GetAbsent(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustStateStore(t, db)

	state, err := s.Get(context.Background(), "+1555")
	require.NoError(t, err)
	require.Nil(t, state)
	require.NotNil(t, db.lastGetInput)
}

func TestStateStore_PutGetRoundTrip(t *testing.T) {
	db := &fakeDynamo{}
	s := mustStateStore(t, db)

	in := domain.ConversationState{
		Recipient:       "+1555",
		ConversationKey: "larder.StockCheck",
		State:           "interpret_count",
		Data:            map[string]any{"current_item": "tuna"},
	}
	require.NoError(t, s.Put(context.Background(), in))
	require.NotNil(t, db.lastPutInput)

	// Feed the written item back through Get.
	db.getOut = &dynamodb.GetItemOutput{Item: db.lastPutInput.Item}
	got, err := s.Get(context.Background(), "+1555")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, in, *got)
}

func TestStateStore_PutNilDataStoredAsEmpty(t *testing.T) {
	db := &fakeDynamo{}
	s := mustStateStore(t, db)

	require.NoError(t, s.Put(context.Background(), domain.ConversationState{
		Recipient:       "+1555",
		ConversationKey: "greeting.Greeting",
		State:           "respond",
	}))
	db.getOut = &dynamodb.GetItemOutput{Item: db.lastPutInput.Item}

	got, err := s.Get(context.Background(), "+1555")
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, got.Data)
}

func TestStateStore_PutRequiresRecipient(t *testing.T) {
	s := mustStateStore(t, &fakeDynamo{})
	err := s.Put(context.Background(), domain.ConversationState{ConversationKey: "k", State: "s"})
	require.Error(t, err)
}

func TestStateStore_Delete(t *testing.T) {
	db := &fakeDynamo{}
	s := mustStateStore(t, db)

	require.NoError(t, s.Delete(context.Background(), "+1555"))
	require.NotNil(t, db.lastDelInput)
	key, ok := db.lastDelInput.Key["Recipient"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	require.Equal(t, "+1555", key.Value)
}

func TestStateStore_GetMalformedData(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"Recipient":       strValue("+1555"),
		"ConversationKey": strValue("k"),
		"State":           strValue("s"),
		"Data":            strValue("not-json"),
	}}}
	s := mustStateStore(t, db)

	_, err := s.Get(context.Background(), "+1555")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func TestStateStore_GetApiError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	s := mustStateStore(t, db)

	_, err := s.Get(context.Background(), "+1555")
	require.Error(t, err)
	require.Contains(t, err.Error(), "StateStore.Get")
}

package joker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"household-agent/internal/conversation"
	"household-agent/internal/domain"
)

type memStateStore struct {
	records map[string]domain.ConversationState
}

func newMemStateStore() *memStateStore {
	return &memStateStore{records: make(map[string]domain.ConversationState)}
}

func (s *memStateStore) Get(_ context.Context, recipient string) (*domain.ConversationState, error) {
	rec, ok := s.records[recipient]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *memStateStore) Put(_ context.Context, state domain.ConversationState) error {
	s.records[state.Recipient] = state
	return nil
}

func (s *memStateStore) Delete(_ context.Context, recipient string) error {
	delete(s.records, recipient)
	return nil
}

type memMessenger struct {
	sent []string
}

func (m *memMessenger) Send(_ context.Context, _ string, text string) error {
	m.sent = append(m.sent, text)
	return nil
}

type fakeJokes struct {
	joke string
	err  error
}

func (f *fakeJokes) Random(context.Context) (string, error) {
	return f.joke, f.err
}

type fixture struct {
	store     *memStateStore
	messenger *memMessenger
	jokes     *fakeJokes
	tracker   *conversation.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     newMemStateStore(),
		messenger: &memMessenger{},
		jokes:     &fakeJokes{joke: "I used to hate facial hair, but then it grew on me."},
	}
	registry := conversation.NewRegistry()
	require.NoError(t, registry.Register(Key, NewFactory(f.jokes)))
	tracker, err := conversation.NewTracker(f.store, registry, f.messenger, nil)
	require.NoError(t, err)
	f.tracker = tracker
	return f
}

func TestSpontaneous_JokeRequest(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.tracker.HandleInbound(context.Background(), "+1555", "Tell me a joke!"))
	require.Equal(t, []string{f.jokes.joke}, f.messenger.sent)
	require.Empty(t, f.store.records)
}

func TestSpontaneous_Laughter(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.tracker.HandleInbound(context.Background(), "+1555", "haha good one"))
	require.Equal(t, []string{"I'm a laugh a minute!"}, f.messenger.sent)
}

func TestSpontaneous_UnrelatedMessageDeclined(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.tracker.HandleInbound(context.Background(), "+1555", "what's the weather"))
	// Nobody handled it, so the tracker's generic fallback went out.
	require.Len(t, f.messenger.sent, 1)
	require.NotEqual(t, f.jokes.joke, f.messenger.sent[0])
}

func TestSpontaneous_JokeFetchFailureFallsThrough(t *testing.T) {
	f := newFixture(t)
	f.jokes.err = errors.New("api down")

	// The failed handler is skipped; with no other types registered the
	// fallback reply goes out and no state is left behind.
	require.NoError(t, f.tracker.HandleInbound(context.Background(), "+1555", "joke please"))
	require.Len(t, f.messenger.sent, 1)
	require.Empty(t, f.store.records)
}

func TestKnockKnock_FullExchange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tracker.HandleInbound(ctx, "+1555", "Knock knock"))
	require.Equal(t, []string{"Who's there?"}, f.messenger.sent)
	require.Equal(t, "be_told_who_is_there", f.store.records["+1555"].State)

	require.NoError(t, f.tracker.HandleInbound(ctx, "+1555", "interrupting cow"))
	require.Equal(t, "Interrupting cow who?", f.messenger.sent[1])
	require.Equal(t, "respond_to_punchline", f.store.records["+1555"].State)

	require.NoError(t, f.tracker.HandleInbound(ctx, "+1555", "MOO"))
	require.Len(t, f.messenger.sent, 3)
	require.Contains(t, punchlineReactions, f.messenger.sent[2])
	require.NotContains(t, f.store.records, "+1555")
}

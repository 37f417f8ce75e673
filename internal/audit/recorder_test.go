package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradle/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, Entry) error {
	return errors.New("connection refused")
}

func (failingStore) List(context.Context, uuid.UUID, int, int) ([]Entry, error) {
	return nil, errors.New("connection refused")
}

type capturingSink struct {
	published []Entry
}

func (s *capturingSink) Publish(_ context.Context, entry Entry) error {
	s.published = append(s.published, entry)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRecordFillsIdentityAndContext(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(store, discardLogger())

	tenantID := uuid.New()
	actorID := uuid.New()
	ctx := requestcontext.WithRequestID(context.Background(), "req-123")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "curl/8.0")

	recorder.Record(ctx, Entry{
		TenantID: tenantID,
		ActorID:  &actorID,
		Action:   ActionUserLogin,
		Success:  true,
	})

	entries := store.All()
	require.Len(t, entries, 1)
	got := entries[0]
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "req-123", got.RequestID)
	assert.Equal(t, "203.0.113.7", got.ActorIP)
	assert.Equal(t, ActorTypeUser, got.ActorType)
}

func TestRecordStoreFailureDoesNotPanic(t *testing.T) {
	recorder := NewRecorder(failingStore{}, discardLogger())

	// A failing append must never propagate to the caller.
	recorder.Record(context.Background(), Entry{
		TenantID: uuid.New(),
		Action:   ActionUserRegister,
		Success:  true,
	})
}

func TestRecordFansOutToSink(t *testing.T) {
	store := NewInMemoryStore()
	sink := &capturingSink{}
	recorder := NewRecorder(store, discardLogger(), WithSink(sink))

	recorder.Record(context.Background(), Entry{
		TenantID: uuid.New(),
		Action:   ActionUserDelete,
		Success:  true,
	})

	require.Len(t, sink.published, 1)
	assert.Equal(t, ActionUserDelete, sink.published[0].Action)
}

func TestRecordSkipsSinkWhenAppendFails(t *testing.T) {
	sink := &capturingSink{}
	recorder := NewRecorder(failingStore{}, discardLogger(), WithSink(sink))

	recorder.Record(context.Background(), Entry{
		TenantID: uuid.New(),
		Action:   ActionUserLogin,
	})

	assert.Empty(t, sink.published)
}

func TestMemoryStoreListNewestFirstAndTenantScoped(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	for _, action := range []string{ActionUserLogin, ActionTokenRefresh, ActionUserLogout} {
		require.NoError(t, store.Append(ctx, Entry{ID: uuid.New(), TenantID: tenantA, Action: action}))
	}
	require.NoError(t, store.Append(ctx, Entry{ID: uuid.New(), TenantID: tenantB, Action: ActionUserLogin}))

	entries, err := store.List(ctx, tenantA, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ActionUserLogout, entries[0].Action)

	page, err := store.List(ctx, tenantA, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ActionTokenRefresh, page[0].Action)
}

func TestDeviceSummary(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "chrome on mac",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: "Chrome on Mac OS X",
		},
		{
			name: "empty",
			ua:   "",
			want: "unknown device",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceSummary(tt.ua))
		})
	}
}

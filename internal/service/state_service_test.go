package service

import (
	"context"
	"testing"

	"contract-assistant-be/internal/constant"
	"contract-assistant-be/pkg/assistant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateServiceFreshStore(t *testing.T) {
	ctx := context.Background()
	svc := NewStateService(newStubStateRepo(), nopLogger{})

	store := svc.StoreFor(ctx, "client-1")
	messages := store.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, constant.AssistantGreeting, messages[0].Content)

	// Same live store on repeated access.
	assert.Same(t, store, svc.StoreFor(ctx, "client-1"))
	assert.NotSame(t, store, svc.StoreFor(ctx, "client-2"))
}

func TestStateServiceHydration(t *testing.T) {
	ctx := context.Background()
	repo := newStubStateRepo()

	svc := NewStateService(repo, nopLogger{})
	store := svc.StoreFor(ctx, "client-1")
	_, err := store.AddRecord(assistant.ContractRecord{NoticeID: "n1", Title: "Roof Repair"})
	require.NoError(t, err)
	store.AppendUser("when is this due?")
	svc.Persist(ctx, "client-1", store)
	require.Greater(t, repo.saveCount(), 0)

	// A new service instance over the same repository sees the snapshot.
	reloaded := NewStateService(repo, nopLogger{}).StoreFor(ctx, "client-1")
	records := reloaded.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "n1", records[0].NoticeID)
	messages := reloaded.Messages()
	assert.Equal(t, "when is this due?", messages[len(messages)-1].Content)
}

func TestStateServiceCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newStubStateRepo()
	repo.data["client-1"] = []byte("{not json")

	store := NewStateService(repo, nopLogger{}).StoreFor(ctx, "client-1")
	messages := store.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, constant.AssistantGreeting, messages[0].Content)
	assert.Empty(t, store.Records())
}

func TestStateServiceEvict(t *testing.T) {
	ctx := context.Background()
	repo := newStubStateRepo()
	svc := NewStateService(repo, nopLogger{})

	store := svc.StoreFor(ctx, "client-1")
	_, err := store.AddRecord(assistant.ContractRecord{NoticeID: "n1", Title: "Roof Repair"})
	require.NoError(t, err)
	svc.Persist(ctx, "client-1", store)

	svc.Evict("client-1")
	rehydrated := svc.StoreFor(ctx, "client-1")
	assert.NotSame(t, store, rehydrated)
	require.Len(t, rehydrated.Records(), 1)
}

package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePublishFansOut(t *testing.T) {
	store := NewMemoryStore()

	var got []string
	unsubscribe := store.Subscribe(PathStats, func(s Snapshot) {
		got = append(got, string(s))
	})
	defer unsubscribe()

	err := store.Publish(context.Background(), PathStats, map[string]int{"sms_today": 5})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.JSONEq(t, `{"sms_today":5}`, got[0])
}

func TestMemoryStoreSubscribeDeliversCurrentValue(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Publish(context.Background(), PathTeam, []string{"alice"}))

	var got []string
	unsubscribe := store.Subscribe(PathTeam, func(s Snapshot) {
		got = append(got, string(s))
	})
	defer unsubscribe()

	// The stored snapshot arrives without waiting for the next publish.
	require.Len(t, got, 1)
	assert.JSONEq(t, `["alice"]`, got[0])
}

func TestMemoryStoreSubscribeWithoutValueDeliversNothing(t *testing.T) {
	store := NewMemoryStore()

	calls := 0
	unsubscribe := store.Subscribe(PathCountries, func(Snapshot) { calls++ })
	defer unsubscribe()

	assert.Zero(t, calls)
}

func TestMemoryStoreUnsubscribeStopsDelivery(t *testing.T) {
	store := NewMemoryStore()

	calls := 0
	unsubscribe := store.Subscribe(PathMessages, func(Snapshot) { calls++ })

	require.NoError(t, store.Publish(context.Background(), PathMessages, "first"))
	unsubscribe()
	unsubscribe() // calling twice is safe
	require.NoError(t, store.Publish(context.Background(), PathMessages, "second"))

	assert.Equal(t, 1, calls)
}

func TestMemoryStorePathsAreIndependent(t *testing.T) {
	store := NewMemoryStore()

	calls := 0
	unsubscribe := store.Subscribe(NumbersPath("INDONESIA"), func(Snapshot) { calls++ })
	defer unsubscribe()

	require.NoError(t, store.Publish(context.Background(), NumbersPath("MALAYSIA"), []string{"999"}))
	assert.Zero(t, calls)

	require.NoError(t, store.Publish(context.Background(), NumbersPath("INDONESIA"), []string{"111"}))
	assert.Equal(t, 1, calls)
}

func TestMemoryStoreCurrent(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Current(PathStats)
	assert.False(t, ok)

	require.NoError(t, store.Publish(context.Background(), PathStats, 7))
	v, ok := store.Current(PathStats)
	require.True(t, ok)
	assert.Equal(t, "7", string(v))
}

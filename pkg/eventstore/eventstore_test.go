package eventstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	store := New(10, time.Hour)

	event := store.Add("trace-1", TypeDeliveryStart, "scheduler", "starting", nil, 0)

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, 1, store.Len())
}

func TestMaxSizeDropsOldest(t *testing.T) {
	store := New(3, time.Hour)

	for i := 0; i < 5; i++ {
		store.Add("trace-1", TypeError, "test", fmt.Sprintf("event %d", i), nil, 0)
	}

	assert.Equal(t, 3, store.Len())
	events := store.All()
	assert.Equal(t, "event 2", events[0].Message)
	assert.Equal(t, "event 4", events[2].Message)
}

func TestRecent(t *testing.T) {
	store := New(10, time.Hour)
	for i := 0; i < 5; i++ {
		store.Add("trace-1", TypeError, "test", fmt.Sprintf("event %d", i), nil, 0)
	}

	recent := store.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "event 3", recent[0].Message)
	assert.Equal(t, "event 4", recent[1].Message)

	assert.Len(t, store.Recent(0), 5)
	assert.Len(t, store.Recent(100), 5)
}

func TestByTrace(t *testing.T) {
	store := New(10, time.Hour)
	store.Add("trace-a", TypeDeliveryStart, "scheduler", "start a", nil, 0)
	store.Add("trace-b", TypeDeliveryStart, "scheduler", "start b", nil, 0)
	store.Add("trace-a", TypeDeliveryComplete, "scheduler", "done a", nil, 100)

	events := store.ByTrace("trace-a")
	require.Len(t, events, 2)
	assert.Equal(t, "start a", events[0].Message)
	assert.Equal(t, "done a", events[1].Message)

	assert.Empty(t, store.ByTrace("trace-c"))
}

func TestByType(t *testing.T) {
	store := New(10, time.Hour)
	for i := 0; i < 4; i++ {
		store.Add("trace-1", TypeError, "test", fmt.Sprintf("error %d", i), nil, 0)
	}
	store.Add("trace-1", TypeFetchComplete, "aggregator", "fetched", nil, 0)

	errs := store.ByType(TypeError, 2)
	require.Len(t, errs, 2)
	assert.Equal(t, "error 2", errs[0].Message)
	assert.Equal(t, "error 3", errs[1].Message)

	assert.Len(t, store.ByType(TypeError, 0), 4)
	assert.Len(t, store.ByType(TypeFetchComplete, 10), 1)
}

func TestPurgeOlderThan(t *testing.T) {
	store := New(10, time.Hour)

	clock := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.Add("trace-1", TypeError, "test", "old event", nil, 0)
	clock = clock.Add(30 * time.Minute)
	store.Add("trace-1", TypeError, "test", "new event", nil, 0)

	clock = clock.Add(45 * time.Minute)
	removed := store.PurgeOlderThan(time.Hour)

	assert.Equal(t, 1, removed)
	events := store.All()
	require.Len(t, events, 1)
	assert.Equal(t, "new event", events[0].Message)
}

func TestPurgeOlderThanUsesStoreDefault(t *testing.T) {
	store := New(10, time.Minute)

	clock := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.Add("trace-1", TypeError, "test", "aged out", nil, 0)
	clock = clock.Add(2 * time.Minute)

	assert.Equal(t, 1, store.PurgeOlderThan(0))
	assert.Equal(t, 0, store.Len())
}

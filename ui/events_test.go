package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderboard/domain/core"
	"orderboard/domain/order"
)

func TestEventHubBroadcastsDatasetLoads(t *testing.T) {
	hub := NewEventHub(nil)
	defer hub.Close()

	client, ok := hub.subscribe()
	require.True(t, ok)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	tables, err := order.DefaultStatusTables()
	require.NoError(t, err)
	rows := []order.Row{{Code: "X1"}, {Code: "X2"}}
	ds := order.NewDataset(core.NewSourceID("s", "0"), core.NewHash([]byte("x")), time.Now(), rows, tables, order.LoadReport{})

	hub.DatasetLoaded(ds)

	select {
	case event := <-client:
		assert.Equal(t, "dataset_loaded", event.EventType)
		assert.Equal(t, ds.LoadID.String(), event.LoadID)
		assert.Equal(t, 2, event.Rows)
	case <-time.After(time.Second):
		t.Fatal("Expected a dataset_loaded event")
	}

	hub.unsubscribe(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestEventHubCloseDisconnectsClients(t *testing.T) {
	hub := NewEventHub(nil)
	client, ok := hub.subscribe()
	require.True(t, ok)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	hub.Close()

	select {
	case _, open := <-client:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("Expected client channel to close")
	}
	_, ok = hub.subscribe()
	assert.False(t, ok)
}

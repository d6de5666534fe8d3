package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/logger"
)

func testHub() *Hub {
	log := logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "console",
		Database:  config.DatabaseConfig{URL: "dummy"},
	})
	return NewHub(log)
}

// dialHub connects a websocket client and waits for the hub to register it
func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "websocket dial failed")

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func alertEvent(contractID int64) AlertEvent {
	return AlertEvent{
		ContractID: contractID,
		Alert: domain.AlertPoint{
			KPIType:      domain.KPIRepairs,
			Date:         time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			AlertLevel:   domain.AlertRed,
			DeltaPercent: 60.0,
			Spike:        true,
		},
		ScannedAt: time.Date(2024, time.June, 2, 7, 0, 0, 0, time.UTC),
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) AlertEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err, "read from alert stream failed")

	var event AlertEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHub_BroadcastReachesSubscriber(t *testing.T) {
	hub := testHub()
	defer hub.Close()

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	hub.Broadcast(alertEvent(42))

	event := readEvent(t, conn)
	assert.Equal(t, int64(42), event.ContractID)
	assert.Equal(t, domain.KPIRepairs, event.Alert.KPIType)
	assert.Equal(t, domain.AlertRed, event.Alert.AlertLevel)
	assert.True(t, event.Alert.Spike)
}

func TestHub_RelayDeliversPublishedEvents(t *testing.T) {
	hub := testHub()
	defer hub.Close()

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	// The scheduler publishes marshalled events; the relay must decode
	// them and fan them out to stream subscribers
	events := make(chan []byte, 2)
	done := make(chan struct{})
	go func() {
		hub.Relay(events)
		close(done)
	}()

	payload, err := json.Marshal(alertEvent(7))
	require.NoError(t, err)

	// A malformed payload is dropped without stopping the relay
	events <- []byte("not json")
	events <- payload
	close(events)

	event := readEvent(t, conn)
	assert.Equal(t, int64(7), event.ContractID)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop when its source closed")
	}
}

func TestHub_CloseDisconnectsSubscribers(t *testing.T) {
	hub := testHub()

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	hub.Close()
	assert.Equal(t, 0, hub.SubscriberCount())

	// The peer observes the close once the write pump drains
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

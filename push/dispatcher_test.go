package push

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func testAlert() models.Alert {
	return models.Alert{
		ID:           7,
		RestaurantID: "rest1",
		TableNumber:  5,
		AlertType:    models.AlertServiceWater,
		Message:      "Water refill",
		Priority:     models.PriorityMedium,
		CreatedAt:    time.Now(),
	}
}

func TestNewAlertPayload(t *testing.T) {
	d := NewDispatcher(nil, NewHub(), nil, "https://qrbell.example/")

	p := d.NewAlertPayload(testAlert())

	assert.Equal(t, "Table 5: water requested", p.Title)
	assert.Equal(t, "Water refill", p.Body)
	assert.Equal(t, "alert-7", p.Tag)
	assert.Equal(t, uint(7), p.Data.AlertID)
	assert.Equal(t, 5, p.Data.TableNumber)
	assert.Equal(t, models.AlertServiceWater, p.Data.Type)
	assert.Equal(t, "https://qrbell.example/staff/tables?restaurant=rest1&table=5", p.Data.URL)

	assert.Len(t, p.Actions, 2)
	assert.Equal(t, "acknowledge", p.Actions[0].Action)
	assert.Equal(t, "view", p.Actions[1].Action)
}

func TestNewAlertPayloadFlagsUrgency(t *testing.T) {
	d := NewDispatcher(nil, NewHub(), nil, "https://qrbell.example")

	alert := testAlert()
	alert.Priority = models.PriorityCritical
	p := d.NewAlertPayload(alert)
	assert.True(t, strings.HasPrefix(p.Title, "❗"))
}

func TestResolvedPayload(t *testing.T) {
	d := NewDispatcher(nil, NewHub(), nil, "https://qrbell.example")

	p := d.ResolvedPayload(testAlert(), "tablet-3")

	assert.Equal(t, "Alert resolved", p.Title)
	assert.Contains(t, p.Body, "by tablet-3")
	assert.Equal(t, "alert-7-resolved", p.Tag)
	assert.Len(t, p.Actions, 1)
	assert.Equal(t, "view", p.Actions[0].Action)
}

func TestHubBroadcastScopedToRestaurant(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, r.URL.Query().Get("restaurant"))
	}))
	defer srv.Close()

	dial := func(restaurant string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?restaurant=" + restaurant
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		assert.NoError(t, err)
		return conn
	}

	connA := dial("rest1")
	defer connA.Close()
	connB := dial("rest2")
	defer connB.Close()

	// Registration happens in the server goroutine; wait for both.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount("rest1") > 0 && hub.ClientCount("rest2") > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast("rest1", []byte(`{"tag":"alert-1"}`))

	connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := connA.ReadMessage()
	assert.NoError(t, err)

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "alert-1", payload["tag"])

	// The other restaurant's device must hear nothing.
	connB.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err)
}

func TestConfirmDeliveryRecordsRow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.NotificationDelivery{}))

	d := NewDispatcher(db, NewHub(), nil, "https://qrbell.example")

	deliveredAt := time.Now().Add(-time.Second)
	d.ConfirmDelivery(7, deliveredAt)

	var row models.NotificationDelivery
	assert.NoError(t, db.First(&row).Error)
	assert.Equal(t, uint(7), row.AlertID)
	assert.WithinDuration(t, deliveredAt, row.DeliveredAt, time.Millisecond)
}

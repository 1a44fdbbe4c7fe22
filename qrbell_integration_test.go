package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/push"
	"github.com/qrbell/qrbell/router"
	"github.com/qrbell/qrbell/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration drives the main flow:
// 1. Customer scans the menu QR at table 5 -> scan recorded, table occupied
// 2. Customer requests water -> alert created
// 3. Staff lists open alerts
// 4. Staff acknowledges -> alert resolved, second acknowledge is a no-op
// 5. Device agent confirms delivery of the notification
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB()
	hub := push.NewHub()
	dispatcher := push.NewDispatcher(db, hub, nil, "http://localhost:8080")
	r := router.SetupRouter(db, hub, dispatcher)

	// 1. Menu scan
	req := httptest.NewRequest(http.MethodGet,
		"/track/rest1/menu?table=5&redirect=https%3A%2F%2Fexample.com%2Fmenu", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)

	var table models.Table
	assert.NoError(t, db.Where("restaurant_id = ? AND table_number = ?", "rest1", 5).First(&table).Error)
	assert.Equal(t, models.TableOccupied, table.Status)

	// 2. Service request
	body, _ := json.Marshal(map[string]interface{}{
		"restaurantId": "rest1",
		"tableNumber":  5,
		"serviceType":  "water",
		"urgent":       false,
	})
	req = httptest.NewRequest(http.MethodPost, "/service/request", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var serviceResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &serviceResp))
	alertID := int(serviceResp["alertId"].(float64))

	// 3. Open alerts for the restaurant
	req = httptest.NewRequest(http.MethodGet, "/tables/rest1/alerts", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var alerts []models.Alert
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	assert.Len(t, alerts, 1)
	assert.Equal(t, uint(alertID), alerts[0].ID)

	// 4. Acknowledge twice; the first resolution's timestamp wins
	resolveURL := fmt.Sprintf("/tables/rest1/alerts/%d/resolve", alertID)
	ackBody, _ := json.Marshal(map[string]string{"resolved_by": "tablet-3"})
	req = httptest.NewRequest(http.MethodPut, resolveURL, bytes.NewBuffer(ackBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resolved models.Alert
	assert.NoError(t, db.First(&resolved, alertID).Error)
	firstTS := *resolved.ResolvedAt

	req = httptest.NewRequest(http.MethodPut, resolveURL, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, db.First(&resolved, alertID).Error)
	assert.True(t, resolved.Resolved)
	assert.WithinDuration(t, firstTS, *resolved.ResolvedAt, time.Millisecond)

	req = httptest.NewRequest(http.MethodGet, "/tables/rest1/alerts", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	assert.Len(t, alerts, 0)

	// 5. Delivery confirmation
	deliveredBody, _ := json.Marshal(map[string]interface{}{
		"alertId":     alertID,
		"deliveredAt": time.Now().UTC().Format(time.RFC3339),
	})
	req = httptest.NewRequest(http.MethodPost, "/notifications/delivered", bytes.NewBuffer(deliveredBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var delivery models.NotificationDelivery
	assert.NoError(t, db.First(&delivery).Error)
	assert.Equal(t, uint(alertID), delivery.AlertID)
}

func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.Restaurant{},
		&models.Table{},
		&models.Scan{},
		&models.Alert{},
		&models.NotificationDelivery{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	return db
}

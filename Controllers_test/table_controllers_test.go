package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/qrbell/qrbell/controllers"
	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/services"
	"github.com/qrbell/qrbell/utils"
)

func setupTestDBForTables(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Table{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func setupTableRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	tableCtrl := controllers.NewTableController(services.NewTableState(db))
	router.GET("/tables/:restaurant_id/status", tableCtrl.GetStatus)
	router.GET("/tables/:restaurant_id/summary", tableCtrl.GetSummary)
	router.PUT("/tables/:restaurant_id/:table_number/status", tableCtrl.UpdateStatus)
	return router
}

func TestUpdateAndListTableStatus(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	payload, _ := json.Marshal(map[string]interface{}{
		"status":     "occupied",
		"party_size": 4,
	})
	req := httptest.NewRequest(http.MethodPut, "/tables/rest1/5/status", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])

	req = httptest.NewRequest(http.MethodGet, "/tables/rest1/status", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var tables []map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	assert.Len(t, tables, 1)
	assert.Equal(t, "occupied", tables[0]["status"])
	assert.Equal(t, float64(4), tables[0]["party_size"])
	assert.NotNil(t, tables[0]["seated_at"])
}

func TestUpdateTableStatusRejectsUnknownStatus(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	payload, _ := json.Marshal(map[string]string{"status": "underwater"})
	req := httptest.NewRequest(http.MethodPut, "/tables/rest1/5/status", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTableStatusRejectsBadTableNumber(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	payload, _ := json.Marshal(map[string]string{"status": "occupied"})
	req := httptest.NewRequest(http.MethodPut, "/tables/rest1/zero/status", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTableSummary(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	ts := services.NewTableState(db)
	ps := 2
	_, _ = ts.Transition("rest1", 1, models.TableOccupied, &ps)
	_, _ = ts.Transition("rest1", 2, models.TableAvailable, nil)

	router := setupTableRouter(db)
	req := httptest.NewRequest(http.MethodGet, "/tables/rest1/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["occupied"])
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/qrbell/qrbell/config"
	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/push"
	"github.com/qrbell/qrbell/router"
	"github.com/qrbell/qrbell/services"
	"github.com/qrbell/qrbell/utils"
	"gorm.io/gorm"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)
	defer func() {
		if err := utils.CloseDB(); err != nil {
			utils.ErrorLogger.Printf("Error closing database: %v", err)
		}
	}()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Push delivery: local websocket hub plus optional Redis fanout to
	// sibling instances.
	hub := push.NewHub()
	rdb := config.NewRedisClient()
	if rdb == nil && os.Getenv("REDIS_ADDR") != "" {
		utils.ErrorLogger.Printf("Redis unreachable at %s, fanout disabled", os.Getenv("REDIS_ADDR"))
	}
	dispatcher := push.NewDispatcher(db, hub, rdb, baseURL())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.StartFanout(ctx)

	ledger := services.NewAlertLedger(db)
	monitor := services.NewOccupancyMonitor(db, ledger, dispatcher)
	if v := os.Getenv("STALE_TABLE_SWEEP"); v == "off" {
		utils.InfoLogger.Println("Occupancy monitor disabled")
	} else {
		monitor.Start()
		defer monitor.Stop()
	}

	r := router.SetupRouter(db, hub, dispatcher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Restaurant{},
		&models.Table{},
		&models.Scan{},
		&models.Alert{},
		&models.NotificationDelivery{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

func baseURL() string {
	if v := os.Getenv("APP_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

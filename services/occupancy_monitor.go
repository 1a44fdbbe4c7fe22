package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/utils"
)

// OccupancyMonitor sweeps for tables that have been occupied past their
// estimated duration and raises a long_occupancy alert so staff can check
// on the party. At most one such alert is raised per sitting: a new one
// is only created when no long_occupancy alert exists since seated_at.
type OccupancyMonitor struct {
	DB       *gorm.DB
	Ledger   *AlertLedger
	Notifier AlertNotifier
	Interval time.Duration
	StopChan chan struct{}
}

func NewOccupancyMonitor(db *gorm.DB, ledger *AlertLedger, notifier AlertNotifier) *OccupancyMonitor {
	return &OccupancyMonitor{
		DB:       db,
		Ledger:   ledger,
		Notifier: notifier,
		Interval: 1 * time.Minute,
		StopChan: make(chan struct{}),
	}
}

func (om *OccupancyMonitor) Start() {
	go func() {
		ticker := time.NewTicker(om.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				om.Sweep()
			case <-om.StopChan:
				return
			}
		}
	}()
}

func (om *OccupancyMonitor) Stop() {
	close(om.StopChan)
}

// Sweep runs one pass. Each overdue table is handled independently; a
// failure on one table is logged and does not stop the pass.
func (om *OccupancyMonitor) Sweep() {
	var tables []models.Table
	err := om.DB.Where("status = ? AND seated_at IS NOT NULL", models.TableOccupied).
		Find(&tables).Error
	if err != nil {
		utils.ErrorLogger.Printf("occupancy sweep: %v", err)
		return
	}

	now := time.Now()
	for _, table := range tables {
		deadline := table.SeatedAt.Add(time.Duration(table.EstimatedMinutes) * time.Minute)
		if now.Before(deadline) {
			continue
		}

		var count int64
		err := om.DB.Model(&models.Alert{}).
			Where("restaurant_id = ? AND table_number = ? AND alert_type = ? AND created_at >= ?",
				table.RestaurantID, table.TableNumber, models.AlertLongStay, *table.SeatedAt).
			Count(&count).Error
		if err != nil {
			utils.ErrorLogger.Printf("occupancy sweep: table %d: %v", table.TableNumber, err)
			continue
		}
		if count > 0 {
			continue
		}

		msg := fmt.Sprintf("Table %d occupied for over %d minutes", table.TableNumber, table.EstimatedMinutes)
		alert, err := om.Ledger.Create(table.RestaurantID, table.TableNumber, models.AlertLongStay, msg, models.PriorityHigh)
		if err != nil {
			utils.ErrorLogger.Printf("occupancy sweep: table %d: %v", table.TableNumber, err)
			continue
		}
		utils.InfoLogger.Printf("Long occupancy alert %d raised for %s table %d",
			alert.ID, table.RestaurantID, table.TableNumber)
		if om.Notifier != nil {
			om.Notifier.NotifyNewAlert(alert)
		}
	}
}

package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/utils"
)

// ClientMeta is the request metadata captured with a scan.
type ClientMeta struct {
	UserAgent string
	SourceIP  string
	Referrer  string
}

// ScanRecorder appends visit events. Scans are immutable; nothing in
// this service updates or deletes a recorded row.
type ScanRecorder struct {
	DB     *gorm.DB
	Tables *TableState
}

func NewScanRecorder(db *gorm.DB, tables *TableState) *ScanRecorder {
	return &ScanRecorder{DB: db, Tables: tables}
}

// Record persists one scan event and returns its assigned ID. The owning
// restaurant row is created if absent; an existing display name is never
// overwritten.
//
// A menu scan carrying a table number is treated as evidence the table is
// occupied and triggers a status transition as a secondary effect. That
// transition is best-effort: its failure is logged and the recorded scan
// is still returned.
func (sr *ScanRecorder) Record(restaurantID, scanType string, tableNumber *int, meta ClientMeta) (uint, error) {
	if err := EnsureRestaurant(sr.DB, restaurantID); err != nil {
		return 0, err
	}

	scan := models.Scan{
		RestaurantID: restaurantID,
		ScanType:     scanType,
		TableNumber:  tableNumber,
		UserAgent:    meta.UserAgent,
		SourceIP:     meta.SourceIP,
		Referrer:     meta.Referrer,
		CreatedAt:    time.Now(),
	}
	if err := sr.DB.Create(&scan).Error; err != nil {
		return 0, err
	}

	if scanType == models.ScanMenu && tableNumber != nil {
		if _, err := sr.Tables.Transition(restaurantID, *tableNumber, models.TableOccupied, nil); err != nil {
			utils.ErrorLogger.Printf("scan %d: occupancy transition for table %d failed: %v",
				scan.ID, *tableNumber, err)
		}
	}

	return scan.ID, nil
}

// EnsureRestaurant inserts the tenant row if it does not exist yet. The
// insert uses ON CONFLICT DO NOTHING so a concurrent first touch cannot
// fail and an existing name is left alone.
func EnsureRestaurant(db *gorm.DB, restaurantID string) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Restaurant{
			ID:        restaurantID,
			Name:      restaurantID,
			CreatedAt: time.Now(),
		}).Error
}

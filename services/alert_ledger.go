package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qrbell/qrbell/models"
)

// AlertLedger owns the open -> resolved lifecycle of alerts. Resolution
// is a single conditional UPDATE, which makes the transition one-way and
// idempotent: when two staff devices race on the same alert exactly one
// write lands and the stored resolution timestamp is never overwritten.
type AlertLedger struct {
	DB *gorm.DB
}

func NewAlertLedger(db *gorm.DB) *AlertLedger {
	return &AlertLedger{DB: db}
}

// Create inserts a new unresolved alert. Repeated identical alerts for
// the same table are permitted and create independent rows; suppression
// is the caller's business.
func (al *AlertLedger) Create(restaurantID string, tableNumber int, alertType, message, priority string) (models.Alert, error) {
	if priority == "" {
		priority = models.PriorityMedium
	}

	alert := models.Alert{
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
		AlertType:    alertType,
		Message:      message,
		Priority:     priority,
		CreatedAt:    time.Now(),
	}

	if err := EnsureRestaurant(al.DB, restaurantID); err != nil {
		return alert, err
	}
	err := al.DB.Create(&alert).Error
	return alert, err
}

// Resolve marks an alert resolved if it is still open. The WHERE clause
// on resolved=false is the whole race story: a second call, concurrent
// or later, matches zero rows and leaves the original timestamp intact.
//
// Both the already-resolved and the not-found cases are success no-ops;
// the returned alert is nil only when the id does not exist.
func (al *AlertLedger) Resolve(alertID uint, resolvedBy string) (bool, *models.Alert, error) {
	updates := map[string]interface{}{
		"resolved":    true,
		"resolved_at": time.Now(),
	}
	if resolvedBy != "" {
		updates["resolved_by"] = resolvedBy
	}

	res := al.DB.Model(&models.Alert{}).
		Where("id = ? AND resolved = ?", alertID, false).
		Updates(updates)
	if res.Error != nil {
		return false, nil, res.Error
	}

	var alert models.Alert
	if err := al.DB.First(&alert, alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return res.RowsAffected > 0, &alert, nil
}

// ListOpen returns unresolved alerts for a restaurant, most recent first.
func (al *AlertLedger) ListOpen(restaurantID string) ([]models.Alert, error) {
	var alerts []models.Alert
	err := al.DB.Where("restaurant_id = ? AND resolved = ?", restaurantID, false).
		Order("created_at DESC, id DESC").
		Find(&alerts).Error
	return alerts, err
}

// Get fetches one alert; returns nil without error when it is missing.
func (al *AlertLedger) Get(alertID uint) (*models.Alert, error) {
	var alert models.Alert
	if err := al.DB.First(&alert, alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

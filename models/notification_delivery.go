package models

import "time"

// NotificationDelivery records that a dispatched push reached a device.
// Purely observational: nothing in the alert lifecycle reads it back.
type NotificationDelivery struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AlertID     uint      `gorm:"not null;index" json:"alert_id"`
	DeliveredAt time.Time `gorm:"not null" json:"delivered_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

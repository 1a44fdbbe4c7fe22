package models

import "time"

// Restaurant is the tenant row. The ID is the opaque key carried in QR
// code URLs; it is created lazily on the first scan or alert that
// references it and is never deleted by this service.
type Restaurant struct {
	ID        string    `gorm:"type:varchar(100);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

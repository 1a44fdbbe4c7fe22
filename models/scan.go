package models

import "time"

// Scan types a QR code can encode.
const (
	ScanMenu    = "menu"
	ScanReview  = "review"
	ScanWifi    = "wifi"
	ScanSurvey  = "survey"
	ScanContact = "contact"
)

// Scan is an append-only visit event. Rows are never updated or deleted;
// analytics reads them elsewhere.
type Scan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID string    `gorm:"type:varchar(100);not null;index" json:"restaurant_id"`
	ScanType     string    `gorm:"type:varchar(30);not null" json:"scan_type"`
	TableNumber  *int      `json:"table_number,omitempty"`
	UserAgent    string    `gorm:"type:varchar(500)" json:"user_agent"`
	SourceIP     string    `gorm:"type:varchar(45)" json:"source_ip"`
	Referrer     string    `gorm:"type:varchar(500)" json:"referrer"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// ValidScanType reports whether s is a known scan type.
func ValidScanType(s string) bool {
	switch s {
	case ScanMenu, ScanReview, ScanWifi, ScanSurvey, ScanContact:
		return true
	}
	return false
}

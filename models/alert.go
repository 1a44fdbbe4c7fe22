package models

import "time"

// Alert types: staff-service requests raised by customers plus
// system-detected conditions.
const (
	AlertServiceWater = "service_water"
	AlertServiceBill  = "service_bill"
	AlertServiceHelp  = "service_help"
	AlertServiceOrder = "service_order"
	AlertSpillCleanup = "spill_cleanup"
	AlertLongStay     = "long_occupancy"
)

// Alert priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Alert is a service request or operational notice tied to a table.
// Lifecycle is open -> resolved, one-way; ResolvedAt is written exactly
// once by the conditional update in services.AlertLedger.
type Alert struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID string     `gorm:"type:varchar(100);not null;index:idx_alerts_open" json:"restaurant_id"`
	TableNumber  int        `gorm:"not null" json:"table_number"`
	AlertType    string     `gorm:"type:varchar(30);not null" json:"alert_type"`
	Message      string     `gorm:"type:text" json:"message"`
	Priority     string     `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Resolved     bool       `gorm:"not null;default:false;index:idx_alerts_open" json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy   *string    `gorm:"type:varchar(100)" json:"resolved_by,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

// ValidAlertType reports whether s is a known alert type.
func ValidAlertType(s string) bool {
	switch s {
	case AlertServiceWater, AlertServiceBill, AlertServiceHelp,
		AlertServiceOrder, AlertSpillCleanup, AlertLongStay:
		return true
	}
	return false
}

// ValidPriority reports whether s is a known priority.
func ValidPriority(s string) bool {
	switch s {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

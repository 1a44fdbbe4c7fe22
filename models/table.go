package models

import "time"

// Table status values. Transition order between them is not enforced
// unless strict mode is enabled (see services.TableState).
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
	TableCleaning  = "cleaning"
)

// Table holds the occupancy state of one physical table. Exactly one row
// exists per (restaurant, table number); every write goes through an
// atomic upsert keyed on the composite unique index.
type Table struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	RestaurantID     string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_restaurant_table" json:"restaurant_id"`
	TableNumber      int        `gorm:"not null;uniqueIndex:idx_restaurant_table" json:"table_number"`
	Status           string     `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	PartySize        int        `gorm:"not null;default:0" json:"party_size"`
	SeatedAt         *time.Time `json:"seated_at,omitempty"`
	LastActivity     time.Time  `gorm:"not null" json:"last_activity"`
	EstimatedMinutes int        `gorm:"not null;default:60" json:"estimated_minutes"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

// ValidTableStatus reports whether s is one of the known status values.
func ValidTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return true
	}
	return false
}

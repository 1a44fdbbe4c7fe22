package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qrbell/qrbell/models"
)

// ErrInvalidTransition is returned in strict mode when a status change is
// not allowed from the table's current status.
var ErrInvalidTransition = errors.New("status transition not allowed")

// TableState applies occupancy transitions. All writes are atomic
// conditional upserts keyed on the (restaurant_id, table_number) unique
// index; the database is the only serialization point, so concurrent
// transitions for the same table never produce duplicate rows or lost
// updates.
//
// By default any status may follow any other. The business states are
// ordered by convention only; this permissiveness is deliberate and is
// kept behind the Strict flag rather than hard-coded away.
type TableState struct {
	DB     *gorm.DB
	Strict bool
}

func NewTableState(db *gorm.DB) *TableState {
	return &TableState{DB: db}
}

// strict-mode legality map; only consulted when Strict is set.
var allowedNext = map[string][]string{
	models.TableAvailable: {models.TableOccupied, models.TableReserved},
	models.TableReserved:  {models.TableOccupied, models.TableAvailable},
	models.TableOccupied:  {models.TableCleaning, models.TableAvailable},
	models.TableCleaning:  {models.TableAvailable},
}

// Transition upserts the status row for (restaurantID, tableNumber).
//
// Entering "occupied" sets seated_at only if the table is not already
// seated; re-affirming occupancy keeps the original seating clock. Any
// other status clears seated_at. last_activity is bumped on every call
// whether or not the status actually changed. A nil partySize keeps the
// stored value.
func (ts *TableState) Transition(restaurantID string, tableNumber int, status string, partySize *int) (models.Table, error) {
	var table models.Table

	if ts.Strict {
		var current models.Table
		err := ts.DB.Where("restaurant_id = ? AND table_number = ?", restaurantID, tableNumber).
			First(&current).Error
		if err == nil && current.Status != status && !transitionAllowed(current.Status, status) {
			return table, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return table, err
		}
	}

	now := time.Now()
	res := ts.upsertUpdate(restaurantID, tableNumber, status, partySize, now)
	if res.Error != nil {
		return table, res.Error
	}

	if res.RowsAffected == 0 {
		row := models.Table{
			RestaurantID: restaurantID,
			TableNumber:  tableNumber,
			Status:       status,
			LastActivity: now,
		}
		if partySize != nil {
			row.PartySize = *partySize
		}
		if status == models.TableOccupied {
			row.SeatedAt = &now
		}
		ins := ts.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "table_number"}},
			DoNothing: true,
		}).Create(&row)
		if ins.Error != nil {
			return table, ins.Error
		}
		// Lost the insert race: another request created the row first,
		// so apply the update after all.
		if ins.RowsAffected == 0 {
			if res = ts.upsertUpdate(restaurantID, tableNumber, status, partySize, now); res.Error != nil {
				return table, res.Error
			}
		}
	}

	err := ts.DB.Where("restaurant_id = ? AND table_number = ?", restaurantID, tableNumber).
		First(&table).Error
	return table, err
}

func (ts *TableState) upsertUpdate(restaurantID string, tableNumber int, status string, partySize *int, now time.Time) *gorm.DB {
	return ts.DB.Exec(`UPDATE tables
		SET status = ?,
		    party_size = COALESCE(?, party_size),
		    seated_at = CASE WHEN ? = 'occupied' THEN COALESCE(seated_at, ?) ELSE NULL END,
		    last_activity = ?,
		    updated_at = ?
		WHERE restaurant_id = ? AND table_number = ?`,
		status, partySize, status, now, now, now, restaurantID, tableNumber)
}

// List returns all status rows for a restaurant ordered by table number.
func (ts *TableState) List(restaurantID string) ([]models.Table, error) {
	var tables []models.Table
	err := ts.DB.Where("restaurant_id = ?", restaurantID).
		Order("table_number ASC").
		Find(&tables).Error
	return tables, err
}

// Summary counts tables per status for a restaurant.
func (ts *TableState) Summary(restaurantID string) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := ts.DB.Model(&models.Table{}).
		Select("status, COUNT(*) as count").
		Where("restaurant_id = ?", restaurantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := map[string]int64{"total": 0}
	for _, r := range rows {
		summary[r.Status] = r.Count
		summary["total"] += r.Count
	}
	return summary, nil
}

func transitionAllowed(from, to string) bool {
	for _, s := range allowedNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

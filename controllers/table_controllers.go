package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/services"
	"github.com/qrbell/qrbell/utils"
)

type TableController struct {
	Tables *services.TableState
}

func NewTableController(tables *services.TableState) *TableController {
	return &TableController{Tables: tables}
}

// GetStatus -> GET /tables/:restaurant_id/status
// Returns every table row for the restaurant, ordered by table number.
func (tc *TableController) GetStatus(c *gin.Context) {
	tables, err := tc.Tables.List(c.Param("restaurant_id"))
	if err != nil {
		utils.ErrorLogger.Printf("list tables: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// UpdateStatus -> PUT /tables/:restaurant_id/:table_number/status
func (tc *TableController) UpdateStatus(c *gin.Context) {
	tableNumber, err := strconv.Atoi(c.Param("table_number"))
	if err != nil || tableNumber <= 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrBadTableNumber)
		return
	}

	var body struct {
		Status    string `json:"status" binding:"required"`
		PartySize *int   `json:"party_size"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidTableStatus(body.Status) {
		utils.RespondError(c, http.StatusBadRequest, ErrUnknownStatus)
		return
	}
	if body.PartySize != nil && *body.PartySize < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("party size must not be negative"))
		return
	}

	table, err := tc.Tables.Transition(c.Param("restaurant_id"), tableNumber, body.Status, body.PartySize)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.ErrorLogger.Printf("table transition: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}

	utils.InfoLogger.Printf("Table %d at %s -> %s", table.TableNumber, table.RestaurantID, table.Status)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSummary -> GET /tables/:restaurant_id/summary
// Per-status table counts for the staff dashboard.
func (tc *TableController) GetSummary(c *gin.Context) {
	summary, err := tc.Tables.Summary(c.Param("restaurant_id"))
	if err != nil {
		utils.ErrorLogger.Printf("table summary: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table summary", summary)
}

package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/services"
	"github.com/qrbell/qrbell/utils"
)

type AlertController struct {
	Ledger   *services.AlertLedger
	Ack      *services.Acknowledgment
	Notifier services.AlertNotifier
}

func NewAlertController(ledger *services.AlertLedger, ack *services.Acknowledgment, notifier services.AlertNotifier) *AlertController {
	return &AlertController{Ledger: ledger, Ack: ack, Notifier: notifier}
}

// ListOpen -> GET /tables/:restaurant_id/alerts
// Unresolved alerts, most recent first.
func (ac *AlertController) ListOpen(c *gin.Context) {
	alerts, err := ac.Ledger.ListOpen(c.Param("restaurant_id"))
	if err != nil {
		utils.ErrorLogger.Printf("list alerts: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// Create -> POST /tables/:restaurant_id/alerts
func (ac *AlertController) Create(c *gin.Context) {
	var body struct {
		TableNumber int    `json:"table_number" binding:"required"`
		AlertType   string `json:"alert_type" binding:"required"`
		Message     string `json:"message"`
		Priority    string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.TableNumber <= 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrBadTableNumber)
		return
	}
	if !models.ValidAlertType(body.AlertType) {
		utils.RespondError(c, http.StatusBadRequest, ErrUnknownAlertType)
		return
	}
	if body.Priority != "" && !models.ValidPriority(body.Priority) {
		utils.RespondError(c, http.StatusBadRequest, ErrUnknownPriority)
		return
	}

	alert, err := ac.Ledger.Create(c.Param("restaurant_id"), body.TableNumber, body.AlertType, body.Message, body.Priority)
	if err != nil {
		utils.ErrorLogger.Printf("create alert: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}

	// Push dispatch happens off the request path; the response never
	// waits on delivery.
	if ac.Notifier != nil {
		ac.Notifier.NotifyNewAlert(alert)
	}

	utils.InfoLogger.Printf("Alert %d created for %s table %d (%s)",
		alert.ID, alert.RestaurantID, alert.TableNumber, alert.AlertType)
	c.JSON(http.StatusCreated, gin.H{"id": alert.ID, "success": true})
}

// Resolve -> PUT /tables/:restaurant_id/alerts/:alert_id/resolve
// Safe no-op for already-resolved and unknown ids; the first resolution's
// timestamp always wins.
func (ac *AlertController) Resolve(c *gin.Context) {
	alertID, err := strconv.ParseUint(c.Param("alert_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, ErrBadAlertID)
		return
	}

	// Optional resolution-source label, sent by the notification agent
	// on an "acknowledge" action.
	var body struct {
		ResolvedBy string `json:"resolved_by"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	if err := ac.Ack.Acknowledge(uint(alertID), body.ResolvedBy); err != nil {
		utils.ErrorLogger.Printf("resolve alert %d: %v", alertID, err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ServiceRequest -> POST /service/request
// Customer-facing service call from the table page; creates a
// service-type alert.
func (ac *AlertController) ServiceRequest(c *gin.Context) {
	var body struct {
		RestaurantID string `json:"restaurantId" binding:"required"`
		TableNumber  int    `json:"tableNumber" binding:"required"`
		ServiceType  string `json:"serviceType" binding:"required"`
		Urgent       bool   `json:"urgent"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.TableNumber <= 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrBadTableNumber)
		return
	}
	alertType, ok := serviceAlertType(body.ServiceType)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, ErrUnknownAlertType)
		return
	}

	priority := models.PriorityMedium
	if body.Urgent {
		priority = models.PriorityHigh
	}
	message := fmt.Sprintf("Table %d: %s", body.TableNumber, body.ServiceType)

	alert, err := ac.Ledger.Create(body.RestaurantID, body.TableNumber, alertType, message, priority)
	if err != nil {
		utils.ErrorLogger.Printf("service request: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}
	if ac.Notifier != nil {
		ac.Notifier.NotifyNewAlert(alert)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "alertId": alert.ID})
}

// serviceAlertType maps the short service names the table page sends to
// alert types. Full alert type names are accepted too.
func serviceAlertType(s string) (string, bool) {
	switch s {
	case "water", models.AlertServiceWater:
		return models.AlertServiceWater, true
	case "bill", models.AlertServiceBill:
		return models.AlertServiceBill, true
	case "help", models.AlertServiceHelp:
		return models.AlertServiceHelp, true
	case "order", models.AlertServiceOrder:
		return models.AlertServiceOrder, true
	case "cleanup", models.AlertSpillCleanup:
		return models.AlertSpillCleanup, true
	}
	return "", false
}

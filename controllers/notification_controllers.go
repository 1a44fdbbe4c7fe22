package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qrbell/qrbell/push"
	"github.com/qrbell/qrbell/utils"
)

type NotificationController struct {
	Dispatcher *push.Dispatcher
}

func NewNotificationController(dispatcher *push.Dispatcher) *NotificationController {
	return &NotificationController{Dispatcher: dispatcher}
}

// Delivered -> POST /notifications/delivered
// Out-of-band report from the device agent that a notification arrived.
// Recording is observational; the endpoint succeeds even if the write
// fails (logged inside the dispatcher).
func (nc *NotificationController) Delivered(c *gin.Context) {
	var body struct {
		AlertID     uint   `json:"alertId" binding:"required"`
		DeliveredAt string `json:"deliveredAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	deliveredAt, err := time.Parse(time.RFC3339, body.DeliveredAt)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("deliveredAt must be RFC3339"))
		return
	}

	nc.Dispatcher.ConfirmDelivery(body.AlertID, deliveredAt)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

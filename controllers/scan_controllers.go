package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/services"
	"github.com/qrbell/qrbell/utils"
)

type ScanController struct {
	Recorder *services.ScanRecorder
}

func NewScanController(recorder *services.ScanRecorder) *ScanController {
	return &ScanController{Recorder: recorder}
}

// Track -> GET /track/:restaurant_id/:scan_type?table=&redirect=
// Records the scan (plus the occupancy side effect for menu scans) and
// redirects the customer's browser to the target the QR code promised.
// Without a redirect target the scan id is returned as JSON.
func (sc *ScanController) Track(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	scanType := c.Param("scan_type")

	if !models.ValidScanType(scanType) {
		utils.RespondError(c, http.StatusBadRequest, ErrUnknownScanType)
		return
	}

	var tableNumber *int
	if raw := c.Query("table"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondError(c, http.StatusBadRequest, ErrBadTableNumber)
			return
		}
		tableNumber = &n
	}

	meta := services.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		SourceIP:  c.ClientIP(),
		Referrer:  c.Request.Referer(),
	}

	scanID, err := sc.Recorder.Record(restaurantID, scanType, tableNumber, meta)
	if err != nil {
		utils.ErrorLogger.Printf("record scan for %s: %v", restaurantID, err)
		utils.RespondError(c, http.StatusInternalServerError, ErrStorage)
		return
	}

	utils.InfoLogger.Printf("Scan %d recorded for %s (type=%s)", scanID, restaurantID, scanType)

	if target := c.Query("redirect"); target != "" {
		c.Redirect(http.StatusFound, target)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": scanID, "success": true})
}

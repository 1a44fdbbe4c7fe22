package router

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qrbell/qrbell/controllers"
	"github.com/qrbell/qrbell/middlewares"
	"github.com/qrbell/qrbell/push"
	"github.com/qrbell/qrbell/services"
)

// SetupRouter wires services, controllers and routes. The database
// handle and push collaborators are passed in explicitly; nothing here
// reaches for globals.
func SetupRouter(db *gorm.DB, hub *push.Hub, dispatcher *push.Dispatcher) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// 50 requests per second per IP across the whole surface.
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	tables := services.NewTableState(db)
	tables.Strict = os.Getenv("STRICT_TRANSITIONS") == "true"
	ledger := services.NewAlertLedger(db)
	recorder := services.NewScanRecorder(db, tables)

	// The dispatcher is optional (tests run without a push layer).
	var notifier services.AlertNotifier
	if dispatcher != nil {
		notifier = dispatcher
	}
	ack := services.NewAcknowledgment(ledger, notifier)

	scanCtrl := controllers.NewScanController(recorder)
	tableCtrl := controllers.NewTableController(tables)
	alertCtrl := controllers.NewAlertController(ledger, ack, notifier)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	r.GET("/track/:restaurant_id/:scan_type", scanCtrl.Track)

	service := r.Group("/service")
	service.Use(middlewares.NewStrictRateLimiter())
	{
		service.POST("/request", alertCtrl.ServiceRequest)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	r.GET("/tables/:restaurant_id/alerts", alertCtrl.ListOpen)
	r.POST("/tables/:restaurant_id/alerts", alertCtrl.Create)
	r.PUT("/tables/:restaurant_id/alerts/:alert_id/resolve", alertCtrl.Resolve)
	r.GET("/tables/:restaurant_id/status", tableCtrl.GetStatus)
	r.GET("/tables/:restaurant_id/summary", tableCtrl.GetSummary)
	r.PUT("/tables/:restaurant_id/:table_number/status", tableCtrl.UpdateStatus)

	// ----------------------------------------------------------------
	//                      PUSH DELIVERY
	// ----------------------------------------------------------------
	if dispatcher != nil {
		notifCtrl := controllers.NewNotificationController(dispatcher)
		r.POST("/notifications/delivered", notifCtrl.Delivered)
	}
	if hub != nil {
		r.GET("/ws/staff", controllers.StaffSocketHandler(hub))
	}

	return r
}

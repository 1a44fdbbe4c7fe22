package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/qrbell/qrbell/models"
	"github.com/qrbell/qrbell/utils"
)

// Payload is the push notification body delivered to the background
// messaging agent on staff devices.
type Payload struct {
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	Tag     string      `json:"tag"`
	Data    PayloadData `json:"data"`
	Actions []Action    `json:"actions"`
}

type PayloadData struct {
	TableNumber int    `json:"tableNumber"`
	AlertID     uint   `json:"alertId"`
	Type        string `json:"type"`
	URL         string `json:"url"`
}

type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// envelope wraps a payload on the Redis fanout channel. Origin lets an
// instance skip messages it published itself.
type envelope struct {
	Origin       string          `json:"origin"`
	RestaurantID string          `json:"restaurant_id"`
	Payload      json.RawMessage `json:"payload"`
}

const fanoutPrefix = "qrbell:notify:"

// Dispatcher formats and ships push notifications for alerts. Shipping is
// fire-and-forget: callers never wait on delivery, and every failure on
// this path is logged and swallowed. With a Redis client configured the
// dispatcher also publishes each payload to a per-restaurant channel so
// sibling instances can reach the devices connected to them.
type Dispatcher struct {
	DB      *gorm.DB
	Hub     *Hub
	Redis   *redis.Client
	BaseURL string

	origin string
}

func NewDispatcher(db *gorm.DB, hub *Hub, rdb *redis.Client, baseURL string) *Dispatcher {
	return &Dispatcher{
		DB:      db,
		Hub:     hub,
		Redis:   rdb,
		BaseURL: strings.TrimRight(baseURL, "/"),
		origin:  uuid.NewString(),
	}
}

// NotifyNewAlert ships the staff notification for a freshly created
// alert. It returns immediately; the HTTP response that created the
// alert never waits on dispatch.
func (d *Dispatcher) NotifyNewAlert(alert models.Alert) {
	payload := d.NewAlertPayload(alert)
	go d.ship(alert.RestaurantID, payload)
}

// NotifyResolved ships the confirmation that an alert was acknowledged.
// Best-effort; never blocks or fails the resolution itself.
func (d *Dispatcher) NotifyResolved(alert models.Alert, resolvedBy string) {
	payload := d.ResolvedPayload(alert, resolvedBy)
	go d.ship(alert.RestaurantID, payload)
}

// NewAlertPayload builds the notification for a new alert, including the
// acknowledge/view actions the device-side agent acts on.
func (d *Dispatcher) NewAlertPayload(alert models.Alert) Payload {
	title := fmt.Sprintf("Table %d: %s", alert.TableNumber, alertTitle(alert.AlertType))
	if alert.Priority == models.PriorityCritical || alert.Priority == models.PriorityHigh {
		title = "❗ " + title
	}
	return Payload{
		Title: title,
		Body:  alert.Message,
		Tag:   fmt.Sprintf("alert-%d", alert.ID),
		Data: PayloadData{
			TableNumber: alert.TableNumber,
			AlertID:     alert.ID,
			Type:        alert.AlertType,
			URL:         d.SurfaceURL(alert.RestaurantID, alert.TableNumber),
		},
		Actions: []Action{
			{Action: "acknowledge", Title: "Acknowledge"},
			{Action: "view", Title: "View table"},
		},
	}
}

// ResolvedPayload builds the confirmation sent back to the acknowledging
// surface after a resolution.
func (d *Dispatcher) ResolvedPayload(alert models.Alert, resolvedBy string) Payload {
	body := fmt.Sprintf("Table %d alert resolved", alert.TableNumber)
	if resolvedBy != "" {
		body = fmt.Sprintf("%s by %s", body, resolvedBy)
	}
	return Payload{
		Title: "Alert resolved",
		Body:  body,
		Tag:   fmt.Sprintf("alert-%d-resolved", alert.ID),
		Data: PayloadData{
			TableNumber: alert.TableNumber,
			AlertID:     alert.ID,
			Type:        alert.AlertType,
			URL:         d.SurfaceURL(alert.RestaurantID, alert.TableNumber),
		},
		Actions: []Action{
			{Action: "view", Title: "View table"},
		},
	}
}

// SurfaceURL is the canonical presentation surface for a table. The
// device agent appends ?mode=table-control when it opens the surface
// fresh instead of focusing an existing one.
func (d *Dispatcher) SurfaceURL(restaurantID string, tableNumber int) string {
	return fmt.Sprintf("%s/staff/tables?restaurant=%s&table=%d", d.BaseURL, restaurantID, tableNumber)
}

// ConfirmDelivery records that a dispatched notification reached a
// device. Observational only: a failure here is logged, never surfaced,
// and has no effect on alert state.
func (d *Dispatcher) ConfirmDelivery(alertID uint, deliveredAt time.Time) {
	row := models.NotificationDelivery{
		AlertID:     alertID,
		DeliveredAt: deliveredAt,
		CreatedAt:   time.Now(),
	}
	if err := d.DB.Create(&row).Error; err != nil {
		utils.ErrorLogger.Printf("push: recording delivery for alert %d failed: %v", alertID, err)
	}
}

func (d *Dispatcher) ship(restaurantID string, payload Payload) {
	data, err := json.Marshal(payload)
	if err != nil {
		utils.ErrorLogger.Printf("push: marshal payload: %v", err)
		return
	}

	d.Hub.Broadcast(restaurantID, data)

	if d.Redis != nil {
		env := envelope{Origin: d.origin, RestaurantID: restaurantID, Payload: data}
		raw, _ := json.Marshal(env)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := d.Redis.Publish(ctx, fanoutPrefix+restaurantID, raw).Err(); err != nil {
			utils.ErrorLogger.Printf("push: redis publish: %v", err)
		}
	}
}

// StartFanout subscribes to the fanout channels and re-broadcasts
// payloads published by sibling instances into the local hub. No-op
// without a Redis client.
func (d *Dispatcher) StartFanout(ctx context.Context) {
	if d.Redis == nil {
		return
	}

	sub := d.Redis.PSubscribe(ctx, fanoutPrefix+"*")
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					utils.ErrorLogger.Printf("push: fanout decode: %v", err)
					continue
				}
				if env.Origin == d.origin {
					continue
				}
				d.Hub.Broadcast(env.RestaurantID, env.Payload)
			}
		}
	}()
}

func alertTitle(alertType string) string {
	switch alertType {
	case models.AlertServiceWater:
		return "water requested"
	case models.AlertServiceBill:
		return "bill requested"
	case models.AlertServiceHelp:
		return "staff assistance requested"
	case models.AlertServiceOrder:
		return "ready to order"
	case models.AlertSpillCleanup:
		return "cleanup needed"
	case models.AlertLongStay:
		return "long occupancy"
	default:
		return "service requested"
	}
}

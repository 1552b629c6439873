package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-whatsapp-commerce/internal/apperr"
	"go-whatsapp-commerce/internal/model"
	"go-whatsapp-commerce/internal/repository"
	"go-whatsapp-commerce/internal/whatsapp"
	"go-whatsapp-commerce/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notification types understood by the message templates.
const (
	NotificationStatusChange    = "status_change"
	NotificationPaymentReceived = "payment_received"
	NotificationShippingUpdate  = "shipping_update"
)

type SendNotificationResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// WebhookPayload mirrors the Business Platform callback envelope. Only the
// fields this service consumes are modeled.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	Statuses []WebhookStatus  `json:"statuses"`
	Messages []WebhookMessage `json:"messages"`
}

type WebhookStatus struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Errors    []WebhookFault `json:"errors"`
}

type WebhookFault struct {
	Code  int    `json:"code"`
	Title string `json:"title"`
}

type WebhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// NotificationService sends order updates over the messaging channel and
// applies delivery-status callbacks to the records it wrote.
type NotificationService interface {
	SendOrderNotification(userID string, orderID, businessID uuid.UUID, notificationType, customMessage string) (*SendNotificationResult, error)
	HandleDeliveryStatus(messageID, status, timestamp string, faultCode int, faultTitle string) error
	ProcessWebhook(payload *WebhookPayload)
}

type notificationService struct {
	gate          AccessGate
	orders        repository.OrderRepository
	notifications repository.NotificationRepository
	businesses    repository.BusinessRepository
	analytics     repository.AnalyticsRepository
	wa            whatsapp.Client
	hub           *ws.Hub
	log           *zap.SugaredLogger
}

func NewNotificationService(
	gate AccessGate,
	orders repository.OrderRepository,
	notifications repository.NotificationRepository,
	businesses repository.BusinessRepository,
	analytics repository.AnalyticsRepository,
	wa whatsapp.Client,
	hub *ws.Hub,
	log *zap.SugaredLogger,
) NotificationService {
	return &notificationService{
		gate:          gate,
		orders:        orders,
		notifications: notifications,
		businesses:    businesses,
		analytics:     analytics,
		wa:            wa,
		hub:           hub,
		log:           log,
	}
}

// SendOrderNotification delivers an order update to the customer. Disabled
// order updates are a silent skip, not an error; a missing destination number
// is a precondition failure before anything is written.
func (s *notificationService) SendOrderNotification(userID string, orderID, businessID uuid.UUID, notificationType, customMessage string) (*SendNotificationResult, error) {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return nil, err
	}
	waCfg, err := s.gate.WhatsAppConfig(businessID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrOrderNotFound
		}
		return nil, apperr.Wrap(apperr.Internal, "internal", "failed to load order", err)
	}
	if order.BusinessID != businessID {
		return nil, apperr.ErrOrderNotFound
	}

	settings, err := s.businesses.FindSettings(businessID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.Internal, "internal", "failed to load settings", err)
		}
		settings = model.DefaultBusinessSettings(businessID)
	}
	if !settings.OrderUpdates {
		s.log.Infow("order updates disabled, skipping notification",
			"business_id", businessID, "order_id", orderID)
		return &SendNotificationResult{
			Success: false,
			Skipped: true,
			Reason:  "Order update notifications are disabled for this business",
		}, nil
	}

	to := order.CustomerWhatsApp
	if to == "" {
		to = order.CustomerPhone
	}
	if to == "" {
		return nil, apperr.New(apperr.FailedPrecondition, "no-customer-number",
			"Order has no customer phone number")
	}

	message := customMessage
	if message == "" {
		message = buildOrderMessage(order, notificationType)
	}

	result, err := s.wa.SendMessage(waCfg, to, whatsapp.MessageContent{Type: "text", Text: message})
	if err != nil {
		record := &model.NotificationRecord{
			OrderID:        orderID,
			BusinessID:     businessID,
			CustomerID:     order.CustomerID,
			Type:           notificationType,
			Message:        message,
			DeliveryStatus: model.DeliveryFailed,
			ErrorMessage:   err.Error(),
		}
		if dbErr := s.notifications.Create(record); dbErr != nil {
			s.log.Errorw("failed to record failed notification", "error", dbErr)
		}
		return nil, apperr.Wrap(apperr.Internal, "send-failed", "Failed to send notification", err)
	}

	now := time.Now()
	record := &model.NotificationRecord{
		OrderID:           orderID,
		BusinessID:        businessID,
		CustomerID:        order.CustomerID,
		Type:              notificationType,
		Message:           message,
		DeliveryStatus:    model.DeliverySent,
		WhatsAppMessageID: &result.MessageID,
	}
	if err := s.notifications.Create(record); err != nil {
		s.log.Errorw("notification sent but record not written",
			"message_id", result.MessageID, "error", err)
	}
	if err := s.orders.StampNotification(orderID, notificationType, now); err != nil {
		s.log.Errorw("failed to stamp order notification", "order_id", orderID, "error", err)
	}

	s.logAnalytics(businessID.String(), "notification_sent", map[string]interface{}{
		"order_id": orderID.String(),
		"type":     notificationType,
	})

	s.log.Infow("notification sent",
		"order_id", orderID, "type", notificationType, "message_id", result.MessageID)
	return &SendNotificationResult{Success: true, MessageID: result.MessageID}, nil
}

// buildOrderMessage renders the default template for a notification type.
// The order reference shown to customers is the tail of the order id.
func buildOrderMessage(order *model.Order, notificationType string) string {
	ref := orderRef(order.ID)

	switch notificationType {
	case NotificationStatusChange:
		return fmt.Sprintf("Hi %s! Your order #%s is now %s. Thank you for shopping with us!",
			order.CustomerName, ref, order.Status)
	case NotificationPaymentReceived:
		return fmt.Sprintf("Hi %s! We've received your payment for order #%s. Your order is being processed.",
			order.CustomerName, ref)
	case NotificationShippingUpdate:
		if order.TrackingNumber != "" {
			return fmt.Sprintf("Hi %s! Your order #%s has shipped. Tracking number: %s",
				order.CustomerName, ref, order.TrackingNumber)
		}
		return fmt.Sprintf("Hi %s! Your order #%s has shipped and is on its way.",
			order.CustomerName, ref)
	default:
		return fmt.Sprintf("Hi %s! There's an update on your order #%s.",
			order.CustomerName, ref)
	}
}

func orderRef(id uuid.UUID) string {
	s := id.String()
	return strings.ToUpper(s[len(s)-6:])
}

// HandleDeliveryStatus applies one delivery callback. A message id this
// service never issued is logged and ignored.
func (s *notificationService) HandleDeliveryStatus(messageID, status, timestamp string, faultCode int, faultTitle string) error {
	record, err := s.notifications.FindByMessageID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warnw("delivery status for unknown message", "message_id", messageID)
			return nil
		}
		return apperr.Wrap(apperr.Internal, "internal", "failed to load notification", err)
	}

	at := parseWebhookTimestamp(timestamp)
	record.StatusUpdatedAt = &at

	switch status {
	case "delivered":
		record.DeliveryStatus = model.DeliveryDelivered
	case "read":
		record.DeliveryStatus = model.DeliveryRead
		record.IsRead = true
		record.ReadAt = &at
	case "failed":
		record.DeliveryStatus = model.DeliveryFailed
		if faultCode != 0 {
			record.ErrorCode = strconv.Itoa(faultCode)
		}
		record.ErrorMessage = faultTitle
	case "sent":
		record.DeliveryStatus = model.DeliverySent
	default:
		s.log.Warnw("unknown delivery status", "message_id", messageID, "status", status)
		return nil
	}

	if err := s.notifications.Update(record); err != nil {
		return apperr.Wrap(apperr.Internal, "internal", "failed to update notification", err)
	}

	s.hub.Publish("notification_status", map[string]interface{}{
		"business_id": record.BusinessID.String(),
		"order_id":    record.OrderID.String(),
		"message_id":  messageID,
		"status":      status,
	})
	return nil
}

// ProcessWebhook walks a callback envelope and dispatches every status and
// inbound message it carries. The webhook endpoint must always acknowledge,
// so failures are logged, never returned.
func (s *notificationService) ProcessWebhook(payload *WebhookPayload) {
	if payload == nil || payload.Object != "whatsapp_business_account" {
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			for _, status := range change.Value.Statuses {
				var code int
				var title string
				if len(status.Errors) > 0 {
					code = status.Errors[0].Code
					title = status.Errors[0].Title
				}
				if err := s.HandleDeliveryStatus(status.ID, status.Status, status.Timestamp, code, title); err != nil {
					s.log.Errorw("failed to apply delivery status",
						"message_id", status.ID, "error", err)
				}
			}

			for _, msg := range change.Value.Messages {
				s.logAnalytics("system", "message_received", map[string]interface{}{
					"from":       msg.From,
					"message_id": msg.ID,
					"type":       msg.Type,
				})
			}
		}
	}
}

// parseWebhookTimestamp reads the unix-seconds strings the platform sends,
// falling back to now for anything unparsable.
func parseWebhookTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Now()
	}
	return time.Unix(secs, 0)
}

func (s *notificationService) logAnalytics(businessID, eventType string, metadata map[string]interface{}) {
	if err := s.analytics.Log(businessID, eventType, metadata); err != nil {
		s.log.Warnw("failed to log analytics event", "event_type", eventType, "error", err)
	}
}

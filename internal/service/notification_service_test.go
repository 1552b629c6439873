package service

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-whatsapp-commerce/internal/apperr"
	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOrderNotification(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	order := env.createOrder(t, func(o *model.Order) {
		o.Status = model.OrderShipped
		o.TrackingNumber = "TRK-123"
	})

	result, err := svc.SendOrderNotification(testOwnerID, order.ID, env.business.ID, NotificationShippingUpdate, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.MessageID)

	require.Len(t, env.client.messages, 1)
	msg := env.client.messages[0].Text
	assert.Contains(t, msg, "Ama")
	assert.Contains(t, msg, "TRK-123")
	ref := strings.ToUpper(order.ID.String()[len(order.ID.String())-6:])
	assert.Contains(t, msg, "#"+ref, "order reference is the uppercased id tail")

	assert.Equal(t, "+233200000002", env.client.recipients[0], "whatsapp number preferred over phone")

	var record model.NotificationRecord
	require.NoError(t, env.db.First(&record, "order_id = ?", order.ID).Error)
	assert.Equal(t, model.DeliverySent, record.DeliveryStatus)
	require.NotNil(t, record.WhatsAppMessageID)
	assert.Equal(t, result.MessageID, *record.WhatsAppMessageID)

	var reloaded model.Order
	require.NoError(t, env.db.First(&reloaded, "id = ?", order.ID).Error)
	assert.NotNil(t, reloaded.LastNotificationSent)
	assert.Equal(t, NotificationShippingUpdate, reloaded.LastNotificationType)
}

func TestSendOrderNotificationCustomMessage(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	order := env.createOrder(t, nil)

	_, err := svc.SendOrderNotification(testOwnerID, order.ID, env.business.ID, NotificationStatusChange, "Your package is at the front desk.")
	require.NoError(t, err)
	assert.Equal(t, "Your package is at the front desk.", env.client.messages[0].Text)
}

func TestSendOrderNotificationDisabledSettings(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	settings := model.DefaultBusinessSettings(env.business.ID)
	require.NoError(t, env.db.Create(settings).Error)
	// false is the zero value, so flip it with an explicit update
	require.NoError(t, env.db.Model(settings).Update("order_updates", false).Error)
	order := env.createOrder(t, nil)

	result, err := svc.SendOrderNotification(testOwnerID, order.ID, env.business.ID, NotificationStatusChange, "")
	require.NoError(t, err, "disabled updates are a silent skip, not an error")
	assert.False(t, result.Success)
	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.Reason)

	assert.Empty(t, env.client.messages, "nothing is sent")
	var count int64
	require.NoError(t, env.db.Model(&model.NotificationRecord{}).Count(&count).Error)
	assert.Zero(t, count, "nothing is recorded")
}

func TestSendOrderNotificationNoDestination(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	order := env.createOrder(t, func(o *model.Order) {
		o.CustomerPhone = ""
		o.CustomerWhatsApp = ""
	})

	_, err := svc.SendOrderNotification(testOwnerID, order.ID, env.business.ID, NotificationStatusChange, "")
	require.Error(t, err)
	assert.Equal(t, apperr.FailedPrecondition, apperr.From(err).Kind)

	var count int64
	require.NoError(t, env.db.Model(&model.NotificationRecord{}).Count(&count).Error)
	assert.Zero(t, count, "precondition failures write no record")
}

func TestSendOrderNotificationSendFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	order := env.createOrder(t, nil)
	env.client.failSend = errors.New("messaging unavailable")

	_, err := svc.SendOrderNotification(testOwnerID, order.ID, env.business.ID, NotificationStatusChange, "")
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.From(err).Kind)

	var record model.NotificationRecord
	require.NoError(t, env.db.First(&record, "order_id = ?", order.ID).Error)
	assert.Equal(t, model.DeliveryFailed, record.DeliveryStatus)
	assert.Nil(t, record.WhatsAppMessageID, "failed sends carry no message id")
	assert.Contains(t, record.ErrorMessage, "messaging unavailable")
}

func TestSendOrderNotificationUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	_, err := svc.SendOrderNotification(testOwnerID, uuid.New(), env.business.ID, NotificationStatusChange, "")
	assert.Equal(t, apperr.NotFound, apperr.From(err).Kind)
}

func TestHandleDeliveryStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	order := env.createOrder(t, nil)
	messageID := "wamid.test-1"
	record := &model.NotificationRecord{
		OrderID:           order.ID,
		BusinessID:        env.business.ID,
		Type:              NotificationStatusChange,
		DeliveryStatus:    model.DeliverySent,
		WhatsAppMessageID: &messageID,
	}
	require.NoError(t, env.db.Create(record).Error)

	at := time.Now().Add(-time.Minute).Unix()
	ts := strconv.FormatInt(at, 10)

	t.Run("delivered", func(t *testing.T) {
		require.NoError(t, svc.HandleDeliveryStatus(messageID, "delivered", ts, 0, ""))

		var reloaded model.NotificationRecord
		require.NoError(t, env.db.First(&reloaded, "id = ?", record.ID).Error)
		assert.Equal(t, model.DeliveryDelivered, reloaded.DeliveryStatus)
		assert.False(t, reloaded.IsRead)
		require.NotNil(t, reloaded.StatusUpdatedAt)
		assert.Equal(t, at, reloaded.StatusUpdatedAt.Unix())
	})

	t.Run("read sets read markers", func(t *testing.T) {
		require.NoError(t, svc.HandleDeliveryStatus(messageID, "read", ts, 0, ""))

		var reloaded model.NotificationRecord
		require.NoError(t, env.db.First(&reloaded, "id = ?", record.ID).Error)
		assert.Equal(t, model.DeliveryRead, reloaded.DeliveryStatus)
		assert.True(t, reloaded.IsRead)
		require.NotNil(t, reloaded.ReadAt)
		assert.Equal(t, at, reloaded.ReadAt.Unix())
	})

	t.Run("failed records fault details", func(t *testing.T) {
		require.NoError(t, svc.HandleDeliveryStatus(messageID, "failed", ts, 131047, "Re-engagement message"))

		var reloaded model.NotificationRecord
		require.NoError(t, env.db.First(&reloaded, "id = ?", record.ID).Error)
		assert.Equal(t, model.DeliveryFailed, reloaded.DeliveryStatus)
		assert.Equal(t, "131047", reloaded.ErrorCode)
		assert.Equal(t, "Re-engagement message", reloaded.ErrorMessage)
	})

	t.Run("unknown message id is a no-op", func(t *testing.T) {
		require.NoError(t, svc.HandleDeliveryStatus("wamid.never-issued", "read", ts, 0, ""))
	})
}

func TestProcessWebhook(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	order := env.createOrder(t, nil)
	messageID := "wamid.hook-1"
	record := &model.NotificationRecord{
		OrderID:           order.ID,
		BusinessID:        env.business.ID,
		Type:              NotificationStatusChange,
		DeliveryStatus:    model.DeliverySent,
		WhatsAppMessageID: &messageID,
	}
	require.NoError(t, env.db.Create(record).Error)

	svc.ProcessWebhook(&WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []WebhookEntry{{
			ID: "waba-1",
			Changes: []WebhookChange{{
				Field: "messages",
				Value: WebhookValue{
					Statuses: []WebhookStatus{{
						ID:        messageID,
						Status:    "delivered",
						Timestamp: strconv.FormatInt(time.Now().Unix(), 10),
					}},
					Messages: []WebhookMessage{{
						From: "+233200000009",
						ID:   "wamid.inbound-1",
						Type: "text",
					}},
				},
			}},
		}},
	})

	var reloaded model.NotificationRecord
	require.NoError(t, env.db.First(&reloaded, "id = ?", record.ID).Error)
	assert.Equal(t, model.DeliveryDelivered, reloaded.DeliveryStatus)

	events := env.analyticsEvents(t, "message_received")
	require.Len(t, events, 1)
	assert.Equal(t, "system", events[0].BusinessID)
}

func TestProcessWebhookIgnoresOtherObjects(t *testing.T) {
	env := newTestEnv(t)
	svc := env.notificationService()

	svc.ProcessWebhook(&WebhookPayload{Object: "page"})
	svc.ProcessWebhook(nil)

	assert.Empty(t, env.analyticsEvents(t, "message_received"))
}

func TestBuildOrderMessageTemplates(t *testing.T) {
	order := &model.Order{
		Status:       model.OrderDelivered,
		CustomerName: "Kofi",
	}
	order.ID = uuid.MustParse("00000000-0000-0000-0000-00000abcdef0")
	ref := "BCDEF0"

	t.Run("status change", func(t *testing.T) {
		msg := buildOrderMessage(order, NotificationStatusChange)
		assert.Contains(t, msg, "Kofi")
		assert.Contains(t, msg, "#"+ref)
		assert.Contains(t, msg, "delivered")
	})

	t.Run("payment received", func(t *testing.T) {
		msg := buildOrderMessage(order, NotificationPaymentReceived)
		assert.Contains(t, msg, "payment")
		assert.Contains(t, msg, "#"+ref)
	})

	t.Run("shipping without tracking", func(t *testing.T) {
		msg := buildOrderMessage(order, NotificationShippingUpdate)
		assert.Contains(t, msg, "shipped")
		assert.NotContains(t, msg, "Tracking number")
	})

	t.Run("unknown type falls back to generic update", func(t *testing.T) {
		msg := buildOrderMessage(order, "something_else")
		assert.Contains(t, msg, "update on your order")
	})
}

package handler

import (
	"go-whatsapp-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebhookHandler serves the Business Platform callback endpoint. It is
// unauthenticated apart from the verify-token handshake; the platform retries
// on anything but a 200, so POST always acknowledges.
type WebhookHandler struct {
	notificationService service.NotificationService
	verifyToken         string
	log                 *zap.SugaredLogger
}

func NewWebhookHandler(notificationService service.NotificationService, verifyToken string, log *zap.SugaredLogger) *WebhookHandler {
	return &WebhookHandler{
		notificationService: notificationService,
		verifyToken:         verifyToken,
		log:                 log,
	}
}

// Verify answers the subscription handshake
// GET /api/v1/webhook
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.log.Infow("webhook verified")
		return c.SendString(challenge)
	}
	return c.SendStatus(403)
}

// Receive processes delivery statuses and inbound messages
// POST /api/v1/webhook
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload service.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.log.Warnw("unparsable webhook payload", "error", err)
		return c.SendString("OK")
	}

	h.notificationService.ProcessWebhook(&payload)
	return c.SendString("OK")
}

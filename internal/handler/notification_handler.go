package handler

import (
	"go-whatsapp-commerce/internal/service"
	"go-whatsapp-commerce/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type SendNotificationRequest struct {
	BusinessID    uuid.UUID `json:"business_id" validate:"uuid_required"`
	OrderID       uuid.UUID `json:"order_id" validate:"uuid_required"`
	Type          string    `json:"type" validate:"required"`
	CustomMessage string    `json:"custom_message"`
}

// SendOrderNotification delivers an order update to the customer
// POST /api/v1/notifications/send
func (h *NotificationHandler) SendOrderNotification(c *fiber.Ctx) error {
	var req SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	result, err := h.notificationService.SendOrderNotification(
		callerID(c), req.OrderID, req.BusinessID, req.Type, req.CustomMessage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

package handler

import (
	"go-whatsapp-commerce/internal/service"
	"go-whatsapp-commerce/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MediaHandler struct {
	mediaService service.MediaService
}

func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

type BatchUploadRequest struct {
	BusinessID uuid.UUID   `json:"business_id" validate:"uuid_required"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

type RefreshMediaRequest struct {
	BusinessID uuid.UUID `json:"business_id" validate:"uuid_required"`
	BufferDays int       `json:"buffer_days"`
}

type CleanupMediaRequest struct {
	BusinessID    uuid.UUID `json:"business_id" validate:"uuid_required"`
	OlderThanDays int       `json:"older_than_days"`
}

// UploadMedia mirrors one image to the platform
// POST /api/v1/media/upload
func (h *MediaHandler) UploadMedia(c *fiber.Ctx) error {
	var req service.UploadMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	result, err := h.mediaService.UploadMedia(callerID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// BatchUploadMedia mirrors product images in parallel batches
// POST /api/v1/media/batch-upload
func (h *MediaHandler) BatchUploadMedia(c *fiber.Ctx) error {
	var req BatchUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	result, err := h.mediaService.BatchUploadMedia(callerID(c), req.BusinessID, req.ProductIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// RefreshExpiring re-uploads media approaching platform expiry
// POST /api/v1/media/refresh
func (h *MediaHandler) RefreshExpiring(c *fiber.Ctx) error {
	var req RefreshMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	result, err := h.mediaService.RefreshExpiring(callerID(c), req.BusinessID, req.BufferDays)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// CleanupUnused deletes old media records no live entity references
// POST /api/v1/media/cleanup
func (h *MediaHandler) CleanupUnused(c *fiber.Ctx) error {
	var req CleanupMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	deleted, err := h.mediaService.CleanupUnused(callerID(c), req.BusinessID, req.OlderThanDays)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

package handler

import (
	"go-whatsapp-commerce/internal/service"
	"go-whatsapp-commerce/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// SyncCatalogRequest selects which products to push.
type SyncCatalogRequest struct {
	BusinessID uuid.UUID        `json:"business_id" validate:"uuid_required"`
	SyncType   service.SyncType `json:"sync_type" validate:"required,oneof=full incremental specific"`
	ProductIDs []uuid.UUID      `json:"product_ids"`
}

type UpdateProductRequest struct {
	BusinessID   uuid.UUID `json:"business_id" validate:"uuid_required"`
	ProductID    uuid.UUID `json:"product_id" validate:"uuid_required"`
	UpdateFields []string  `json:"update_fields" validate:"required,min=1,dive,oneof=name description price availability image"`
}

type SyncInventoryRequest struct {
	BusinessID   uuid.UUID   `json:"business_id" validate:"uuid_required"`
	ProductIDs   []uuid.UUID `json:"product_ids"`
	UpdatePrices bool        `json:"update_prices"`
}

type DeleteProductRequest struct {
	BusinessID uuid.UUID `json:"business_id" validate:"uuid_required"`
	ProductID  uuid.UUID `json:"product_id" validate:"uuid_required"`
}

// SyncCatalog pushes products to the remote catalog
// POST /api/v1/catalog/sync
func (h *CatalogHandler) SyncCatalog(c *fiber.Ctx) error {
	var req SyncCatalogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	result, err := h.catalogService.SyncCatalog(callerID(c), req.BusinessID, req.SyncType, req.ProductIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// UpdateProduct pushes a partial product update
// POST /api/v1/catalog/product/update
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	if err := h.catalogService.UpdateProduct(callerID(c), req.ProductID, req.BusinessID, req.UpdateFields); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated"})
}

// DeleteProduct detaches a product from the remote catalog
// POST /api/v1/catalog/product/delete
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	var req DeleteProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	if err := h.catalogService.DeleteProduct(callerID(c), req.ProductID, req.BusinessID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product detached from catalog"})
}

// SyncInventory pushes availability and optional price updates
// POST /api/v1/catalog/inventory/sync
func (h *CatalogHandler) SyncInventory(c *fiber.Ctx) error {
	var req SyncInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON", "code": "invalid-request"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": validator.FirstError(errs), "code": "invalid-request"})
	}

	updated, err := h.catalogService.SyncInventory(callerID(c), req.BusinessID, req.ProductIDs, req.UpdatePrices)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"products_updated": updated})
}

// GetSyncStatus reports per-status counts for a business
// GET /api/v1/catalog/status/:businessId
func (h *CatalogHandler) GetSyncStatus(c *fiber.Ctx) error {
	businessID, err := uuid.Parse(c.Params("businessId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid business ID", "code": "invalid-request"})
	}
	includeDetails := c.QueryBool("details")

	report, err := h.catalogService.GetSyncStatus(callerID(c), businessID, includeDetails)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

package service

import (
	"errors"
	"math"
	"time"

	"go-whatsapp-commerce/internal/apperr"
	"go-whatsapp-commerce/internal/config"
	"go-whatsapp-commerce/internal/model"
	"go-whatsapp-commerce/internal/repository"
	"go-whatsapp-commerce/internal/whatsapp"
	"go-whatsapp-commerce/internal/ws"
	"go-whatsapp-commerce/pkg/batch"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SyncType string

const (
	SyncFull        SyncType = "full"
	SyncIncremental SyncType = "incremental"
	SyncSpecific    SyncType = "specific"
)

type SyncItemError struct {
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// SyncResult aggregates per-batch outcomes. Batch failures land here instead
// of aborting the sync.
type SyncResult struct {
	SyncedProducts int             `json:"synced_products"`
	FailedProducts int             `json:"failed_products"`
	Errors         []SyncItemError `json:"errors"`
}

type ProductSyncDetail struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	SyncStatus model.SyncStatus `json:"sync_status"`
	SyncError  *string          `json:"sync_error"`
	LastSynced *time.Time       `json:"last_synced"`
}

type SyncStatusReport struct {
	TotalProducts        int                 `json:"total_products"`
	SyncedProducts       int                 `json:"synced_products"`
	PendingProducts      int                 `json:"pending_products"`
	ErrorProducts        int                 `json:"error_products"`
	CompletionPercentage int                 `json:"completion_percentage"`
	ProductDetails       []ProductSyncDetail `json:"product_details,omitempty"`
}

// CatalogService drives catalog synchronization against the remote platform.
type CatalogService interface {
	SyncCatalog(userID string, businessID uuid.UUID, syncType SyncType, productIDs []uuid.UUID) (*SyncResult, error)
	UpdateProduct(userID string, productID, businessID uuid.UUID, updateFields []string) error
	DeleteProduct(userID string, productID, businessID uuid.UUID) error
	SyncInventory(userID string, businessID uuid.UUID, productIDs []uuid.UUID, updatePrices bool) (int, error)
	GetSyncStatus(userID string, businessID uuid.UUID, includeDetails bool) (*SyncStatusReport, error)
}

type catalogService struct {
	cfg       *config.Config
	gate      AccessGate
	mediaSvc  MediaService
	products  repository.ProductRepository
	inventory repository.InventoryRepository
	media     repository.MediaRepository
	analytics repository.AnalyticsRepository
	wa        whatsapp.Client
	hub       *ws.Hub
	log       *zap.SugaredLogger
}

func NewCatalogService(
	cfg *config.Config,
	gate AccessGate,
	mediaSvc MediaService,
	products repository.ProductRepository,
	inventory repository.InventoryRepository,
	media repository.MediaRepository,
	analytics repository.AnalyticsRepository,
	wa whatsapp.Client,
	hub *ws.Hub,
	log *zap.SugaredLogger,
) CatalogService {
	return &catalogService{
		cfg:       cfg,
		gate:      gate,
		mediaSvc:  mediaSvc,
		products:  products,
		inventory: inventory,
		media:     media,
		analytics: analytics,
		wa:        wa,
		hub:       hub,
		log:       log,
	}
}

// SyncCatalog pushes the selected products to the remote catalog in batches.
// Batches are independent: one failing batch marks only its own products and
// the sync keeps going.
func (s *catalogService) SyncCatalog(userID string, businessID uuid.UUID, syncType SyncType, productIDs []uuid.UUID) (*SyncResult, error) {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return nil, err
	}
	waCfg, err := s.gate.WhatsAppConfig(businessID)
	if err != nil {
		return nil, err
	}

	products, err := s.selectProducts(businessID, syncType, productIDs)
	if err != nil {
		return nil, err
	}

	s.log.Infow("starting catalog sync",
		"business_id", businessID, "sync_type", syncType, "product_count", len(products))

	result := &SyncResult{}
	for _, chunk := range batch.Chunk(products, s.cfg.BatchSize) {
		s.processBatch(waCfg, chunk, result)
	}

	s.logAnalytics(businessID.String(), "catalog_sync", map[string]interface{}{
		"sync_type":       syncType,
		"products_synced": result.SyncedProducts,
		"errors_count":    result.FailedProducts,
	})
	s.hub.Publish("catalog_sync_completed", map[string]interface{}{
		"business_id": businessID.String(),
		"synced":      result.SyncedProducts,
		"failed":      result.FailedProducts,
	})

	s.log.Infow("catalog sync completed",
		"business_id", businessID, "synced", result.SyncedProducts, "failed", result.FailedProducts)
	return result, nil
}

func (s *catalogService) selectProducts(businessID uuid.UUID, syncType SyncType, productIDs []uuid.UUID) ([]model.Product, error) {
	switch syncType {
	case SyncFull:
		products, err := s.products.FindByBusiness(businessID)
		return products, s.internalErr(err)
	case SyncIncremental:
		products, err := s.products.FindUpdatedSince(businessID, time.Now().Add(-s.cfg.IncrementalWindow))
		return products, s.internalErr(err)
	case SyncSpecific:
		if len(productIDs) == 0 {
			return nil, apperr.New(apperr.InvalidArgument, "invalid-request", "Product IDs are required for a specific sync")
		}
		products, err := s.products.FindByIDs(businessID, productIDs)
		return products, s.internalErr(err)
	default:
		return nil, apperr.New(apperr.InvalidArgument, "invalid-request", "Unknown sync type")
	}
}

// processBatch submits one batch and records a uniform outcome for every
// product in it: all synced, or all errored with the same message.
func (s *catalogService) processBatch(waCfg whatsapp.Config, products []model.Product, result *SyncResult) {
	items := make([]whatsapp.CatalogItem, 0, len(products))
	ids := make([]uuid.UUID, 0, len(products))

	for i := range products {
		// Media failures degrade to a payload without an image.
		if err := s.mediaSvc.EnsureProductMedia(waCfg, &products[i]); err != nil {
			s.log.Warnw("failed to mirror product media, continuing without image",
				"product_id", products[i].ID, "error", err)
		}
		items = append(items, BuildCatalogItem(s.cfg, &products[i]))
		ids = append(ids, products[i].ID)
	}

	if err := s.wa.UpsertCatalogItems(waCfg, items); err != nil {
		s.log.Errorw("batch upsert failed", "batch_size", len(products), "error", err)
		if dbErr := s.products.MarkError(ids, err.Error()); dbErr != nil {
			s.log.Errorw("failed to record batch error state", "error", dbErr)
		}
		for _, id := range ids {
			result.Errors = append(result.Errors, SyncItemError{ProductID: id.String(), Error: err.Error()})
		}
		result.FailedProducts += len(ids)
		return
	}

	if err := s.products.MarkSynced(ids); err != nil {
		s.log.Errorw("failed to record batch synced state", "error", err)
	}
	result.SyncedProducts += len(ids)
}

// UpdateProduct pushes a partial payload with only the requested fields.
// Unlike batch sync, a failure here is reported to the caller.
func (s *catalogService) UpdateProduct(userID string, productID, businessID uuid.UUID, updateFields []string) error {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return err
	}
	waCfg, err := s.gate.WhatsAppConfig(businessID)
	if err != nil {
		return err
	}

	product, err := s.products.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrProductNotFound
		}
		return s.internalErr(err)
	}
	if product.BusinessID != businessID {
		return apperr.ErrProductNotFound
	}

	for _, field := range updateFields {
		if field == "image" && product.ImageURL != "" {
			if err := s.mediaSvc.EnsureProductMedia(waCfg, product); err != nil {
				s.log.Warnw("failed to mirror product media for update",
					"product_id", productID, "error", err)
			}
			break
		}
	}

	item := BuildProductUpdate(s.cfg, product, updateFields)
	if err := s.wa.UpsertCatalogItems(waCfg, []whatsapp.CatalogItem{item}); err != nil {
		if dbErr := s.products.MarkError([]uuid.UUID{productID}, err.Error()); dbErr != nil {
			s.log.Errorw("failed to record product error state", "error", dbErr)
		}
		return apperr.Wrap(apperr.Internal, "sync-failed", "Product update failed", err)
	}

	if err := s.products.MarkSynced([]uuid.UUID{productID}); err != nil {
		return s.internalErr(err)
	}

	s.log.Infow("product updated", "product_id", productID, "fields", updateFields)
	return nil
}

// DeleteProduct detaches a product from the remote catalog: remote handle
// fields are cleared, media records referencing it are removed and the sync
// state returns to pending. The product row itself belongs to the product
// management surface.
func (s *catalogService) DeleteProduct(userID string, productID, businessID uuid.UUID) error {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return err
	}

	product, err := s.products.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrProductNotFound
		}
		return s.internalErr(err)
	}
	if product.BusinessID != businessID {
		return apperr.ErrProductNotFound
	}

	deleted, err := s.media.DeleteByReference(businessID, productID)
	if err != nil {
		return s.internalErr(err)
	}
	if deleted > 0 {
		s.log.Infow("product media cleaned up", "product_id", productID, "media_count", deleted)
	}

	product.WhatsAppImageID = ""
	product.WhatsAppImageURL = ""
	product.AdditionalImageIDs = nil
	product.SyncStatus = model.SyncPending
	product.SyncError = nil
	product.LastSynced = nil
	return s.internalErr(s.products.Save(product))
}

// SyncInventory pushes availability (and optionally price) for the selected
// products. The operation either fully succeeds or surfaces one terminal
// error; per-item error states are not tracked on this path.
func (s *catalogService) SyncInventory(userID string, businessID uuid.UUID, productIDs []uuid.UUID, updatePrices bool) (int, error) {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return 0, err
	}
	waCfg, err := s.gate.WhatsAppConfig(businessID)
	if err != nil {
		return 0, err
	}

	var products []model.Product
	if len(productIDs) > 0 {
		products, err = s.products.FindByIDs(businessID, productIDs)
	} else {
		products, err = s.products.FindByBusiness(businessID)
	}
	if err != nil {
		return 0, s.internalErr(err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	items := make([]whatsapp.CatalogItem, 0, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for i := range products {
		snapshot, err := s.inventory.FindByProduct(businessID, products[i].ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, s.internalErr(err)
			}
			snapshot = nil // no snapshot means zero stock
		}
		items = append(items, BuildInventoryItem(s.cfg, &products[i], snapshot, updatePrices))
		ids = append(ids, products[i].ID)
	}

	for _, chunk := range batch.Chunk(items, s.cfg.BatchSize) {
		if err := s.wa.UpsertCatalogItems(waCfg, chunk); err != nil {
			return 0, apperr.Wrap(apperr.Internal, "sync-failed", "Inventory sync failed", err)
		}
	}

	if err := s.products.MarkSynced(ids); err != nil {
		return 0, s.internalErr(err)
	}

	s.logAnalytics(businessID.String(), "inventory_sync", map[string]interface{}{
		"products_updated":       len(ids),
		"price_updates_included": updatePrices,
	})

	s.log.Infow("inventory sync completed", "business_id", businessID, "updated", len(ids))
	return len(ids), nil
}

// GetSyncStatus is a pure read: per-status counts and a completion
// percentage, zero when the business has no products.
func (s *catalogService) GetSyncStatus(userID string, businessID uuid.UUID, includeDetails bool) (*SyncStatusReport, error) {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return nil, err
	}

	products, err := s.products.FindByBusiness(businessID)
	if err != nil {
		return nil, s.internalErr(err)
	}

	report := &SyncStatusReport{TotalProducts: len(products)}
	for i := range products {
		switch products[i].SyncStatus {
		case model.SyncSynced:
			report.SyncedProducts++
		case model.SyncError:
			report.ErrorProducts++
		default:
			report.PendingProducts++
		}

		if includeDetails {
			report.ProductDetails = append(report.ProductDetails, ProductSyncDetail{
				ID:         products[i].ID.String(),
				Name:       products[i].Name,
				SyncStatus: products[i].SyncStatus,
				SyncError:  products[i].SyncError,
				LastSynced: products[i].LastSynced,
			})
		}
	}

	if report.TotalProducts > 0 {
		report.CompletionPercentage = int(math.Round(float64(report.SyncedProducts) / float64(report.TotalProducts) * 100))
	}
	return report, nil
}

func (s *catalogService) internalErr(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Wrap(apperr.Internal, "sync-failed", "Catalog operation failed", err)
}

func (s *catalogService) logAnalytics(businessID, eventType string, metadata map[string]interface{}) {
	if err := s.analytics.Log(businessID, eventType, metadata); err != nil {
		s.log.Warnw("failed to log analytics event", "event_type", eventType, "error", err)
	}
}

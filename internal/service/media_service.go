package service

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go-whatsapp-commerce/internal/apperr"
	"go-whatsapp-commerce/internal/config"
	"go-whatsapp-commerce/internal/imaging"
	"go-whatsapp-commerce/internal/model"
	"go-whatsapp-commerce/internal/repository"
	"go-whatsapp-commerce/internal/whatsapp"
	"go-whatsapp-commerce/pkg/batch"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UploadMediaRequest struct {
	BusinessID    uuid.UUID           `json:"business_id" validate:"uuid_required"`
	ImageURL      string              `json:"image_url" validate:"required"`
	Purpose       model.MediaPurpose  `json:"purpose" validate:"required,oneof=product category carousel fallback"`
	ReferenceID   uuid.UUID           `json:"reference_id" validate:"uuid_required"`
	ReferenceType model.ReferenceType `json:"reference_type" validate:"required,oneof=products categories"`
}

// UploadMediaResult is a soft outcome: a failed upload reports success=false
// instead of raising, so batch callers can keep going.
type UploadMediaResult struct {
	Success         bool   `json:"success"`
	WhatsAppMediaID string `json:"whatsapp_media_id,omitempty"`
	MediaRecordID   string `json:"media_record_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

type MediaItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BatchUploadResult struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []MediaItemError `json:"errors"`
}

type RefreshResult struct {
	Total     int              `json:"total"`
	Refreshed int              `json:"refreshed"`
	Failed    int              `json:"failed"`
	Errors    []MediaItemError `json:"errors"`
}

// MediaService owns the mapping between locally-owned images and remote media
// handles: optimize → upload → record → link, plus expiry refresh and
// reference-counted garbage collection.
type MediaService interface {
	// EnsureProductMedia mirrors the product's source image if no remote
	// handle exists yet. Idempotent; the authorization check belongs to the
	// calling operation.
	EnsureProductMedia(cfg whatsapp.Config, product *model.Product) error

	UploadMedia(userID string, req *UploadMediaRequest) (*UploadMediaResult, error)
	BatchUploadMedia(userID string, businessID uuid.UUID, productIDs []uuid.UUID) (*BatchUploadResult, error)
	RefreshExpiring(userID string, businessID uuid.UUID, bufferDays int) (*RefreshResult, error)
	CleanupUnused(userID string, businessID uuid.UUID, olderThanDays int) (int, error)
}

type mediaService struct {
	cfg        *config.Config
	gate       AccessGate
	optimizer  imaging.Optimizer
	wa         whatsapp.Client
	media      repository.MediaRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	orders     repository.OrderRepository
	analytics  repository.AnalyticsRepository
	log        *zap.SugaredLogger

	linkers map[model.ReferenceType]func(id uuid.UUID, mediaID, originalURL string) error
}

func NewMediaService(
	cfg *config.Config,
	gate AccessGate,
	optimizer imaging.Optimizer,
	wa whatsapp.Client,
	media repository.MediaRepository,
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	orders repository.OrderRepository,
	analytics repository.AnalyticsRepository,
	log *zap.SugaredLogger,
) MediaService {
	s := &mediaService{
		cfg:        cfg,
		gate:       gate,
		optimizer:  optimizer,
		wa:         wa,
		media:      media,
		products:   products,
		categories: categories,
		orders:     orders,
		analytics:  analytics,
		log:        log,
	}
	s.linkers = map[model.ReferenceType]func(uuid.UUID, string, string) error{
		model.RefProducts:   products.UpdateMediaReference,
		model.RefCategories: categories.UpdateMediaReference,
	}
	return s
}

// mirror runs the optimize → upload → record → link chain and returns the new
// remote handle and media record id.
func (s *mediaService) mirror(cfg whatsapp.Config, businessID uuid.UUID, sourceURL string,
	purpose model.MediaPurpose, referenceID uuid.UUID, referenceType model.ReferenceType) (string, uuid.UUID, error) {

	data, err := s.optimizer.Optimize(sourceURL, string(purpose))
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("optimize: %w", err)
	}

	mediaID, err := s.wa.UploadMedia(cfg, data, referenceID.String()+".jpg")
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("upload: %w", err)
	}

	now := time.Now()
	record := &model.MediaRecord{
		BusinessID:      businessID,
		WhatsAppMediaID: mediaID,
		OriginalURL:     sourceURL,
		Purpose:         purpose,
		ReferenceID:     referenceID,
		ReferenceType:   referenceType,
		FileSize:        int64(len(data)),
		UploadStatus:    model.UploadStatusUploaded,
		UploadedAt:      now,
		ExpiresAt:       now.AddDate(0, 0, s.cfg.MediaRetentionDays),
	}
	if err := s.media.Create(record); err != nil {
		return "", uuid.Nil, fmt.Errorf("store media record: %w", err)
	}

	if link, ok := s.linkers[referenceType]; ok {
		if err := link(referenceID, mediaID, sourceURL); err != nil {
			return "", uuid.Nil, fmt.Errorf("link reference: %w", err)
		}
	}

	return mediaID, record.ID, nil
}

func (s *mediaService) EnsureProductMedia(cfg whatsapp.Config, product *model.Product) error {
	if product.WhatsAppImageID != "" || product.ImageURL == "" {
		return nil
	}

	mediaID, _, err := s.mirror(cfg, product.BusinessID, product.ImageURL,
		model.PurposeProduct, product.ID, model.RefProducts)
	if err != nil {
		return err
	}

	product.WhatsAppImageID = mediaID
	product.WhatsAppImageURL = product.ImageURL
	return nil
}

func (s *mediaService) UploadMedia(userID string, req *UploadMediaRequest) (*UploadMediaResult, error) {
	if _, err := url.ParseRequestURI(req.ImageURL); err != nil {
		return nil, apperr.New(apperr.InvalidArgument, "invalid-request", "Invalid image URL")
	}
	if err := s.gate.Authorize(userID, req.BusinessID); err != nil {
		return nil, err
	}
	cfg, err := s.gate.WhatsAppConfig(req.BusinessID)
	if err != nil {
		return nil, err
	}

	s.log.Infow("starting media upload",
		"business_id", req.BusinessID, "purpose", req.Purpose, "reference_id", req.ReferenceID)

	mediaID, recordID, err := s.mirror(cfg, req.BusinessID, req.ImageURL,
		req.Purpose, req.ReferenceID, req.ReferenceType)
	if err != nil {
		s.log.Errorw("media upload failed", "business_id", req.BusinessID, "error", err)
		return &UploadMediaResult{Success: false, Error: err.Error()}, nil
	}

	s.logAnalytics(req.BusinessID.String(), "media_upload", map[string]interface{}{
		"purpose":        req.Purpose,
		"reference_type": req.ReferenceType,
	})

	return &UploadMediaResult{
		Success:         true,
		WhatsAppMediaID: mediaID,
		MediaRecordID:   recordID.String(),
	}, nil
}

// BatchUploadMedia mirrors media for every product that has a source image
// but no handle yet. Work fans out per chunk and joins before the next chunk;
// one product's failure never blocks the others.
func (s *mediaService) BatchUploadMedia(userID string, businessID uuid.UUID, productIDs []uuid.UUID) (*BatchUploadResult, error) {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return nil, err
	}
	cfg, err := s.gate.WhatsAppConfig(businessID)
	if err != nil {
		return nil, err
	}

	result := &BatchUploadResult{Total: len(productIDs)}
	var mu sync.Mutex

	for _, chunk := range batch.Chunk(productIDs, s.cfg.MediaBatchSize) {
		var wg sync.WaitGroup
		for _, productID := range chunk {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				err := s.uploadForProduct(cfg, businessID, id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					result.Errors = append(result.Errors, MediaItemError{ID: id.String(), Error: err.Error()})
					return
				}
				result.Successful++
			}(productID)
		}
		wg.Wait()
	}

	s.log.Infow("batch media upload completed",
		"business_id", businessID, "successful", result.Successful, "failed", result.Failed)
	return result, nil
}

func (s *mediaService) uploadForProduct(cfg whatsapp.Config, businessID, productID uuid.UUID) error {
	product, err := s.products.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product not found")
		}
		return err
	}
	if product.BusinessID != businessID {
		return fmt.Errorf("product not found")
	}
	if product.ImageURL == "" || product.WhatsAppImageID != "" {
		return nil
	}
	_, _, err = s.mirror(cfg, businessID, product.ImageURL, model.PurposeProduct, product.ID, model.RefProducts)
	return err
}

// RefreshExpiring re-uploads media nearing the platform's retention window.
// A refreshed upload creates a new record; the old one is marked expired, not
// overwritten.
func (s *mediaService) RefreshExpiring(userID string, businessID uuid.UUID, bufferDays int) (*RefreshResult, error) {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return nil, err
	}
	cfg, err := s.gate.WhatsAppConfig(businessID)
	if err != nil {
		return nil, err
	}

	if bufferDays <= 0 {
		bufferDays = s.cfg.RefreshBufferDays
	}

	expiring, err := s.media.FindExpiring(businessID, time.Now().AddDate(0, 0, bufferDays))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "media-upload-failed", "failed to query expiring media", err)
	}

	result := &RefreshResult{Total: len(expiring)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := range expiring {
		record := expiring[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.mirror(cfg, businessID, record.OriginalURL,
				record.Purpose, record.ReferenceID, record.ReferenceType)
			if err == nil {
				err = s.media.MarkExpired(record.ID, time.Now())
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, MediaItemError{ID: record.ID.String(), Error: err.Error()})
				return
			}
			result.Refreshed++
		}()
	}
	wg.Wait()

	s.log.Infow("media refresh completed",
		"business_id", businessID, "refreshed", result.Refreshed, "failed", result.Failed)
	return result, nil
}

// CleanupUnused deletes records older than the cutoff whose handle no live
// entity still points at. The liveness probe errs toward keeping a record
// when it cannot decide.
func (s *mediaService) CleanupUnused(userID string, businessID uuid.UUID, olderThanDays int) (int, error) {
	if err := s.gate.Authorize(userID, businessID); err != nil {
		return 0, err
	}

	if olderThanDays <= 0 {
		olderThanDays = s.cfg.CleanupOlderThanDays
	}

	records, err := s.media.FindOlderThan(businessID, time.Now().AddDate(0, 0, -olderThanDays))
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "media-upload-failed", "failed to query media records", err)
	}

	var dead []uuid.UUID
	for i := range records {
		if !s.isReferenced(businessID, &records[i]) {
			dead = append(dead, records[i].ID)
		}
	}

	if err := s.media.DeleteByIDs(dead); err != nil {
		return 0, apperr.Wrap(apperr.Internal, "media-upload-failed", "failed to delete media records", err)
	}

	s.log.Infow("media cleanup completed",
		"business_id", businessID, "deleted", len(dead), "checked", len(records))
	return len(dead), nil
}

// isReferenced reports whether any live entity still uses the record's remote
// handle: the referenced product's current handle or additional images, or an
// item image inside an active order. The order scan is bounded; a wider scan
// buys little because refreshed handles change on every upload.
func (s *mediaService) isReferenced(businessID uuid.UUID, record *model.MediaRecord) bool {
	if record.ReferenceType == model.RefProducts {
		product, err := s.products.FindByID(record.ReferenceID)
		switch {
		case err == nil:
			if product.WhatsAppImageID == record.WhatsAppMediaID {
				return true
			}
			for _, id := range product.AdditionalImageIDs {
				if id == record.WhatsAppMediaID {
					return true
				}
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return true // keep on probe failure
		}
	}

	orders, err := s.orders.FindActive(businessID, s.cfg.CleanupOrderScanLimit)
	if err != nil {
		return true
	}
	for _, order := range orders {
		for _, item := range order.Items {
			if item.WhatsAppImageID == record.WhatsAppMediaID {
				return true
			}
		}
	}
	return false
}

func (s *mediaService) logAnalytics(businessID, eventType string, metadata map[string]interface{}) {
	if err := s.analytics.Log(businessID, eventType, metadata); err != nil {
		s.log.Warnw("failed to log analytics event", "event_type", eventType, "error", err)
	}
}

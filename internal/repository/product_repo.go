package repository

import (
	"time"

	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByBusiness(businessID uuid.UUID) ([]model.Product, error)
	FindByIDs(businessID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)
	FindUpdatedSince(businessID uuid.UUID, since time.Time) ([]model.Product, error)
	Save(product *model.Product) error
	MarkSynced(ids []uuid.UUID) error
	MarkError(ids []uuid.UUID, message string) error
	UpdateMediaReference(id uuid.UUID, mediaID, originalURL string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindByBusiness(businessID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("business_id = ?", businessID).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDs(businessID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("business_id = ? AND id IN ?", businessID, ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindUpdatedSince(businessID uuid.UUID, since time.Time) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("business_id = ? AND updated_at >= ?", businessID, since).Find(&products).Error
	return products, err
}

func (r *productRepo) Save(product *model.Product) error {
	return r.db.Save(product).Error
}

// MarkSynced records a successful batch push. One statement per batch keeps
// the status write all-or-nothing for every product in the batch.
func (r *productRepo) MarkSynced(ids []uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.Product{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"sync_status": model.SyncSynced,
			"sync_error":  nil,
			"last_synced": now,
		}).Error
}

func (r *productRepo) MarkError(ids []uuid.UUID, message string) error {
	now := time.Now()
	return r.db.Model(&model.Product{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"sync_status": model.SyncError,
			"sync_error":  message,
			"last_synced": now,
		}).Error
}

func (r *productRepo) UpdateMediaReference(id uuid.UUID, mediaID, originalURL string) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"whatsapp_image_id":  mediaID,
			"whatsapp_image_url": originalURL,
		}).Error
}

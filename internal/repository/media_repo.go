package repository

import (
	"time"

	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaRepository interface {
	Create(record *model.MediaRecord) error
	FindExpiring(businessID uuid.UUID, before time.Time) ([]model.MediaRecord, error)
	FindOlderThan(businessID uuid.UUID, cutoff time.Time) ([]model.MediaRecord, error)
	MarkExpired(id uuid.UUID, at time.Time) error
	DeleteByIDs(ids []uuid.UUID) error
	DeleteByReference(businessID, referenceID uuid.UUID) (int64, error)
}

type mediaRepo struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) MediaRepository {
	return &mediaRepo{db}
}

func (r *mediaRepo) Create(record *model.MediaRecord) error {
	return r.db.Create(record).Error
}

// FindExpiring selects still-uploaded records whose expiry falls before the
// given instant (now + refresh buffer at the call site).
func (r *mediaRepo) FindExpiring(businessID uuid.UUID, before time.Time) ([]model.MediaRecord, error) {
	var records []model.MediaRecord
	err := r.db.
		Where("business_id = ? AND upload_status = ? AND expires_at <= ?",
			businessID, model.UploadStatusUploaded, before).
		Find(&records).Error
	return records, err
}

func (r *mediaRepo) FindOlderThan(businessID uuid.UUID, cutoff time.Time) ([]model.MediaRecord, error) {
	var records []model.MediaRecord
	err := r.db.
		Where("business_id = ? AND created_at <= ?", businessID, cutoff).
		Find(&records).Error
	return records, err
}

func (r *mediaRepo) MarkExpired(id uuid.UUID, at time.Time) error {
	return r.db.Model(&model.MediaRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"upload_status": model.UploadStatusExpired,
			"expired_at":    at,
		}).Error
}

// DeleteByIDs removes a cleanup batch in one statement.
func (r *mediaRepo) DeleteByIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&model.MediaRecord{}).Error
}

func (r *mediaRepo) DeleteByReference(businessID, referenceID uuid.UUID) (int64, error) {
	result := r.db.
		Where("business_id = ? AND reference_id = ?", businessID, referenceID).
		Delete(&model.MediaRecord{})
	return result.RowsAffected, result.Error
}

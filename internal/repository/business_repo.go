package repository

import (
	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	FindByID(id uuid.UUID) (*model.Business, error)
	Save(business *model.Business) error
	FindSettings(businessID uuid.UUID) (*model.BusinessSettings, error)
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepository {
	return &businessRepo{db}
}

func (r *businessRepo) FindByID(id uuid.UUID) (*model.Business, error) {
	var business model.Business
	err := r.db.First(&business, "id = ?", id).Error
	return &business, err
}

func (r *businessRepo) Save(business *model.Business) error {
	return r.db.Save(business).Error
}

func (r *businessRepo) FindSettings(businessID uuid.UUID) (*model.BusinessSettings, error) {
	var settings model.BusinessSettings
	err := r.db.First(&settings, "business_id = ?", businessID).Error
	return &settings, err
}

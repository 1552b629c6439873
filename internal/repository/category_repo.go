package repository

import (
	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindByID(id uuid.UUID) (*model.Category, error)
	UpdateMediaReference(id uuid.UUID, mediaID, originalURL string) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := r.db.First(&category, "id = ?", id).Error
	return &category, err
}

func (r *categoryRepo) UpdateMediaReference(id uuid.UUID, mediaID, originalURL string) error {
	return r.db.Model(&model.Category{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"whatsapp_image_id":  mediaID,
			"whatsapp_image_url": originalURL,
		}).Error
}

package repository

import (
	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryRepository interface {
	FindByProduct(businessID, productID uuid.UUID) (*model.InventorySnapshot, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) FindByProduct(businessID, productID uuid.UUID) (*model.InventorySnapshot, error) {
	var snapshot model.InventorySnapshot
	err := r.db.
		Where("business_id = ? AND product_id = ?", businessID, productID).
		First(&snapshot).Error
	return &snapshot, err
}

package repository

import (
	"time"

	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	FindByID(id uuid.UUID) (*model.Order, error)
	FindActive(businessID uuid.UUID, limit int) ([]model.Order, error)
	StampNotification(id uuid.UUID, notificationType string, at time.Time) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").First(&order, "id = ?", id).Error
	return &order, err
}

// FindActive returns pending/processing orders with their items, bounded by
// limit. Used by the media liveness probe.
func (r *orderRepo) FindActive(businessID uuid.UUID, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").
		Where("business_id = ? AND status IN ?", businessID,
			[]model.OrderStatus{model.OrderPending, model.OrderProcessing}).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) StampNotification(id uuid.UUID, notificationType string, at time.Time) error {
	return r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_notification_sent": at,
			"last_notification_type": notificationType,
		}).Error
}

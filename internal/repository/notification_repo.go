package repository

import (
	"go-whatsapp-commerce/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(record *model.NotificationRecord) error
	FindByMessageID(messageID string) (*model.NotificationRecord, error)
	Update(record *model.NotificationRecord) error
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) Create(record *model.NotificationRecord) error {
	return r.db.Create(record).Error
}

func (r *notificationRepo) FindByMessageID(messageID string) (*model.NotificationRecord, error) {
	var record model.NotificationRecord
	err := r.db.First(&record, "whatsapp_message_id = ?", messageID).Error
	return &record, err
}

func (r *notificationRepo) Update(record *model.NotificationRecord) error {
	return r.db.Save(record).Error
}

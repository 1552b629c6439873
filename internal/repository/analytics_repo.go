package repository

import (
	"go-whatsapp-commerce/internal/model"

	"gorm.io/gorm"
)

type AnalyticsRepository interface {
	Log(businessID, eventType string, metadata map[string]interface{}) error
}

type analyticsRepo struct {
	db *gorm.DB
}

func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepo{db}
}

func (r *analyticsRepo) Log(businessID, eventType string, metadata map[string]interface{}) error {
	return r.db.Create(&model.AnalyticsEvent{
		BusinessID: businessID,
		EventType:  eventType,
		Metadata:   metadata,
	}).Error
}

package model

import "github.com/google/uuid"

type Category struct {
	BaseModel
	BusinessID       uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id" validate:"uuid_required"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	ImageURL         string    `json:"image_url"`
	WhatsAppImageID  string    `gorm:"column:whatsapp_image_id;type:varchar(128)" json:"whatsapp_image_id"`
	WhatsAppImageURL string    `gorm:"column:whatsapp_image_url" json:"whatsapp_image_url"`
}

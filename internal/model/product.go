package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

type Product struct {
	BaseModel
	BusinessID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"business_id" validate:"uuid_required"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	CategoryName  string          `gorm:"type:varchar(100)" json:"category_name"`

	// RetailerID is the external catalog key; the product ID is used when empty.
	RetailerID string `gorm:"type:varchar(100)" json:"retailer_id"`

	ImageURL           string   `json:"image_url"`
	WhatsAppImageID    string   `gorm:"column:whatsapp_image_id;type:varchar(128)" json:"whatsapp_image_id"`
	WhatsAppImageURL   string   `gorm:"column:whatsapp_image_url" json:"whatsapp_image_url"`
	AdditionalImageIDs []string `gorm:"serializer:json" json:"additional_image_ids"`

	SyncStatus SyncStatus `gorm:"type:varchar(10);default:'pending'" json:"sync_status"`
	SyncError  *string    `json:"sync_error"`
	LastSynced *time.Time `json:"last_synced"`
}

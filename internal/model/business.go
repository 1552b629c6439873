package model

import "github.com/google/uuid"

// Business owns every other entity in the system. The WhatsApp integration
// fields mirror the Business Platform app configuration; AccessToken is stored
// sealed (AES-GCM) and only decrypted when building a wire config.
type Business struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	OwnerID string `gorm:"type:varchar(255);index;not null" json:"owner_id" validate:"required"`

	WhatsAppEnabled   bool   `gorm:"column:whatsapp_enabled;default:false" json:"whatsapp_enabled"`
	PhoneNumberID     string `gorm:"type:varchar(64)" json:"phone_number_id"`
	BusinessAccountID string `gorm:"type:varchar(64)" json:"business_account_id"`
	CatalogID         string `gorm:"type:varchar(64)" json:"catalog_id"`
	AccessToken       string `gorm:"type:text" json:"-"`
	WhatsAppActive    bool   `gorm:"column:whatsapp_active;default:false" json:"whatsapp_active"`
}

// BusinessSettings holds per-business notification toggles. A business without
// a settings row gets DefaultBusinessSettings.
type BusinessSettings struct {
	BaseModel
	BusinessID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"business_id"`
	OrderUpdates   bool      `gorm:"default:true" json:"order_updates"`
	LowStockAlerts bool      `gorm:"default:true" json:"low_stock_alerts"`
	DailySummary   bool      `gorm:"default:false" json:"daily_summary"`
}

func DefaultBusinessSettings(businessID uuid.UUID) *BusinessSettings {
	return &BusinessSettings{
		BusinessID:     businessID,
		OrderUpdates:   true,
		LowStockAlerts: true,
		DailySummary:   false,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type MediaPurpose string

const (
	PurposeProduct  MediaPurpose = "product"
	PurposeCategory MediaPurpose = "category"
	PurposeCarousel MediaPurpose = "carousel"
	PurposeFallback MediaPurpose = "fallback"
)

type UploadStatus string

const (
	UploadStatusUploaded UploadStatus = "uploaded"
	UploadStatusExpired  UploadStatus = "expired"
)

// ReferenceType tags the entity a media record was uploaded for. The
// reference is a weak back-pointer used for lookup and reference counting;
// deleting the entity never cascades into media records.
type ReferenceType string

const (
	RefProducts   ReferenceType = "products"
	RefCategories ReferenceType = "categories"
)

// MediaRecord maps a locally-owned image to a remote media handle. Uploaded
// records hold a handle the platform still serves; expiry is advisory and
// refreshed ahead of the platform's retention window.
type MediaRecord struct {
	BaseModel
	BusinessID      uuid.UUID     `gorm:"type:uuid;index;not null" json:"business_id"`
	WhatsAppMediaID string        `gorm:"column:whatsapp_media_id;type:varchar(128);index;not null" json:"whatsapp_media_id"`
	OriginalURL     string        `gorm:"not null" json:"original_url"`
	MimeType        string        `gorm:"type:varchar(50);default:'image/jpeg'" json:"mime_type"`
	Purpose         MediaPurpose  `gorm:"type:varchar(20);not null" json:"purpose"`
	ReferenceID     uuid.UUID     `gorm:"type:uuid;index" json:"reference_id"`
	ReferenceType   ReferenceType `gorm:"type:varchar(20)" json:"reference_type"`
	FileSize        int64         `json:"file_size"`
	UploadStatus    UploadStatus  `gorm:"type:varchar(10);default:'uploaded'" json:"upload_status"`
	UploadedAt      time.Time     `json:"uploaded_at"`
	ExpiresAt       time.Time     `gorm:"index" json:"expires_at"`
	ExpiredAt       *time.Time    `json:"expired_at"`
}

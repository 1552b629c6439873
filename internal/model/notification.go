package model

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
	DeliveryFailed    DeliveryStatus = "failed"
)

// NotificationRecord is written on every send attempt. After a platform
// acknowledgment it carries the message id used to key delivery callbacks;
// delivered/read/failed are terminal states.
type NotificationRecord struct {
	BaseModel
	OrderID    uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`
	CustomerID string    `gorm:"type:varchar(255)" json:"customer_id"`

	Type    string `gorm:"type:varchar(30);not null" json:"type"`
	Channel string `gorm:"type:varchar(20);default:'whatsapp'" json:"channel"`
	Message string `json:"message"`

	DeliveryStatus    DeliveryStatus `gorm:"type:varchar(10);default:'sent'" json:"delivery_status"`
	WhatsAppMessageID *string        `gorm:"column:whatsapp_message_id;type:varchar(128);index" json:"whatsapp_message_id"`
	IsRead            bool           `gorm:"default:false" json:"is_read"`
	ReadAt            *time.Time     `json:"read_at"`
	StatusUpdatedAt   *time.Time     `json:"status_updated_at"`
	ErrorCode         string         `gorm:"type:varchar(50)" json:"error_code"`
	ErrorMessage      string         `json:"error_message"`
}

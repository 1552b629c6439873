package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type Order struct {
	BaseModel
	BusinessID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"business_id"`
	Status         OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	TrackingNumber string          `gorm:"type:varchar(100)" json:"tracking_number"`
	Source         string          `gorm:"type:varchar(20);default:'web'" json:"source"`

	CustomerID       string `gorm:"type:varchar(255)" json:"customer_id"`
	CustomerName     string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone    string `gorm:"type:varchar(30)" json:"customer_phone"`
	CustomerWhatsApp string `gorm:"column:customer_whatsapp;type:varchar(30)" json:"customer_whatsapp"`

	LastNotificationSent *time.Time `json:"last_notification_sent"`
	LastNotificationType string     `gorm:"type:varchar(30)" json:"last_notification_type"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	Name            string          `gorm:"type:varchar(255)" json:"name"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	WhatsAppImageID string          `gorm:"column:whatsapp_image_id;type:varchar(128)" json:"whatsapp_image_id"`
}

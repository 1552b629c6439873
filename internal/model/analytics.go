package model

// AnalyticsEvent is an append-only usage record. BusinessID is a plain string
// because webhook-originated events are attributed to "system".
type AnalyticsEvent struct {
	BaseModel
	BusinessID string                 `gorm:"type:varchar(64);index;not null" json:"business_id"`
	EventType  string                 `gorm:"type:varchar(50);index;not null" json:"event_type"`
	Metadata   map[string]interface{} `gorm:"serializer:json" json:"metadata"`
}

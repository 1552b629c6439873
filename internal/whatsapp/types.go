package whatsapp

// Config is the per-business wire configuration resolved by the access gate.
// AccessToken arrives already decrypted.
type Config struct {
	PhoneNumberID     string
	BusinessAccountID string
	CatalogID         string
	AccessToken       string
	Active            bool
}

// CatalogItem is one product entry in a catalog batch request. Zero-valued
// optional fields are omitted so the same type serves full upserts and
// partial updates.
type CatalogItem struct {
	RetailerID   string `json:"retailer_id"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Price        int64  `json:"price,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Availability string `json:"availability,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	URL          string `json:"url,omitempty"`
	Category     string `json:"category,omitempty"`
}

// MessageContent is the outbound message body. Only text messages are sent
// from this service today.
type MessageContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendResult carries the platform-assigned message id.
type SendResult struct {
	MessageID string
}

// Client is the surface of the remote catalog and messaging platform. A batch
// upsert fails or succeeds as a whole; partial acceptance is not part of the
// contract.
type Client interface {
	UpsertCatalogItems(cfg Config, items []CatalogItem) error
	UploadMedia(cfg Config, data []byte, filename string) (string, error)
	SendMessage(cfg Config, to string, content MessageContent) (SendResult, error)
}

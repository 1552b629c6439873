package service

import (
	"go-whatsapp-commerce/internal/config"
	"go-whatsapp-commerce/internal/model"
	"go-whatsapp-commerce/internal/whatsapp"

	"github.com/shopspring/decimal"
)

// Remote catalog availability values.
const (
	AvailabilityInStock    = "in stock"
	AvailabilityLimited    = "limited quantity"
	AvailabilityOutOfStock = "out of stock"
)

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a decimal price to minor currency units, rounded to the
// nearest integer.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

// MajorUnits is the inverse mapping, used when reading prices back from the
// remote catalog.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// Availability maps a raw inventory snapshot to the remote catalog vocabulary.
func Availability(stockQuantity int, status model.StockStatus) string {
	switch {
	case stockQuantity == 0:
		return AvailabilityOutOfStock
	case status == model.StockLowStock:
		return AvailabilityLimited
	default:
		return AvailabilityInStock
	}
}

// RetailerID returns the external catalog key, defaulting to the product id.
func RetailerID(p *model.Product) string {
	if p.RetailerID != "" {
		return p.RetailerID
	}
	return p.ID.String()
}

// BuildCatalogItem projects a product into a full catalog upsert entry.
func BuildCatalogItem(cfg *config.Config, p *model.Product) whatsapp.CatalogItem {
	availability := AvailabilityOutOfStock
	if p.StockQuantity > 0 {
		availability = AvailabilityInStock
	}

	category := p.CategoryName
	if category == "" {
		category = "General"
	}

	item := whatsapp.CatalogItem{
		RetailerID:   RetailerID(p),
		Name:         p.Name,
		Description:  p.Description,
		Price:        MinorUnits(p.Price),
		Currency:     cfg.Currency,
		Availability: availability,
		URL:          cfg.ProductURLBase + p.ID.String(),
		Category:     category,
	}
	if p.WhatsAppImageID != "" {
		item.ImageURL = cfg.MediaURLPrefix + p.WhatsAppImageID
	}
	return item
}

// BuildProductUpdate projects only the requested fields into a partial update.
func BuildProductUpdate(cfg *config.Config, p *model.Product, fields []string) whatsapp.CatalogItem {
	item := whatsapp.CatalogItem{RetailerID: RetailerID(p)}

	for _, field := range fields {
		switch field {
		case "name":
			item.Name = p.Name
		case "description":
			item.Description = p.Description
		case "price":
			item.Price = MinorUnits(p.Price)
			item.Currency = cfg.Currency
		case "availability":
			if p.StockQuantity > 0 {
				item.Availability = AvailabilityInStock
			} else {
				item.Availability = AvailabilityOutOfStock
			}
		case "image":
			if p.WhatsAppImageID != "" {
				item.ImageURL = cfg.MediaURLPrefix + p.WhatsAppImageID
			}
		}
	}
	return item
}

// BuildInventoryItem projects availability (and optionally price) from a raw
// inventory snapshot. A nil snapshot counts as zero stock.
func BuildInventoryItem(cfg *config.Config, p *model.Product, snapshot *model.InventorySnapshot, includePrice bool) whatsapp.CatalogItem {
	quantity := 0
	status := model.StockOutOfStock
	if snapshot != nil {
		quantity = snapshot.StockQuantity
		status = snapshot.StockStatus
	}

	item := whatsapp.CatalogItem{
		RetailerID:   RetailerID(p),
		Availability: Availability(quantity, status),
	}
	if includePrice {
		item.Price = MinorUnits(p.Price)
		item.Currency = cfg.Currency
	}
	return item
}

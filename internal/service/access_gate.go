package service

import (
	"errors"

	"go-whatsapp-commerce/internal/apperr"
	"go-whatsapp-commerce/internal/repository"
	"go-whatsapp-commerce/internal/whatsapp"
	"go-whatsapp-commerce/pkg/crypto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessGate authorizes a caller against a business before any mutation and
// resolves the business's wire configuration.
type AccessGate interface {
	Authorize(userID string, businessID uuid.UUID) error
	WhatsAppConfig(businessID uuid.UUID) (whatsapp.Config, error)
}

type accessGate struct {
	businesses    repository.BusinessRepository
	encryptionKey string
}

func NewAccessGate(businesses repository.BusinessRepository, encryptionKey string) AccessGate {
	return &accessGate{businesses: businesses, encryptionKey: encryptionKey}
}

func (g *accessGate) Authorize(userID string, businessID uuid.UUID) error {
	if userID == "" {
		return apperr.ErrAuthRequired
	}

	business, err := g.businesses.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrBusinessNotFound
		}
		return apperr.Wrap(apperr.Internal, "internal", "failed to load business", err)
	}

	if business.OwnerID != userID {
		return apperr.ErrAccessDenied
	}
	if !business.WhatsAppEnabled {
		return apperr.ErrWhatsAppNotConfigured
	}
	return nil
}

func (g *accessGate) WhatsAppConfig(businessID uuid.UUID) (whatsapp.Config, error) {
	business, err := g.businesses.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return whatsapp.Config{}, apperr.ErrBusinessNotFound
		}
		return whatsapp.Config{}, apperr.Wrap(apperr.Internal, "internal", "failed to load business", err)
	}

	token := business.AccessToken
	if token != "" {
		token, err = crypto.Open(g.encryptionKey, business.AccessToken)
		if err != nil {
			return whatsapp.Config{}, apperr.Wrap(apperr.Internal, "internal", "failed to unseal access token", err)
		}
	}

	return whatsapp.Config{
		PhoneNumberID:     business.PhoneNumberID,
		BusinessAccountID: business.BusinessAccountID,
		CatalogID:         business.CatalogID,
		AccessToken:       token,
		Active:            business.WhatsAppActive,
	}, nil
}

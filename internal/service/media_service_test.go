package service

import (
	"errors"
	"testing"
	"time"

	"go-whatsapp-commerce/internal/apperr"
	"go-whatsapp-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProductMediaIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	p := env.createProduct(t, func(p *model.Product) {
		p.ImageURL = "https://example.com/widget.jpg"
	})

	cfg, err := env.gate.WhatsAppConfig(env.business.ID)
	require.NoError(t, err)

	require.NoError(t, svc.EnsureProductMedia(cfg, p))
	assert.Equal(t, "media-1", p.WhatsAppImageID)
	assert.Equal(t, 1, env.client.uploadCount())

	// Second call sees the handle and does nothing.
	require.NoError(t, svc.EnsureProductMedia(cfg, p))
	assert.Equal(t, 1, env.client.uploadCount(), "existing handle must not be re-uploaded")

	// Product row carries the handle via the reference link.
	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, "media-1", reloaded.WhatsAppImageID)

	var record model.MediaRecord
	require.NoError(t, env.db.First(&record, "reference_id = ?", p.ID).Error)
	assert.Equal(t, "media-1", record.WhatsAppMediaID)
	assert.Equal(t, model.UploadStatusUploaded, record.UploadStatus)
	assert.WithinDuration(t,
		time.Now().AddDate(0, 0, env.cfg.MediaRetentionDays), record.ExpiresAt, time.Minute)
}

func TestEnsureProductMediaSkipsWithoutSource(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	p := env.createProduct(t, nil) // no ImageURL
	cfg, err := env.gate.WhatsAppConfig(env.business.ID)
	require.NoError(t, err)

	require.NoError(t, svc.EnsureProductMedia(cfg, p))
	assert.Zero(t, env.client.uploadCount())
}

func TestUploadMediaSoftFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	p := env.createProduct(t, nil)
	env.client.failUpload = errors.New("platform unavailable")

	result, err := svc.UploadMedia(testOwnerID, &UploadMediaRequest{
		BusinessID:    env.business.ID,
		ImageURL:      "https://example.com/widget.jpg",
		Purpose:       model.PurposeProduct,
		ReferenceID:   p.ID,
		ReferenceType: model.RefProducts,
	})
	require.NoError(t, err, "upload failure is a soft outcome")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "platform unavailable")
}

func TestUploadMediaInvalidURL(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	_, err := svc.UploadMedia(testOwnerID, &UploadMediaRequest{
		BusinessID:    env.business.ID,
		ImageURL:      "not a url",
		Purpose:       model.PurposeProduct,
		ReferenceID:   uuid.New(),
		ReferenceType: model.RefProducts,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidArgument, apperr.From(err).Kind)
}

func TestBatchUploadMedia(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	withImage := env.createProduct(t, func(p *model.Product) {
		p.ImageURL = "https://example.com/a.jpg"
	})
	alreadyMirrored := env.createProduct(t, func(p *model.Product) {
		p.ImageURL = "https://example.com/b.jpg"
		p.WhatsAppImageID = "media-existing"
	})
	missing := uuid.New()

	result, err := svc.BatchUploadMedia(testOwnerID, env.business.ID,
		[]uuid.UUID{withImage.ID, alreadyMirrored.ID, missing})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful, "already-mirrored product counts as success")
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, missing.String(), result.Errors[0].ID)

	assert.Equal(t, 1, env.client.uploadCount(), "only the unmirrored product uploads")
}

func TestRefreshExpiringSupersedesOldRecord(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	p := env.createProduct(t, func(p *model.Product) {
		p.ImageURL = "https://example.com/widget.jpg"
		p.WhatsAppImageID = "media-old"
	})
	old := &model.MediaRecord{
		BusinessID:      env.business.ID,
		WhatsAppMediaID: "media-old",
		OriginalURL:     "https://example.com/widget.jpg",
		Purpose:         model.PurposeProduct,
		ReferenceID:     p.ID,
		ReferenceType:   model.RefProducts,
		UploadStatus:    model.UploadStatusUploaded,
		UploadedAt:      time.Now().AddDate(0, 0, -28),
		ExpiresAt:       time.Now().AddDate(0, 0, 2), // inside the 7 day buffer
	}
	require.NoError(t, env.db.Create(old).Error)

	result, err := svc.RefreshExpiring(testOwnerID, env.business.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Refreshed)
	assert.Zero(t, result.Failed)

	// Old record expired, new record live, product points at the new handle.
	var oldReloaded model.MediaRecord
	require.NoError(t, env.db.First(&oldReloaded, "id = ?", old.ID).Error)
	assert.Equal(t, model.UploadStatusExpired, oldReloaded.UploadStatus)
	assert.NotNil(t, oldReloaded.ExpiredAt)

	var live []model.MediaRecord
	require.NoError(t, env.db.
		Where("reference_id = ? AND upload_status = ?", p.ID, model.UploadStatusUploaded).
		Find(&live).Error)
	require.Len(t, live, 1)
	assert.NotEqual(t, "media-old", live[0].WhatsAppMediaID)

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, live[0].WhatsAppMediaID, reloaded.WhatsAppImageID)
}

func TestRefreshExpiringIgnoresFreshMedia(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	require.NoError(t, env.db.Create(&model.MediaRecord{
		BusinessID:      env.business.ID,
		WhatsAppMediaID: "media-fresh",
		OriginalURL:     "https://example.com/fresh.jpg",
		Purpose:         model.PurposeProduct,
		ReferenceID:     uuid.New(),
		ReferenceType:   model.RefProducts,
		UploadStatus:    model.UploadStatusUploaded,
		UploadedAt:      time.Now(),
		ExpiresAt:       time.Now().AddDate(0, 0, 25),
	}).Error)

	result, err := svc.RefreshExpiring(testOwnerID, env.business.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Zero(t, env.client.uploadCount())
}

func TestCleanupUnusedKeepsReferencedHandles(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	p := env.createProduct(t, func(p *model.Product) {
		p.WhatsAppImageID = "media-live"
	})

	old := time.Now().AddDate(0, 0, -40)

	makeRecord := func(mediaID string, refID uuid.UUID) *model.MediaRecord {
		r := &model.MediaRecord{
			BusinessID:      env.business.ID,
			WhatsAppMediaID: mediaID,
			OriginalURL:     "https://example.com/img.jpg",
			Purpose:         model.PurposeProduct,
			ReferenceID:     refID,
			ReferenceType:   model.RefProducts,
			UploadStatus:    model.UploadStatusUploaded,
		}
		require.NoError(t, env.db.Create(r).Error)
		// Backdate past the cleanup cutoff.
		require.NoError(t, env.db.Model(r).UpdateColumn("created_at", old).Error)
		return r
	}

	live := makeRecord("media-live", p.ID)
	dead := makeRecord("media-dead", p.ID)

	deleted, err := svc.CleanupUnused(testOwnerID, env.business.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	var count int64
	require.NoError(t, env.db.Model(&model.MediaRecord{}).
		Where("id = ?", live.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "record backing the product's current handle survives")

	require.NoError(t, env.db.Model(&model.MediaRecord{}).
		Where("id = ?", dead.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCleanupUnusedKeepsActiveOrderImages(t *testing.T) {
	env := newTestEnv(t)
	svc := env.mediaService()

	order := env.createOrder(t, nil)
	require.NoError(t, env.db.Create(&model.OrderItem{
		OrderID:         order.ID,
		Name:            "Widget",
		Quantity:        1,
		WhatsAppImageID: "media-in-cart",
	}).Error)

	record := &model.MediaRecord{
		BusinessID:      env.business.ID,
		WhatsAppMediaID: "media-in-cart",
		OriginalURL:     "https://example.com/cart.jpg",
		Purpose:         model.PurposeProduct,
		ReferenceID:     uuid.New(), // product since deleted
		ReferenceType:   model.RefProducts,
		UploadStatus:    model.UploadStatusUploaded,
	}
	require.NoError(t, env.db.Create(record).Error)
	require.NoError(t, env.db.Model(record).
		UpdateColumn("created_at", time.Now().AddDate(0, 0, -40)).Error)

	deleted, err := svc.CleanupUnused(testOwnerID, env.business.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted, "handle referenced by an active order is kept")
}

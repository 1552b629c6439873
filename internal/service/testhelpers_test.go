package service

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"go-whatsapp-commerce/internal/config"
	"go-whatsapp-commerce/internal/model"
	"go-whatsapp-commerce/internal/repository"
	"go-whatsapp-commerce/internal/whatsapp"
	"go-whatsapp-commerce/internal/ws"
	"go-whatsapp-commerce/pkg/crypto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testOwnerID       = "owner-1"
	testEncryptionKey = "test-encryption-key"
)

// fakeClient records every platform call and fails on demand. Mutexed because
// media uploads fan out across goroutines.
type fakeClient struct {
	mu sync.Mutex

	batches    [][]whatsapp.CatalogItem
	uploads    []string
	messages   []whatsapp.MessageContent
	recipients []string

	failBatch  func(items []whatsapp.CatalogItem) error
	failUpload error
	failSend   error

	nextMediaID   int
	nextMessageID string
}

func (f *fakeClient) UpsertCatalogItems(cfg whatsapp.Config, items []whatsapp.CatalogItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, items)
	if f.failBatch != nil {
		return f.failBatch(items)
	}
	return nil
}

func (f *fakeClient) UploadMedia(cfg whatsapp.Config, data []byte, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload != nil {
		return "", f.failUpload
	}
	f.nextMediaID++
	f.uploads = append(f.uploads, filename)
	return "media-" + strconv.Itoa(f.nextMediaID), nil
}

func (f *fakeClient) SendMessage(cfg whatsapp.Config, to string, content whatsapp.MessageContent) (whatsapp.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return whatsapp.SendResult{}, f.failSend
	}
	f.recipients = append(f.recipients, to)
	f.messages = append(f.messages, content)
	id := f.nextMessageID
	if id == "" {
		id = "wamid." + uuid.NewString()
	}
	return whatsapp.SendResult{MessageID: id}, nil
}

func (f *fakeClient) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// fakeOptimizer returns a fixed byte payload without touching the network.
type fakeOptimizer struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func (f *fakeOptimizer) Optimize(sourceURL, purpose string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	return []byte("optimized-image-bytes"), nil
}

type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	client   *fakeClient
	opt      *fakeOptimizer
	gate     AccessGate
	hub      *ws.Hub
	business *model.Business

	businesses    repository.BusinessRepository
	products      repository.ProductRepository
	categories    repository.CategoryRepository
	media         repository.MediaRepository
	orders        repository.OrderRepository
	inventory     repository.InventoryRepository
	notifications repository.NotificationRepository
	analytics     repository.AnalyticsRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Business{}, &model.BusinessSettings{},
		&model.Product{}, &model.Category{},
		&model.MediaRecord{},
		&model.Order{}, &model.OrderItem{},
		&model.InventorySnapshot{},
		&model.NotificationRecord{},
		&model.AnalyticsEvent{},
	))

	sealed, err := crypto.Seal(testEncryptionKey, "real-access-token")
	require.NoError(t, err)

	business := &model.Business{
		Name:              "Test Shop",
		OwnerID:           testOwnerID,
		WhatsAppEnabled:   true,
		PhoneNumberID:     "555000111",
		BusinessAccountID: "waba-1",
		CatalogID:         "catalog-1",
		AccessToken:       sealed,
		WhatsAppActive:    true,
	}
	require.NoError(t, db.Create(business).Error)

	businesses := repository.NewBusinessRepo(db)

	env := &testEnv{
		db:       db,
		cfg:      config.Default(),
		client:   &fakeClient{},
		opt:      &fakeOptimizer{},
		hub:      ws.NewHub(zap.NewNop()),
		business: business,

		businesses:    businesses,
		products:      repository.NewProductRepo(db),
		categories:    repository.NewCategoryRepo(db),
		media:         repository.NewMediaRepo(db),
		orders:        repository.NewOrderRepo(db),
		inventory:     repository.NewInventoryRepo(db),
		notifications: repository.NewNotificationRepo(db),
		analytics:     repository.NewAnalyticsRepo(db),
	}
	env.gate = NewAccessGate(businesses, testEncryptionKey)
	go env.hub.Run()
	return env
}

func (e *testEnv) mediaService() MediaService {
	return NewMediaService(e.cfg, e.gate, e.opt, e.client,
		e.media, e.products, e.categories, e.orders, e.analytics, testLogger())
}

func (e *testEnv) catalogService() CatalogService {
	return NewCatalogService(e.cfg, e.gate, e.mediaService(),
		e.products, e.inventory, e.media, e.analytics, e.client, e.hub, testLogger())
}

func (e *testEnv) notificationService() NotificationService {
	return NewNotificationService(e.gate, e.orders, e.notifications,
		e.businesses, e.analytics, e.client, e.hub, testLogger())
}

func (e *testEnv) createProduct(t *testing.T, mutate func(*model.Product)) *model.Product {
	t.Helper()
	p := &model.Product{
		BusinessID:    e.business.ID,
		Name:          "Widget",
		Description:   "A widget",
		Price:         decimalFromString(t, "19.99"),
		StockQuantity: 5,
		SyncStatus:    model.SyncPending,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) createOrder(t *testing.T, mutate func(*model.Order)) *model.Order {
	t.Helper()
	o := &model.Order{
		BusinessID:       e.business.ID,
		Status:           model.OrderProcessing,
		CustomerID:       "cust-1",
		CustomerName:     "Ama",
		CustomerPhone:    "+233200000001",
		CustomerWhatsApp: "+233200000002",
	}
	if mutate != nil {
		mutate(o)
	}
	require.NoError(t, e.db.Create(o).Error)
	return o
}

func (e *testEnv) analyticsEvents(t *testing.T, eventType string) []model.AnalyticsEvent {
	t.Helper()
	var events []model.AnalyticsEvent
	require.NoError(t, e.db.Where("event_type = ?", eventType).Find(&events).Error)
	return events
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func batchError(msg string) func([]whatsapp.CatalogItem) error {
	err := errors.New(msg)
	return func([]whatsapp.CatalogItem) error { return err }
}

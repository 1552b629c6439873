package handler

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go-whatsapp-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubNotificationService struct {
	mu       sync.Mutex
	payloads []*service.WebhookPayload
}

func (s *stubNotificationService) SendOrderNotification(userID string, orderID, businessID uuid.UUID, notificationType, customMessage string) (*service.SendNotificationResult, error) {
	return &service.SendNotificationResult{Success: true}, nil
}

func (s *stubNotificationService) HandleDeliveryStatus(messageID, status, timestamp string, faultCode int, faultTitle string) error {
	return nil
}

func (s *stubNotificationService) ProcessWebhook(payload *service.WebhookPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
}

func newWebhookApp(stub *stubNotificationService) *fiber.App {
	h := NewWebhookHandler(stub, "verify-me", zap.NewNop().Sugar())
	app := fiber.New()
	app.Get("/webhook", h.Verify)
	app.Post("/webhook", h.Receive)
	return app
}

func TestWebhookVerifyHandshake(t *testing.T) {
	app := newWebhookApp(&stubNotificationService{})

	t.Run("valid token echoes challenge", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "12345", string(body))
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("wrong mode is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/webhook?hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)
	})
}

func TestWebhookReceiveAlwaysAcknowledges(t *testing.T) {
	stub := &stubNotificationService{}
	app := newWebhookApp(stub)

	t.Run("valid payload is dispatched", func(t *testing.T) {
		body := `{"object":"whatsapp_business_account","entry":[]}`
		req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		require.Len(t, stub.payloads, 1)
		assert.Equal(t, "whatsapp_business_account", stub.payloads[0].Object)
	})

	t.Run("unparsable payload still returns 200", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhook", strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

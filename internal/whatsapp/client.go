package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go-whatsapp-commerce/internal/config"
	"go-whatsapp-commerce/pkg/retry"

	"go.uber.org/zap"
)

// GraphClient talks to the Graph API. Media uploads and message sends are
// retried with backoff; catalog batches are not, so a batch failure surfaces
// to the sync engine exactly once.
type GraphClient struct {
	baseURL string
	version string
	http    *http.Client
	policy  retry.Policy
	log     *zap.Logger
}

func NewGraphClient(cfg *config.Config, log *zap.Logger) *GraphClient {
	return &GraphClient{
		baseURL: cfg.GraphBaseURL,
		version: cfg.GraphVersion,
		http:    &http.Client{Timeout: 60 * time.Second},
		policy:  retry.DefaultPolicy(),
		log:     log,
	}
}

type batchRequest struct {
	Requests []batchEntry `json:"requests"`
}

type batchEntry struct {
	Method string      `json:"method"`
	Data   CatalogItem `json:"data"`
}

func (c *GraphClient) UpsertCatalogItems(cfg Config, items []CatalogItem) error {
	payload := batchRequest{Requests: make([]batchEntry, 0, len(items))}
	for _, item := range items {
		payload.Requests = append(payload.Requests, batchEntry{Method: "UPDATE", Data: item})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/%s/items_batch", c.baseURL, c.version, cfg.CatalogID)
	return c.post(cfg, url, "application/json", bytes.NewReader(body), nil)
}

type mediaResponse struct {
	ID string `json:"id"`
}

func (c *GraphClient) UploadMedia(cfg Config, data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s/media", c.baseURL, c.version, cfg.PhoneNumberID)

	var resp mediaResponse
	err = retry.Do(c.policy, func() error {
		return c.post(cfg, url, writer.FormDataContentType(), bytes.NewReader(buf.Bytes()), &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("media upload returned no id")
	}
	return resp.ID, nil
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (c *GraphClient) SendMessage(cfg Config, to string, content MessageContent) (SendResult, error) {
	body, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: content.Text},
	})
	if err != nil {
		return SendResult{}, err
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.version, cfg.PhoneNumberID)

	var resp sendResponse
	err = retry.Do(c.policy, func() error {
		return c.post(cfg, url, "application/json", bytes.NewReader(body), &resp)
	})
	if err != nil {
		return SendResult{}, err
	}
	if len(resp.Messages) == 0 {
		return SendResult{}, fmt.Errorf("message send returned no id")
	}
	return SendResult{MessageID: resp.Messages[0].ID}, nil
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *GraphClient) post(cfg Config, url, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ge graphError
		if json.Unmarshal(raw, &ge) == nil && ge.Error.Message != "" {
			c.log.Warn("graph api error",
				zap.Int("status", resp.StatusCode),
				zap.Int("code", ge.Error.Code),
				zap.String("message", ge.Error.Message))
			return fmt.Errorf("graph api: %s", ge.Error.Message)
		}
		return fmt.Errorf("graph api: status %d", resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

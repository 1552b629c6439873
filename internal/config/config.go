package config

import (
	"os"
	"strconv"
	"time"
)

// ImagePreset is the target dimension for an optimized image.
type ImagePreset struct {
	Width  int
	Height int
}

// Config holds all process-wide settings. It is built once at startup and
// passed explicitly to every component constructor.
type Config struct {
	Port               string
	JWTSecret          string
	EncryptionKey      string
	WebhookVerifyToken string

	GraphBaseURL string
	GraphVersion string

	BatchSize             int           // catalog items per remote call
	MediaBatchSize        int           // products per media upload fan-out
	MediaRetentionDays    int           // remote media validity window
	RefreshBufferDays     int           // refresh media expiring within this window
	CleanupOlderThanDays  int           // cleanup considers records older than this
	CleanupOrderScanLimit int           // active orders checked per liveness probe
	IncrementalWindow     time.Duration // "incremental" sync selection window

	Currency       string
	ProductURLBase string
	MediaURLPrefix string

	ImageQuality  int
	ImageMaxBytes int64
	ImagePresets  map[string]ImagePreset
}

// Default returns the built-in settings, matching the WhatsApp platform limits.
func Default() *Config {
	return &Config{
		Port:               "3000",
		GraphBaseURL:       "https://graph.facebook.com",
		GraphVersion:       "v18.0",
		BatchSize:          10,
		MediaBatchSize:     5,
		MediaRetentionDays: 30,
		RefreshBufferDays:  7,

		CleanupOlderThanDays:  30,
		CleanupOrderScanLimit: 5,
		IncrementalWindow:     24 * time.Hour,

		Currency:       "GHS",
		ProductURLBase: "https://yourapp.com/products/",
		MediaURLPrefix: "https://scontent.whatsapp.net/v/t61.24694-24/",

		ImageQuality:  85,
		ImageMaxBytes: 16 * 1024 * 1024,
		ImagePresets: map[string]ImagePreset{
			"product":  {Width: 800, Height: 800},
			"category": {Width: 800, Height: 800},
			"carousel": {Width: 1080, Height: 1080},
			"fallback": {Width: 300, Height: 300},
		},
	}
}

// Load builds the config from environment variables on top of the defaults.
func Load() *Config {
	cfg := Default()

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.JWTSecret = envOr("JWT_SECRET", "change-me-in-production")
	cfg.EncryptionKey = envOr("ENCRYPTION_KEY", "default_key_32_chars_minimum!")
	cfg.WebhookVerifyToken = envOr("WEBHOOK_VERIFY_TOKEN", "default_secret")
	cfg.GraphBaseURL = envOr("GRAPH_BASE_URL", cfg.GraphBaseURL)
	cfg.GraphVersion = envOr("GRAPH_API_VERSION", cfg.GraphVersion)
	cfg.Currency = envOr("CATALOG_CURRENCY", cfg.Currency)
	cfg.ProductURLBase = envOr("PRODUCT_URL_BASE", cfg.ProductURLBase)

	cfg.BatchSize = envIntOr("SYNC_BATCH_SIZE", cfg.BatchSize)
	cfg.MediaRetentionDays = envIntOr("MEDIA_RETENTION_DAYS", cfg.MediaRetentionDays)
	cfg.RefreshBufferDays = envIntOr("MEDIA_REFRESH_BUFFER_DAYS", cfg.RefreshBufferDays)
	cfg.CleanupOlderThanDays = envIntOr("MEDIA_CLEANUP_DAYS", cfg.CleanupOlderThanDays)
	cfg.CleanupOrderScanLimit = envIntOr("MEDIA_CLEANUP_ORDER_SCAN", cfg.CleanupOrderScanLimit)

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

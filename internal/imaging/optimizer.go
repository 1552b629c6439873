package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"go-whatsapp-commerce/internal/config"
)

// Optimizer prepares a source image for upload to the remote platform.
// Dimension presets are keyed by purpose; an unrecognized purpose gets the
// product preset.
type Optimizer interface {
	Optimize(sourceURL, purpose string) ([]byte, error)
}

// httpOptimizer fetches the source image through the image CDN, which applies
// the requested dimensions server-side, and validates the result locally.
type httpOptimizer struct {
	http     *http.Client
	presets  map[string]config.ImagePreset
	quality  int
	maxBytes int64
}

func NewOptimizer(cfg *config.Config) Optimizer {
	return &httpOptimizer{
		http:     &http.Client{Timeout: 30 * time.Second},
		presets:  cfg.ImagePresets,
		quality:  cfg.ImageQuality,
		maxBytes: cfg.ImageMaxBytes,
	}
}

func (o *httpOptimizer) Optimize(sourceURL, purpose string) ([]byte, error) {
	preset, ok := o.presets[purpose]
	if !ok {
		preset = o.presets["product"]
	}

	resp, err := o.http.Get(withPresetParams(sourceURL, preset, o.quality))
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, o.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > o.maxBytes {
		return nil, fmt.Errorf("image exceeds %d byte limit", o.maxBytes)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("source is not a decodable image: %w", err)
	}

	return data, nil
}

// withPresetParams appends the resize hints understood by the image CDN.
func withPresetParams(sourceURL string, preset config.ImagePreset, quality int) string {
	sep := "?"
	if strings.Contains(sourceURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sw=%d&h=%d&q=%d&fit=inside", sourceURL, sep, preset.Width, preset.Height, quality)
}

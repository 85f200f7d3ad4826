//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"

	"screen-capture-ocr/src/screenshot"
)

// Binding runs Tesseract in-process through the gosseract cgo binding.
type Binding struct {
	language string
}

// NewBinding returns the in-process engine.
func NewBinding(language string) (*Binding, error) {
	return &Binding{language: language}, nil
}

func (b *Binding) Name() string { return "gosseract" }

func (b *Binding) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	// The binding cannot be interrupted; runWithContext abandons it on timeout.
	return runWithContext(ctx, func() (string, error) {
		client := gosseract.NewClient()
		defer client.Close()

		if b.language != "" {
			if err := client.SetLanguage(b.language); err != nil {
				return "", fmt.Errorf("failed to set language: %w", err)
			}
		}
		cfg := ConfigFor(mode)
		if cfg.PageSegMode > 0 {
			if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
				return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
			}
		}
		if cfg.Whitelist != "" {
			if err := client.SetWhitelist(cfg.Whitelist); err != nil {
				return "", fmt.Errorf("failed to set whitelist: %w", err)
			}
		}
		if err := client.SetImageFromBytes(data); err != nil {
			return "", fmt.Errorf("failed to set image: %w", err)
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("OCR failed: %w", err)
		}
		return text, nil
	})
}

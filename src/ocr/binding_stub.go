//go:build !gosseract

package ocr

import (
	"context"
	"image"
)

// Binding is unavailable in builds without the gosseract tag.
type Binding struct{}

// NewBinding reports that the in-process engine was not compiled in.
func NewBinding(language string) (*Binding, error) {
	return nil, ErrBindingUnavailable
}

func (b *Binding) Name() string { return "gosseract" }

func (b *Binding) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	return "", ErrBindingUnavailable
}

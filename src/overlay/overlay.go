package overlay

import (
	"context"

	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/screenshot"
)

// Selector defines a synchronous region-selection API.
// The call is blocking and returns (region, cancelled, error). If cancelled is
// true, region is undefined and err is nil. The overlay surface is gone by the
// time Select returns.
type Selector interface {
	Select(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error)

func (f SelectorFunc) Select(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error) {
	return f(ctx, mode)
}

package ocr

import (
	"context"
	"errors"
	"image"

	"screen-capture-ocr/src/llm"
	"screen-capture-ocr/src/screenshot"
)

const (
	textPrompt = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
		"- No formatting\n" +
		"- No XML/HTML tags\n" +
		"- No markdown\n" +
		"- No explanations\n" +
		"- Preserve line breaks accurately from the visual layout.\n" +
		"If no text found, return 'NO_TEXT_FOUND'"

	sumPrompt = "Read every number visible in this image. Return ONLY the numbers, one per line, " +
		"using '.' as decimal point, a leading '-' for negatives, and no thousands separators, " +
		"currency symbols or other text. If no numbers are visible, return 'NO_TEXT_FOUND'"
)

// VisionQuerier is the part of llm.Client used by the vision engine.
type VisionQuerier interface {
	QueryVision(ctx context.Context, png []byte, prompt string) (string, error)
}

// Vision performs OCR with a multimodal language model.
type Vision struct {
	client VisionQuerier
}

func NewVision(client VisionQuerier) *Vision {
	return &Vision{client: client}
}

func (v *Vision) Name() string { return "vision" }

func (v *Vision) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	prompt := textPrompt
	if mode == ModeCalculateSum {
		prompt = sumPrompt
	}
	text, err := v.client.QueryVision(ctx, data, prompt)
	if errors.Is(err, llm.ErrNoText) {
		// An image without text is an empty result, not an engine failure.
		return "", nil
	}
	return text, err
}

package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
	noTextMarker = "NO_TEXT_FOUND"
)

// ErrNoText is returned when the model reports an image without text.
var ErrNoText = errors.New("no text detected in image")

// Client sends images to an OpenAI-compatible vision endpoint.
type Client struct {
	api   *openai.Client
	model string
	delay time.Duration
}

// New validates cfg and builds a client. BaseURL defaults to the OpenAI API.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		delay: initialDelay,
	}, nil
}

// Ping checks that the endpoint accepts the credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// QueryVision sends a PNG image with an instruction prompt and returns the
// model's text answer.
func (c *Client) QueryVision(ctx context.Context, png []byte, prompt string) (string, error) {
	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		MaxTokens:   2000,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.delay) * (1.5 * float64(attempt)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Printf("llm: attempt %d failed: %v", attempt+1, err)
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in API response")
			continue
		}

		text := cleanExtractedText(resp.Choices[0].Message.Content)
		if text == "" || text == noTextMarker {
			return "", ErrNoText
		}
		return text, nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func cleanExtractedText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "</image>")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

package runtimeinit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"screen-capture-ocr/src/config"
	"screen-capture-ocr/src/llm"
	"screen-capture-ocr/src/logutil"
	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/probe"
)

const pingTimeout = 10 * time.Second

// ErrEngineNotFound means no tesseract executable was found.
var ErrEngineNotFound = errors.New("Tesseract OCR is not found. Please install Tesseract OCR and try again")

// VisionClient is what the vision engine needs from llm.Client.
type VisionClient interface {
	ocr.VisionQuerier
	Ping(ctx context.Context) error
}

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)

	// FindEngine and NewVisionClient replace engine discovery in tests.
	FindEngine      func(probe.Options) (string, bool)
	NewVisionClient func(llm.Config) (VisionClient, error)
}

// Runtime is what a front end needs once startup succeeded.
type Runtime struct {
	Config     *config.Config
	Recognizer *ocr.Recognizer
}

// Bootstrap loads configuration, sets up logging and builds the configured
// OCR engine. Any error is fatal for the caller.
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	engine, err := BuildEngine(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	log.Printf("OCR engine: %s (preprocess=%v, deadline=%ds)", engine.Name(), cfg.Preprocess, cfg.OCRDeadlineSec)

	return &Runtime{
		Config:     cfg,
		Recognizer: ocr.NewRecognizer(engine, cfg.Preprocess),
	}, nil
}

// BuildEngine creates the engine named by cfg.Engine.
func BuildEngine(ctx context.Context, cfg *config.Config, opts Options) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineBinding:
		b, err := ocr.NewBinding(cfg.Language)
		if err != nil {
			return nil, fmt.Errorf("init gosseract: %w", err)
		}
		return b, nil
	case config.EngineVision:
		return buildVision(ctx, cfg, opts)
	default:
		find := opts.FindEngine
		if find == nil {
			find = probe.FindEngine
		}
		path, ok := find(probe.Options{Override: cfg.TesseractCmd})
		if !ok {
			return nil, ErrEngineNotFound
		}
		log.Printf("tesseract found at %s", path)
		return ocr.NewTesseract(path, cfg.Language), nil
	}
}

func buildVision(ctx context.Context, cfg *config.Config, opts Options) (ocr.Engine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required for the vision engine. Checked key file %s and OPENROUTER_API_KEY env var", cfg.APIKeyPath)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("MODEL is required for the vision engine. Please set it in your .env file")
	}

	newClient := opts.NewVisionClient
	if newClient == nil {
		newClient = func(c llm.Config) (VisionClient, error) { return llm.New(c) }
	}
	client, err := newClient(llm.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.VisionURL})
	if err != nil {
		return nil, fmt.Errorf("init vision client: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pctx); err != nil {
		return nil, fmt.Errorf("vision startup check failed: %w", err)
	}
	log.Printf("vision ping succeeded (model %s, key %s)", cfg.Model, logutil.RedactKey(cfg.APIKey))
	return ocr.NewVision(client), nil
}

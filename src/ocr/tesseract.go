package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"screen-capture-ocr/src/screenshot"
)

// commandRunner executes the engine and returns stdout and stderr.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Tesseract drives the tesseract command-line program. The executable path is
// fixed at construction.
type Tesseract struct {
	path     string
	language string
	run      commandRunner
}

func NewTesseract(path, language string) *Tesseract {
	return &Tesseract{path: path, language: language, run: execRunner}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Path returns the executable this engine invokes.
func (t *Tesseract) Path() string { return t.path }

func (t *Tesseract) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "screen-capture-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file for OCR: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file for OCR: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file for OCR: %w", err)
	}

	args := t.args(tmpPath, ConfigFor(mode))
	log.Printf("ocr: %s %s", t.path, strings.Join(args, " "))
	stdout, stderr, err := t.run(ctx, t.path, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := strings.TrimSpace(string(stderr))
		if msg != "" {
			return "", fmt.Errorf("engine failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("engine failed: %w", err)
	}
	return string(stdout), nil
}

func (t *Tesseract) args(imagePath string, cfg Config) []string {
	args := []string{imagePath, "stdout"}
	if t.language != "" {
		args = append(args, "-l", t.language)
	}
	if cfg.PageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(cfg.PageSegMode))
	}
	if cfg.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+cfg.Whitelist)
	}
	return args
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"
	ConfigPathEnvVar  = "SCREEN_CAPTURE_OCR"

	EngineTesseract = "tesseract"
	EngineBinding   = "gosseract"
	EngineVision    = "vision"

	DefaultHotkeyText   = "Ctrl+Alt+T"
	DefaultHotkeySum    = "Ctrl+Alt+S"
	DefaultOverlayColor = "#000000"
	DefaultVisionURL    = "https://openrouter.ai/api/v1"

	DefaultInstancePortStart = 49500
	DefaultInstancePortEnd   = 49550
)

// LoadOptions carries overrides that take precedence over .env and the environment.
type LoadOptions struct {
	APIKeyPathOverride string
	EngineOverride     string
}

type Config struct {
	Engine          string
	TesseractCmd    string
	Language        string
	Preprocess      bool
	OCRDeadlineSec  int
	HotkeyText      string
	HotkeySum       string
	OverlayColor    string
	OverlayAlpha    float64
	OverlaySettleMs int

	EnableFileLogging bool

	// Loopback port range used for single-instance ownership and forwarding.
	InstancePortStart int
	InstancePortEnd   int

	// Vision engine settings.
	APIKey     string
	APIKeyPath string
	Model      string
	VisionURL  string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) .env in the executable directory
	// 2) otherwise the file named by SCREEN_CAPTURE_OCR
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		Engine:            resolveEngineValue(opts),
		TesseractCmd:      strings.TrimSpace(os.Getenv("TESSERACT_CMD")),
		Language:          getEnvWithDefault("OCR_LANG", "eng"),
		Preprocess:        getBool("OCR_PREPROCESS", true),
		OCRDeadlineSec:    getPositiveInt("OCR_DEADLINE_SEC", 20),
		HotkeyText:        getEnvWithDefault("HOTKEY_TEXT", DefaultHotkeyText),
		HotkeySum:         getEnvWithDefault("HOTKEY_SUM", DefaultHotkeySum),
		OverlayColor:      getEnvWithDefault("OVERLAY_COLOR", DefaultOverlayColor),
		OverlayAlpha:      getAlpha("OVERLAY_ALPHA", 0.3),
		OverlaySettleMs:   getNonNegativeInt("OVERLAY_SETTLE_MS", 150),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		InstancePortStart: getPositiveInt("SINGLEINSTANCE_PORT_START", DefaultInstancePortStart),
		InstancePortEnd:   getPositiveInt("SINGLEINSTANCE_PORT_END", DefaultInstancePortEnd),
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             os.Getenv("MODEL"),
		VisionURL:         getEnvWithDefault("VISION_BASE_URL", DefaultVisionURL),
	}

	// "off" or "none" disables a hotkey.
	cfg.HotkeyText = disabledHotkey(cfg.HotkeyText)
	cfg.HotkeySum = disabledHotkey(cfg.HotkeySum)

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

func resolveEngine(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case EngineBinding, "binding":
		return EngineBinding
	case EngineVision, "llm":
		return EngineVision
	default:
		return EngineTesseract
	}
}

func resolveEngineValue(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.EngineOverride); override != "" {
		return resolveEngine(override)
	}
	return resolveEngine(os.Getenv("OCR_ENGINE"))
}

func disabledHotkey(combo string) string {
	switch strings.ToLower(strings.TrimSpace(combo)) {
	case "off", "none", "disabled":
		return ""
	}
	return combo
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getPositiveInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getNonNegativeInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}

func getAlpha(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvFileEnvVar      = "SCREEN_CLIPPER_ENV"
	DefaultHotkey      = "Alt+A"
	DefaultLanguage    = "eng"
	DefaultTessdataDir = "./resources/tessdata"
	artifactName       = "read_from.png"
)

type LoadOptions struct {
	LanguageOverride    string
	TessdataDirOverride string
	LogLevelOverride    string
}

type Config struct {
	Hotkey            string
	TessdataDir       string
	DefaultLanguage   string
	ArtifactPath      string
	OCRDeadlineSec    int
	CaptureSettleMs   int
	EnableFileLogging bool
	LogLevel          string
	LogFormat         string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_CLIPPER_ENV as a path to a config file
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		TessdataDir:       getEnvWithDefault("TESSDATA_DIR", DefaultTessdataDir),
		DefaultLanguage:   getEnvWithDefault("DEFAULT_LANGUAGE", DefaultLanguage),
		ArtifactPath:      getEnvWithDefault("ARTIFACT_PATH", defaultArtifactPath()),
		OCRDeadlineSec:    getPositiveInt("OCR_DEADLINE_SEC", 20),
		CaptureSettleMs:   getNonNegativeInt("CAPTURE_SETTLE_MS", 60),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvWithDefault("LOG_FORMAT", "console"),
	}

	if v := strings.TrimSpace(opts.LanguageOverride); v != "" {
		cfg.DefaultLanguage = v
	}
	if v := strings.TrimSpace(opts.TessdataDirOverride); v != "" {
		cfg.TessdataDir = v
	}
	if v := strings.TrimSpace(opts.LogLevelOverride); v != "" {
		cfg.LogLevel = v
	}

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

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func defaultArtifactPath() string {
	return filepath.Join(os.TempDir(), "screen-clipper", artifactName)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
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

// Package config loads and persists mediascribe settings: the YAML config
// file, dotenv directory overrides, and the quick-path JSON store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "mediascribe"
)

// Env var names honored from dotenv files, kept from the original tool.
const (
	EnvInputDir  = "DEFAULT_INPUT_LOCATION"
	EnvOutputDir = "DEFAULT_OUTPUT_LOCATION"
)

// Dir returns the standard config directory.
// Windows: %APPDATA%\mediascribe\
// macOS/Linux: ~/.config/mediascribe/
func Dir() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// Path returns the config file path, e.g. ~/.config/mediascribe/config.yml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Config holds the persisted settings. Zero values fall back to defaults at
// load time, so old config files keep working when fields are added.
type Config struct {
	// InputDir is the default directory offered for input selection.
	InputDir string `yaml:"input_dir,omitempty"`

	// OutputDir is the default transcript destination.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Model is the default whisper size (tiny|base|small|medium|large).
	Model string `yaml:"model,omitempty"`

	// Language is an ISO code or "auto".
	Language string `yaml:"language,omitempty"`

	// ModelsDir stores downloaded ggml model files.
	ModelsDir string `yaml:"models_dir,omitempty"`

	// Timestamps prefixes transcript lines with segment time spans.
	Timestamps bool `yaml:"timestamps,omitempty"`

	// KeepAudio retains the extracted WAV after processing.
	KeepAudio bool `yaml:"keep_audio,omitempty"`

	// LogDir, when set, adds a mediascribe.log file writer.
	LogDir string `yaml:"log_dir,omitempty"`

	// FFmpegPath overrides the ffmpeg binary resolved from PATH.
	FFmpegPath string `yaml:"ffmpeg_path,omitempty"`

	// WhisperPath names the whisper-cli binary used by non-cgo builds.
	WhisperPath string `yaml:"whisper_path,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	modelsDir := filepath.Join(home, ".config", AppDirName, "models")
	if dir, err := Dir(); err == nil {
		modelsDir = filepath.Join(dir, "models")
	}

	return &Config{
		InputDir:  filepath.Join(home, "Movies"),
		OutputDir: filepath.Join(home, "Downloads"),
		Model:     "base",
		Language:  "auto",
		ModelsDir: modelsDir,
	}
}

// Exists reports whether a config file is present.
func Exists() bool {
	path, err := Path()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads and parses the config file.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads the config file, falling back to defaults on any
// error. Bad settings are never fatal.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// applyDefaults fills zero-valued fields from the defaults.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.InputDir == "" {
		c.InputDir = def.InputDir
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.ModelsDir == "" {
		c.ModelsDir = def.ModelsDir
	}
}

// Save writes cfg to the config file, creating the directory as needed.
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	header := "# mediascribe configuration file\n# Run 'mediascribe config init' to regenerate with defaults\n\n"
	return os.WriteFile(path, []byte(header+string(data)), 0o644)
}

// Init creates a fresh config file with defaults; it refuses to overwrite.
func Init() error {
	if Exists() {
		path, _ := Path()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}

// ApplyDotenv overlays directory settings from a dotenv file: ./.env first,
// else <config dir>/.env. Missing or malformed files are silently skipped;
// overrides never fail hard.
func (c *Config) ApplyDotenv() {
	paths := []string{".env"}
	if dir, err := Dir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}

	for _, path := range paths {
		env, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(env[EnvInputDir]); v != "" {
			c.InputDir = ExpandPath(v)
		}
		if v := strings.TrimSpace(env[EnvOutputDir]); v != "" {
			c.OutputDir = ExpandPath(v)
		}
		return
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}

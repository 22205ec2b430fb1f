// Package config loads service settings from the environment, an optional
// YAML file and command-line flags, in that order of increasing priority
// (flags win), via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/storage"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidValue   = errors.New("invalid config value")
)

// Keys double as environment variable names (upper-cased) and YAML keys.
const (
	KeyBucket          = "bucket_name"
	KeyRegion          = "aws_region"
	KeyURLExpiry       = "url_expiry"
	KeyMaxFileSizeMB   = "max_file_size_mb"
	KeyEnvironment     = "environment"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyStorageBackend  = "storage_backend"
	KeyLocalStorageDir = "local_storage_dir"
	KeyS3Endpoint      = "s3_endpoint"
	KeyS3AccessKey     = "s3_access_key_id"
	KeyS3SecretKey     = "s3_secret_access_key"
	KeyListenAddr      = "listen_addr"
	KeyDOCXTemplate    = "docx_template"
	KeyDOCXFontSize    = "docx_font_size"
	KeyDOCXStyle       = "docx_style"
	KeyAssetsDir       = "assets_dir"
	KeyHighlight       = "markdown_highlight"
)

// Defaults.
const (
	DefaultBucket         = "md-converter-bucket"
	DefaultRegion         = "us-east-1"
	DefaultURLExpiry      = 300
	DefaultMaxFileSizeMB  = 10
	DefaultEnvironment    = "development"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultStorageBackend = "local"
	DefaultListenAddr     = ":8080"
)

// URL expiry bounds in seconds.
const (
	MinURLExpiry = 60
	MaxURLExpiry = 3600
)

// configName is the file searched for when no --config is given.
const configName = "md2docx"

// Config holds service settings. Built once at startup, read-only after.
type Config struct {
	Bucket          string
	Region          string
	URLExpiry       int // seconds
	MaxFileSizeMB   int
	Environment     string
	LogLevel        string
	LogFormat       string
	StorageBackend  string
	LocalStorageDir string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	ListenAddr      string
	DOCXTemplate    string // path to a .docx template, empty = blank document
	DOCXFontSize    string // points, empty = builder default
	DOCXStyle       string // style preset name, empty = none
	AssetsDir       string // custom presets and templates, empty = embedded only
	Highlight       bool
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBucket, DefaultBucket)
	v.SetDefault(KeyRegion, DefaultRegion)
	v.SetDefault(KeyURLExpiry, DefaultURLExpiry)
	v.SetDefault(KeyMaxFileSizeMB, DefaultMaxFileSizeMB)
	v.SetDefault(KeyEnvironment, DefaultEnvironment)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyStorageBackend, DefaultStorageBackend)
	v.SetDefault(KeyLocalStorageDir, filepath.Join(os.TempDir(), "md2docx-artifacts"))
	v.SetDefault(KeyS3Endpoint, "")
	v.SetDefault(KeyS3AccessKey, "")
	v.SetDefault(KeyS3SecretKey, "")
	v.SetDefault(KeyListenAddr, DefaultListenAddr)
	v.SetDefault(KeyDOCXTemplate, "")
	v.SetDefault(KeyDOCXFontSize, "")
	v.SetDefault(KeyDOCXStyle, "")
	v.SetDefault(KeyAssetsDir, "")
	v.SetDefault(KeyHighlight, false)
}

// ReadFile loads a YAML config file into v. With an explicit path the file
// must exist. Without one, md2docx.yaml is looked up in the current
// directory and the user config directory, and its absence is not an error.
// Returns the path used, or "" when no file was read.
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return "", fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return v.ConfigFileUsed(), nil
}

// Load reads settings from v. Numeric values that do not parse are
// reported here; range checks are left to Validate.
func Load(v *viper.Viper) (*Config, error) {
	expiry, err := intValue(v, KeyURLExpiry)
	if err != nil {
		return nil, err
	}
	maxSize, err := intValue(v, KeyMaxFileSizeMB)
	if err != nil {
		return nil, err
	}
	highlight, err := cast.ToBoolE(v.Get(KeyHighlight))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, KeyHighlight, err)
	}

	return &Config{
		Bucket:          strings.TrimSpace(v.GetString(KeyBucket)),
		Region:          strings.TrimSpace(v.GetString(KeyRegion)),
		URLExpiry:       expiry,
		MaxFileSizeMB:   maxSize,
		Environment:     strings.TrimSpace(v.GetString(KeyEnvironment)),
		LogLevel:        normalizeLevel(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		StorageBackend:  strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageBackend))),
		LocalStorageDir: v.GetString(KeyLocalStorageDir),
		S3Endpoint:      strings.TrimSpace(v.GetString(KeyS3Endpoint)),
		S3AccessKey:     v.GetString(KeyS3AccessKey),
		S3SecretKey:     v.GetString(KeyS3SecretKey),
		ListenAddr:      v.GetString(KeyListenAddr),
		DOCXTemplate:    v.GetString(KeyDOCXTemplate),
		DOCXFontSize:    strings.TrimSpace(v.GetString(KeyDOCXFontSize)),
		DOCXStyle:       strings.TrimSpace(v.GetString(KeyDOCXStyle)),
		AssetsDir:       v.GetString(KeyAssetsDir),
		Highlight:       highlight,
	}, nil
}

// normalizeLevel lower-cases a level name and maps "warning" to zap's "warn".
func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return "warn"
	}
	return level
}

func intValue(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	return n, nil
}

// Validate checks all settings. Returns the first problem found.
func (c *Config) Validate() error {
	if c.URLExpiry < MinURLExpiry || c.URLExpiry > MaxURLExpiry {
		return fmt.Errorf("%w: %s = %d (must be between %d and %d seconds)",
			ErrInvalidValue, KeyURLExpiry, c.URLExpiry, MinURLExpiry, MaxURLExpiry)
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("%w: %s = %d (must be positive)", ErrInvalidValue, KeyMaxFileSizeMB, c.MaxFileSizeMB)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s = %q", ErrInvalidValue, KeyLogLevel, c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: %s = %q (must be json or console)", ErrInvalidValue, KeyLogFormat, c.LogFormat)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidValue, KeyListenAddr)
	}

	backend, err := storage.ParseBackend(c.StorageBackend)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, KeyStorageBackend, err)
	}
	switch backend {
	case storage.BackendS3:
		if c.IsProduction() && (c.Bucket == "" || c.Bucket == DefaultBucket) {
			return fmt.Errorf("%w: %s must be set in production", ErrInvalidValue, KeyBucket)
		}
		if c.Bucket == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidValue, KeyBucket)
		}
		if c.Region == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidValue, KeyRegion)
		}
		if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
			return fmt.Errorf("%w: %s and %s must be set together", ErrInvalidValue, KeyS3AccessKey, KeyS3SecretKey)
		}
	case storage.BackendLocal:
		if c.LocalStorageDir == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidValue, KeyLocalStorageDir)
		}
	}

	if c.DOCXTemplate != "" && !fileutil.FileExists(c.DOCXTemplate) {
		return fmt.Errorf("%w: %s: file not found: %s", ErrInvalidValue, KeyDOCXTemplate, c.DOCXTemplate)
	}
	if c.DOCXFontSize != "" {
		size, err := strconv.ParseFloat(c.DOCXFontSize, 64)
		if err != nil || size <= 0 {
			return fmt.Errorf("%w: %s = %q (must be a positive number of points)", ErrInvalidValue, KeyDOCXFontSize, c.DOCXFontSize)
		}
	}
	if c.DOCXStyle != "" {
		if err := assets.ValidateAssetName(c.DOCXStyle); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, KeyDOCXStyle, err)
		}
	}
	if c.AssetsDir != "" {
		if info, err := os.Stat(c.AssetsDir); err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s: not a directory: %s", ErrInvalidValue, KeyAssetsDir, c.AssetsDir)
		}
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT names a production deployment.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "prod", "production":
		return true
	}
	return false
}

// MaxFileSizeBytes is the request content limit in bytes.
func (c *Config) MaxFileSizeBytes() int {
	return c.MaxFileSizeMB * 1024 * 1024
}

// URLExpiryDuration is URLExpiry as a time.Duration.
func (c *Config) URLExpiryDuration() time.Duration {
	return time.Duration(c.URLExpiry) * time.Second
}

// Storage converts the settings to a storage.Config. Call after Validate.
func (c *Config) Storage() storage.Config {
	backend, _ := storage.ParseBackend(c.StorageBackend)
	return storage.Config{
		Backend:    backend,
		Bucket:     c.Bucket,
		Region:     c.Region,
		Endpoint:   c.S3Endpoint,
		AccessKey:  c.S3AccessKey,
		SecretKey:  c.S3SecretKey,
		LocalDir:   c.LocalStorageDir,
		DefaultTTL: c.URLExpiryDuration(),
	}
}

// Fields returns the settings as a flat map for logging. Secrets are redacted.
func (c *Config) Fields() map[string]any {
	secret := ""
	if c.S3SecretKey != "" {
		secret = "[redacted]"
	}
	return map[string]any{
		KeyBucket:          c.Bucket,
		KeyRegion:          c.Region,
		KeyURLExpiry:       c.URLExpiry,
		KeyMaxFileSizeMB:   c.MaxFileSizeMB,
		KeyEnvironment:     c.Environment,
		KeyLogLevel:        c.LogLevel,
		KeyLogFormat:       c.LogFormat,
		KeyStorageBackend:  c.StorageBackend,
		KeyLocalStorageDir: c.LocalStorageDir,
		KeyS3Endpoint:      c.S3Endpoint,
		KeyS3AccessKey:     c.S3AccessKey,
		KeyS3SecretKey:     secret,
		KeyListenAddr:      c.ListenAddr,
		KeyDOCXTemplate:    c.DOCXTemplate,
		KeyDOCXFontSize:    c.DOCXFontSize,
		KeyDOCXStyle:       c.DOCXStyle,
		KeyAssetsDir:       c.AssetsDir,
		KeyHighlight:       c.Highlight,
	}
}

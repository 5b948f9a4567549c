// Package config loads the admin runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile      = ".env"
	defaultAddress      = ":8080"
	defaultBasePath     = "/admin"
	defaultEnvironment  = "Development"
	defaultTimeout      = 15 * time.Second
	defaultDraftTTL     = 12 * time.Hour
	defaultLockTTL      = 2 * time.Minute
	defaultStagingIdle  = 30 * time.Minute
	defaultPreviewDir   = "steth-admin/previews"
	defaultLogLevel     = "info"
	minSessionKeyLength = 32
)

// Draft and preview backends.
const (
	StoreMemory     = "memory"
	StoreRedis      = "redis"
	StoreCloudinary = "cloudinary"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Drafts   DraftConfig
	Media    MediaConfig
	Firebase FirebaseConfig
	Catalog  CatalogConfig
	LogLevel string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address     string
	BasePath    string
	Environment string
}

// BackendConfig points at the product REST API.
type BackendConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// SessionConfig holds the cookie codec keys.
type SessionConfig struct {
	HashKey      []byte
	BlockKey     []byte
	CookieSecure bool
}

// DraftConfig selects where in-progress drafts live.
type DraftConfig struct {
	Store       string
	RedisURL    string
	RedisPrefix string
	TTL         time.Duration
	LockTTL     time.Duration
}

// MediaConfig selects where image previews are hosted.
type MediaConfig struct {
	PreviewStore        string
	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	Folder              string
	// StagingIdle is how long staged images survive without activity.
	StagingIdle time.Duration
}

// FirebaseConfig enables Firebase ID token verification when ProjectID is set.
type FirebaseConfig struct {
	ProjectID string
}

// CatalogConfig optionally overrides the embedded option catalog.
type CatalogConfig struct {
	File string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores os.Environ during lookups.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration with precedence dotenv < OS env < explicit map.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	env := &envReader{lookup: func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotEnv[key]
		return v, ok
	}}
	lookup := env.lookup

	cfg := Config{
		Server: ServerConfig{
			Address:     stringWithDefault(lookup, "ADMIN_HTTP_ADDR", defaultAddress),
			BasePath:    stringWithDefault(lookup, "ADMIN_BASE_PATH", defaultBasePath),
			Environment: stringWithDefault(lookup, "ADMIN_ENVIRONMENT", defaultEnvironment),
		},
		Backend: BackendConfig{
			BaseURL:  strings.TrimSpace(stringWithDefault(lookup, "BACKEND_BASE_URL", "")),
			APIToken: stringWithDefault(lookup, "BACKEND_API_TOKEN", ""),
			Timeout:  env.duration("BACKEND_TIMEOUT", "Backend.Timeout", defaultTimeout),
		},
		Session: SessionConfig{
			HashKey:      []byte(stringWithDefault(lookup, "SESSION_HASH_KEY", "")),
			BlockKey:     []byte(stringWithDefault(lookup, "SESSION_BLOCK_KEY", "")),
			CookieSecure: env.bool("SESSION_COOKIE_SECURE", "Session.CookieSecure", false),
		},
		Drafts: DraftConfig{
			Store:       strings.ToLower(stringWithDefault(lookup, "DRAFT_STORE", StoreMemory)),
			RedisURL:    stringWithDefault(lookup, "REDIS_URL", ""),
			RedisPrefix: stringWithDefault(lookup, "REDIS_DRAFT_PREFIX", ""),
			TTL:         env.duration("DRAFT_TTL", "Drafts.TTL", defaultDraftTTL),
			LockTTL:     env.duration("DRAFT_LOCK_TTL", "Drafts.LockTTL", defaultLockTTL),
		},
		Media: MediaConfig{
			PreviewStore:        strings.ToLower(stringWithDefault(lookup, "MEDIA_PREVIEW_STORE", StoreMemory)),
			CloudinaryURL:       stringWithDefault(lookup, "CLOUDINARY_URL", ""),
			CloudinaryCloudName: stringWithDefault(lookup, "CLOUDINARY_CLOUD_NAME", ""),
			CloudinaryAPIKey:    stringWithDefault(lookup, "CLOUDINARY_API_KEY", ""),
			CloudinaryAPISecret: stringWithDefault(lookup, "CLOUDINARY_API_SECRET", ""),
			Folder:              stringWithDefault(lookup, "MEDIA_PREVIEW_FOLDER", defaultPreviewDir),
			StagingIdle:         env.duration("MEDIA_STAGING_IDLE", "Media.StagingIdle", defaultStagingIdle),
		},
		Firebase: FirebaseConfig{
			ProjectID: stringWithDefault(lookup, "FIREBASE_PROJECT_ID", ""),
		},
		Catalog: CatalogConfig{
			File: stringWithDefault(lookup, "CATALOG_FILE", ""),
		},
		LogLevel: strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
	}

	if err := validateConfig(cfg, env.malformed); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validateConfig reports every missing or invalid field, starting with the
// values that could not be parsed at all.
func validateConfig(cfg Config, malformed []string) error {
	invalid := append([]string(nil), malformed...)

	if strings.TrimSpace(cfg.Server.Address) == "" {
		invalid = append(invalid, "Server.Address")
	}
	if u, err := url.Parse(cfg.Backend.BaseURL); cfg.Backend.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "Backend.BaseURL")
	}
	if cfg.Backend.Timeout <= 0 {
		invalid = appendOnce(invalid, "Backend.Timeout")
	}
	if len(cfg.Session.HashKey) < minSessionKeyLength {
		invalid = append(invalid, "Session.HashKey")
	}
	if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		invalid = append(invalid, "Session.BlockKey")
	}
	switch cfg.Drafts.Store {
	case StoreMemory:
	case StoreRedis:
		if cfg.Drafts.RedisURL == "" {
			invalid = append(invalid, "Drafts.RedisURL")
		}
	default:
		invalid = append(invalid, "Drafts.Store")
	}
	if cfg.Drafts.TTL <= 0 {
		invalid = appendOnce(invalid, "Drafts.TTL")
	}
	if cfg.Drafts.LockTTL <= 0 {
		invalid = appendOnce(invalid, "Drafts.LockTTL")
	}
	if cfg.Media.StagingIdle <= 0 {
		invalid = appendOnce(invalid, "Media.StagingIdle")
	}
	switch cfg.Media.PreviewStore {
	case StoreMemory:
	case StoreCloudinary:
		if cfg.Media.CloudinaryURL == "" &&
			(cfg.Media.CloudinaryCloudName == "" || cfg.Media.CloudinaryAPIKey == "" || cfg.Media.CloudinaryAPISecret == "") {
			invalid = append(invalid, "Media.Cloudinary")
		}
	default:
		invalid = append(invalid, "Media.PreviewStore")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

// envReader parses typed values and remembers the fields whose raw value
// could not be parsed.
type envReader struct {
	lookup    func(string) (string, bool)
	malformed []string
}

func (r *envReader) duration(key, field string, fallback time.Duration) time.Duration {
	value, ok := r.lookup(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.malformed = appendOnce(r.malformed, field)
		return fallback
	}
	return d
}

func (r *envReader) bool(key, field string, fallback bool) bool {
	value, ok := r.lookup(key)
	if !ok || value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	r.malformed = appendOnce(r.malformed, field)
	return fallback
}

func appendOnce(fields []string, field string) []string {
	for _, f := range fields {
		if f == field {
			return fields
		}
	}
	return append(fields, field)
}

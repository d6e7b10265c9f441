package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	CacheProviderMemory = "memory"
	CacheProviderRedis  = "redis"
)

const (
	keyPort             = "port"
	keyKeys             = "knowyourgst_keys"
	keyCacheTTL         = "cache_ttl_seconds"
	keyCooldown         = "key_cooldown_seconds"
	keyRequestTimeout   = "request_timeout_ms"
	keyProviderBaseURL  = "provider_base_url"
	keyProviderScheme   = "provider_auth_scheme"
	keyProviderParam    = "provider_auth_param"
	keyProviderStrict   = "provider_strict_status"
	keyCacheProvider    = "cache_provider"
	keyRedisURL         = "redis_url"
	keyCredentialsFile  = "credentials_file"
	keySecretsDir       = "secrets_dir"
	keyLogLevel         = "log_level"
	keyLogFormat        = "log_format"
	keyCORSOrigins      = "cors_allowed_origins"
	keyRateLimitRPS     = "rate_limit_rps"
	keyRateLimitBurst   = "rate_limit_burst"
	keyExposeKeyState   = "expose_key_state"
	defaultDotEnvFile   = ".env"
	defaultProviderURL  = "https://www.knowyourgst.com/developers/gstincall/"
	defaultProviderAuth = "passthrough"
)

type Config struct {
	Port            int
	Keys            []string
	CacheTTL        time.Duration
	KeyCooldown     time.Duration
	RequestTimeout  time.Duration
	Provider        Provider
	Cache           Cache
	CredentialsFile string
	SecretsDir      string
	Log             Log
	HTTP            HTTP
}

type Provider struct {
	BaseURL      string
	AuthScheme   string
	AuthParam    string
	StrictStatus bool
}

type Cache struct {
	Provider string
	RedisURL string
}

type Log struct {
	Level  string
	Format string
}

type HTTP struct {
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	ExposeKeyState     bool
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads configuration from an optional .env file, an optional TOML config file
// and the environment, in increasing order of precedence.
func Load(configFile string) (Config, error) {
	if err := loadDotEnv(defaultDotEnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, 4000)
	v.SetDefault(keyKeys, "")
	v.SetDefault(keyCacheTTL, 3600)
	v.SetDefault(keyCooldown, 300)
	v.SetDefault(keyRequestTimeout, 15000)
	v.SetDefault(keyProviderBaseURL, defaultProviderURL)
	v.SetDefault(keyProviderScheme, "query")
	v.SetDefault(keyProviderParam, defaultProviderAuth)
	v.SetDefault(keyProviderStrict, false)
	v.SetDefault(keyCacheProvider, CacheProviderMemory)
	v.SetDefault(keyRedisURL, "")
	v.SetDefault(keyCredentialsFile, "")
	v.SetDefault(keySecretsDir, "")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyCORSOrigins, "*")
	v.SetDefault(keyRateLimitRPS, 0)
	v.SetDefault(keyRateLimitBurst, 20)
	v.SetDefault(keyExposeKeyState, true)
}

func fromViper(v *viper.Viper) (Config, error) {
	var errs []error
	intValue := func(key string) int {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", strings.ToUpper(key), err))
		}
		return n
	}
	boolValue := func(key string) bool {
		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", strings.ToUpper(key), err))
		}
		return b
	}

	rps, err := cast.ToFloat64E(v.Get(keyRateLimitRPS))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", strings.ToUpper(keyRateLimitRPS), err))
	}

	cfg := Config{
		Port:           intValue(keyPort),
		Keys:           ParseCredentialList(v.GetString(keyKeys)),
		CacheTTL:       time.Duration(intValue(keyCacheTTL)) * time.Second,
		KeyCooldown:    time.Duration(intValue(keyCooldown)) * time.Second,
		RequestTimeout: time.Duration(intValue(keyRequestTimeout)) * time.Millisecond,
		Provider: Provider{
			BaseURL:      strings.TrimSpace(v.GetString(keyProviderBaseURL)),
			AuthScheme:   strings.ToLower(strings.TrimSpace(v.GetString(keyProviderScheme))),
			AuthParam:    strings.TrimSpace(v.GetString(keyProviderParam)),
			StrictStatus: boolValue(keyProviderStrict),
		},
		Cache: Cache{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString(keyCacheProvider))),
			RedisURL: strings.TrimSpace(v.GetString(keyRedisURL)),
		},
		CredentialsFile: strings.TrimSpace(v.GetString(keyCredentialsFile)),
		SecretsDir:      strings.TrimSpace(v.GetString(keySecretsDir)),
		Log: Log{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
		},
		HTTP: HTTP{
			CORSAllowedOrigins: splitList(v.GetString(keyCORSOrigins)),
			RateLimitRPS:       rps,
			RateLimitBurst:     intValue(keyRateLimitBurst),
			ExposeKeyState:     boolValue(keyExposeKeyState),
		},
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must be positive"))
	}
	if c.KeyCooldown <= 0 {
		errs = append(errs, errors.New("KEY_COOLDOWN_SECONDS must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT_MS must be positive"))
	}
	switch c.Cache.Provider {
	case CacheProviderMemory:
	case CacheProviderRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when CACHE_PROVIDER=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_PROVIDER must be %q or %q, got %q", CacheProviderMemory, CacheProviderRedis, c.Cache.Provider))
	}
	if c.HTTP.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive when rate limiting is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ParseCredentialList splits a comma-delimited credential list. Each item is
// trimmed and stripped of surrounding double then single quotes; empty items are
// dropped.
func ParseCredentialList(raw string) []string {
	var keys []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"`)
		item = strings.Trim(item, "'")
		if item != "" {
			keys = append(keys, item)
		}
	}
	return keys
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

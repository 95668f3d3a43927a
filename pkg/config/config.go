package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Admin        AdminConfig
	DB           DBConfig
	Redis        RedisConfig
	Storage      StorageConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.GCS); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KEEPSAKE_APP_ENV" default:"dev"`
	Port         string `envconfig:"KEEPSAKE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"KEEPSAKE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"KEEPSAKE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"KEEPSAKE_LOG_WARN_STACK" default:"false"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy   bool   `envconfig:"KEEPSAKE_TRUST_PROXY" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AdminConfig holds the shared secret that gates every mutating endpoint.
type AdminConfig struct {
	Password     string `envconfig:"KEEPSAKE_ADMIN_PASSWORD"`
	PasswordHash string `envconfig:"KEEPSAKE_ADMIN_PASSWORD_HASH"`
}

// Secret returns the configured plaintext secret, or the built-in fallback when
// neither a password nor a hash was provided.
func (a AdminConfig) Secret() string {
	if a.Password != "" {
		return a.Password
	}
	return DefaultAdminPassword
}

// UsingFallback reports whether the insecure built-in password is in effect.
func (a AdminConfig) UsingFallback() bool {
	return a.Password == "" && a.PasswordHash == ""
}

type DBConfig struct {
	DSN    string `envconfig:"KEEPSAKE_DB_DSN" required:"true"`
	Driver string `envconfig:"KEEPSAKE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"KEEPSAKE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"KEEPSAKE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"KEEPSAKE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KEEPSAKE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverPostgres, DBDriverSQLite:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DBDriverPostgres, DBDriverSQLite, db.Driver)
	}
}

// RedisConfig is optional; an empty URL and address disables the rate limiter.
type RedisConfig struct {
	URL          string        `envconfig:"KEEPSAKE_REDIS_URL"`
	Address      string        `envconfig:"KEEPSAKE_REDIS_ADDR"`
	Password     string        `envconfig:"KEEPSAKE_REDIS_PASSWORD"`
	DB           int           `envconfig:"KEEPSAKE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KEEPSAKE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KEEPSAKE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KEEPSAKE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KEEPSAKE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KEEPSAKE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether enough settings exist to dial Redis.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type StorageConfig struct {
	Provider string `envconfig:"KEEPSAKE_STORAGE_PROVIDER" default:"local"`
	LocalDir string `envconfig:"KEEPSAKE_STORAGE_LOCAL_DIR" default:"./data/blobs"`
}

func (s StorageConfig) validate(gcs GCSConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case StorageProviderLocal:
		if strings.TrimSpace(s.LocalDir) == "" {
			return fmt.Errorf("%s is required for the local storage provider", EnvStorageLocalDir)
		}
		return nil
	case StorageProviderGCS:
		if gcs.BucketName == "" {
			return fmt.Errorf("%s is required for the gcs storage provider", EnvGCSBucket)
		}
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvStorageProvider, StorageProviderLocal, StorageProviderGCS, s.Provider)
	}
}

// IsGCS reports whether blobs live in Google Cloud Storage.
func (s StorageConfig) IsGCS() bool {
	return strings.EqualFold(strings.TrimSpace(s.Provider), StorageProviderGCS)
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KEEPSAKE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"KEEPSAKE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KEEPSAKE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"KEEPSAKE_GCS_BUCKET_NAME"`
	Endpoint   string `envconfig:"KEEPSAKE_GCS_ENDPOINT" default:"https://storage.googleapis.com"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"KEEPSAKE_MAX_UPLOAD_MB" default:"20"`
}

// MaxUploadBytes converts the configured megabyte cap to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type RateLimitConfig struct {
	AdminVerifyWindow  time.Duration `envconfig:"KEEPSAKE_RATE_LIMIT_ADMIN_VERIFY_WINDOW" default:"1m"`
	AdminVerifyIPLimit int           `envconfig:"KEEPSAKE_RATE_LIMIT_ADMIN_VERIFY_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KEEPSAKE_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"KEEPSAKE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

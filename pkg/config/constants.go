package config

// EnvPrefix is handed to envconfig; every field carries an explicit name so the
// prefix only matters for fields without one.
const EnvPrefix = "KEEPSAKE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// DefaultAdminPassword is used when KEEPSAKE_ADMIN_PASSWORD is unset. It is
// public knowledge and must be overridden in any real deployment.
const DefaultAdminPassword = "ellie2024"

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

const (
	EnvAppEnv            = "KEEPSAKE_APP_ENV"
	EnvPort              = "KEEPSAKE_APP_PORT"
	EnvAdminPassword     = "KEEPSAKE_ADMIN_PASSWORD"
	EnvAdminPasswordHash = "KEEPSAKE_ADMIN_PASSWORD_HASH"
	EnvDBDSN             = "KEEPSAKE_DB_DSN"
	EnvDBDriver          = "KEEPSAKE_DB_DRIVER"
	EnvRedisURL          = "KEEPSAKE_REDIS_URL"
	EnvStorageProvider   = "KEEPSAKE_STORAGE_PROVIDER"
	EnvStorageLocalDir   = "KEEPSAKE_STORAGE_LOCAL_DIR"
	EnvGCSBucket         = "KEEPSAKE_GCS_BUCKET_NAME"
	EnvMaxUploadMB       = "KEEPSAKE_MAX_UPLOAD_MB"
	EnvCORSOrigins       = "KEEPSAKE_CORS_ALLOWED_ORIGINS"
)

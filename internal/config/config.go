// Package config provides centralized configuration management for leadsync.
// It loads configuration from environment variables (and a .env file loaded
// by main) with sensible defaults, and validates all settings on startup so
// a misconfigured run fails before any upload is attempted.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Backend  BackendConfig
	Table    TableConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Images   ImagesConfig
	Logging  LoggingConfig
}

// BackendConfig holds the hosted backend's URL and credentials.
// Credentials are not required at load time; commands ask for the tier they
// need through Credential.
type BackendConfig struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co
	URL string `env:"SUPABASE_URL" envAlt:"VITE_SUPABASE_URL"`

	// Key is the restricted (anon/publishable) key, enough for append-only inserts
	Key string `env:"SUPABASE_KEY" envAlt:"VITE_SUPABASE_PUBLISHABLE_KEY"`

	// ServiceKey is the elevated (service role) key, needed for lookups and updates
	ServiceKey string `env:"SUPABASE_SERVICE_KEY" envAlt:"SUPABASE_SERVICE_ROLE_KEY"`

	// Timeout bounds every backend call (default: 30s)
	Timeout time.Duration `env:"BACKEND_TIMEOUT" default:"30s"`
}

// TableConfig selects the remote table and mapping profile.
type TableConfig struct {
	// Name overrides the profile's table (default: the profile's own table)
	Name string `env:"LEADS_TABLE"`

	// Profile is the mapping profile name (default: priority_leads)
	Profile string `env:"LEADS_PROFILE" default:"priority_leads"`

	// MappingFile holds optional profile overrides in JSON5 (default: mapping.json5)
	MappingFile string `env:"LEADS_MAPPING_FILE" default:"mapping.json5"`
}

// StorageConfig holds object storage settings.
type StorageConfig struct {
	// Bucket is the image bucket (default: property-images)
	Bucket string `env:"STORAGE_BUCKET" default:"property-images"`

	// Driver is "rest" for the backend's storage API or "s3" for an
	// S3-compatible endpoint (default: rest)
	Driver string `env:"STORAGE_DRIVER" default:"rest"`

	// PublicURL overrides the base used for public object URLs
	PublicURL string `env:"STORAGE_PUBLIC_URL"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Region    string `env:"S3_REGION" default:"us-east-1"`
	S3UseSSL    bool   `env:"S3_USE_SSL" default:"true"`
}

// DatabaseConfig holds optional direct PostgreSQL settings.
// When URL is set the table sink talks to the database instead of REST.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// UploadConfig holds batch upload settings.
type UploadConfig struct {
	// BatchSize is the number of records per bulk insert (default: 50)
	BatchSize int `env:"UPLOAD_BATCH_SIZE" default:"50"`

	// MaxFailureDetails caps failure details in the summary (default: 10)
	MaxFailureDetails int `env:"UPLOAD_MAX_FAILURE_DETAILS" default:"10"`

	// DetailLength truncates each failure detail (default: 200)
	DetailLength int `env:"UPLOAD_DETAIL_LENGTH" default:"200"`

	// DeleteBatchSize is the number of objects per delete call (default: 20)
	DeleteBatchSize int `env:"UPLOAD_DELETE_BATCH_SIZE" default:"20"`

	// MaxFileSize is the maximum allowed CSV size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`
}

// ImagesConfig holds local image directory settings.
type ImagesConfig struct {
	// Dir is the local photo directory (default: property_photos)
	Dir string `env:"IMAGES_DIR" default:"property_photos"`

	// Extension is the image file extension (default: .jpg)
	Extension string `env:"IMAGES_EXT" default:".jpg"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/leadsync/internal/core"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Every failure is a *core.ConfigError.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, &core.ConfigError{
			Field:       "environment",
			Problem:     err.Error(),
			Remediation: "fix the variable in .env or the environment",
			Err:         err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &core.ConfigError{
			Field:       "environment",
			Problem:     err.Error(),
			Remediation: "fix the listed variables in .env or the environment",
			Err:         err,
		}
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, ok := lookupEnv(envName, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = field.Tag.Get("default")
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// lookupEnv tries the primary env var, then the alternate.
// Blank values count as unset.
func lookupEnv(name, alt string) (string, bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, true
	}
	if alt != "" {
		if v := strings.TrimSpace(os.Getenv(alt)); v != "" {
			return v, true
		}
	}
	return "", false
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Backend validation
	if c.Backend.URL != "" && !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		errs = append(errs, fmt.Sprintf("SUPABASE_URL (%q) must start with http:// or https://", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, "BACKEND_TIMEOUT must be positive")
	}

	// Table validation
	if c.Table.Profile == "" {
		errs = append(errs, "LEADS_PROFILE is required")
	}

	// Storage validation
	switch strings.ToLower(c.Storage.Driver) {
	case "rest":
	case "s3":
		if c.Storage.S3Endpoint == "" {
			errs = append(errs, "S3_ENDPOINT is required when STORAGE_DRIVER=s3")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER (%q) must be one of: rest, s3", c.Storage.Driver))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, "STORAGE_BUCKET is required")
	}

	// Database validation
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Upload validation
	if c.Upload.BatchSize <= 0 {
		errs = append(errs, "UPLOAD_BATCH_SIZE must be positive")
	}
	if c.Upload.MaxFailureDetails <= 0 {
		errs = append(errs, "UPLOAD_MAX_FAILURE_DETAILS must be positive")
	}
	if c.Upload.DetailLength <= 0 {
		errs = append(errs, "UPLOAD_DETAIL_LENGTH must be positive")
	}
	if c.Upload.DeleteBatchSize <= 0 {
		errs = append(errs, "UPLOAD_DELETE_BATCH_SIZE must be positive")
	}
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}

	// Images validation
	if !strings.HasPrefix(c.Images.Extension, ".") {
		errs = append(errs, fmt.Sprintf("IMAGES_EXT (%q) must start with a dot", c.Images.Extension))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Keys and database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Backend: {URL: %q, Key: %s, ServiceKey: %s, Timeout: %s}, ",
		c.Backend.URL, mask(c.Backend.Key), mask(c.Backend.ServiceKey), c.Backend.Timeout))
	b.WriteString(fmt.Sprintf("Table: {Name: %q, Profile: %q}, ", c.Table.Name, c.Table.Profile))
	b.WriteString(fmt.Sprintf("Storage: {Bucket: %q, Driver: %q, S3SecretKey: %s}, ",
		c.Storage.Bucket, c.Storage.Driver, mask(c.Storage.S3SecretKey)))
	b.WriteString(fmt.Sprintf("Database: {URL: %s, MaxConns: %d}, ", mask(c.Database.URL), c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("Upload: {BatchSize: %d, MaxFailureDetails: %d}, ",
		c.Upload.BatchSize, c.Upload.MaxFailureDetails))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// MinJWTSecretLength is the shortest accepted HMAC signing key.
const MinJWTSecretLength = 32

// Load builds a Config from the process environment and validates it.
// Every failure names the offending variable.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := populate(reflect.ValueOf(cfg).Elem(), os.Getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// populate walks the exported fields of v. Nested structs are sections;
// leaf fields are read from the variable named by their env tag, falling
// back to envAlt and then default.
func populate(v reflect.Value, getenv func(string) string) error {
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
			if err := populate(fv, getenv); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw := getenv(name)
		if alt := sf.Tag.Get("envAlt"); raw == "" && alt != "" {
			raw = getenv(alt)
		}
		if raw == "" {
			if sf.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			raw = sf.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := decode(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
		}
	}
	return nil
}

// decode parses raw into dst according to dst's type. Slices of strings
// are comma-separated with blanks dropped.
func decode(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(b)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", dst.Type())
		}
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		dst.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", dst.Type())
	}
	return nil
}

// problems collects validation failures so they can be reported together.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func oneOf(s string, allowed ...string) bool {
	s = strings.ToLower(s)
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var p problems

	db := c.Database
	p.check(db.URL != "", "DATABASE_URL is required")
	p.check(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	p.check(db.MaxConns >= db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)

	srv := c.Server
	p.check(srv.Port > 0 && srv.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", srv.Port)
	p.check(srv.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(srv.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	imp := c.Import
	p.check(imp.MaxFileSize > 0, "IMPORT_MAX_FILE_SIZE must be positive")
	p.check(imp.MaxConcurrent > 0, "IMPORT_MAX_CONCURRENT must be positive")
	p.check(imp.MaxWaitTime > 0, "IMPORT_MAX_WAIT_TIME must be positive")
	p.check(imp.Timeout > 0, "IMPORT_TIMEOUT must be positive")

	p.check(len(c.Auth.JWTSecret) >= MinJWTSecretLength, "JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	p.check(c.Auth.Leeway >= 0, "JWT_LEEWAY must be non-negative")

	p.check(!c.Rate.Enabled || c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_RPM must be positive when rate limiting is enabled")

	if path := c.Tier.PolicyFile; path != "" {
		_, err := os.Stat(path)
		p.check(err == nil, "TIER_POLICY_FILE (%q) is not readable: %v", path, err)
	}

	arc := c.Archive
	p.check(arc.HotRetentionDays > 0, "ARCHIVE_HOT_RETENTION_DAYS must be positive")
	p.check(arc.ArchiveRetentionYears > 0, "ARCHIVE_RETENTION_YEARS must be positive")
	p.check(arc.BatchSize > 0, "ARCHIVE_BATCH_SIZE must be positive")
	p.check(arc.CheckInterval > 0, "ARCHIVE_CHECK_INTERVAL must be positive")

	p.check(oneOf(c.Logging.Level, "debug", "info", "warn", "error"),
		"LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	p.check(oneOf(c.Logging.Format, "text", "json"),
		"LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String renders the config for start-up logs with the database URL and
// signing key masked.
func (c *Config) String() string {
	sections := []string{
		fmt.Sprintf("Server: {Addr: %q, RequestTimeout: %s}", c.Server.Addr(), c.Server.RequestTimeout),
		fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d, AutoMigrate: %t}",
			c.Database.MaxConns, c.Database.MinConns, c.Database.AutoMigrate),
		fmt.Sprintf("Import: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s, DryRunDefault: %t}",
			c.Import.MaxFileSize, c.Import.MaxConcurrent, c.Import.Timeout, c.Import.DryRunDefault),
		fmt.Sprintf("Auth: {JWTSecret: [MASKED], Issuer: %q}", c.Auth.Issuer),
		fmt.Sprintf("Tier: {PolicyFile: %q}", c.Tier.PolicyFile),
		fmt.Sprintf("Rate: {Enabled: %t, RPM: %d}", c.Rate.Enabled, c.Rate.RequestsPerMinute),
		fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format),
	}
	return "Config{" + strings.Join(sections, ", ") + "}"
}

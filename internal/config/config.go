package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yukikurage/project-management-api/internal/constants"
)

// Identity provider names accepted by IDENTITY_PROVIDER.
const (
	IdentityProviderCognito = "cognito"
	IdentityProviderLocal   = "local"
)

// Database drivers accepted by DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppAddr         string
	GinMode         string
	LogLevel        string
	ShutdownTimeout time.Duration

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	IdentityProvider    string
	AWSRegion           string
	CognitoUserPoolID   string
	CognitoClientID     string
	CognitoClientSecret string
	LocalTokenSecret    string
	LocalTokenTTL       time.Duration

	RedisAddr       string
	ProfileCacheTTL time.Duration

	RateLimitPerMinute     int
	DefaultPageSize        int
	MaxPageSize            int
	TaskDeleteRequireAdmin bool
}

// LoadDotEnv reads a .env file into the process environment when present.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		AppAddr:  getEnv("APP_ADDR", ":8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "projectuser"),
		DBPassword: getEnv("DB_PASSWORD", "projectpassword"),
		DBName:     getEnv("DB_NAME", "project_management"),
		DBPath:     getEnv("DB_PATH", "data/projects.db"),

		IdentityProvider:    strings.ToLower(getEnv("IDENTITY_PROVIDER", IdentityProviderCognito)),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		CognitoUserPoolID:   getEnv("COGNITO_USER_POOL_ID", ""),
		CognitoClientID:     getEnv("COGNITO_CLIENT_ID", ""),
		CognitoClientSecret: getEnv("COGNITO_CLIENT_SECRET", ""),
		LocalTokenSecret:    getEnv("LOCAL_TOKEN_SECRET", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),
	}

	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs)
	cfg.LocalTokenTTL = getEnvAsDuration("LOCAL_TOKEN_TTL", time.Hour, &errs)
	cfg.ProfileCacheTTL = getEnvAsDuration("PROFILE_CACHE_TTL", 5*time.Minute, &errs)
	cfg.RateLimitPerMinute = getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120, &errs)
	cfg.DefaultPageSize = getEnvAsInt("DEFAULT_PAGE_SIZE", constants.DefaultPageSize, &errs)
	cfg.MaxPageSize = getEnvAsInt("MAX_PAGE_SIZE", constants.MaxPageSize, &errs)
	cfg.TaskDeleteRequireAdmin = getEnvAsBool("TASK_DELETE_REQUIRES_ADMIN", false, &errs)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverMySQL, DriverPostgres:
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH must not be empty for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}

	switch c.IdentityProvider {
	case IdentityProviderCognito:
		if c.CognitoUserPoolID == "" || c.CognitoClientID == "" {
			errs = append(errs, errors.New("COGNITO_USER_POOL_ID and COGNITO_CLIENT_ID are required for the cognito provider"))
		}
	case IdentityProviderLocal:
		if len(c.LocalTokenSecret) < 32 {
			errs = append(errs, errors.New("LOCAL_TOKEN_SECRET must be at least 32 characters for the local provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_PROVIDER %q is not supported", c.IdentityProvider))
	}

	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if c.MaxPageSize <= 0 {
		errs = append(errs, errors.New("MAX_PAGE_SIZE must be greater than 0"))
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, errors.New("DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid integer value for %s: %q", key, v))
		return defaultValue
	}
	return i
}

func getEnvAsBool(key string, defaultValue bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid boolean value for %s: %q", key, v))
		return defaultValue
	}
	return b
}

func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid duration value for %s: %q", key, v))
		return defaultValue
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	Store      StoreConfig
	Postgres   PostgresConfig
	Mongo      MongoConfig
	Storage    StorageConfig
	Pagination PaginationConfig
}

type ServerConfig struct {
	Port               string
	GinMode            string
	LogLevel           string
	CORSAllowedOrigins []string
	UploadDir          string
	UploadMaxBytes     int64
}

type AuthConfig struct {
	JWTSecret          string
	BcryptCost         int
	GenericLoginErrors bool
}

type StoreConfig struct {
	Driver string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type MongoConfig struct {
	URI      string
	Database string
}

// StorageConfig describes the S3-compatible bucket that holds recipe images.
// An empty Bucket disables image uploads.
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UsePathStyle    bool
}

type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, is loaded first without overriding
// variables that are already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port:               getenv("PORT", "3000"),
			GinMode:            getenv("GIN_MODE", "release"),
			LogLevel:           getenv("LOG_LEVEL", "info"),
			CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
			UploadDir:          getenv("UPLOAD_DIR", os.TempDir()),
			UploadMaxBytes:     getenvInt64("UPLOAD_MAX_BYTES", 5*1024*1024),
		},
		Auth: AuthConfig{
			JWTSecret:          os.Getenv("JWT_SECRET"),
			BcryptCost:         getenvInt("AUTH_BCRYPT_COST", 0),
			GenericLoginErrors: getenvBool("AUTH_GENERIC_LOGIN_ERRORS", false),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenv("STORE_DRIVER", StoreDriverPostgres)),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getenv("MONGO_DATABASE", "recipes"),
		},
		Storage: StorageConfig{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getenv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
			UsePathStyle:    getenvBool("S3_USE_PATH_STYLE", false),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getenvInt("PAGINATION_DEFAULT_LIMIT", 5),
			MaxLimit:     getenvInt("PAGINATION_MAX_LIMIT", 50),
		},
	}
}

// Validate reports the settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver))
	}

	if c.Pagination.DefaultLimit < 1 {
		errs = append(errs, errors.New("PAGINATION_DEFAULT_LIMIT must be positive"))
	}
	if c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		errs = append(errs, errors.New("PAGINATION_MAX_LIMIT must not be lower than PAGINATION_DEFAULT_LIMIT"))
	}
	if c.Server.UploadMaxBytes < 1 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

// ImagesEnabled reports whether an image bucket is configured.
func (c StorageConfig) ImagesEnabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64(key string, fallback int64) int64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

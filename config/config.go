package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	ApplySchema       bool
	// Storage: "s3" (S3 or R2) or "local"
	StorageDriver   string
	S3Endpoint      string // empty for AWS, https://<account>.r2.cloudflarestorage.com for R2
	S3Region        string
	S3AccessKeyID   string
	S3AccessSecret  string
	S3Bucket        string
	S3PublicURL     string
	LocalUploadDir  string
	LocalUploadURL  string
	PresignExpiry   time.Duration
	MaxUploadSizeMB int64
	UploadTimeout   time.Duration
	// Coordination and events. Empty means in-process only.
	RedisAddr     string
	RedisPassword string
	AMQPURL       string
	AMQPExchange  string
	ActionLockTTL time.Duration
	// Cache
	CacheEntityTTL time.Duration
	CacheStatsTTL  time.Duration
	CacheQRTTL     time.Duration
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Business Rules
	OrderStatusPolicy string
	VietQRBaseURL     string
	ShippingFee       int64 // VND per combo
}

func LoadConfig() *Config {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 30),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 5),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", 15*time.Minute),
		ApplySchema:       getBoolEnv("DB_APPLY_SCHEMA", true),

		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        getEnv("S3_REGION", "auto"),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3AccessSecret:  getEnv("S3_ACCESS_KEY_SECRET", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3PublicURL:     getEnv("S3_PUBLIC_URL", ""),
		LocalUploadDir:  getEnv("LOCAL_UPLOAD_DIR", "./storage/uploads"),
		LocalUploadURL:  getEnv("LOCAL_UPLOAD_URL_PREFIX", "/uploads"),
		PresignExpiry:   getDurationEnv("PRESIGN_EXPIRY", 10*time.Minute),
		MaxUploadSizeMB: getInt64Env("MAX_UPLOAD_SIZE_MB", 10),
		UploadTimeout:   getDurationEnv("UPLOAD_TIMEOUT", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		AMQPURL:       getEnv("AMQP_URL", ""),
		AMQPExchange:  getEnv("AMQP_EXCHANGE", "marketplace.status"),
		ActionLockTTL: getDurationEnv("ACTION_LOCK_TTL", 30*time.Second),

		CacheEntityTTL: getDurationEnv("CACHE_ENTITY_TTL", 2*time.Minute),
		CacheStatsTTL:  getDurationEnv("CACHE_STATS_TTL", 5*time.Minute),
		CacheQRTTL:     getDurationEnv("CACHE_QR_TTL", 30*time.Minute),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		OrderStatusPolicy: getEnv("ORDER_STATUS_POLICY", "first"),
		VietQRBaseURL:     getEnv("VIETQR_BASE_URL", "https://img.vietqr.io/image"),
		ShippingFee:       getInt64Env("SHIPPING_FEE", 30000),
	}
}

const defaultJWTSecret = "default_secret_CHANGE_ME"

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate returns every problem at once so a misconfigured deploy fails with a full list.
func (c *Config) Validate() error {
	var errs []error
	if c.DBUrl == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		} else {
			log.Println("WARNING: Using default JWT secret.")
		}
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" || c.S3PublicURL == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_PUBLIC_URL are required for STORAGE_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.MaxUploadSizeMB < 1 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE_MB must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}

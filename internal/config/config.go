package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSource   string

	RedisURL       string
	ReportCacheTTL time.Duration

	JWTSecret            string
	JWTTTL               time.Duration
	OperatorUsername     string
	OperatorPasswordHash string

	Location *time.Location

	FirebaseServiceAccountPath string

	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	AWSS3Bucket  string
}

// Load reads .env if present and builds the configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		log.Printf("Invalid APP_TIMEZONE, falling back to UTC: %v", err)
		loc = time.UTC
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "food_wastage"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSource:   getEnv("DB_SOURCE", "food_wastage.db"),

		RedisURL:       os.Getenv("REDIS_URL"),
		ReportCacheTTL: getDuration("REPORT_CACHE_TTL", 600*time.Second),

		JWTSecret:            getEnv("JWT_SECRET", "changeme"),
		JWTTTL:               getDuration("JWT_TTL", 24*time.Hour),
		OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),

		Location: loc,

		FirebaseServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),

		AWSRegion:    os.Getenv("AWS_REGION"),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSS3Bucket:  os.Getenv("AWS_S3_BUCKET"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go duration strings ("10m") or plain seconds ("600").
func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Invalid %s=%q, using %s", key, v, fallback)
	return fallback
}

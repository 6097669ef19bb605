package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	Storage     string // memory or mongo
	SkipAuth    bool
	Environment string
	AppId       string
	CORSOrigins string // comma separated

	ReferencePrefix   string
	VerifyBaseURL     string
	ApprovalChainFile string // JSON file with approval chains, optional
	RoutingScript     string // Tengo script selecting a chain, optional

	OrgName    string
	OrgAddress string
	OrgPhone   string
	OrgEmail   string

	RenderTimeout time.Duration
	DBTimeout     time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	DeliverySchedule    string
	DeliveryConcurrency int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-elms"),
		Storage:     getEnv("STORAGE", StorageMemory),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-elms"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000, http://localhost:5173"),

		ReferencePrefix:   getEnv("REFERENCE_PREFIX", "ELMS"),
		VerifyBaseURL:     getEnv("VERIFY_BASE_URL", "http://localhost:8080"),
		ApprovalChainFile: getEnv("APPROVAL_CHAIN_FILE", ""),
		RoutingScript:     getEnv("ROUTING_SCRIPT", ""),

		OrgName:    getEnv("ORG_NAME", "Example Organization"),
		OrgAddress: getEnv("ORG_ADDRESS", "Tashkent, Uzbekistan"),
		OrgPhone:   getEnv("ORG_PHONE", "+998 71 000 00 00"),
		OrgEmail:   getEnv("ORG_EMAIL", "info@example.uz"),

		RenderTimeout: getDuration("RENDER_TIMEOUT", 30*time.Second),
		DBTimeout:     getDuration("DB_TIMEOUT", 5*time.Second),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.uz"),

		DeliverySchedule:    getEnv("DELIVERY_SCHEDULE", "@every 1m"),
		DeliveryConcurrency: getInt("DELIVERY_CONCURRENCY", 4),
	}, nil
}

func (c *Config) UseMongo() bool {
	return c.Storage == StorageMongo
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s: %q, using %s", key, value, fallback)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		log.Printf("Invalid integer for %s: %q, using %d", key, value, fallback)
	}
	return fallback
}

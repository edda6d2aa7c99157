package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"agencysite/models"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"-"`
	FromName string `json:"from_name"`
}

type SuperAdminConfig struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

type Config struct {
	Environment        string           `json:"environment"`
	ServerPort         string           `json:"server_port"`
	DBHost             string           `json:"db_host"`
	DBPort             string           `json:"db_port"`
	DBUser             string           `json:"db_user"`
	DBPassword         string           `json:"-"`
	DBName             string           `json:"db_name"`
	DBSSLMode          string           `json:"db_ssl_mode"`
	DBMaxIdleConns     int              `json:"db_max_idle_conns"`
	DBMaxOpenConns     int              `json:"db_max_open_conns"`
	JWTSecret          string           `json:"-"`
	JWTTTL             time.Duration    `json:"jwt_ttl"`
	SMTP               SMTPConfig       `json:"smtp"`
	ReceiverEmail      string           `json:"receiver_email"`
	FrontendURL        string           `json:"frontend_url"`
	Redis              RedisConfig      `json:"redis"`
	RateLimitInquiries int              `json:"rate_limit_inquiries"`
	SentryDSN          string           `json:"-"`
	LogLevel           string           `json:"log_level"`
	SuperAdmin         SuperAdminConfig `json:"super_admin"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	smtpUsername := getEnv("SMTP_USERNAME", "")

	AppConfig = Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "agencysite"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     smtpPort,
			Username: smtpUsername,
			Password: getEnv("SMTP_PASSWORD", ""),
			FromName: getEnv("SMTP_FROM_NAME", "Agency Website"),
		},
		ReceiverEmail: getEnv("RECEIVER_EMAIL", smtpUsername),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimitInquiries: getEnvAsInt("RATE_LIMIT_INQUIRIES", 10),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SuperAdmin: SuperAdminConfig{
			Name:     getEnv("SUPERADMIN_NAME", "Super Admin"),
			Email:    getEnv("SUPERADMIN_EMAIL", ""),
			Password: getEnv("SUPERADMIN_PASSWORD", ""),
		},
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if AppConfig.Environment == "production" && AppConfig.ReceiverEmail == "" {
		return fmt.Errorf("RECEIVER_EMAIL or SMTP_USERNAME is required in production")
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	logrus.Info("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	logrus.Infof("Using connection string: %s", maskPassword(dsn))

	gormConfig := &gorm.Config{}
	if AppConfig.Environment == "production" {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logrus.Info("✅ Successfully connected to the database")
	logrus.Info("🔄 Starting database migration...")
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logrus.Info("✅ Database migration completed")
	return nil
}

// MigrateDB creates or updates every table the API owns.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Inquiry{},
		&models.Note{},
		&models.Admin{},
		&models.Job{},
		&models.Blog{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		logrus.Warnf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	logrus.WithFields(logrus.Fields{
		"environment":   AppConfig.Environment,
		"server_port":   AppConfig.ServerPort,
		"database":      fmt.Sprintf("%s@%s:%s/%s", AppConfig.DBUser, AppConfig.DBHost, AppConfig.DBPort, AppConfig.DBName),
		"smtp":          fmt.Sprintf("%s:%d", AppConfig.SMTP.Host, AppConfig.SMTP.Port),
		"receiver":      AppConfig.ReceiverEmail,
		"frontend_url":  AppConfig.FrontendURL,
		"redis_enabled": AppConfig.Redis.Enabled,
		"sentry":        AppConfig.SentryDSN != "",
	}).Info("🔧 Loaded configuration")
}

package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Backend   BackendConfig
	Billing   BillingConfig
	Printer   PrinterConfig
	Email     EmailConfig
	Log       LogConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// BackendConfig points at the practice backend that owns patients,
// services and payments.
type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration
	CatalogCache time.Duration
}

type BillingConfig struct {
	TotalsMode      string
	DefaultCurrency string
	DefaultMethod   string
	DraftTTL        time.Duration
	ClinicName      string
	ClinicAddress   string
	ClinicPhone     string
}

type PrinterConfig struct {
	Type    string // usb, network, none
	USBPath string
	Address string
	Width   int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "clinic-billing")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "clinic_billing")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:5000/api")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	viper.SetDefault("BACKEND_CATALOG_CACHE_SECONDS", 60)
	viper.SetDefault("BILLING_TOTALS_MODE", "legacy")
	viper.SetDefault("BILLING_DEFAULT_CURRENCY", "INR (₹)")
	viper.SetDefault("BILLING_DEFAULT_METHOD", "Cash")
	viper.SetDefault("BILLING_DRAFT_TTL_MINUTES", 60)
	viper.SetDefault("BILLING_CLINIC_NAME", "Clinic")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_WIDTH", 48)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_OUTPUT", "stdout")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Backend: BackendConfig{
			BaseURL:      viper.GetString("BACKEND_BASE_URL"),
			Timeout:      time.Duration(viper.GetInt("BACKEND_TIMEOUT_SECONDS")) * time.Second,
			CatalogCache: time.Duration(viper.GetInt("BACKEND_CATALOG_CACHE_SECONDS")) * time.Second,
		},
		Billing: BillingConfig{
			TotalsMode:      viper.GetString("BILLING_TOTALS_MODE"),
			DefaultCurrency: viper.GetString("BILLING_DEFAULT_CURRENCY"),
			DefaultMethod:   viper.GetString("BILLING_DEFAULT_METHOD"),
			DraftTTL:        time.Duration(viper.GetInt("BILLING_DRAFT_TTL_MINUTES")) * time.Minute,
			ClinicName:      viper.GetString("BILLING_CLINIC_NAME"),
			ClinicAddress:   viper.GetString("BILLING_CLINIC_ADDRESS"),
			ClinicPhone:     viper.GetString("BILLING_CLINIC_PHONE"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
			Width:   viper.GetInt("PRINTER_WIDTH"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromName:     viper.GetString("SMTP_FROM_NAME"),
			FromEmail:    viper.GetString("SMTP_FROM_EMAIL"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

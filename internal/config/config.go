// Package config loads service settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort string
	Debug      bool
	TLSDomains []string

	// PostgreSQL: DatabaseURL wins over the individual fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	RabbitURL string

	JWTSecret string

	UploadDir     string
	MaxUploadSize string

	EnforceCapacity  bool
	PublicActiveOnly bool
	PhoneRegion      string

	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSender string

	TelegramToken        string
	TelegramAdminChatIDs []int64

	SheetsSpreadsheetID  string
	SheetsCredentialFile string
	SheetsSheetName      string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "race_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("UPLOAD_DIR", "./media")
	v.SetDefault("MAX_UPLOAD_SIZE", "10M")
	v.SetDefault("ENFORCE_CAPACITY", false)
	v.SetDefault("PUBLIC_ACTIVE_ONLY", true)
	v.SetDefault("PHONE_REGION", "RU")
	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_USER_AGENT", "race-registration/1.0")
	v.SetDefault("GEOCODER_TIMEOUT", "5s")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("GOOGLE_SHEETS_SHEET_NAME", "Participants")
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:           v.GetString("SERVER_PORT"),
		Debug:                v.GetBool("DEBUG"),
		TLSDomains:           splitTrimmed(v.GetString("TLS_DOMAINS")),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBSSLMode:            v.GetString("DB_SSLMODE"),
		RabbitURL:            v.GetString("RABBITMQ_URL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		UploadDir:            v.GetString("UPLOAD_DIR"),
		MaxUploadSize:        v.GetString("MAX_UPLOAD_SIZE"),
		EnforceCapacity:      v.GetBool("ENFORCE_CAPACITY"),
		PublicActiveOnly:     v.GetBool("PUBLIC_ACTIVE_ONLY"),
		PhoneRegion:          strings.ToUpper(v.GetString("PHONE_REGION")),
		GeocoderURL:          strings.TrimRight(v.GetString("GEOCODER_URL"), "/"),
		GeocoderUserAgent:    v.GetString("GEOCODER_USER_AGENT"),
		GeocoderTimeout:      v.GetDuration("GEOCODER_TIMEOUT"),
		SMTPHost:             v.GetString("SMTP_HOST"),
		SMTPPort:             v.GetInt("SMTP_PORT"),
		SMTPUser:             v.GetString("SMTP_USER"),
		SMTPPass:             v.GetString("SMTP_PASS"),
		SMTPSender:           v.GetString("SMTP_SENDER"),
		TelegramToken:        v.GetString("TELEGRAM_BOT_TOKEN"),
		SheetsSpreadsheetID:  v.GetString("GOOGLE_SHEETS_SPREADSHEET_ID"),
		SheetsCredentialFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		SheetsSheetName:      v.GetString("GOOGLE_SHEETS_SHEET_NAME"),
	}

	ids, err := parseChatIDs(v.GetString("TELEGRAM_ADMIN_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.TelegramAdminChatIDs = ids

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPSender != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && len(c.TelegramAdminChatIDs) > 0
}

func (c *Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != "" && c.SheetsCredentialFile != ""
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.DatabaseURL == "" && c.DBPassword == "" {
		return errors.New("config: DATABASE_URL or DB_PASSWORD must be set")
	}
	if c.GeocoderTimeout <= 0 {
		return errors.New("config: GEOCODER_TIMEOUT must be positive")
	}
	return nil
}

func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, p := range splitTrimmed(raw) {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: TELEGRAM_ADMIN_CHAT_IDS: %q is not a chat id", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

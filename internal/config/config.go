package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	Office    OfficeConfig
	WorkHours WorkHoursConfig
	JWT       JWTConfig
	Chat      ChatConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone string
}

// OfficeConfig describes the geofence all attendance events are checked against.
type OfficeConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// WorkHoursConfig is the system-wide fallback applied when an employee
// has neither an exceptional nor a standard schedule.
type WorkHoursConfig struct {
	DefaultStart string
	DefaultEnd   string
}

// JWTConfig holds JWT configuration for the dashboard API
type JWTConfig struct {
	Secret            string
	AccessExpiration  string
	RefreshExpiration string
}

// ChatConfig holds the outbound chat transport configuration.
type ChatConfig struct {
	APIBaseURL    string
	BotToken      string
	WebhookSecret string
	SendTimeout   time.Duration
}

// SchedulerConfig holds the notification scheduler configuration.
type SchedulerConfig struct {
	TickInterval        time.Duration
	DailySummaryAt      string
	LateAlertFrom       string
	LateAlertUntil      string
	MissedCheckoutAfter time.Duration
	KeepAliveEvery      time.Duration
	ConversationTTL     time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbMinConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hadir"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: dbMaxConns,
		MinConns: dbMinConns,
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "Africa/Cairo"),
	}

	officeLat, err := strconv.ParseFloat(getEnv("OFFICE_LATITUDE", "31.0417"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_LATITUDE: %w", err)
	}
	officeLon, err := strconv.ParseFloat(getEnv("OFFICE_LONGITUDE", "31.3778"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_LONGITUDE: %w", err)
	}
	officeRadius, err := strconv.ParseFloat(getEnv("OFFICE_RADIUS_METERS", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_RADIUS_METERS: %w", err)
	}

	config.Office = OfficeConfig{
		Latitude:     officeLat,
		Longitude:    officeLon,
		RadiusMeters: officeRadius,
	}

	config.WorkHours = WorkHoursConfig{
		DefaultStart: getEnv("DEFAULT_WORK_START", "09:00"),
		DefaultEnd:   getEnv("DEFAULT_WORK_END", "17:00"),
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
	}

	sendTimeout, err := time.ParseDuration(getEnv("CHAT_SEND_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_SEND_TIMEOUT: %w", err)
	}

	config.Chat = ChatConfig{
		APIBaseURL:    getEnv("CHAT_API_BASE_URL", "https://api.telegram.org"),
		BotToken:      getEnv("CHAT_BOT_TOKEN", ""),
		WebhookSecret: getEnv("CHAT_WEBHOOK_SECRET", ""),
		SendTimeout:   sendTimeout,
	}

	tick, err := time.ParseDuration(getEnv("SCHEDULER_TICK_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TICK_INTERVAL: %w", err)
	}
	missedAfter, err := time.ParseDuration(getEnv("MISSED_CHECKOUT_AFTER", "10h"))
	if err != nil {
		return nil, fmt.Errorf("invalid MISSED_CHECKOUT_AFTER: %w", err)
	}
	keepAlive, err := time.ParseDuration(getEnv("KEEP_ALIVE_EVERY", "14m"))
	if err != nil {
		return nil, fmt.Errorf("invalid KEEP_ALIVE_EVERY: %w", err)
	}
	conversationTTL, err := time.ParseDuration(getEnv("CONVERSATION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONVERSATION_TTL: %w", err)
	}

	config.Scheduler = SchedulerConfig{
		TickInterval:        tick,
		DailySummaryAt:      getEnv("DAILY_SUMMARY_AT", "20:00"),
		LateAlertFrom:       getEnv("LATE_ALERT_FROM", "09:00"),
		LateAlertUntil:      getEnv("LATE_ALERT_UNTIL", "12:00"),
		MissedCheckoutAfter: missedAfter,
		KeepAliveEvery:      keepAlive,
		ConversationTTL:     conversationTTL,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Chat.BotToken == "" {
		return fmt.Errorf("CHAT_BOT_TOKEN is required")
	}
	if c.Chat.WebhookSecret == "" {
		return fmt.Errorf("CHAT_WEBHOOK_SECRET is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

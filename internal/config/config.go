package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	APIBaseURL     string
	APITimeout     time.Duration
	RazorpayKeyID  string
	CheckoutName   string
	CanonicalHost  string
	SessionFile    string
	SessionSecret  string
	CacheRetention time.Duration
	OTPCooldown    time.Duration
	AvatarMaxDim   int

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		APIBaseURL:              getEnv("API_BASE_URL", ""),
		APITimeout:              getDuration("API_TIMEOUT", 15*time.Second),
		RazorpayKeyID:           strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID")),
		CheckoutName:            getEnv("CHECKOUT_NAME", "LearnHub"),
		CanonicalHost:           getEnv("CANONICAL_HOST", "learnhub.example.com"),
		SessionFile:             getEnv("SESSION_FILE", "./state/session.json"),
		SessionSecret:           strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		CacheRetention:          getDuration("CACHE_RETENTION", 60*time.Second),
		OTPCooldown:             getDuration("OTP_RESEND_COOLDOWN", 30*time.Second),
		AvatarMaxDim:            getInt("AVATAR_MAX_DIM", 512),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if strings.TrimSpace(c.SessionFile) == "" {
		return fmt.Errorf("SESSION_FILE cannot be empty")
	}

	if c.CacheRetention < 0 {
		return fmt.Errorf("CACHE_RETENTION cannot be negative")
	}

	if c.OTPCooldown <= 0 {
		return fmt.Errorf("OTP_RESEND_COOLDOWN must be positive")
	}

	if c.AvatarMaxDim <= 0 {
		return fmt.Errorf("AVATAR_MAX_DIM must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}

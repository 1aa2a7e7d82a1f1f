package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	GoogleAudience     string
	AllowOrigins       []string
	LogstashTCPAddr    string
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketProfile string
	MinIOPublicURL     string
	SessionTTL         string
	OTPLength          int
	OTPTTL             string
	OTPResendCooldown  string
	PhotoMaxBytes      int64
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisStatusTTL     string
	KafkaBrokers       []string
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	SMTPUseTLS         bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	otpLen := 6
	if v, err := strconv.Atoi(getenv("OTP_LENGTH", "6")); err == nil && v > 0 {
		otpLen = v
	}

	photoMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("PROFILE_PHOTO_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		photoMax = v
	}

	redisDB := 0
	if v, err := strconv.Atoi(getenv("REDIS_DB", "0")); err == nil && v >= 0 {
		redisDB = v
	}

	var kafkaBrokers []string
	if raw := strings.TrimSpace(getenv("KAFKA_BROKERS", "")); raw != "" {
		kafkaBrokers = splitAndTrim(raw)
	}

	return Config{
		Port:               getenv("PORT", "8080"),
		DatabaseURL:        must("DATABASE_URL"),
		JWTSecret:          must("JWT_SECRET"),
		GoogleAudience:     getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:       splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:    getenv("LOGSTASH_TCP_ADDR", ""),
		MinIOEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketProfile: getenv("MINIO_BUCKET_PROFILE", "donateway-profiles"),
		MinIOPublicURL:     getenv("MINIO_PUBLIC_URL", ""),
		SessionTTL:         getenv("SESSION_TTL", "24h"),
		OTPLength:          otpLen,
		OTPTTL:             getenv("OTP_TTL", "1h"),
		OTPResendCooldown:  getenv("OTP_RESEND_COOLDOWN", "30s"),
		PhotoMaxBytes:      photoMax,
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            redisDB,
		RedisStatusTTL:     getenv("REDIS_STATUS_TTL", "30s"),
		KafkaBrokers:       kafkaBrokers,
		SMTPHost:           getenv("SMTP_HOST", ""),
		SMTPPort:           getenv("SMTP_PORT", ""),
		SMTPUsername:       getenv("SMTP_USERNAME", ""),
		SMTPPassword:       getenv("SMTP_PASSWORD", ""),
		SMTPFrom:           getenv("SMTP_FROM", ""),
		SMTPUseTLS:         getenv("SMTP_USE_TLS", "false") == "true",
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/config"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/logging"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/media"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/notify"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/minio"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/ports"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/postgres"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/redis"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/service"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/transport/http"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/transport/mail"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		if w, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr); err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer w.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, w))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	donationRepo := postgres.NewDonationRepo(db)
	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)

	var storage ports.ObjectStorage
	if cfg.MinIOEndpoint != "" {
		client, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("connect minio: %v", err)
		}
		storage = minio.NewStorage(client, cfg.MinIOPublicURL, cfg.MinIOUseSSL)
	} else {
		log.Printf("minio not configured, profile photo uploads disabled")
	}

	var statusCache ports.StatusCache
	if cfg.RedisAddr != "" {
		statusCache = redis.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, parseDuration(cfg.RedisStatusTTL, 30*time.Second))
	}

	notifier := buildNotifier(cfg)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, parseDuration(cfg.SessionTTL, 24*time.Hour))

	authService := service.NewAuthService(userRepo, sessionRepo, storage, media.NewImageProcessor(0), jwtManager, service.AuthConfig{
		PhotoBucket:    cfg.MinIOBucketProfile,
		PhotoMaxBytes:  cfg.PhotoMaxBytes,
		GoogleAudience: cfg.GoogleAudience,
	})
	donationService := service.NewDonationService(donationRepo, userRepo, statusCache, notifier, service.DonationConfig{
		OTPLength:      cfg.OTPLength,
		OTPTTL:         parseDuration(cfg.OTPTTL, time.Hour),
		ResendCooldown: parseDuration(cfg.OTPResendCooldown, 30*time.Second),
	})

	e := http.NewRouter(cfg.AllowOrigins)
	http.RegisterAuth(e, authService)
	http.RegisterDonations(e, authService, donationService)
	http.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// buildNotifier picks the strongest configured delivery channel: the Kafka
// outbox when brokers are set, direct SMTP when mail is set, otherwise a
// log-only fallback.
func buildNotifier(cfg config.Config) notify.Notifier {
	if len(cfg.KafkaBrokers) > 0 {
		log.Printf("handoff codes published to kafka topic %s", notify.OutboxTopic)
		return notify.NewKafkaPublisher(cfg.KafkaBrokers)
	}
	if cfg.SMTPHost != "" {
		log.Printf("handoff codes delivered over smtp via %s", cfg.SMTPHost)
		return mail.NewOTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPUseTLS)
	}
	return notify.LogNotifier{}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

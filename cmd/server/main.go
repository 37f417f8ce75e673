// Command server runs the Cradle API: authentication, user management, and
// the audit trail over PostgreSQL, Redis, and optionally Kafka.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cradle/internal/audit"
	"cradle/internal/auth"
	"cradle/internal/blob"
	"cradle/internal/platform/awsconfig"
	"cradle/internal/platform/config"
	"cradle/internal/platform/database"
	"cradle/internal/platform/health"
	"cradle/internal/platform/kafka"
	"cradle/internal/platform/logger"
	"cradle/internal/platform/metrics"
	"cradle/internal/platform/redis"
	"cradle/internal/server"
	"cradle/internal/token"
	userstore "cradle/internal/users/store"
	"cradle/internal/vault"
	"cradle/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	log := logger.New()
	log.Info("starting", "app", cfg.AppName, "profile", cfg.Profile)

	m := metrics.New()

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	var users userstore.UserStore
	var audits audit.Store
	if pool != nil {
		defer pool.Close()
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		users = userstore.NewPostgres(pool.DB())
		audits = audit.NewPostgres(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users = userstore.NewMemoryStore()
		audits = audit.NewInMemoryStore()
	}

	var denylist auth.Denylist
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		denylist = auth.NewRedisDenylist(redisClient)
	} else {
		log.Warn("REDIS_URL not set, token revocation is process-local")
		denylist = auth.NewMemoryDenylist()
	}

	var sink audit.Sink
	var producer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		producer, err = kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Retries: 5}, log)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer producer.Close()
		sink = audit.NewKafkaSink(producer, cfg.AuditTopic)
	}

	var uploads *blob.S3Store
	if cfg.AWSEndpointURL != "" {
		awsCfg, err := awsconfig.Load(ctx, cfg.AWSEndpointURL)
		if err != nil {
			return fmt.Errorf("aws: %w", err)
		}
		uploads = blob.NewS3(awsconfig.NewS3Client(awsCfg, cfg.AWSEndpointURL), cfg.UploadsBucket)

		if os.Getenv("JWT_SECRET") == "" {
			v := vault.NewSecretsManager(awsconfig.NewSecretsManagerClient(awsCfg, cfg.AWSEndpointURL))
			secret, err := v.GetSecret(ctx, cfg.SecretNamespace()+"/jwt")
			if err != nil {
				log.Warn("could not load jwt secret from vault, using configured value", "error", err)
			} else {
				cfg.JWTSecret = secret
			}
		}
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.AppName, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	h := health.New(cfg.Profile)
	if pool != nil {
		h.RegisterCheck("database", pool.Health)
	}
	if redisClient != nil {
		h.RegisterCheck("redis", redisClient.Health)
	}
	if uploads != nil {
		h.RegisterCheck("blob", func(ctx context.Context) error {
			_, err := uploads.List(ctx, "healthcheck/")
			return err
		})
	}
	if producer != nil {
		h.RegisterCheck("kafka", func(ctx context.Context) error {
			if !producer.Healthy(ctx) {
				return fmt.Errorf("kafka brokers unreachable")
			}
			return nil
		})
	}

	router := server.NewRouter(server.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  m,
		Tokens:   tokens,
		Users:    users,
		Audits:   audits,
		Denylist: denylist,
		Sink:     sink,
		Health:   h,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg, router, log).Run(ctx)
	})
	if redisClient != nil {
		g.Go(func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					redisClient.RecordPoolStats()
				}
			}
		})
	}
	return g.Wait()
}

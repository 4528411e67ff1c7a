package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dudhwala/milkbook/internal/cloud"
	"github.com/dudhwala/milkbook/internal/config"
	"github.com/dudhwala/milkbook/internal/database"
	httpHandlers "github.com/dudhwala/milkbook/internal/http"
	"github.com/dudhwala/milkbook/internal/repository"
	"github.com/dudhwala/milkbook/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	var store repository.Store
	if config.DSN() == "memory" {
		store = repository.NewMemory()
		log.Warn().Msg("using in-memory store; data will not survive restarts")
	} else {
		db, err := database.Connect()
		if err != nil {
			log.Fatal().Err(err).Msg("db connect failed")
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		store = repository.New(db)
	}

	opts := service.Options{
		OwnerPIN: config.OwnerPIN(),
		Tokens:   service.NewTokenIssuer(config.JWTSecret(), 24*time.Hour),
	}
	if config.UseCloudServices() {
		s3Client, err := cloud.NewS3Client(config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Fatal().Err(err).Msg("s3 init failed")
		}
		opts.Statements = s3Client
		if arn := config.SNSTopicArn(); arn != "" {
			snsClient, err := cloud.NewSNSClient(config.AWSRegion(), arn)
			if err != nil {
				log.Fatal().Err(err).Msg("sns init failed")
			}
			opts.Notifier = snsClient
		}
	}

	svcs := service.New(store, opts)
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, svcs, httpHandlers.Options{
		Tokens:      opts.Tokens,
		EnforceAuth: config.AuthEnforce(),
	})

	addr := config.APIAddr()
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/budgeter/backend/internal/bank"
	"github.com/budgeter/backend/internal/bank/plaid"
	"github.com/budgeter/backend/internal/config"
	v1 "github.com/budgeter/backend/internal/controllers/v1"
	"github.com/budgeter/backend/internal/events"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/router"
	"github.com/budgeter/backend/internal/tax"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env file is fine, the environment is used directly then
	_ = godotenv.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Create data directory
	err := os.MkdirAll(filepath.Dir(cfg.DBFile), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database
	err = models.Connect(cfg.DBFile)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	co, err := controller(cfg)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer co.Events.Close()

	r, teardown, err := router.Config(cfg.APIURL)
	defer teardown()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	router.AttachRoutes(co, r.Group("/"), cfg.JWTSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Bool("bank", co.Bank != nil).Msg("backend startup complete")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Msg(err.Error())
	}

	sqlDB, err := models.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}

// controller sets up the dependencies of the API handlers.
func controller(cfg *config.Config) (v1.Controller, error) {
	co := v1.New()

	if cfg.TaxBracketsFile != "" {
		brackets, err := tax.LoadBrackets(cfg.TaxBracketsFile)
		if err != nil {
			return co, err
		}

		co.Tax, err = tax.NewCalculator(brackets, tax.Rates2025())
		if err != nil {
			return co, err
		}
		log.Info().Str("file", cfg.TaxBracketsFile).Int("brackets", len(brackets)).Msg("tax brackets loaded")
	}

	co.Events = events.LogPublisher{}
	if cfg.AMQPURL != "" {
		publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			return co, err
		}
		co.Events = publisher
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing events to AMQP")
	}

	if cfg.UsePlaid {
		client, err := plaid.New(cfg.PlaidEnvironment, cfg.PlaidClientID, cfg.PlaidSecret)
		if err != nil {
			return co, err
		}

		sealer, err := bank.NewSealer(cfg.PlaidAccessTokenSecret)
		if err != nil {
			return co, err
		}

		co.Bank = bank.NewService(client, sealer, co.Events, cfg.SyncConcurrency, cfg.SyncLookback)
		log.Info().Str("environment", cfg.PlaidEnvironment).Msg("bank integration enabled")
	}

	return co, nil
}

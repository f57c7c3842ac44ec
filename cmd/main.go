package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"acsim/internal/breaker"
	"acsim/internal/config"
	"acsim/internal/handlers"
	"acsim/internal/logger"
	"acsim/internal/metrics"
	"acsim/internal/models"
	"acsim/internal/narrative"
	"acsim/internal/publish"
	"acsim/internal/repository"
	"acsim/internal/repository/db"
	"acsim/internal/server"
	"acsim/internal/service"
	"acsim/internal/weather"
)

const shutdownTimeout = 10 * time.Second

// @title                       acsim API
// @version                     1.0
// @description                 Hourly air-conditioning energy comparisons.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := pflag.StringP("config", "c", "", "path to config.yml (default: configs/config.yml)")
	pflag.Parse()

	// load config.yml
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	// open DB
	sqlDB, err := openDB(cfg.DB, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	m := metrics.New()
	gen := newGenerator(cfg.Narrative, m, log)
	pub := newPublisher(cfg.Kafka, m, log)
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			log.Errorw("failed to close publisher", "err", cerr)
		}
	}()

	defaultWeather, weatherSource, err := loadDefaultWeather(cfg.Weather, log)
	if err != nil {
		log.Fatalw("failed to load default weather", "path", cfg.Weather.DefaultPath, "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, service.Deps{
		Log:       log,
		Metrics:   m,
		Generator: gen,
		Publisher: pub,
		Auth:      service.AuthConfig{SigningKey: cfg.Auth.SigningKey, TokenTTL: cfg.Auth.TokenTTL},
	})
	apiHandler := handlers.NewHandler(services, log, handlers.Config{
		DefaultWeather:       defaultWeather,
		DefaultWeatherSource: weatherSource,
		MaxUploadBytes:       cfg.HTTP.MaxUploadBytes,
		ReplayBatch:          cfg.Replay.BatchSize,
		Metrics:              m,
	})

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg, apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.DBConfig, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening sqlite", "path", cfg.Path)
	return db.InitDB(cfg.Path)
}

// newGenerator returns the language-model client behind a circuit breaker,
// or a disabled generator when narratives are off or no key is configured.
func newGenerator(cfg config.NarrativeConfig, m *metrics.Metrics, log *logger.Logger) narrative.Generator {
	if !cfg.Enabled {
		return narrative.Disabled{}
	}
	if cfg.APIKey == "" {
		log.Warnw("narrative enabled without api key; disabling")
		return narrative.Disabled{}
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	brk := breaker.New("narrative", breaker.Config{
		MaxFailures:  cfg.Breaker.MaxFailures,
		ResetTimeout: cfg.Breaker.ResetTimeout,
	},
		breaker.WithLogger(log),
		breaker.WithStateHook(m.BreakerHook()),
	)
	log.Infow("narrative enabled", "base_url", cfg.BaseURL, "model", cfg.Model)
	return narrative.NewOpenAIGenerator(narrative.Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		HTTPClient:  breaker.NewHTTPClient(brk, httpClient),
	})
}

func newPublisher(cfg config.KafkaConfig, m *metrics.Metrics, log *logger.Logger) publish.Publisher {
	if len(cfg.Brokers) == 0 {
		return publish.Nop{}
	}
	brk := breaker.New("kafka", breaker.Config{MaxFailures: 5, ResetTimeout: 30 * time.Second},
		breaker.WithLogger(log),
		breaker.WithStateHook(m.BreakerHook()),
	)
	log.Infow("publishing run summaries", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return publish.NewKafkaPublisher(cfg.Brokers, cfg.Topic, brk)
}

// loadDefaultWeather returns the configured fallback series and its file name.
func loadDefaultWeather(cfg config.WeatherConfig, log *logger.Logger) ([]models.WeatherSample, string, error) {
	if cfg.DefaultPath == "" {
		return nil, "", nil
	}
	samples, err := weather.LoadEPW(cfg.DefaultPath)
	if err != nil {
		return nil, "", err
	}
	log.Infow("default weather loaded", "path", cfg.DefaultPath, "hours", len(samples))
	return samples, filepath.Base(cfg.DefaultPath), nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.Config, handler *handlers.Handler, log *logger.Logger) {
	opts := server.Options{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	go func() {
		log.Infow("http server listening", "port", cfg.Port)
		if err := srv.Run(cfg.Port, handler.InitRoutes(), opts); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}

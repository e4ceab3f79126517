package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"intent-extractor/internal/cache"
	"intent-extractor/internal/config"
	httphandler "intent-extractor/internal/http"
	"intent-extractor/internal/keyring"
	"intent-extractor/internal/services/geo"
	"intent-extractor/internal/services/intent"
	"intent-extractor/internal/services/llm"
	"intent-extractor/internal/tokenizer"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		port  = flag.String("port", "", "Port to run the server on (overrides PORT)")
		debug = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Optional .env for local development; the environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	tok, err := tokenizer.New(cfg.OpenAI.Engine, cfg.OpenAI.MaxContextTokens)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tokenizer")
	}

	addressTemplate, err := intent.LoadPromptTemplate(cfg.Prompts.AddressFile, tok)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load address prompt template")
	}
	detailedIntentTemplate, err := intent.LoadPromptTemplate(cfg.Prompts.DetailedIntentFile, tok)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load detailed intent prompt template")
	}

	ring, err := keyring.New(cfg.OpenAI.APIKeys)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build credential pool")
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisCache.Close()
	}

	var geocoder geo.Geocoder
	if cfg.Geo.Enabled {
		geocoder = geo.NewClient(cfg.Geo.BaseURL, cfg.Geo.APIKey, redisCache)
	}

	completer := llm.NewOpenAIClient(cfg.OpenAI.CallTimeout, cfg.OpenAI.RetryFor)

	service, err := intent.NewService(completer, geocoder, ring, tok, cfg.OpenAI.Engine, map[intent.Kind]intent.KindConfig{
		intent.KindAddress: {
			Template:         addressTemplate,
			MaxOutputTokens:  cfg.Prompts.AddressMaxTokens,
			Temperature:      intent.AddressTemperature,
			FrequencyPenalty: intent.AddressFrequencyPenalty,
		},
		intent.KindDetailedIntent: {
			Template:         detailedIntentTemplate,
			MaxOutputTokens:  cfg.Prompts.DetailedIntentMaxTokens,
			Temperature:      intent.DetailedIntentTemperature,
			FrequencyPenalty: intent.DetailedIntentFrequencyPenalty,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build intent service")
	}

	log.Info().
		Str("engine", cfg.OpenAI.Engine).
		Int("key_pool", ring.Size()).
		Bool("geo", cfg.Geo.Enabled).
		Msg("service configured")

	router := httphandler.NewRouter(cfg.Server.RequestsPerMinute, cfg.Server.Burst)
	router.RegisterIntentRoutes(httphandler.NewIntentHandler(service), cfg.Auth.Token)
	router.RegisterHealthRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}

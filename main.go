package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cache"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/events"
	"github.com/danielhkuo/ballotbox/logging"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/router"
	"github.com/danielhkuo/ballotbox/scheduler"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		slog.Error("Error configuring logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	electionDef, err := cliparse.LoadElection(cfg.ElectionFile)
	if err != nil {
		slog.Error("Error loading election", "file", cfg.ElectionFile, "error", err)
		os.Exit(1)
	}
	rule, err := election.NewVoterRule(electionDef.VoterIDLength, electionDef.VoterIDPattern)
	if err != nil {
		slog.Error("Invalid voter rule", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Ballot store
	var store election.Store
	if cfg.DatabaseType == db.TypeMemory {
		slog.Warn("Using in-memory store, ballots are lost on restart")
		store = db.NewMemoryStore()
	} else {
		dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
		store = db.NewSQLStore(dbConn, cfg.DatabaseType)
	}

	// Result cache
	var resultCache election.ResultCache = election.NewMemoryCache(election.SystemClock{}, cfg.CacheTTL)
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, "ballotbox")
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		resultCache = redisCache
		slog.Info("Using Redis result cache")
	}

	// Ballot cast events
	var publisher election.BallotPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.VoterHashSalt)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		slog.Info("Publishing ballot cast events", "topic", cfg.KafkaTopic)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	electionMetrics := metrics.NewElectionMetrics(registry, "ballotbox")

	engine, err := election.New(election.Config{
		Period:   electionDef.Period,
		Offices:  electionDef.Offices,
		Rule:     rule,
		CacheTTL: cfg.CacheTTL,
	}, election.Dependencies{
		Store:     store,
		Cache:     resultCache,
		Publisher: publisher,
		Metrics:   electionMetrics,
		Logger:    logger,
	})
	if err != nil {
		slog.Error("Error creating election engine", "error", err)
		os.Exit(1)
	}
	// Runs before the publisher is closed
	defer engine.Close()

	// Identity
	authn, err := newAuthenticator(cfg)
	if err != nil {
		slog.Error("Error configuring authentication", "error", err)
		os.Exit(1)
	}

	if cfg.CacheTTL > 0 {
		warmer, err := scheduler.NewResultWarmer(engine, cfg.WarmInterval, logger)
		if err != nil {
			slog.Error("Error creating result warmer", "error", err)
			os.Exit(1)
		}
		warmer.Start()
		defer warmer.Stop()
	}

	// Create router
	mux := router.NewRouter(engine, authn, registry)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then let in-flight ballots finish
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"phase", engine.Phase(context.Background()),
		"offices", len(electionDef.Offices),
	)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// newAuthenticator verifies ID tokens as bearer credentials. Development
// additionally accepts unsigned Basic credentials with a time override.
func newAuthenticator(cfg cliparse.Config) (*auth.HeaderAuthenticator, error) {
	var bearer auth.IdentityProvider
	if cfg.JWTSecret != "" || cfg.JWTPublicKeyFile != "" || cfg.JWTKeysURL != "" {
		jwtCfg := auth.JWTConfig{
			Secret:        []byte(cfg.JWTSecret),
			Audience:      cfg.JWTAudience,
			Issuer:        cfg.JWTIssuer,
			AllowedDomain: cfg.AllowedEmailDomain,
		}
		if cfg.JWTPublicKeyFile != "" {
			pem, err := os.ReadFile(cfg.JWTPublicKeyFile)
			if err != nil {
				return nil, err
			}
			jwtCfg.PublicKeyPEM = pem
		}
		if cfg.JWTKeysURL != "" {
			jwtCfg.KeySet = auth.NewKeySet(cfg.JWTKeysURL, nil)
		}
		provider, err := auth.NewJWTProvider(jwtCfg)
		if err != nil {
			return nil, err
		}
		bearer = provider
	}

	var basic auth.IdentityProvider
	if cfg.IsDevelopment() {
		slog.Warn("Development mode: accepting unsigned Basic credentials")
		basic = auth.DevProvider{}
	}

	return auth.NewHeaderAuthenticator(bearer, basic), nil
}

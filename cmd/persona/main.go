package main

import (
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/hashicorp/go-hclog"
	"github.com/layer-3/persona"
	"github.com/layer-3/persona/adapters/events"
	"github.com/layer-3/persona/adapters/store"
	"github.com/layer-3/persona/adapters/verifier"
	"github.com/layer-3/persona/ports"
	"github.com/layer-3/persona/service"
	transport "github.com/layer-3/persona/transport/http"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "persona",
		Level: hclog.Info,
	})

	scheme := os.Getenv("PERSONA_SCHEME")
	if scheme == "" {
		scheme = "http"
	}

	cfg := &persona.Config{
		Audience:      os.Getenv("PERSONA_AUDIENCE"),
		Processor:     os.Getenv("PERSONA_PROCESSOR"),
		Endpoint:      os.Getenv("PERSONA_ENDPOINT"),
		SecureCookies: scheme == "https",
	}
	if cfg.Audience == "" {
		host := os.Getenv("PERSONA_HOST")
		if host == "" {
			host = "localhost:9000"
		}
		cfg.Audience = persona.DeriveAudience(scheme, host)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	wmLogger := watermill.NewStdLogger(false, false)

	// Redis backs both the session store and the event stream when
	// configured; otherwise everything stays in-process.
	var sessionStore ports.Store
	var publisher message.Publisher
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("failed to parse Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			logger.Error("failed to create Redis publisher", "error", err)
			os.Exit(1)
		}

		sessionStore = store.NewRedisStore(redisClient)
	} else {
		sessionStore = store.NewMemoryStore()
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	verifierClient := verifier.NewHTTPVerifier(cfg.Endpoint, cfg.VerifyTimeout)
	eventPub := events.NewWatermillPublisher(publisher)

	sessions := service.NewSessionService(sessionStore, verifierClient, eventPub, cfg.Audience, logger)

	router := transport.SetupRouter(cfg, sessions)

	addr := ":9000"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Info("listening", "addr", addr, "audience", cfg.Audience, "endpoint", cfg.Endpoint)
	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

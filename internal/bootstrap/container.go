package bootstrap

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"aivaidya-be/internal/config"
	"aivaidya-be/internal/controller"
	"aivaidya-be/internal/pkg/logger"
	"aivaidya-be/internal/repository/contract"
	"aivaidya-be/internal/repository/implementation"
	"aivaidya-be/internal/repository/memory"
	"aivaidya-be/internal/service"
	"aivaidya-be/pkg/events"
	"aivaidya-be/pkg/llm"
	"aivaidya-be/pkg/llm/factory"
	"aivaidya-be/pkg/llm/gemini"
	"aivaidya-be/pkg/llm/openai"
	"aivaidya-be/pkg/triage"

	pktNats "aivaidya-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	TriageController controller.ITriageController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	eventLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "triage-events.log"))

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. LLM Provider
	llmProvider, policy, err := factory.NewLLMProvider(llmSettings(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (model %s, fallback %s)", llmProvider.Name(), policy.Primary, policy.Fallback)
	if err := llmProvider.CheckConfig(); err != nil {
		// not fatal: requests answer with the configuration error until it is fixed
		log.Printf("[WARN] %v", err)
	}

	diagnoser := triage.NewDiagnoser(llmProvider, policy, cfg.Triage.MaxImages)

	// 4. Infrastructure
	statsRepo := c.statsRepository(cfg)
	eventPublisher := c.eventPublisher(cfg)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.EventTopic,
		statsRepo,
		eventPublisher,
		eventLogger,
	)

	triageService := service.NewTriageService(
		diagnoser,
		publisherService,
		statsRepo,
		cfg.Triage.SelfTestTTL,
		sysLogger,
	)

	// 6. Controllers
	c.TriageController = controller.NewTriageController(triageService, cfg.Triage.MaxImages, cfg.Triage.MaxImageBytes)
	c.HealthController = controller.NewHealthController(llmProvider.Name())

	return c, nil
}

func llmSettings(cfg *config.Config) factory.Settings {
	return factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Gemini: gemini.Config{
			APIKey:          cfg.Keys.GoogleGemini,
			BaseURL:         cfg.Ai.GeminiBaseURL,
			Temperature:     cfg.Ai.Temperature,
			MaxOutputTokens: cfg.Ai.MaxOutputTokens,
			Timeout:         cfg.Ai.Timeout,
		},
		GeminiPolicy: llm.FallbackPolicy{
			Primary:  cfg.Ai.GeminiModel,
			Fallback: cfg.Ai.GeminiFallbackModel,
		},
		OpenAI: openai.Config{
			APIKey:      cfg.Keys.OpenAI,
			BaseURL:     cfg.Ai.OpenAIBaseURL,
			Temperature: cfg.Ai.Temperature,
			MaxTokens:   cfg.Ai.MaxOutputTokens,
		},
		OpenAIPolicy: llm.FallbackPolicy{
			Primary:  cfg.Ai.OpenAIModel,
			Fallback: cfg.Ai.OpenAIFallbackModel,
		},
	}
}

// statsRepository prefers Redis so counters survive restarts and are shared
// between instances; without it counters live in memory.
func (c *Container) statsRepository(cfg *config.Config) contract.StatsRepository {
	if cfg.App.RedisURL == "" {
		log.Printf("[INFO] REDIS_URL not set, triage counters kept in memory")
		return memory.NewStatsRepository()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Triage counters kept in memory", err)
		_ = rdb.Close()
		return memory.NewStatsRepository()
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return implementation.NewStatsRepository(rdb, implementation.DefaultStatsKey)
}

// eventPublisher returns nil when NATS is not configured or not reachable.
func (c *Container) eventPublisher(cfg *config.Config) events.Publisher {
	if cfg.App.NatsURL == "" {
		return nil
	}

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		return nil
	}
	c.closers = append(c.closers, natsPub.Close)
	return natsPub
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

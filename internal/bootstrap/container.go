package bootstrap

import (
	"context"
	"log"
	"net/http"

	"rag-api-explorer-be/internal/config"
	"rag-api-explorer-be/internal/controller"
	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/internal/repository/implementation"
	"rag-api-explorer-be/internal/repository/memory"
	"rag-api-explorer-be/internal/service"
	"rag-api-explorer-be/pkg/ai/pipeline"
	"rag-api-explorer-be/pkg/ai/router"
	"rag-api-explorer-be/pkg/apiexplorer"
	"rag-api-explorer-be/pkg/embedding"
	"rag-api-explorer-be/pkg/events"
	"rag-api-explorer-be/pkg/llm/factory"
	"rag-api-explorer-be/pkg/session"

	pktNats "rag-api-explorer-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	HealthController controller.IHealthController

	// Services (also used directly by the local simulation client)
	ChatService service.IChatService

	// Background workers, started and stopped by main.go
	Sweeper    *session.Sweeper
	EventRelay service.IEventRelayService

	Logger logger.ILogger

	bus     *events.Bus
	natsPub *pktNats.Publisher
	rdb     *redis.Client
	trace   *logger.ZapLogger
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Core Facades
	traceLogger := logger.NewIsolatedLogger(cfg.App.TraceLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	bus := events.NewBus(watermillLogger)

	// 3. AI providers
	embeddingProvider, err := embedding.NewEmbeddingProvider(embedding.Settings{
		Provider:      cfg.Ai.EmbeddingProvider,
		Model:         cfg.Ai.EmbeddingModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenAIAPIKey:  cfg.Ai.OpenAIAPIKey,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenAIAPIKey:  cfg.Ai.OpenAIAPIKey,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	var sink events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	} else {
		sink = natsPub
	}

	// Redis
	rdb := newRedisClient(cfg.App.RedisURL)

	// 5. Repositories
	sessionRepo := implementation.NewAPISessionRepository(db)
	favoriteRepo := implementation.NewAPIFavoriteRepository(db)
	historyRepo := implementation.NewAPICallHistoryRepository(db)
	corpusRepo := implementation.NewCorpusChunkRepository(db)

	// 6. Session context
	sessionManager := session.NewManager(
		implementation.NewSessionStore(sessionRepo),
		memory.NewSessionMirror(),
		cfg.Session.StaleAfter,
		sysLogger,
	)
	sweeper := session.NewSweeper(sessionManager, cfg.Session.SweepInterval, sysLogger)

	// 7. API prober
	var domainStore apiexplorer.DomainStore = apiexplorer.NewMemoryDomainStore()
	if rdb != nil {
		domainStore = apiexplorer.NewRedisDomainStore(rdb)
	}
	explorer := apiexplorer.NewExplorer(
		&http.Client{Timeout: cfg.Explorer.Timeout},
		apiexplorer.Config{
			Timeout:       cfg.Explorer.Timeout,
			HistoryLimit:  cfg.Explorer.HistoryLimit,
			MaxProbePaths: cfg.Explorer.MaxProbePaths,
		},
		apiexplorer.NewInfoCache(cfg.Explorer.CacheSize, cfg.Explorer.CacheTTL, rdb, sysLogger),
		apiexplorer.NewAllowList(cfg.Explorer.RestrictDomains, cfg.Explorer.AllowedDomains, domainStore),
		implementation.NewFavoriteStore(favoriteRepo),
		implementation.NewHistoryStore(historyRepo),
		sysLogger,
	)

	// 8. Pipelines and router
	ragPipeline := pipeline.NewRAGPipeline(
		embeddingProvider,
		implementation.NewCorpusSearcher(corpusRepo),
		llmProvider,
		pipeline.RetrievalConfig{
			Limit:            cfg.Retrieval.Limit,
			ShortQueryWords:  cfg.Retrieval.ShortQueryWords,
			MediumQueryWords: cfg.Retrieval.MediumQueryWords,
			ShortThreshold:   cfg.Retrieval.ShortThreshold,
			MediumThreshold:  cfg.Retrieval.MediumThreshold,
			LongThreshold:    cfg.Retrieval.LongThreshold,
			FloorThreshold:   cfg.Retrieval.FloorThreshold,
			Temperature:      cfg.Retrieval.Temperature,
			MaxTokens:        cfg.Retrieval.MaxTokens,
			Model:            cfg.Retrieval.Model,
		},
		sysLogger,
		traceLogger,
	)
	explorePipeline := pipeline.NewExplorePipeline(explorer, sysLogger)
	conversation := router.NewRouter(sessionManager, explorePipeline, ragPipeline, bus, sysLogger)

	// 9. Services
	chatService := service.NewChatService(conversation, sessionManager, bus, sysLogger)
	eventRelay := service.NewEventRelayService(bus, sink, sysLogger)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("[FATAL] Failed to get sql.DB from gorm: %v", err)
	}
	healthService := service.NewHealthService(sqlDB, corpusRepo, sysLogger)

	// 10. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		HealthController: controller.NewHealthController(healthService),

		ChatService: chatService,
		Sweeper:     sweeper,
		EventRelay:  eventRelay,
		Logger:      sysLogger,

		bus:     bus,
		natsPub: natsPub,
		rdb:     rdb,
		trace:   traceLogger,
	}
}

// newRedisClient returns nil when Redis is unreachable; callers fall back
// to in-process storage.
func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (using in-memory cache)", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close releases the infrastructure clients. Background workers must be
// stopped first.
func (c *Container) Close() {
	if err := c.bus.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.trace.Sync()
	_ = c.Logger.Sync()
}

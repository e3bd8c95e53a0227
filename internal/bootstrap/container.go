package bootstrap

import (
	"context"
	"log"
	"time"

	"civic-grant-be/internal/config"
	"civic-grant-be/internal/controller"
	"civic-grant-be/internal/pkg/logger"
	"civic-grant-be/internal/repository/unitofwork"
	"civic-grant-be/internal/service"
	"civic-grant-be/internal/websocket"
	"civic-grant-be/pkg/agents"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/llm/factory"
	"civic-grant-be/pkg/search"
	"civic-grant-be/pkg/store"
	"civic-grant-be/pkg/workflow"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	bus := events.NewBus(cfg.App.EventTopic, pubSub)

	// 3. Session Store
	var sessionStore store.SessionStore
	if cfg.Session.Backend == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionStore = store.NewRedisStore(rdb, time.Duration(cfg.Session.TTLMinutes)*time.Minute)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionStore = store.NewMemoryStore()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// 4. LLM + Search Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	searchProvider := search.NewGoogleProvider(cfg.Keys.GoogleSearchAPIKey, cfg.Keys.GoogleSearchEngine)

	// 5. Workflow Core
	orchestrator := workflow.NewOrchestrator(
		sessionStore,
		agents.NewProfileCollector(llmProvider),
		agents.NewFinder(llmProvider, searchProvider),
		agents.NewWriter(llmProvider),
		bus,
		sysLogger,
	)

	// 6. WebSocket Hub (streams workflow events per session)
	wsLogger := logger.NewIsolatedLogger("logs/workflow_events.log")
	wsHub := websocket.NewHub(pubSub, cfg.App.EventTopic, wsLogger)
	go wsHub.Run()

	// 7. Services
	chatService := service.NewChatService(uowFactory, orchestrator, sessionStore, sysLogger)

	return &Container{
		ChatController: controller.NewChatController(chatService),
		WebSocketHub:   wsHub,
	}
}

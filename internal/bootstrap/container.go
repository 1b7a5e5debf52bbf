package bootstrap

import (
	"context"
	"log"

	"contract-assistant-be/internal/config"
	"contract-assistant-be/internal/constant"
	"contract-assistant-be/internal/controller"
	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/repository/contract"
	"contract-assistant-be/internal/repository/implementation"
	"contract-assistant-be/internal/repository/memory"
	"contract-assistant-be/internal/repository/redisrepo"
	"contract-assistant-be/internal/service"
	"contract-assistant-be/internal/websocket"
	"contract-assistant-be/pkg/document"
	"contract-assistant-be/pkg/llm/factory"
	"contract-assistant-be/pkg/samgov"
	"contract-assistant-be/pkg/summarizer/anthropic"

	pktNats "contract-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	DocumentController  controller.IDocumentController
	ExportController    controller.IExportController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
		cfg.Ai.LLMTimeout,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisAvailable := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory state", err)
		redisAvailable = false
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Repositories. Redis keeps assistant state and summaries across
	// restarts and instances; without it both live in-process only.
	contractRepo := implementation.NewContractRepository(db)
	var stateRepo contract.StateRepository
	var summaryStore document.SummaryStore
	if redisAvailable {
		stateRepo = redisrepo.NewStateRepository(rdb)
		summaryStore = redisrepo.NewSummaryStore(rdb)
	} else {
		stateRepo = memory.NewStateRepository()
		summaryStore = memory.NewSummaryStore()
	}

	// Document pipeline
	samClient := samgov.NewClient(cfg.SamGov.APIKey, cfg.SamGov.FetchTimeout)
	summarizerClient := anthropic.NewClient(
		cfg.Summarize.AnthropicAPIKey,
		cfg.Summarize.AnthropicBaseURL,
		cfg.Summarize.Model,
		cfg.Summarize.Timeout,
	)
	docProcessor := document.NewProcessor(samClient, summarizerClient, cfg.SamGov.FetchTimeout, cfg.Summarize.Timeout)
	summaryCache := document.NewCache(summaryStore, docProcessor)

	// 3. Services
	stateService := service.NewStateService(stateRepo, sysLogger)
	publisherService := service.NewPublisherService(constant.DocumentJobsTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.DocumentJobsTopic,
		stateService,
		wsHub,
		natsPub,
		sysLogger,
	)

	assistantService := service.NewAssistantService(
		stateService,
		contractRepo,
		summaryCache,
		summaryStore,
		llmProvider,
		publisherService,
		natsPub,
		sysLogger,
	)
	documentService := service.NewDocumentService(contractRepo, samClient, summarizerClient, sysLogger)
	exportService := service.NewExportService(contractRepo, sysLogger)

	// 4. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService, wsHub, sysLogger),
		DocumentController:  controller.NewDocumentController(documentService),
		ExportController:    controller.NewExportController(exportService),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}

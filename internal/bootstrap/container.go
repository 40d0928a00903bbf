package bootstrap

import (
	"context"
	"log"

	"note-agent-be/internal/config"
	"note-agent-be/internal/constant"
	"note-agent-be/internal/controller"
	"note-agent-be/internal/handler"
	"note-agent-be/internal/pkg/logger"
	internalrag "note-agent-be/internal/rag"
	"note-agent-be/internal/repository/memory"
	"note-agent-be/internal/repository/unitofwork"
	"note-agent-be/internal/service"
	"note-agent-be/internal/websocket"
	"note-agent-be/pkg/agent/decide"
	agenttool "note-agent-be/pkg/agent/tool"
	"note-agent-be/pkg/embedding"
	"note-agent-be/pkg/embedding/jina"
	"note-agent-be/pkg/events"
	"note-agent-be/pkg/llm/factory"
	"note-agent-be/pkg/storage"

	pktNats "note-agent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AgentController controller.IAgentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
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

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.JinaAPIKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory registry of running agent queries
	sessionRepo := memory.NewSessionRepository()

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/agent_stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	objectStorage := storage.NewSupabaseStorage(cfg.Storage.URL, cfg.Storage.ServiceKey)

	// 5. Agent Components
	fileStore := service.NewFileStore(uowFactory)
	fileTool := agenttool.NewFileTool(
		fileStore,
		objectStorage,
		llmProvider,
		cfg.Storage.Bucket,
		log.Default(),
	).WithMaxViewChars(cfg.Agent.MaxViewChars)

	decider := decide.NewLLMDecider(llmProvider)
	retriever := internalrag.NewPgVectorRetriever(embeddingProvider, uowFactory, sysLogger.Raw())

	// 6. Services
	publisherService := service.NewPublisherService(constant.TopicEmbedFile, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.TopicEmbedFile,
		uowFactory,
		embeddingProvider,
		objectStorage,
		cfg.Storage.Bucket,
	)

	agentService := service.NewAgentService(
		uowFactory,
		decider,
		retriever,
		llmProvider,
		fileTool,
		publisherService,
		natsPub,
		sessionRepo,
		wsHub,
		cfg.Agent,
	)

	// Audit trail for completed flows. Durable consumer so restarts do not
	// lose completions.
	if natsSub != nil {
		err := natsSub.Subscribe("events."+events.AgentFlowCompletedType, "agent-flow-audit", func(ctx context.Context, ev events.Event) error {
			sysLogger.Info("AgentFlow", "Flow completed", ev.Payload())
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to flow completions: %v", err)
		}
	}

	// 7. Handlers and Controllers
	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	return &Container{
		AgentController: controller.NewAgentController(agentService),
		ConsumerService: consumerService,
		StreamHandler:   streamHandler,
		WebSocketHub:    wsHub,
	}
}

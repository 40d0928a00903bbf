package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"note-agent-be/internal/config"
	"note-agent-be/internal/constant"
	"note-agent-be/internal/dto"
	"note-agent-be/internal/entity"
	"note-agent-be/internal/repository/memory"
	"note-agent-be/internal/repository/specification"
	"note-agent-be/internal/repository/unitofwork"
	"note-agent-be/internal/websocket"
	"note-agent-be/pkg/agent/decide"
	"note-agent-be/pkg/agent/event"
	"note-agent-be/pkg/agent/flow"
	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/agent/tool"
	"note-agent-be/pkg/events"
	"note-agent-be/pkg/llm"
	pktNats "note-agent-be/pkg/nats"
	"note-agent-be/pkg/rag"
	"note-agent-be/pkg/store"

	"github.com/google/uuid"
)

// IAgentService runs agent queries and manages their chat sessions.
type IAgentService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateAgentSessionRequest) (*dto.CreateAgentSessionResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	Query(ctx context.Context, userId uuid.UUID, request *dto.AgentQueryRequest) (*dto.AgentResponse, error)
}

type agentService struct {
	uowFactory  unitofwork.RepositoryFactory
	decider     decide.Decider
	retriever   rag.Retriever
	llmProvider llm.LLMProvider
	fileTool    tool.Tool
	publisher   IPublisherService
	natsPub     *pktNats.Publisher
	sessionRepo *memory.SessionRepository
	hub         *websocket.Hub
	agentCfg    config.AgentConfig
	llmLogger   *log.Logger
}

func NewAgentService(
	uowFactory unitofwork.RepositoryFactory,
	decider decide.Decider,
	retriever rag.Retriever,
	llmProvider llm.LLMProvider,
	fileTool tool.Tool,
	publisher IPublisherService,
	natsPub *pktNats.Publisher,
	sessionRepo *memory.SessionRepository,
	hub *websocket.Hub,
	agentCfg config.AgentConfig,
) IAgentService {
	return &agentService{
		uowFactory:  uowFactory,
		decider:     decider,
		retriever:   retriever,
		llmProvider: llmProvider,
		fileTool:    fileTool,
		publisher:   publisher,
		natsPub:     natsPub,
		sessionRepo: sessionRepo,
		hub:         hub,
		agentCfg:    agentCfg,
		llmLogger:   initAgentLogger(),
	}
}

func initAgentLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_agent.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-AGENT] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// CreateSession creates a new agent chat session in a space.
func (as *agentService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateAgentSessionRequest) (*dto.CreateAgentSessionResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		SpaceId:   request.SpaceId,
		Title:     "Unnamed session",
		CreatedAt: now,
	}

	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          "Hi, how can I help you ?",
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateAgentSessionResponse{Id: chatSession.Id}, nil
}

// GetChatHistory retrieves chat history for a session.
func (as *agentService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			Workflow:  json.RawMessage(msg.Workflow),
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

// Query runs the full agent flow for one user query. Progress events and
// answer chunks stream over the websocket hub while the flow runs; the
// final answer and workflow are returned and persisted when it completes.
func (as *agentService) Query(ctx context.Context, userId uuid.UUID, request *dto.AgentQueryRequest) (*dto.AgentResponse, error) {
	start := time.Now()
	sessionKey := request.ChatSessionId.String()

	// One running query per chat session.
	if _, running := as.sessionRepo.Get(sessionKey); running {
		return nil, fmt.Errorf("a query is already running for this session")
	}
	as.sessionRepo.Save(&store.Session{
		ID:        sessionKey,
		UserID:    userId.String(),
		Query:     request.Query,
		State:     store.StateRunning,
		StartedAt: start,
	})
	defer as.sessionRepo.Delete(sessionKey)

	uow := as.uowFactory.NewUnitOfWork(ctx)
	chatSession, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: request.ChatSessionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if chatSession == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	stream := event.NewStream()
	sess := session.New(request.Query, stream)
	sess.UserId = userId
	sess.SpaceId = request.SpaceId
	sess.ActiveFileId = request.ActiveFileId
	sess.ModelName = request.ModelName
	sess.Stream = request.Stream
	sess.MaxToolRetries = as.agentCfg.MaxToolRetries
	sess.MaxTotalToolCalls = as.agentCfg.MaxTotalToolCalls

	// Observer: forward progress events to the websocket hub and collect
	// them as the persisted workflow.
	var workflow []event.Event
	observerDone := make(chan struct{})
	go func() {
		defer close(observerDone)
		for ev := range stream.Events() {
			workflow = append(workflow, ev)
			as.hub.SendAgentEvent(userId, sessionKey, ev)
		}
	}()

	orchestrator := flow.NewOrchestrator(as.decider, as.retriever, as.llmProvider, as.llmLogger).
		Register(as.fileTool).
		WithDeltaHandler(func(delta string) {
			as.hub.SendAnswerDelta(userId, sessionKey, delta)
		})

	answer, runErr := orchestrator.Run(ctx, sess)

	stream.Close()
	<-observerDone

	if runErr != nil {
		return nil, runErr
	}

	if err := as.persistExchange(ctx, chatSession, request.Query, answer, workflow); err != nil {
		return nil, err
	}

	as.reindexEditedFiles(ctx, workflow)
	as.publishFlowCompleted(ctx, chatSession, request.Query, sess, start)

	return &dto.AgentResponse{
		Success:  true,
		Response: answer,
		Metadata: dto.AgentResponseMetadata{
			Thinking:    sess.ThinkingHistory,
			ToolCalls:   sess.TotalToolCalls,
			QueryTimeMs: time.Since(start).Milliseconds(),
		},
		Workflow: workflow,
	}, nil
}

func (as *agentService) persistExchange(ctx context.Context, chatSession *entity.ChatSession, query, answer string, workflow []event.Event) error {
	workflowJSON, err := json.Marshal(workflow)
	if err != nil {
		return err
	}

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          query,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}
	modelMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          answer,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: chatSession.Id,
		Workflow:      workflowJSON,
		CreatedAt:     now.Add(1 * time.Millisecond),
	}

	uow := as.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &modelMessage); err != nil {
		return err
	}

	if chatSession.Title == "Unnamed session" {
		title := query
		if len(title) > 50 {
			title = title[:50]
		}
		chatSession.Title = title
		updated := now
		chatSession.UpdatedAt = &updated
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return err
		}
	}

	return uow.Commit()
}

// reindexEditedFiles queues an embedding refresh for every note the flow
// successfully edited.
func (as *agentService) reindexEditedFiles(ctx context.Context, workflow []event.Event) {
	seen := make(map[string]bool)
	for _, ev := range workflow {
		// Completion events from aborted edits carry an error and changed
		// nothing in storage, so they queue no refresh.
		if ev.Type != event.TypeFileEditComplete || ev.Error != "" || ev.FileId == "" || seen[ev.FileId] {
			continue
		}
		seen[ev.FileId] = true

		fileId, err := uuid.Parse(ev.FileId)
		if err != nil {
			continue
		}
		if err := as.publisher.PublishEmbedFile(ctx, fileId); err != nil {
			log.Printf("[WARN] Failed to queue embedding refresh for file %s: %v", ev.FileId, err)
		}
	}
}

func (as *agentService) publishFlowCompleted(ctx context.Context, chatSession *entity.ChatSession, query string, sess *session.Session, start time.Time) {
	if as.natsPub == nil {
		return
	}
	err := as.natsPub.Publish(ctx, events.AgentFlowCompleted{
		ChatSessionID: chatSession.Id.String(),
		UserID:        chatSession.UserId.String(),
		Query:         query,
		Success:       true,
		ToolCalls:     sess.TotalToolCalls,
		DurationMs:    time.Since(start).Milliseconds(),
		At:            time.Now(),
	})
	if err != nil {
		log.Printf("[WARN] Failed to publish flow completed event: %v", err)
	}
}

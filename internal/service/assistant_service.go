package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"contract-assistant-be/internal/constant"
	"contract-assistant-be/internal/dto"
	"contract-assistant-be/internal/mapper"
	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/pkg/serverutils"
	"contract-assistant-be/internal/repository/contract"
	"contract-assistant-be/pkg/assistant"
	"contract-assistant-be/pkg/document"
	"contract-assistant-be/pkg/events"
	"contract-assistant-be/pkg/llm"
	pktNats "contract-assistant-be/pkg/nats"
	"contract-assistant-be/pkg/sse"
)

// IAssistantService is the application service behind the assistant
// routes: context registry mutations, state reads, and chat.
type IAssistantService interface {
	GetState(ctx context.Context, clientId string) (*dto.AssistantStateResponse, error)
	AddContext(ctx context.Context, clientId, noticeId string) (*dto.ContextMutationResponse, error)
	RemoveContext(ctx context.Context, clientId, noticeId string) (*dto.ContextMutationResponse, error)
	ClearContext(ctx context.Context, clientId string) (*dto.ContextMutationResponse, error)
	SetPanel(ctx context.Context, clientId string, open bool) error
	SendChat(ctx context.Context, clientId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	StreamChat(ctx context.Context, clientId, message string) (io.ReadCloser, error)
}

type assistantService struct {
	stateService     IStateService
	contractRepo     contract.ContractRepository
	contractMapper   *mapper.ContractMapper
	summaryCache     *document.Cache
	summaryStore     document.SummaryStore
	llmProvider      llm.LLMProvider
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewAssistantService(
	stateService IStateService,
	contractRepo contract.ContractRepository,
	summaryCache *document.Cache,
	summaryStore document.SummaryStore,
	llmProvider llm.LLMProvider,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		stateService:     stateService,
		contractRepo:     contractRepo,
		contractMapper:   mapper.NewContractMapper(),
		summaryCache:     summaryCache,
		summaryStore:     summaryStore,
		llmProvider:      llmProvider,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// --- State ---

func (s *assistantService) GetState(ctx context.Context, clientId string) (*dto.AssistantStateResponse, error) {
	store := s.stateService.StoreFor(ctx, clientId)
	snap := store.Snapshot()
	return &dto.AssistantStateResponse{
		ContextContracts: snap.ContextContracts,
		Messages:         snap.Messages,
		IsPanelOpen:      snap.IsPanelOpen,
		DocumentStatus:   snap.DocumentStatus,
		QuickQuestions:   constant.QuickQuestions,
	}, nil
}

func (s *assistantService) SetPanel(ctx context.Context, clientId string, open bool) error {
	store := s.stateService.StoreFor(ctx, clientId)
	store.SetPanelOpen(open)
	s.stateService.Persist(ctx, clientId, store)
	return nil
}

// --- Context registry ---

func (s *assistantService) AddContext(ctx context.Context, clientId, noticeId string) (*dto.ContextMutationResponse, error) {
	ent, err := s.contractRepo.FindByNoticeId(ctx, noticeId)
	if err != nil {
		return nil, serverutils.NewBackendError("contract lookup failed", err)
	}
	if ent == nil {
		return nil, serverutils.NewNotFoundError("contract not found")
	}

	store := s.stateService.StoreFor(ctx, clientId)
	rec := s.contractMapper.ToRecord(ent)

	added, err := store.AddRecord(rec)
	if err != nil {
		if errors.Is(err, assistant.ErrContextFull) {
			return nil, serverutils.NewCapacityError("context limit reached")
		}
		return nil, serverutils.NewValidationError(err.Error())
	}

	if added && len(rec.ResourceLinks) > 0 {
		// Fire-and-forget: document failures surface through status, not
		// through this call.
		go s.processDocuments(clientId, rec)
	}

	s.publishContextEvent(ctx, clientId, "add", noticeId)
	s.stateService.Persist(ctx, clientId, store)

	return &dto.ContextMutationResponse{Added: added, Contracts: store.Records()}, nil
}

func (s *assistantService) RemoveContext(ctx context.Context, clientId, noticeId string) (*dto.ContextMutationResponse, error) {
	store := s.stateService.StoreFor(ctx, clientId)
	removed := store.RemoveRecord(noticeId)
	if removed {
		s.publishContextEvent(ctx, clientId, "remove", noticeId)
		s.stateService.Persist(ctx, clientId, store)
	}
	return &dto.ContextMutationResponse{Removed: removed, Contracts: store.Records()}, nil
}

func (s *assistantService) ClearContext(ctx context.Context, clientId string) (*dto.ContextMutationResponse, error) {
	store := s.stateService.StoreFor(ctx, clientId)
	store.ClearContext()
	s.publishContextEvent(ctx, clientId, "clear", "")
	s.stateService.Persist(ctx, clientId, store)
	return &dto.ContextMutationResponse{Contracts: store.Records()}, nil
}

// processDocuments runs the fan-out for one record and reports progress
// on the in-process bus. The consumer applies the updates to the store;
// this goroutine never touches it.
func (s *assistantService) processDocuments(clientId string, rec assistant.ContractRecord) {
	ctx := context.Background()

	results := s.summaryCache.ProcessAll(ctx, rec.NoticeID, rec.ResourceLinks, func(settled int, result document.JobResult) {
		s.publishJobMessage(ctx, dto.DocumentJobMessage{
			Kind:     dto.JobMessageKindJobSettled,
			ClientId: clientId,
			NoticeId: rec.NoticeID,
			Settled:  settled,
			Result:   &result,
		})
	})

	agg := document.DeriveAggregate(results)
	s.publishJobMessage(ctx, dto.DocumentJobMessage{
		Kind:     dto.JobMessageKindRecordSettled,
		ClientId: clientId,
		NoticeId: rec.NoticeID,
		Status:   &agg,
	})
}

func (s *assistantService) publishJobMessage(ctx context.Context, msg dto.DocumentJobMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("AssistantService", "Job message marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Error("AssistantService", "Job message publish failed", map[string]interface{}{
			"notice_id": msg.NoticeId,
			"error":     err.Error(),
		})
	}
}

func (s *assistantService) publishContextEvent(ctx context.Context, clientId, action, noticeId string) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewContextChanged(clientId, action, noticeId)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("AssistantService", "Context event publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// --- Chat ---

func (s *assistantService) SendChat(ctx context.Context, clientId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	store := s.stateService.StoreFor(ctx, clientId)
	sent := store.AppendUser(request.Message)
	history := s.buildHistory(ctx, store)

	var reply assistant.Message
	replyText, err := s.llmProvider.Chat(ctx, history)
	if err != nil {
		// The failure stays visible in the conversation.
		s.logger.Error("AssistantService", "Chat failed", map[string]interface{}{
			"client_id": clientId,
			"error":     err.Error(),
		})
		reply = store.AppendAssistant(constant.ChatFailureMessage)
	} else {
		reply = store.AppendAssistant(replyText)
	}

	s.stateService.Persist(ctx, clientId, store)
	return &dto.SendChatResponse{Sent: sent, Reply: reply}, nil
}

// StreamChat starts a streaming reply. The returned reader yields
// normalized `data: {...}` frames for the HTTP response while the same
// bytes update the conversation placeholder.
func (s *assistantService) StreamChat(ctx context.Context, clientId, message string) (io.ReadCloser, error) {
	store := s.stateService.StoreFor(ctx, clientId)
	store.AppendUser(message)
	history := s.buildHistory(ctx, store)
	replyId := store.BeginAssistantReply()

	upstream, err := s.llmProvider.ChatStream(ctx, history)
	if err != nil {
		store.FinalizeReply(replyId, constant.ChatFailureMessage)
		s.stateService.Persist(ctx, clientId, store)
		return nil, serverutils.NewBackendError("chat stream failed", err)
	}

	parser := sse.NewParser(sse.Handlers{
		OnDelta: func(content string) {
			store.ApplyDelta(replyId, content)
		},
		OnError: func(message string) {
			s.logger.Error("AssistantService", "Mid-stream error", map[string]interface{}{
				"client_id": clientId,
				"error":     message,
			})
			store.FinalizeReply(replyId, constant.ChatFailureMessage)
		},
		OnComplete: func(accumulated string) {
			store.FinalizeReply(replyId, "")
		},
	})

	pr, pw := io.Pipe()
	go func() {
		defer upstream.Close()
		buf := make([]byte, 4096)
		clientGone := false
		for {
			n, readErr := upstream.Read(buf)
			if n > 0 {
				parser.Feed(buf[:n])
				if !clientGone {
					if _, writeErr := pw.Write(buf[:n]); writeErr != nil {
						// Client went away; deltas keep flowing into the
						// store until upstream ends.
						clientGone = true
					}
				}
			}
			if readErr != nil {
				break
			}
		}
		// Truncated upstream: keep whatever accumulated.
		if parser.State() != sse.StateDone && parser.State() != sse.StateAborted {
			store.FinalizeReply(replyId, "")
		}
		s.stateService.Persist(context.Background(), clientId, store)
		pw.Close()
	}()

	return pr, nil
}

// buildHistory turns the conversation log into the model request:
// one system message carrying the formatted contract context, then the
// finalized conversation.
func (s *assistantService) buildHistory(ctx context.Context, store *assistant.Store) []llm.Message {
	records := store.Records()
	summaries := s.collectSummaries(ctx, records)

	history := []llm.Message{{
		Role:    assistant.RoleSystem,
		Content: assistant.SystemMessage(constant.AssistantSystemPrompt, records, summaries),
	}}
	for _, msg := range store.Messages() {
		if msg.IsStreaming || msg.Content == "" {
			continue
		}
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	return history
}

// collectSummaries reads completed document summaries from the cache.
// Records still processing simply contribute fewer documents.
func (s *assistantService) collectSummaries(ctx context.Context, records []assistant.ContractRecord) map[string][]assistant.DocumentSummary {
	summaries := make(map[string][]assistant.DocumentSummary)
	for _, rec := range records {
		for _, url := range rec.ResourceLinks {
			summary, found, err := s.summaryStore.Get(ctx, document.CacheKey(rec.NoticeID, url))
			if err != nil {
				s.logger.Warn("AssistantService", "Summary read failed", map[string]interface{}{
					"notice_id": rec.NoticeID,
					"error":     err.Error(),
				})
				continue
			}
			if found {
				summaries[rec.NoticeID] = append(summaries[rec.NoticeID], assistant.DocumentSummary{URL: url, Summary: summary})
			}
		}
	}
	return summaries
}

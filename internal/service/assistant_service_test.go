package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"contract-assistant-be/internal/constant"
	"contract-assistant-be/internal/dto"
	"contract-assistant-be/internal/entity"
	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/pkg/serverutils"
	"contract-assistant-be/internal/repository/contract"
	"contract-assistant-be/pkg/document"
	"contract-assistant-be/pkg/llm"
	"contract-assistant-be/pkg/samgov"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// --- Shared test doubles ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

type stubContractRepo struct {
	rows        []entity.Contract
	lastFilters contract.ContractFilters
	searchErr   error
}

func (r *stubContractRepo) FindByNoticeId(ctx context.Context, noticeId string) (*entity.Contract, error) {
	for i := range r.rows {
		if r.rows[i].NoticeId == noticeId {
			c := r.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (r *stubContractRepo) Exists(ctx context.Context, noticeId string) (bool, error) {
	c, _ := r.FindByNoticeId(ctx, noticeId)
	return c != nil, nil
}

func (r *stubContractRepo) Search(ctx context.Context, filters contract.ContractFilters) ([]entity.Contract, error) {
	r.lastFilters = filters
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.rows, nil
}

type stubStateRepo struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newStubStateRepo() *stubStateRepo {
	return &stubStateRepo{data: make(map[string][]byte)}
}

func (r *stubStateRepo) Get(ctx context.Context, clientId string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.data[clientId]
	return data, ok, nil
}

func (r *stubStateRepo) Save(ctx context.Context, clientId string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[clientId] = data
	r.saves++
	return nil
}

func (r *stubStateRepo) Delete(ctx context.Context, clientId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, clientId)
	return nil
}

func (r *stubStateRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// capturingPublisher records bus payloads and signals each publish.
type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	ch       chan []byte
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{ch: make(chan []byte, 32)}
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	p.payloads = append(p.payloads, payload)
	p.mu.Unlock()
	p.ch <- payload
	return nil
}

type stubLLM struct {
	mu         sync.Mutex
	reply      string
	chatErr    error
	stream     string
	streamErr  error
	gotHistory []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.mu.Lock()
	s.gotHistory = history
	s.mu.Unlock()
	return s.reply, s.chatErr
}

func (s *stubLLM) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (io.ReadCloser, error) {
	s.mu.Lock()
	s.gotHistory = history
	s.mu.Unlock()
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	return io.NopCloser(strings.NewReader(s.stream)), nil
}

func (s *stubLLM) history() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gotHistory
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, url string) (*samgov.Document, error) {
	return &samgov.Document{
		Body:        io.NopCloser(strings.NewReader("%PDF-1.4 test")),
		ContentType: "application/pdf",
		FileName:    "attachment.pdf",
	}, nil
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, contentBase64, contentType string) (string, error) {
	return "a short summary", nil
}

type memSummaryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemSummaryStore() *memSummaryStore {
	return &memSummaryStore{m: make(map[string]string)}
}

func (s *memSummaryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memSummaryStore) Set(ctx context.Context, key, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = summary
	return nil
}

// --- Fixtures ---

func contractRow(noticeId string, links ...string) entity.Contract {
	row := entity.Contract{
		NoticeId: noticeId,
		Title:    "Renovation of Building " + noticeId,
		Type:     "Solicitation",
		Active:   true,
	}
	if len(links) > 0 {
		data, _ := json.Marshal(links)
		row.ResourceLinks = datatypes.JSON(data)
	}
	return row
}

type assistantFixture struct {
	service   IAssistantService
	stateSvc  IStateService
	stateRepo *stubStateRepo
	repo      *stubContractRepo
	publisher *capturingPublisher
	llm       *stubLLM
	summaries *memSummaryStore
}

func newAssistantFixture(rows ...entity.Contract) *assistantFixture {
	stateRepo := newStubStateRepo()
	stateSvc := NewStateService(stateRepo, nopLogger{})
	repo := &stubContractRepo{rows: rows}
	publisher := newCapturingPublisher()
	llmStub := &stubLLM{}
	summaries := newMemSummaryStore()

	processor := document.NewProcessor(stubFetcher{}, stubSummarizer{}, time.Second, time.Second)
	cache := document.NewCache(summaries, processor)

	svc := NewAssistantService(stateSvc, repo, cache, summaries, llmStub, publisher, nil, nopLogger{})
	return &assistantFixture{
		service:   svc,
		stateSvc:  stateSvc,
		stateRepo: stateRepo,
		repo:      repo,
		publisher: publisher,
		llm:       llmStub,
		summaries: summaries,
	}
}

func waitForJobMessage(t *testing.T, f *assistantFixture, kind string) dto.DocumentJobMessage {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case payload := <-f.publisher.ch:
			var msg dto.DocumentJobMessage
			require.NoError(t, json.Unmarshal(payload, &msg))
			if msg.Kind == kind {
				return msg
			}
		case <-deadline:
			t.Fatalf("no %s message published", kind)
		}
	}
}

// --- Tests ---

func TestAssistantServiceAddContext(t *testing.T) {
	ctx := context.Background()

	t.Run("adds contract and kicks off document jobs", func(t *testing.T) {
		f := newAssistantFixture(contractRow("n1", "https://sam.gov/a.pdf", "https://sam.gov/b.pdf"))

		res, err := f.service.AddContext(ctx, "client-1", "n1")
		require.NoError(t, err)
		assert.True(t, res.Added)
		require.Len(t, res.Contracts, 1)
		assert.Equal(t, "n1", res.Contracts[0].NoticeID)

		store := f.stateSvc.StoreFor(ctx, "client-1")
		status, ok := store.DocumentStatus("n1")
		require.True(t, ok)
		assert.Equal(t, 2, status.DocumentCount)

		final := waitForJobMessage(t, f, dto.JobMessageKindRecordSettled)
		require.NotNil(t, final.Status)
		assert.Equal(t, document.StateCompleted, final.Status.Status)
		assert.Equal(t, 2, final.Status.ProcessedCount)
	})

	t.Run("duplicate add is a no-op", func(t *testing.T) {
		f := newAssistantFixture(contractRow("n1"))

		_, err := f.service.AddContext(ctx, "client-1", "n1")
		require.NoError(t, err)
		res, err := f.service.AddContext(ctx, "client-1", "n1")
		require.NoError(t, err)
		assert.False(t, res.Added)
		assert.Len(t, res.Contracts, 1)
	})

	t.Run("unknown contract is a not found error", func(t *testing.T) {
		f := newAssistantFixture()

		_, err := f.service.AddContext(ctx, "client-1", "missing")
		require.Error(t, err)
		appErr, ok := serverutils.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, serverutils.KindNotFound, appErr.Kind)
	})

	t.Run("context capacity is enforced", func(t *testing.T) {
		rows := make([]entity.Contract, 0, 6)
		for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
			rows = append(rows, contractRow(id))
		}
		f := newAssistantFixture(rows...)

		for _, id := range []string{"a", "b", "c", "d", "e"} {
			_, err := f.service.AddContext(ctx, "client-1", id)
			require.NoError(t, err)
		}

		_, err := f.service.AddContext(ctx, "client-1", "f")
		require.Error(t, err)
		appErr, ok := serverutils.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, serverutils.KindCapacity, appErr.Kind)
	})
}

func TestAssistantServiceRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	f := newAssistantFixture(contractRow("n1"), contractRow("n2"))

	_, err := f.service.AddContext(ctx, "client-1", "n1")
	require.NoError(t, err)
	_, err = f.service.AddContext(ctx, "client-1", "n2")
	require.NoError(t, err)

	res, err := f.service.RemoveContext(ctx, "client-1", "n1")
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Len(t, res.Contracts, 1)

	res, err = f.service.RemoveContext(ctx, "client-1", "n1")
	require.NoError(t, err)
	assert.False(t, res.Removed)

	res, err = f.service.ClearContext(ctx, "client-1")
	require.NoError(t, err)
	assert.Empty(t, res.Contracts)
}

func TestAssistantServiceGetState(t *testing.T) {
	ctx := context.Background()
	f := newAssistantFixture()

	state, err := f.service.GetState(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, constant.QuickQuestions, state.QuickQuestions)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, constant.AssistantGreeting, state.Messages[0].Content)
	assert.False(t, state.IsPanelOpen)

	require.NoError(t, f.service.SetPanel(ctx, "client-1", true))
	state, err = f.service.GetState(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, state.IsPanelOpen)
}

func TestAssistantServiceSendChat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns model reply and persists state", func(t *testing.T) {
		f := newAssistantFixture(contractRow("n1"))
		f.llm.reply = "Sure, here is the comparison."
		_, err := f.service.AddContext(ctx, "client-1", "n1")
		require.NoError(t, err)

		res, err := f.service.SendChat(ctx, "client-1", &dto.SendChatRequest{Message: "Compare these contracts"})
		require.NoError(t, err)
		assert.Equal(t, "Compare these contracts", res.Sent.Content)
		assert.Equal(t, "Sure, here is the comparison.", res.Reply.Content)

		history := f.llm.history()
		require.NotEmpty(t, history)
		assert.Equal(t, "system", history[0].Role)
		assert.Contains(t, history[0].Content, "Renovation of Building n1")
		assert.Equal(t, "Compare these contracts", history[len(history)-1].Content)
		assert.Greater(t, f.stateRepo.saveCount(), 0)
	})

	t.Run("model failure becomes a visible apology", func(t *testing.T) {
		f := newAssistantFixture()
		f.llm.chatErr = errors.New("upstream blew up")

		res, err := f.service.SendChat(ctx, "client-1", &dto.SendChatRequest{Message: "hi"})
		require.NoError(t, err)
		assert.Equal(t, constant.ChatFailureMessage, res.Reply.Content)
	})
}

func TestAssistantServiceStreamChat(t *testing.T) {
	ctx := context.Background()

	t.Run("passes frames through and finalizes the reply", func(t *testing.T) {
		f := newAssistantFixture()
		f.llm.stream = "data: {\"content\":\"Hel\"}\n\n" +
			"data: {\"content\":\"lo\"}\n\n" +
			"data: [DONE]\n\n"

		stream, err := f.service.StreamChat(ctx, "client-1", "say hello")
		require.NoError(t, err)
		raw, err := io.ReadAll(stream)
		require.NoError(t, err)
		require.NoError(t, stream.Close())
		assert.Equal(t, f.llm.stream, string(raw))

		store := f.stateSvc.StoreFor(ctx, "client-1")
		messages := store.Messages()
		last := messages[len(messages)-1]
		assert.Equal(t, "Hello", last.Content)
		assert.False(t, last.IsStreaming)
	})

	t.Run("mid-stream error finalizes with the failure message", func(t *testing.T) {
		f := newAssistantFixture()
		f.llm.stream = "data: {\"content\":\"par\"}\n\n" +
			"data: {\"error\":\"model overloaded\"}\n\n"

		stream, err := f.service.StreamChat(ctx, "client-1", "hi")
		require.NoError(t, err)
		_, err = io.ReadAll(stream)
		require.NoError(t, err)

		store := f.stateSvc.StoreFor(ctx, "client-1")
		messages := store.Messages()
		last := messages[len(messages)-1]
		assert.Equal(t, constant.ChatFailureMessage, last.Content)
		assert.False(t, last.IsStreaming)
	})

	t.Run("connect failure finalizes and returns an error", func(t *testing.T) {
		f := newAssistantFixture()
		f.llm.streamErr = errors.New("dial tcp: refused")

		_, err := f.service.StreamChat(ctx, "client-1", "hi")
		require.Error(t, err)
		appErr, ok := serverutils.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, serverutils.KindBackend, appErr.Kind)

		store := f.stateSvc.StoreFor(ctx, "client-1")
		messages := store.Messages()
		last := messages[len(messages)-1]
		assert.Equal(t, constant.ChatFailureMessage, last.Content)
	})

	t.Run("truncated upstream keeps the partial reply", func(t *testing.T) {
		f := newAssistantFixture()
		f.llm.stream = "data: {\"content\":\"partial answ\"}\n\n"

		stream, err := f.service.StreamChat(ctx, "client-1", "hi")
		require.NoError(t, err)
		_, err = io.ReadAll(stream)
		require.NoError(t, err)

		store := f.stateSvc.StoreFor(ctx, "client-1")
		messages := store.Messages()
		last := messages[len(messages)-1]
		assert.Equal(t, "partial answ", last.Content)
		assert.False(t, last.IsStreaming)
	})
}

func TestAssistantServiceChatContextIncludesSummaries(t *testing.T) {
	ctx := context.Background()
	f := newAssistantFixture(contractRow("n1", "https://sam.gov/a.pdf"))
	f.llm.reply = "ok"

	_, err := f.service.AddContext(ctx, "client-1", "n1")
	require.NoError(t, err)
	waitForJobMessage(t, f, dto.JobMessageKindRecordSettled)

	_, err = f.service.SendChat(ctx, "client-1", &dto.SendChatRequest{Message: "what do the documents say?"})
	require.NoError(t, err)

	history := f.llm.history()
	require.NotEmpty(t, history)
	assert.Contains(t, history[0].Content, "a short summary")
}

package service

import (
	"context"
	"sync"

	"contract-assistant-be/internal/constant"
	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/repository/contract"
	"contract-assistant-be/pkg/assistant"
)

// IStateService hands out the live assistant store for a client,
// hydrating from the state repository at first touch, and persists
// snapshots after mutations.
type IStateService interface {
	StoreFor(ctx context.Context, clientId string) *assistant.Store
	Persist(ctx context.Context, clientId string, store *assistant.Store)
	Evict(clientId string)
}

type stateService struct {
	stateRepo contract.StateRepository
	logger    logger.ILogger

	mu     sync.Mutex
	stores map[string]*assistant.Store
}

func NewStateService(stateRepo contract.StateRepository, log logger.ILogger) IStateService {
	return &stateService{
		stateRepo: stateRepo,
		logger:    log,
		stores:    make(map[string]*assistant.Store),
	}
}

func (s *stateService) StoreFor(ctx context.Context, clientId string) *assistant.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[clientId]; ok {
		return store
	}

	store := assistant.NewStore(constant.AssistantGreeting)
	data, found, err := s.stateRepo.Get(ctx, clientId)
	if err != nil {
		s.logger.Warn("StateService", "State load failed, starting fresh", map[string]interface{}{
			"client_id": clientId,
			"error":     err.Error(),
		})
	} else if found {
		snap, err := assistant.DecodeSnapshot(data)
		if err != nil {
			s.logger.Warn("StateService", "Corrupt snapshot discarded", map[string]interface{}{
				"client_id": clientId,
				"error":     err.Error(),
			})
		} else {
			store.Restore(snap)
		}
	}

	s.stores[clientId] = store
	return store
}

func (s *stateService) Persist(ctx context.Context, clientId string, store *assistant.Store) {
	data, err := store.Snapshot().Encode()
	if err != nil {
		s.logger.Error("StateService", "Snapshot encode failed", map[string]interface{}{
			"client_id": clientId,
			"error":     err.Error(),
		})
		return
	}
	if err := s.stateRepo.Save(ctx, clientId, data); err != nil {
		// Serving from the live store still works; only durability suffers.
		s.logger.Warn("StateService", "Snapshot save failed", map[string]interface{}{
			"client_id": clientId,
			"error":     err.Error(),
		})
	}
}

func (s *stateService) Evict(clientId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, clientId)
}

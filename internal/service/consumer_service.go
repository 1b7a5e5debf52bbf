// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"contract-assistant-be/internal/dto"
	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/websocket"
	"contract-assistant-be/pkg/document"
	"contract-assistant-be/pkg/events"
	pktNats "contract-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService applies document job results to the owning store.
// Job goroutines publish; only this consumer mutates status, so every
// transition flows through one place.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	stateService   IStateService
	wsHub          *websocket.Hub
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	stateService IStateService,
	wsHub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		stateService:   stateService,
		wsHub:          wsHub,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.DocumentJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal job message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	store := cs.stateService.StoreFor(ctx, payload.ClientId)

	switch payload.Kind {
	case dto.JobMessageKindJobSettled:
		current, ok := store.DocumentStatus(payload.NoticeId)
		if !ok {
			// Record left the context while jobs were in flight.
			msg.Ack()
			return
		}
		current.ProcessedCount = payload.Settled
		if store.SetDocumentStatus(payload.NoticeId, current) {
			cs.pushStatus(payload.ClientId, payload.NoticeId, current)
		}

	case dto.JobMessageKindRecordSettled:
		if payload.Status == nil {
			log.Printf("[ERROR] record_settled without status for notice %s", payload.NoticeId)
			msg.Ack()
			return
		}
		if store.SetDocumentStatus(payload.NoticeId, *payload.Status) {
			cs.pushStatus(payload.ClientId, payload.NoticeId, *payload.Status)
			cs.publishStatusEvent(ctx, payload.ClientId, payload.NoticeId, *payload.Status)
		}
		cs.stateService.Persist(ctx, payload.ClientId, store)

	default:
		log.Printf("[WARN] Unknown job message kind %q", payload.Kind)
	}

	msg.Ack()
}

func (cs *consumerService) pushStatus(clientId, noticeId string, status document.Status) {
	if cs.wsHub == nil {
		return
	}
	cs.wsHub.SendStatus(clientId, websocket.StatusUpdate{
		NoticeId: noticeId,
		Status:   status,
	})
}

func (cs *consumerService) publishStatusEvent(ctx context.Context, clientId, noticeId string, status document.Status) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.NewDocumentStatusChanged(clientId, noticeId, string(status.Status), status.ProcessedCount, status.DocumentCount)
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ConsumerService", "Status event publish failed", map[string]interface{}{
			"notice_id": noticeId,
			"error":     err.Error(),
		})
	}
}

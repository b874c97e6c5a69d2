package service

import (
	"context"
	"encoding/json"
	"time"

	"aivaidya-be/internal/dto"
	"aivaidya-be/internal/pkg/logger"
	"aivaidya-be/internal/repository/contract"
	"aivaidya-be/pkg/events"
	"aivaidya-be/pkg/triage"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "TriageConsumer"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	statsRepo      contract.StatsRepository
	eventPublisher events.Publisher // optional
	logger         logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	statsRepo contract.StatsRepository,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		statsRepo:      statsRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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

// processMessage always acks: counters and fan-out are best effort and a nack on
// the in-process bus would redeliver immediately.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.TriageEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal triage event", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := cs.statsRepo.Increment(ctx, triageCounters(payload)...); err != nil {
		cs.logger.Error(consumerModule, "Failed to update triage counters", map[string]interface{}{
			"error":      err.Error(),
			"request_id": payload.RequestId.String(),
		})
	}

	if cs.eventPublisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cs.eventPublisher.Publish(pubCtx, toEvent(payload)); err != nil {
		cs.logger.Warn(consumerModule, "Failed to forward triage event", map[string]interface{}{
			"error":      err.Error(),
			"request_id": payload.RequestId.String(),
		})
	}
}

// triageCounters names the counters one event bumps. Free text such as the
// speciality is left out to keep the set bounded.
func triageCounters(m dto.TriageEventMessage) []string {
	counters := []string{"total", "outcome:" + m.Outcome}
	if m.Provider != "" {
		counters = append(counters, "provider:"+m.Provider)
	}
	if m.Model != "" {
		counters = append(counters, "model:"+m.Model)
	}
	if u := triage.Urgency(m.Urgency); u.Valid() {
		counters = append(counters, "urgency:"+m.Urgency)
	}
	if m.ErrorKind != "" {
		counters = append(counters, "error:"+m.ErrorKind)
	}
	if m.Images > 0 {
		counters = append(counters, "with_images")
	}
	return counters
}

func toEvent(m dto.TriageEventMessage) events.BaseEvent {
	eventType := events.TypeTriageCompleted
	if m.Outcome == dto.OutcomeError {
		eventType = events.TypeTriageFailed
	}

	data := map[string]interface{}{
		"request_id":  m.RequestId.String(),
		"outcome":     m.Outcome,
		"provider":    m.Provider,
		"model":       m.Model,
		"images":      m.Images,
		"duration_ms": m.DurationMs,
	}
	if m.Urgency != "" {
		data["urgency"] = m.Urgency
	}
	if m.Speciality != "" {
		data["speciality"] = m.Speciality
	}
	if m.ErrorKind != "" {
		data["error_kind"] = m.ErrorKind
	}

	return events.BaseEvent{Type: eventType, Data: data, OccurredAt: m.OccurredAt}
}

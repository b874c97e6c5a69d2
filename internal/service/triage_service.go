package service

import (
	"context"
	"encoding/json"
	"time"

	"aivaidya-be/internal/dto"
	"aivaidya-be/internal/pkg/logger"
	"aivaidya-be/internal/repository/contract"
	"aivaidya-be/pkg/llm"
	"aivaidya-be/pkg/triage"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	triageModule = "TriageService"
	selfTestKey  = "self-test"
)

var tracer = otel.Tracer("aivaidya-be/triage")

type ITriageService interface {
	Diagnose(ctx context.Context, req triage.Request) (*triage.Diagnosis, error)
	SelfTest(ctx context.Context) (*dto.SelfTestResponse, error)
	Stats(ctx context.Context) (*dto.TriageStatsResponse, error)
	ProviderName() string
}

type triageService struct {
	diagnoser        *triage.Diagnoser
	publisherService IPublisherService // optional
	statsRepo        contract.StatsRepository
	selfTestCache    *cache.Cache // nil disables caching
	logger           logger.ILogger
}

func NewTriageService(
	diagnoser *triage.Diagnoser,
	publisherService IPublisherService,
	statsRepo contract.StatsRepository,
	selfTestTTL time.Duration,
	logger logger.ILogger,
) ITriageService {
	var selfTestCache *cache.Cache
	if selfTestTTL > 0 {
		selfTestCache = cache.New(selfTestTTL, 2*selfTestTTL)
	}
	return &triageService{
		diagnoser:        diagnoser,
		publisherService: publisherService,
		statsRepo:        statsRepo,
		selfTestCache:    selfTestCache,
		logger:           logger,
	}
}

func (s *triageService) ProviderName() string {
	return s.diagnoser.ProviderName()
}

func (s *triageService) Diagnose(ctx context.Context, req triage.Request) (*triage.Diagnosis, error) {
	requestId := uuid.New()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "triage.Diagnose")
	defer span.End()
	span.SetAttributes(
		attribute.String("triage.request_id", requestId.String()),
		attribute.Int("triage.images_received", len(req.Images)),
	)

	diag, err := s.diagnoser.Diagnose(ctx, req)
	elapsed := time.Since(start)

	event := dto.TriageEventMessage{
		RequestId:  requestId,
		Provider:   s.diagnoser.ProviderName(),
		DurationMs: elapsed.Milliseconds(),
		OccurredAt: time.Now(),
	}

	if err != nil {
		llmErr := llm.AsError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(llmErr.Kind))

		event.Outcome = dto.OutcomeError
		event.ErrorKind = string(llmErr.Kind)

		details := map[string]interface{}{
			"request_id":   requestId.String(),
			"kind":         string(llmErr.Kind),
			"status":       llmErr.Status,
			"error":        llmErr.Error(),
			"symptoms_len": len(req.Symptoms),
			"duration_ms":  elapsed.Milliseconds(),
		}
		if llmErr.Kind == llm.KindValidation {
			s.logger.Warn(triageModule, "Diagnose rejected", details)
		} else {
			s.logger.Error(triageModule, "Diagnose failed", details)
		}

		// rejected input never reached the model and is not counted
		if llmErr.Kind != llm.KindValidation {
			s.publish(ctx, event)
		}
		return nil, llmErr
	}

	event.Model = diag.Model
	event.Images = diag.Images
	if diag.Result.IsRaw() {
		event.Outcome = dto.OutcomeRaw
	} else {
		event.Outcome = dto.OutcomeStructured
		if v, ok := diag.Result.Verdict(); ok {
			event.Urgency = string(v.Urgency)
			event.Speciality = v.RecommendedSpeciality
		}
	}

	span.SetAttributes(
		attribute.String("triage.model", diag.Model),
		attribute.Int("triage.images_sent", diag.Images),
		attribute.String("triage.outcome", event.Outcome),
	)

	s.logger.Info(triageModule, "Diagnose completed", map[string]interface{}{
		"request_id":   requestId.String(),
		"model":        diag.Model,
		"images":       diag.Images,
		"outcome":      event.Outcome,
		"urgency":      event.Urgency,
		"symptoms_len": len(req.Symptoms),
		"duration_ms":  elapsed.Milliseconds(),
	})

	s.publish(ctx, event)
	return diag, nil
}

func (s *triageService) publish(ctx context.Context, event dto.TriageEventMessage) {
	if s.publisherService == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(triageModule, "Failed to marshal triage event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn(triageModule, "Failed to publish triage event", map[string]interface{}{
			"error":      err.Error(),
			"request_id": event.RequestId.String(),
		})
	}
}

// SelfTest reuses a recent success so health probes do not hit the model every time.
// Failures are never cached.
func (s *triageService) SelfTest(ctx context.Context) (*dto.SelfTestResponse, error) {
	if s.selfTestCache != nil {
		if cached, found := s.selfTestCache.Get(selfTestKey); found {
			return cached.(*dto.SelfTestResponse), nil
		}
	}

	ctx, span := tracer.Start(ctx, "triage.SelfTest")
	defer span.End()

	echo, model, err := s.diagnoser.SelfTest(ctx)
	if err != nil {
		llmErr := llm.AsError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(llmErr.Kind))
		s.logger.Error(triageModule, "Self-test failed", map[string]interface{}{
			"kind":   string(llmErr.Kind),
			"status": llmErr.Status,
			"error":  llmErr.Error(),
			"model":  model,
		})
		return nil, llmErr
	}

	res := &dto.SelfTestResponse{Success: true, Echo: echo, Model: model}
	if s.selfTestCache != nil {
		s.selfTestCache.SetDefault(selfTestKey, res)
	}
	s.logger.Info(triageModule, "Self-test passed", map[string]interface{}{"model": model})
	return res, nil
}

func (s *triageService) Stats(ctx context.Context) (*dto.TriageStatsResponse, error) {
	counters, err := s.statsRepo.Snapshot(ctx)
	if err != nil {
		s.logger.Error(triageModule, "Failed to read triage counters", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	return &dto.TriageStatsResponse{
		Total:    counters["total"],
		Counters: counters,
	}, nil
}

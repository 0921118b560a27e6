package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/smartcare/internal/classifier"
	"github.com/Freeeeeet/smartcare/internal/metrics"
	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Причины перехода на эвристику (метка метрики)
const (
	fallbackNotConfigured     = "not_configured"
	fallbackTimeout           = "timeout"
	fallbackMissingCredential = "missing_credential"
	fallbackUnknownLabel      = "unknown_label"
	fallbackInvalidScore      = "invalid_score"
	fallbackError             = "error"
)

// ZeroShotClassifier основной классификатор
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (*classifier.Result, error)
}

// TriageCache кэш результатов основного классификатора
type TriageCache interface {
	Get(ctx context.Context, symptoms string) (*model.TriageResult, error)
	Set(ctx context.Context, symptoms string, result *model.TriageResult) error
}

type TriageService struct {
	primary ZeroShotClassifier
	cache   TriageCache
	audits  repository.TriageAuditStore
	metrics *metrics.TriageMetrics
	timeout time.Duration
	logger  *zap.Logger
}

// NewTriageService создаёт сервис; primary, cache и audits могут быть nil
func NewTriageService(
	primary ZeroShotClassifier,
	cache TriageCache,
	audits repository.TriageAuditStore,
	m *metrics.TriageMetrics,
	timeout time.Duration,
	logger *zap.Logger,
) *TriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TriageService{
		primary: primary,
		cache:   cache,
		audits:  audits,
		metrics: m,
		timeout: timeout,
		logger:  logger,
	}
}

// Classify определяет отделение по описанию симптомов.
// Ошибку возвращает только для пустого описания: любой сбой основного
// классификатора заменяется результатом эвристики по ключевым словам.
func (s *TriageService) Classify(ctx context.Context, symptoms string) (*model.TriageResult, error) {
	ctx, span := tracer.Start(ctx, "TriageService.Classify")
	defer span.End()

	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, ErrEmptySymptoms
	}

	result := s.classifyPrimary(ctx, symptoms)
	if result == nil {
		result = &model.TriageResult{
			Department: classifier.KeywordFallback(symptoms),
			Confidence: model.FallbackConfidence,
			Source:     model.TriageSourceFallback,
		}
	}

	span.SetAttributes(
		attribute.String("triage.department", string(result.Department)),
		attribute.String("triage.source", string(result.Source)),
	)
	s.metrics.ObserveClassification(string(result.Source), string(result.Department))
	s.audit(ctx, symptoms, result)

	return result, nil
}

// classifyPrimary возвращает nil, если нужно переходить на эвристику
func (s *TriageService) classifyPrimary(ctx context.Context, symptoms string) *model.TriageResult {
	if s.primary == nil {
		s.metrics.ObservePrimaryFailure(fallbackNotConfigured)
		return nil
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, symptoms)
		if err != nil {
			s.logger.Warn("Triage cache read failed", zap.Error(err))
		} else if cached != nil && model.IsKnownDepartment(cached.Department) {
			s.metrics.ObserveCacheHit()
			return cached
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	labels := make([]string, len(model.CandidateDepartments))
	for i, d := range model.CandidateDepartments {
		labels[i] = string(d)
	}

	out, err := s.primary.Classify(callCtx, symptoms, labels)
	if err != nil {
		reason := fallbackError
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
			reason = fallbackTimeout
		case errors.Is(err, classifier.ErrMissingCredential):
			reason = fallbackMissingCredential
		}
		s.metrics.ObservePrimaryFailure(reason)
		s.logger.Warn("Primary classifier failed, using keyword fallback",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return nil
	}

	label, score := out.Top()
	department := model.Department(label)
	if !model.IsKnownDepartment(department) {
		s.metrics.ObservePrimaryFailure(fallbackUnknownLabel)
		s.logger.Warn("Primary classifier returned unknown label", zap.String("label", label))
		return nil
	}
	if score < 0 || score > 1 {
		s.metrics.ObservePrimaryFailure(fallbackInvalidScore)
		s.logger.Warn("Primary classifier returned invalid score", zap.Float64("score", score))
		return nil
	}

	result := &model.TriageResult{
		Department: department,
		Confidence: score,
		Source:     model.TriageSourcePrimary,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, symptoms, result); err != nil {
			s.logger.Warn("Triage cache write failed", zap.Error(err))
		}
	}

	return result
}

func (s *TriageService) audit(ctx context.Context, symptoms string, result *model.TriageResult) {
	if s.audits == nil {
		return
	}
	err := s.audits.Create(ctx, &model.TriageAudit{
		Symptoms:   symptoms,
		Department: result.Department,
		Confidence: result.Confidence,
		Source:     result.Source,
	})
	if err != nil {
		s.logger.Warn("Failed to save triage audit", zap.Error(err))
	}
}

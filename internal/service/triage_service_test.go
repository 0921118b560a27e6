package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/smartcare/internal/classifier"
	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClassifier struct {
	result *classifier.Result
	err    error
	delay  time.Duration
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, text string, labels []string) (*classifier.Result, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type mapCache struct {
	mu     sync.Mutex
	values map[string]*model.TriageResult
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string]*model.TriageResult)}
}

func (c *mapCache) Get(_ context.Context, symptoms string) (*model.TriageResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[symptoms], nil
}

func (c *mapCache) Set(_ context.Context, symptoms string, r *model.TriageResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[symptoms] = r
	return nil
}

func ranked(label string, score float64) *classifier.Result {
	return &classifier.Result{Labels: []string{label, "General Medicine"}, Scores: []float64{score, 1 - score}}
}

func TestTriage_EmptySymptoms(t *testing.T) {
	svc := NewTriageService(nil, nil, nil, nil, time.Second, zap.NewNop())

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := svc.Classify(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptySymptoms)
	}
}

func TestTriage_FallbackKeywords(t *testing.T) {
	svc := NewTriageService(nil, nil, nil, nil, time.Second, zap.NewNop())

	cases := map[string]model.Department{
		"severe chest pain":           model.DepartmentCardiology,
		"Joint stiffness in the knee": model.DepartmentOrthopedics,
		"I feel dizzy":                model.DepartmentNeurology,
		"heart racing and bone ache":  model.DepartmentCardiology,
		"just tired":                  model.DepartmentGeneralMedicine,
	}
	for symptoms, want := range cases {
		t.Run(symptoms, func(t *testing.T) {
			for i := 0; i < 2; i++ {
				got, err := svc.Classify(context.Background(), symptoms)
				require.NoError(t, err)
				assert.Equal(t, want, got.Department)
				assert.Equal(t, model.FallbackConfidence, got.Confidence)
				assert.Equal(t, model.TriageSourceFallback, got.Source)
			}
		})
	}
}

func TestTriage_Primary(t *testing.T) {
	primary := &stubClassifier{result: ranked("Neurology", 0.91)}
	audits := memory.NewTriageAudits()
	svc := NewTriageService(primary, nil, audits, nil, time.Second, zap.NewNop())

	got, err := svc.Classify(context.Background(), "headache")
	require.NoError(t, err)
	assert.Equal(t, model.DepartmentNeurology, got.Department)
	assert.InDelta(t, 0.91, got.Confidence, 1e-9)
	assert.Equal(t, model.TriageSourcePrimary, got.Source)

	saved := audits.All()
	require.Len(t, saved, 1)
	assert.Equal(t, "headache", saved[0].Symptoms)
	assert.Equal(t, model.TriageSourcePrimary, saved[0].Source)
}

func TestTriage_PrimaryFailuresFallBack(t *testing.T) {
	cases := map[string]*stubClassifier{
		"error":         {err: errors.New("503 Service Unavailable")},
		"no credential": {err: classifier.ErrMissingCredential},
		"unknown label": {result: ranked("Dermatology", 0.8)},
		"bad score":     {result: ranked("Cardiology", 1.7)},
		"timeout":       {result: ranked("Neurology", 0.9), delay: time.Second},
	}
	for name, primary := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewTriageService(primary, nil, nil, nil, 20*time.Millisecond, zap.NewNop())

			got, err := svc.Classify(context.Background(), "my chest hurts")
			require.NoError(t, err)
			assert.Equal(t, model.DepartmentCardiology, got.Department)
			assert.Equal(t, model.FallbackConfidence, got.Confidence)
			assert.Equal(t, model.TriageSourceFallback, got.Source)
		})
	}
}

func TestTriage_CachesPrimaryOnly(t *testing.T) {
	primary := &stubClassifier{result: ranked("Orthopedics", 0.7)}
	cache := newMapCache()
	svc := NewTriageService(primary, cache, nil, nil, time.Second, zap.NewNop())

	for i := 0; i < 3; i++ {
		got, err := svc.Classify(context.Background(), "knee pain")
		require.NoError(t, err)
		assert.Equal(t, model.DepartmentOrthopedics, got.Department)
	}
	assert.Equal(t, 1, primary.calls)

	failing := &stubClassifier{err: errors.New("boom")}
	svc = NewTriageService(failing, cache, nil, nil, time.Second, zap.NewNop())
	_, err := svc.Classify(context.Background(), "dizzy spells")
	require.NoError(t, err)
	_, err = svc.Classify(context.Background(), "dizzy spells")
	require.NoError(t, err)
	assert.Equal(t, 2, failing.calls, "fallback results are not cached")
}

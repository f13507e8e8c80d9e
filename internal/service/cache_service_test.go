package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type mockCacheStore struct {
	data     map[string][]byte
	failure  error
	patterns []string
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{data: make(map[string][]byte)}
}

func (m *mockCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	if m.failure != nil {
		return m.failure
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.failure != nil {
		return m.failure
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockCacheStore) Delete(ctx context.Context, keys ...string) error {
	if m.failure != nil {
		return m.failure
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if m.failure != nil {
		return m.failure
	}
	m.patterns = append(m.patterns, pattern)
	return nil
}

func TestCacheExamOptionsRoundtrip(t *testing.T) {
	store := newMockCacheStore()
	svc := NewCacheService(store, time.Minute, true, zap.NewNop())

	_, ok := svc.ExamOptions(context.Background(), 3)
	require.False(t, ok)

	svc.StoreExamOptions(context.Background(), 3, []models.ExamOption{{ExamID: 7, Name: "End term", Term: 2, Year: 2025}})
	options, ok := svc.ExamOptions(context.Background(), 3)
	require.True(t, ok)
	require.Equal(t, int64(7), options[0].ExamID)
	require.Contains(t, store.data, "assessment:pupil:3:exam-options")
}

func TestCacheInvalidateAssessmentUsesPupilPattern(t *testing.T) {
	store := newMockCacheStore()
	svc := NewCacheService(store, time.Minute, true, zap.NewNop())

	require.NoError(t, svc.InvalidateAssessment(context.Background(), 3))
	require.Equal(t, []string{"assessment:pupil:3:*"}, store.patterns)
}

func TestCacheInvalidateFailureIsDrift(t *testing.T) {
	store := newMockCacheStore()
	store.failure = context.DeadlineExceeded
	svc := NewCacheService(store, time.Minute, true, zap.NewNop())

	err := svc.InvalidateAssessment(context.Background(), 3)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConsistencyDrift.Code, appErrors.FromError(err).Code)

	err = svc.InvalidateTimetable(context.Background(), 1, 2)
	require.Equal(t, appErrors.ErrConsistencyDrift.Code, appErrors.FromError(err).Code)
}

func TestCacheDisabledIsNoOp(t *testing.T) {
	svc := NewCacheService(nil, 0, false, zap.NewNop())

	_, ok := svc.ExamOptions(context.Background(), 3)
	require.False(t, ok)
	svc.StoreExamOptions(context.Background(), 3, nil)
	require.NoError(t, svc.InvalidateAssessment(context.Background(), 3))
	require.NoError(t, svc.InvalidateTimetable(context.Background(), 1, 2))
}

func TestCacheTimetableKeyPerPair(t *testing.T) {
	store := newMockCacheStore()
	svc := NewCacheService(store, time.Minute, true, zap.NewNop())

	svc.StoreTimetable(context.Background(), 1, 2, []models.TimetableSlot{{ID: 1, DayOfWeek: "Monday"}})
	require.Contains(t, store.data, "timetable:1:2")

	slots, ok := svc.Timetable(context.Background(), 1, 2)
	require.True(t, ok)
	require.Equal(t, "Monday", slots[0].DayOfWeek)

	_, ok = svc.Timetable(context.Background(), 1, 3)
	require.False(t, ok)
}

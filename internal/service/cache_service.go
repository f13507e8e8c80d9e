package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService fronts redis for the read-side projections. A disabled or
// absent cache degrades every method to a no-op miss; reads never fail a
// request because redis did.
type CacheService struct {
	store   cacheStore
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewCacheService creates a new cache service.
func NewCacheService(store cacheStore, ttl time.Duration, enabled bool, logger *zap.Logger) *CacheService {
	return &CacheService{store: store, ttl: ttl, enabled: enabled && store != nil, logger: logger}
}

func examOptionsKey(pupilID int64) string {
	return fmt.Sprintf("assessment:pupil:%d:exam-options", pupilID)
}

func timetableKey(classID, streamID int64) string {
	return fmt.Sprintf("timetable:%d:%d", classID, streamID)
}

// ExamOptions returns the cached dropdown options for a pupil, or false on
// a miss.
func (s *CacheService) ExamOptions(ctx context.Context, pupilID int64) ([]models.ExamOption, bool) {
	if !s.enabled {
		return nil, false
	}
	var options []models.ExamOption
	if err := s.store.Get(ctx, examOptionsKey(pupilID), &options); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", examOptionsKey(pupilID)), zap.Error(err))
		}
		return nil, false
	}
	return options, true
}

// StoreExamOptions caches a pupil's dropdown options.
func (s *CacheService) StoreExamOptions(ctx context.Context, pupilID int64, options []models.ExamOption) {
	if !s.enabled {
		return
	}
	if err := s.store.Set(ctx, examOptionsKey(pupilID), options, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", examOptionsKey(pupilID)), zap.Error(err))
	}
}

// Timetable returns the cached slots for a pair, or false on a miss.
func (s *CacheService) Timetable(ctx context.Context, classID, streamID int64) ([]models.TimetableSlot, bool) {
	if !s.enabled {
		return nil, false
	}
	var slots []models.TimetableSlot
	if err := s.store.Get(ctx, timetableKey(classID, streamID), &slots); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", timetableKey(classID, streamID)), zap.Error(err))
		}
		return nil, false
	}
	return slots, true
}

// StoreTimetable caches a pair's slots.
func (s *CacheService) StoreTimetable(ctx context.Context, classID, streamID int64, slots []models.TimetableSlot) {
	if !s.enabled {
		return
	}
	if err := s.store.Set(ctx, timetableKey(classID, streamID), slots, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", timetableKey(classID, streamID)), zap.Error(err))
	}
}

// InvalidateAssessment drops every cached assessment projection for a
// pupil after a committed write. The database already holds the truth, so
// a failure here is reported as drift for the caller to log.
func (s *CacheService) InvalidateAssessment(ctx context.Context, pupilID int64) error {
	if !s.enabled {
		return nil
	}
	pattern := fmt.Sprintf("assessment:pupil:%d:*", pupilID)
	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		return appErrors.ErrConsistencyDrift.Wrap(err)
	}
	return nil
}

// InvalidateTimetable drops a pair's cached slots after regeneration.
func (s *CacheService) InvalidateTimetable(ctx context.Context, classID, streamID int64) error {
	if !s.enabled {
		return nil
	}
	if err := s.store.Delete(ctx, timetableKey(classID, streamID)); err != nil {
		return appErrors.ErrConsistencyDrift.Wrap(err)
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	"github.com/ssekandi/psms-api/pkg/config"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type ttTeacherRepo interface {
	ListTeachers(ctx context.Context, includePlaceholders bool) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type ttAssignmentRepo interface {
	FindByClassStream(ctx context.Context, classID, streamID int64) (*models.TeacherAssignment, error)
}

type ttSubjectRepo interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type ttClassRepo interface {
	FindStreamByID(ctx context.Context, id int64) (*models.Stream, error)
	ListAllStreams(ctx context.Context) ([]models.Stream, error)
}

type ttSlotRepo interface {
	HasOverlap(ctx context.Context, teacherID int64, day, start, end string, excludeClassID, excludeStreamID int64) (bool, error)
	DeleteByClassStream(ctx context.Context, exec sqlx.ExtContext, classID, streamID int64) error
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	ListByClassStream(ctx context.Context, classID, streamID int64) ([]models.TimetableSlot, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.TimetableSlot, error)
}

type timetableInvalidator interface {
	InvalidateTimetable(ctx context.Context, classID, streamID int64) error
}

// TimetableService plans weekly lessons for (class, stream) pairs. A run
// plans everything in memory against the availability oracle, then
// replaces the pair's slots in one transaction; a failed run leaves the
// previous timetable standing.
type TimetableService struct {
	db             txBeginner
	teacherRepo    ttTeacherRepo
	subjectRepo    ttSubjectRepo
	classRepo      ttClassRepo
	slotRepo       ttSlotRepo
	assignmentRepo ttAssignmentRepo
	cache          timetableInvalidator
	windows        []lessonWindow
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewTimetableService creates a new timetable service. The day geometry is
// resolved once; a config with an unparseable time is a boot failure.
func NewTimetableService(
	db txBeginner,
	teacherRepo ttTeacherRepo,
	subjectRepo ttSubjectRepo,
	classRepo ttClassRepo,
	slotRepo ttSlotRepo,
	assignmentRepo ttAssignmentRepo,
	cache timetableInvalidator,
	cfg config.TimetableConfig,
	logger *zap.Logger,
) (*TimetableService, error) {
	windows, err := buildLessonWindows(cfg)
	if err != nil {
		return nil, err
	}
	return &TimetableService{
		db:             db,
		teacherRepo:    teacherRepo,
		subjectRepo:    subjectRepo,
		classRepo:      classRepo,
		slotRepo:       slotRepo,
		assignmentRepo: assignmentRepo,
		cache:          cache,
		windows:        windows,
		validate:       validator.New(),
		logger:         logger,
	}, nil
}

type lessonWindow struct {
	start string
	end   string
}

// buildLessonWindows walks the teaching day cursor-style: a lesson that
// would run into the break or the lunch hour is not shortened, the cursor
// jumps past the blocking window instead. The last lesson of the day is
// different: it is truncated at the end of day when less than a full
// lesson remains.
func buildLessonWindows(cfg config.TimetableConfig) ([]lessonWindow, error) {
	dayStart, err := parseClock(cfg.DayStart)
	if err != nil {
		return nil, err
	}
	dayEnd, err := parseClock(cfg.DayEnd)
	if err != nil {
		return nil, err
	}
	breakStart, err := parseClock(cfg.BreakStart)
	if err != nil {
		return nil, err
	}
	lunchStart, err := parseClock(cfg.LunchStart)
	if err != nil {
		return nil, err
	}
	if cfg.LessonMinutes <= 0 {
		return nil, fmt.Errorf("lesson length must be positive, got %d", cfg.LessonMinutes)
	}
	blocked := [][2]int{
		{breakStart, breakStart + cfg.BreakMinutes},
		{lunchStart, lunchStart + cfg.LunchMinutes},
	}

	var windows []lessonWindow
	cursor := dayStart
	for cursor < dayEnd {
		end := cursor + cfg.LessonMinutes
		if end > dayEnd {
			end = dayEnd
		}
		jumped := false
		for _, block := range blocked {
			if cursor < block[1] && end > block[0] {
				cursor = block[1]
				jumped = true
				break
			}
		}
		if jumped {
			continue
		}
		windows = append(windows, lessonWindow{start: formatClock(cursor), end: formatClock(end)})
		cursor = end
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("day geometry %s-%s leaves no room for a %d-minute lesson",
			cfg.DayStart, cfg.DayEnd, cfg.LessonMinutes)
	}
	return windows, nil
}

func parseClock(value string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateInput selects the pair to (re)plan.
type GenerateInput struct {
	ClassID  int64 `json:"class_id" validate:"required"`
	StreamID int64 `json:"stream_id" validate:"required"`
}

// Generate plans a full week for one (class, stream) and atomically
// replaces its previous slots. Teachers and subjects rotate round-robin
// across the week; a slot only takes a teacher the oracle reports free,
// ignoring the pair's own soon-to-be-deleted slots.
func (s *TimetableService) Generate(ctx context.Context, input GenerateInput) ([]models.TimetableSlot, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	stream, err := s.classRepo.FindStreamByID(ctx, input.StreamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Stream not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if stream.ClassID != input.ClassID {
		return nil, appErrors.ErrValidation.Clone("Stream does not belong to the given class")
	}

	teachers, err := s.candidateTeachers(ctx, input.ClassID, input.StreamID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjectRepo.List(ctx)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if len(teachers) == 0 || len(subjects) == 0 {
		return nil, appErrors.ErrScheduleInfeasible.Clone("No teachers or subjects to schedule")
	}

	slots, err := s.plan(ctx, input.ClassID, input.StreamID, teachers, subjects)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	defer tx.Rollback()
	if err := s.slotRepo.DeleteByClassStream(ctx, tx, input.ClassID, input.StreamID); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if err := s.slotRepo.InsertBatch(ctx, tx, slots); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTimetable(ctx, input.ClassID, input.StreamID); err != nil {
			s.logger.Warn("timetable cache invalidation failed",
				zap.Int64("class_id", input.ClassID),
				zap.Int64("stream_id", input.StreamID),
				zap.Error(err))
		}
	}
	s.logger.Info("timetable generated",
		zap.Int64("class_id", input.ClassID),
		zap.Int64("stream_id", input.StreamID),
		zap.Int("slots", len(slots)))
	return slots, nil
}

// candidateTeachers assembles the pool for one pair: every non-placeholder
// teacher, with the pair's class-teacher prepended when the global list
// leaves them out. The class-teacher keeps a presence on their own stream's
// timetable even while their account is still a placeholder.
func (s *TimetableService) candidateTeachers(ctx context.Context, classID, streamID int64) ([]models.User, error) {
	teachers, err := s.teacherRepo.ListTeachers(ctx, false)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	assignment, err := s.assignmentRepo.FindByClassStream(ctx, classID, streamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return teachers, nil
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	for _, teacher := range teachers {
		if teacher.ID == assignment.TeacherID {
			return teachers, nil
		}
	}
	classTeacher, err := s.teacherRepo.FindByID(ctx, assignment.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return teachers, nil
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return append([]models.User{*classTeacher}, teachers...), nil
}

// plan fills every window of every day, advancing the subject cursor per
// lesson and searching teachers round-robin from a moving cursor so load
// spreads instead of piling on teacher one.
func (s *TimetableService) plan(ctx context.Context, classID, streamID int64, teachers []models.User, subjects []models.Subject) ([]models.TimetableSlot, error) {
	slots := make([]models.TimetableSlot, 0, len(models.TimetableDays)*len(s.windows))
	teacherCursor, subjectCursor := 0, 0
	for _, day := range models.TimetableDays {
		for _, window := range s.windows {
			assigned := false
			for attempt := 0; attempt < len(teachers); attempt++ {
				teacher := teachers[(teacherCursor+attempt)%len(teachers)]
				busy, err := s.slotRepo.HasOverlap(ctx, teacher.ID, day, window.start, window.end, classID, streamID)
				if err != nil {
					return nil, appErrors.ErrInternal.Wrap(err)
				}
				if busy {
					continue
				}
				slots = append(slots, models.TimetableSlot{
					TeacherID: teacher.ID,
					ClassID:   classID,
					StreamID:  streamID,
					SubjectID: subjects[subjectCursor%len(subjects)].ID,
					DayOfWeek: day,
					StartTime: window.start,
					EndTime:   window.end,
				})
				teacherCursor = (teacherCursor + attempt + 1) % len(teachers)
				subjectCursor++
				assigned = true
				break
			}
			if !assigned {
				return nil, appErrors.ErrScheduleInfeasible.Clone(
					fmt.Sprintf("no available teacher for %s %s-%s", day, window.start, window.end))
			}
		}
	}
	return slots, nil
}

// PairResult reports one (class, stream) outcome of a school-wide run.
type PairResult struct {
	ClassID  int64  `json:"class_id"`
	StreamID int64  `json:"stream_id"`
	Slots    int    `json:"slots"`
	Error    string `json:"error,omitempty"`
}

// GenerateAll replans every stream in the school sequentially. Pairs are
// independent replacements, so one infeasible pair is reported and the run
// moves on.
func (s *TimetableService) GenerateAll(ctx context.Context) ([]PairResult, error) {
	streams, err := s.classRepo.ListAllStreams(ctx)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	results := make([]PairResult, 0, len(streams))
	for _, stream := range streams {
		result := PairResult{ClassID: stream.ClassID, StreamID: stream.ID}
		slots, err := s.Generate(ctx, GenerateInput{ClassID: stream.ClassID, StreamID: stream.ID})
		if err != nil {
			result.Error = appErrors.FromError(err).Message
		} else {
			result.Slots = len(slots)
		}
		results = append(results, result)
	}
	return results, nil
}

// Timetable returns a pair's stored slots in display order.
func (s *TimetableService) Timetable(ctx context.Context, classID, streamID int64) ([]models.TimetableSlot, error) {
	slots, err := s.slotRepo.ListByClassStream(ctx, classID, streamID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return slots, nil
}

// TeacherTimetable returns all slots one teacher holds across pairs.
func (s *TimetableService) TeacherTimetable(ctx context.Context, teacherID int64) ([]models.TimetableSlot, error) {
	slots, err := s.slotRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return slots, nil
}

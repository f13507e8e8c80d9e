package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type marksExamRepo interface {
	FindByDescriptor(ctx context.Context, exec sqlx.ExtContext, name string, term, year int) (*models.Exam, error)
	Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
}

type marksMarkRepo interface {
	ExistsForPupilExam(ctx context.Context, exec sqlx.ExtContext, pupilID, examID int64) (bool, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, mark *models.Mark) error
	Delete(ctx context.Context, exec sqlx.ExtContext, pupilID, subjectID, examID int64) error
	ListByPupilExam(ctx context.Context, exec sqlx.ExtContext, pupilID, examID int64) ([]models.Mark, error)
}

type marksReportRepo interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, report *models.Report) error
	Delete(ctx context.Context, exec sqlx.ExtContext, pupilID, examID int64) error
	FindByPupilExam(ctx context.Context, pupilID, examID int64) (*models.Report, error)
}

type marksPupilRepo interface {
	FindByID(ctx context.Context, id int64) (*models.Pupil, error)
}

type marksSubjectRepo interface {
	CountByIDs(ctx context.Context, ids []int64) (int, error)
}

type assessmentInvalidator interface {
	InvalidateAssessment(ctx context.Context, pupilID int64) error
}

// MarksService owns mark writes. Every write runs the duplicate guard, the
// mark mutation and the report rebuild inside one transaction so a report
// row never disagrees with the marks it summarizes.
type MarksService struct {
	db          txBeginner
	examRepo    marksExamRepo
	markRepo    marksMarkRepo
	reportRepo  marksReportRepo
	pupilRepo   marksPupilRepo
	subjectRepo marksSubjectRepo
	cache       assessmentInvalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewMarksService creates a new marks service.
func NewMarksService(
	db txBeginner,
	examRepo marksExamRepo,
	markRepo marksMarkRepo,
	reportRepo marksReportRepo,
	pupilRepo marksPupilRepo,
	subjectRepo marksSubjectRepo,
	cache assessmentInvalidator,
	logger *zap.Logger,
) *MarksService {
	return &MarksService{
		db:          db,
		examRepo:    examRepo,
		markRepo:    markRepo,
		reportRepo:  reportRepo,
		pupilRepo:   pupilRepo,
		subjectRepo: subjectRepo,
		cache:       cache,
		validate:    validator.New(),
		logger:      logger,
	}
}

// MarkEntry is one subject's score in a submission.
type MarkEntry struct {
	SubjectID int64   `json:"subject_id" validate:"required"`
	Score     float64 `json:"score" validate:"min=0,max=100"`
}

// SubmitMarksInput names the exam by descriptor; the exam row is created on
// first use.
type SubmitMarksInput struct {
	PupilID  int64       `json:"pupil_id" validate:"required"`
	ExamName string      `json:"exam_name" validate:"required"`
	Term     int         `json:"term" validate:"required,min=1,max=3"`
	Year     int         `json:"year" validate:"required,min=2000,max=2100"`
	Marks    []MarkEntry `json:"marks" validate:"required,min=1,dive"`
}

// SubmitMarksResult reports the resolved exam and the rebuilt report.
type SubmitMarksResult struct {
	Exam   *models.Exam   `json:"exam"`
	Report *models.Report `json:"report"`
}

// SubmitMarks records a pupil's first marks for an exam. A second
// submission for the same (pupil, exam) is rejected whole; edits go
// through UpdateMark.
func (s *MarksService) SubmitMarks(ctx context.Context, input SubmitMarksInput) (*SubmitMarksResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	if _, err := s.pupilRepo.FindByID(ctx, input.PupilID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Pupil not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	subjectIDs := make([]int64, 0, len(input.Marks))
	seen := make(map[int64]bool, len(input.Marks))
	for _, entry := range input.Marks {
		if seen[entry.SubjectID] {
			return nil, appErrors.ErrValidation.Clone("Duplicate subject in submission")
		}
		seen[entry.SubjectID] = true
		subjectIDs = append(subjectIDs, entry.SubjectID)
	}
	count, err := s.subjectRepo.CountByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if count != len(subjectIDs) {
		return nil, appErrors.ErrValidation.Clone("One or more subjects do not exist")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	defer tx.Rollback()

	exam, err := s.findOrCreateExam(ctx, tx, input.ExamName, input.Term, input.Year)
	if err != nil {
		return nil, err
	}

	exists, err := s.markRepo.ExistsForPupilExam(ctx, tx, input.PupilID, exam.ID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if !exists {
		// A surviving report row also counts as a prior submission,
		// even when its marks are gone.
		if _, err := s.reportRepo.FindByPupilExam(ctx, input.PupilID, exam.ID); err == nil {
			exists = true
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInternal.Wrap(err)
		}
	}
	if exists {
		return nil, appErrors.ErrDuplicateEntry
	}

	for _, entry := range input.Marks {
		mark := &models.Mark{
			PupilID:   input.PupilID,
			SubjectID: entry.SubjectID,
			ExamID:    exam.ID,
			Score:     entry.Score,
		}
		if err := s.markRepo.Upsert(ctx, tx, mark); err != nil {
			return nil, appErrors.ErrInternal.Wrap(err)
		}
	}

	report, err := s.rebuildReport(ctx, tx, input.PupilID, exam.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}

	s.invalidate(ctx, input.PupilID)
	s.logger.Info("marks submitted",
		zap.Int64("pupil_id", input.PupilID),
		zap.Int64("exam_id", exam.ID),
		zap.Int("subjects", len(input.Marks)))
	return &SubmitMarksResult{Exam: exam, Report: report}, nil
}

// UpdateMarkInput changes one subject's score for an existing submission.
type UpdateMarkInput struct {
	PupilID   int64   `json:"pupil_id" validate:"required"`
	ExamID    int64   `json:"exam_id" validate:"required"`
	SubjectID int64   `json:"subject_id" validate:"required"`
	Score     float64 `json:"score" validate:"min=0,max=100"`
}

// UpdateMark overwrites a single score and rebuilds the report in the same
// transaction.
func (s *MarksService) UpdateMark(ctx context.Context, input UpdateMarkInput) (*models.Report, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	defer tx.Rollback()

	mark := &models.Mark{
		PupilID:   input.PupilID,
		SubjectID: input.SubjectID,
		ExamID:    input.ExamID,
		Score:     input.Score,
	}
	if err := s.markRepo.Upsert(ctx, tx, mark); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	report, err := s.rebuildReport(ctx, tx, input.PupilID, input.ExamID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}

	s.invalidate(ctx, input.PupilID)
	return report, nil
}

// DeleteMark removes one subject's score. When the last mark for the
// (pupil, exam) goes, the report row goes with it.
func (s *MarksService) DeleteMark(ctx context.Context, pupilID, subjectID, examID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.ErrInternal.Wrap(err)
	}
	defer tx.Rollback()

	if err := s.markRepo.Delete(ctx, tx, pupilID, subjectID, examID); err != nil {
		return appErrors.ErrInternal.Wrap(err)
	}
	if _, err := s.rebuildReport(ctx, tx, pupilID, examID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return appErrors.ErrInternal.Wrap(err)
	}

	s.invalidate(ctx, pupilID)
	return nil
}

func (s *MarksService) findOrCreateExam(ctx context.Context, tx *sqlx.Tx, name string, term, year int) (*models.Exam, error) {
	exam, err := s.examRepo.FindByDescriptor(ctx, tx, name, term, year)
	if err == nil {
		return exam, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	exam = &models.Exam{Name: name, Term: term, Year: year}
	if err := s.examRepo.Create(ctx, tx, exam); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return exam, nil
}

// rebuildReport recomputes the per-exam summary from the marks visible in
// the transaction. Average divides by the number of marks present, not the
// school subject count. Returns nil when no marks remain.
func (s *MarksService) rebuildReport(ctx context.Context, tx *sqlx.Tx, pupilID, examID int64) (*models.Report, error) {
	marks, err := s.markRepo.ListByPupilExam(ctx, tx, pupilID, examID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if len(marks) == 0 {
		if err := s.reportRepo.Delete(ctx, tx, pupilID, examID); err != nil {
			return nil, appErrors.ErrInternal.Wrap(err)
		}
		return nil, nil
	}
	var total float64
	for _, mark := range marks {
		total += mark.Score
	}
	avg := total / float64(len(marks))
	grade := GradeFor(avg)
	report := &models.Report{
		PupilID:      pupilID,
		ExamID:       examID,
		TotalScore:   total,
		AverageScore: avg,
		Grade:        grade,
		Remarks:      RemarkFor(grade),
	}
	if err := s.reportRepo.Upsert(ctx, tx, report); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return report, nil
}

// invalidate drops cached projections after a committed write. The write
// already stands, so a failure here is drift to log, not an error for the
// caller.
func (s *MarksService) invalidate(ctx context.Context, pupilID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAssessment(ctx, pupilID); err != nil {
		s.logger.Warn("assessment cache invalidation failed",
			zap.Int64("pupil_id", pupilID),
			zap.Error(err))
	}
}

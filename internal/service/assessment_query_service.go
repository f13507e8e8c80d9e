package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type queryReportRepo interface {
	FindByPupilExam(ctx context.Context, pupilID, examID int64) (*models.Report, error)
	ListByPupil(ctx context.Context, pupilID int64) ([]models.Report, error)
	ListByPupilsAndExams(ctx context.Context, pupilIDs, examIDs []int64) ([]models.Report, error)
}

type queryExamRepo interface {
	FindByID(ctx context.Context, id int64) (*models.Exam, error)
	ListByTermYear(ctx context.Context, term, year int) ([]models.Exam, error)
	ListOptionsForPupil(ctx context.Context, pupilID int64) ([]models.ExamOption, error)
}

type queryMarkRepo interface {
	ListByPupilExam(ctx context.Context, exec sqlx.ExtContext, pupilID, examID int64) ([]models.Mark, error)
	ListByPupil(ctx context.Context, pupilID int64) ([]models.Mark, error)
}

type queryPupilRepo interface {
	FindByID(ctx context.Context, id int64) (*models.Pupil, error)
}

type optionsCache interface {
	ExamOptions(ctx context.Context, pupilID int64) ([]models.ExamOption, bool)
	StoreExamOptions(ctx context.Context, pupilID int64, options []models.ExamOption)
}

// AssessmentQueryService serves the read side: stored rows go out as they
// stand, nothing is recomputed on the way.
type AssessmentQueryService struct {
	reportRepo queryReportRepo
	examRepo   queryExamRepo
	markRepo   queryMarkRepo
	pupilRepo  queryPupilRepo
	cache      optionsCache
	logger     *zap.Logger
}

// NewAssessmentQueryService creates a new assessment query service.
func NewAssessmentQueryService(
	reportRepo queryReportRepo,
	examRepo queryExamRepo,
	markRepo queryMarkRepo,
	pupilRepo queryPupilRepo,
	cache optionsCache,
	logger *zap.Logger,
) *AssessmentQueryService {
	return &AssessmentQueryService{
		reportRepo: reportRepo,
		examRepo:   examRepo,
		markRepo:   markRepo,
		pupilRepo:  pupilRepo,
		cache:      cache,
		logger:     logger,
	}
}

// ReportView bundles everything a printed report card needs for one exam.
type ReportView struct {
	Pupil  *models.Pupil  `json:"pupil"`
	Exam   *models.Exam   `json:"exam"`
	Report *models.Report `json:"report"`
	Marks  []models.Mark  `json:"marks"`
}

// ReportFor returns the stored report for a (pupil, exam) together with
// the marks behind it.
func (s *AssessmentQueryService) ReportFor(ctx context.Context, pupilID, examID int64) (*ReportView, error) {
	pupil, err := s.pupilRepo.FindByID(ctx, pupilID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Pupil not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	exam, err := s.examRepo.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Exam not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	report, err := s.reportRepo.FindByPupilExam(ctx, pupilID, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("No report for this pupil and exam")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	marks, err := s.markRepo.ListByPupilExam(ctx, nil, pupilID, examID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return &ReportView{Pupil: pupil, Exam: exam, Report: report, Marks: marks}, nil
}

// PupilReports lists every stored report for a pupil.
func (s *AssessmentQueryService) PupilReports(ctx context.Context, pupilID int64) ([]models.Report, error) {
	if _, err := s.pupilRepo.FindByID(ctx, pupilID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Pupil not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	reports, err := s.reportRepo.ListByPupil(ctx, pupilID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return reports, nil
}

// PupilMarks lists every raw mark a pupil holds, newest exam first.
func (s *AssessmentQueryService) PupilMarks(ctx context.Context, pupilID int64) ([]models.Mark, error) {
	if _, err := s.pupilRepo.FindByID(ctx, pupilID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Pupil not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	marks, err := s.markRepo.ListByPupil(ctx, pupilID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	return marks, nil
}

// ExamOptions returns the distinct exams a pupil holds marks for. Served
// from cache when warm; writes through on a miss.
func (s *AssessmentQueryService) ExamOptions(ctx context.Context, pupilID int64) ([]models.ExamOption, error) {
	if s.cache != nil {
		if options, ok := s.cache.ExamOptions(ctx, pupilID); ok {
			return options, nil
		}
	}
	options, err := s.examRepo.ListOptionsForPupil(ctx, pupilID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if s.cache != nil {
		s.cache.StoreExamOptions(ctx, pupilID, options)
	}
	return options, nil
}

// TermSummaryView is the stored term snapshot for one pupil: the per-exam
// rows plus the combined fields the last recompute left on them.
type TermSummaryView struct {
	Pupil   *models.Pupil   `json:"pupil"`
	Exams   []models.Exam   `json:"exams"`
	Reports []models.Report `json:"reports"`
}

// TermSummary returns a pupil's reports across one term's exams, combined
// snapshot included, exactly as last persisted.
func (s *AssessmentQueryService) TermSummary(ctx context.Context, pupilID int64, term, year int) (*TermSummaryView, error) {
	pupil, err := s.pupilRepo.FindByID(ctx, pupilID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound.Clone("Pupil not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	exams, err := s.examRepo.ListByTermYear(ctx, term, year)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	view := &TermSummaryView{Pupil: pupil, Exams: exams}
	if len(exams) == 0 {
		return view, nil
	}
	examIDs := make([]int64, len(exams))
	for i, exam := range exams {
		examIDs[i] = exam.ID
	}
	reports, err := s.reportRepo.ListByPupilsAndExams(ctx, []int64{pupilID}, examIDs)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	view.Reports = reports
	return view, nil
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
	"github.com/ssekandi/psms-api/pkg/export"
)

type exportQueryService interface {
	ReportFor(ctx context.Context, pupilID, examID int64) (*ReportView, error)
}

type exportSubjectRepo interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type exportClassRepo interface {
	FindClassByID(ctx context.Context, id int64) (*models.Class, error)
	FindStreamByID(ctx context.Context, id int64) (*models.Stream, error)
}

// ExportService renders stored report projections as PDF report cards.
type ExportService struct {
	queries     exportQueryService
	subjectRepo exportSubjectRepo
	classRepo   exportClassRepo
	schoolName  string
	logger      *zap.Logger
}

// NewExportService creates a new export service.
func NewExportService(queries exportQueryService, subjectRepo exportSubjectRepo, classRepo exportClassRepo, schoolName string, logger *zap.Logger) *ExportService {
	if schoolName == "" {
		schoolName = "Primary School"
	}
	return &ExportService{
		queries:     queries,
		subjectRepo: subjectRepo,
		classRepo:   classRepo,
		schoolName:  schoolName,
		logger:      logger,
	}
}

// ReportCard renders the stored (pupil, exam) report as a PDF. The
// projection goes out as persisted; nothing is recomputed here.
func (s *ExportService) ReportCard(ctx context.Context, pupilID, examID int64) ([]byte, error) {
	view, err := s.queries.ReportFor(ctx, pupilID, examID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjectRepo.List(ctx)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	subjectNames := make(map[int64]string, len(subjects))
	for _, subject := range subjects {
		subjectNames[subject.ID] = subject.Name
	}

	data := export.ReportCardData{
		SchoolName: s.schoolName,
		PupilName:  fmt.Sprintf("%s %s", view.Pupil.FirstName, view.Pupil.LastName),
		ExamName:   view.Exam.Name,
		Term:       view.Exam.Term,
		Year:       view.Exam.Year,
		Total:      view.Report.TotalScore,
		Average:    view.Report.AverageScore,
		Grade:      view.Report.Grade,
		Remarks:    view.Report.Remarks,
	}
	if class, err := s.classRepo.FindClassByID(ctx, view.Pupil.ClassID); err == nil {
		data.ClassName = class.Name
	} else {
		data.ClassName = fmt.Sprintf("Class %d", view.Pupil.ClassID)
	}
	if view.Pupil.StreamID != nil {
		if stream, err := s.classRepo.FindStreamByID(ctx, *view.Pupil.StreamID); err == nil {
			data.StreamName = stream.Name
		} else {
			data.StreamName = fmt.Sprintf("Stream %d", *view.Pupil.StreamID)
		}
	} else {
		data.StreamName = "N/A"
	}
	for _, mark := range view.Marks {
		name := subjectNames[mark.SubjectID]
		if name == "" {
			name = fmt.Sprintf("Subject %d", mark.SubjectID)
		}
		data.Rows = append(data.Rows, export.SubjectScore{Subject: name, Score: mark.Score})
	}
	if view.Report.CombinedAverage != nil {
		combined := &export.CombinedSummary{
			Average:        *view.Report.CombinedAverage,
			ClassPosition:  view.Report.CombinedPosition,
			StreamPosition: view.Report.StreamCombinedPosition,
		}
		if view.Report.CombinedTotal != nil {
			combined.Total = *view.Report.CombinedTotal
		}
		if view.Report.CombinedGrade != nil {
			combined.Grade = *view.Report.CombinedGrade
		}
		if view.Report.GeneralRemark != nil {
			combined.GeneralRemark = *view.Report.GeneralRemark
		}
		data.Combined = combined
	}

	pdf, err := export.ReportCardPDF(data)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	s.logger.Info("report card exported",
		zap.Int64("pupil_id", pupilID),
		zap.Int64("exam_id", examID),
		zap.Int("bytes", len(pdf)))
	return pdf, nil
}

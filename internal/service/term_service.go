package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

type termExamRepo interface {
	ListByTermYear(ctx context.Context, term, year int) ([]models.Exam, error)
}

type termPupilRepo interface {
	ListByClass(ctx context.Context, classID int64) ([]models.Pupil, error)
}

type termSubjectRepo interface {
	Count(ctx context.Context) (int, error)
}

type termReportRepo interface {
	ListByPupilsAndExams(ctx context.Context, pupilIDs, examIDs []int64) ([]models.Report, error)
	UpdateDerived(ctx context.Context, exec sqlx.ExtContext, report *models.Report) error
}

// TermService folds a class's per-exam reports into weighted term
// aggregates and assigns positions, then snapshots everything back onto
// the report rows.
type TermService struct {
	db          txBeginner
	examRepo    termExamRepo
	pupilRepo   termPupilRepo
	subjectRepo termSubjectRepo
	reportRepo  termReportRepo
	cache       assessmentInvalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewTermService creates a new term service.
func NewTermService(
	db txBeginner,
	examRepo termExamRepo,
	pupilRepo termPupilRepo,
	subjectRepo termSubjectRepo,
	reportRepo termReportRepo,
	cache assessmentInvalidator,
	logger *zap.Logger,
) *TermService {
	return &TermService{
		db:          db,
		examRepo:    examRepo,
		pupilRepo:   pupilRepo,
		subjectRepo: subjectRepo,
		reportRepo:  reportRepo,
		cache:       cache,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RecomputeTermInput scopes one recompute run.
type RecomputeTermInput struct {
	ClassID int64 `json:"class_id" validate:"required"`
	Term    int   `json:"term" validate:"required,min=1,max=3"`
	Year    int   `json:"year" validate:"required,min=2000,max=2100"`
}

// TermStanding is one pupil's aggregated term row.
type TermStanding struct {
	PupilID        int64   `json:"pupil_id"`
	StreamID       *int64  `json:"stream_id,omitempty"`
	CombinedTotal  float64 `json:"combined_total"`
	CombinedAvg    float64 `json:"combined_average"`
	CombinedGrade  string  `json:"combined_grade"`
	GeneralRemark  string  `json:"general_remark"`
	ClassPosition  int     `json:"class_position"`
	StreamPosition *int    `json:"stream_position,omitempty"`
}

// RecomputeTerm rebuilds the combined aggregates and positions for every
// pupil of a class in a (term, year). Pupils with no report in any of the
// term's exams are left out entirely.
//
// The combined average divides the weighted total by the school-wide
// subject count, so a pupil who skipped subjects is pulled down rather
// than flattered. Positions are competition-style: equal averages share a
// rank and the next rank skips (1, 1, 3), ties listed by ascending pupil
// id.
func (s *TermService) RecomputeTerm(ctx context.Context, input RecomputeTermInput) ([]TermStanding, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	exams, err := s.examRepo.ListByTermYear(ctx, input.Term, input.Year)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if len(exams) == 0 {
		return nil, nil
	}
	pupils, err := s.pupilRepo.ListByClass(ctx, input.ClassID)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if len(pupils) == 0 {
		return nil, nil
	}

	subjectCount, err := s.subjectRepo.Count(ctx)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	denom := float64(subjectCount)
	if denom == 0 {
		denom = 1
	}

	examIDs := make([]int64, len(exams))
	for i, exam := range exams {
		examIDs[i] = exam.ID
	}
	pupilIDs := make([]int64, len(pupils))
	streamOf := make(map[int64]*int64, len(pupils))
	for i, pupil := range pupils {
		pupilIDs[i] = pupil.ID
		streamOf[pupil.ID] = pupil.StreamID
	}

	reports, err := s.reportRepo.ListByPupilsAndExams(ctx, pupilIDs, examIDs)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	if len(reports) == 0 {
		return nil, nil
	}

	// Only exams the class actually sat carry weight; a school-wide exam
	// with no class data must not absorb a share of the vector. A report
	// row is the evidence, since marks and reports move together in the
	// write transaction.
	sat := make(map[int64]bool, len(reports))
	for _, report := range reports {
		sat[report.ExamID] = true
	}
	active := make([]models.Exam, 0, len(exams))
	for _, exam := range exams {
		if sat[exam.ID] {
			active = append(active, exam)
		}
	}
	weights := ResolveWeights(active)

	standings := buildStandings(reports, weights, streamOf, denom)
	rankPerExam(reports, streamOf)

	byPupil := make(map[int64]*TermStanding, len(standings))
	for i := range standings {
		byPupil[standings[i].PupilID] = &standings[i]
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}
	defer tx.Rollback()
	for i := range reports {
		report := &reports[i]
		standing, ok := byPupil[report.PupilID]
		if !ok {
			continue
		}
		report.CombinedTotal = f64ptr(standing.CombinedTotal)
		report.CombinedAverage = f64ptr(standing.CombinedAvg)
		report.CombinedGrade = strptr(standing.CombinedGrade)
		report.GeneralRemark = strptr(standing.GeneralRemark)
		report.CombinedPosition = intptr(standing.ClassPosition)
		report.StreamCombinedPosition = standing.StreamPosition
		if err := s.reportRepo.UpdateDerived(ctx, tx, report); err != nil {
			return nil, appErrors.ErrInternal.Wrap(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err)
	}

	if s.cache != nil {
		for pupilID := range byPupil {
			if err := s.cache.InvalidateAssessment(ctx, pupilID); err != nil {
				s.logger.Warn("assessment cache invalidation failed",
					zap.Int64("pupil_id", pupilID), zap.Error(err))
			}
		}
	}
	s.logger.Info("term recomputed",
		zap.Int64("class_id", input.ClassID),
		zap.Int("term", input.Term),
		zap.Int("year", input.Year),
		zap.Int("pupils_ranked", len(standings)))
	return standings, nil
}

// buildStandings computes weighted totals, grades and combined positions
// for every pupil holding at least one report in the term.
func buildStandings(reports []models.Report, weights map[int64]float64, streamOf map[int64]*int64, denom float64) []TermStanding {
	totals := make(map[int64]float64)
	for _, report := range reports {
		totals[report.PupilID] += report.TotalScore * weights[report.ExamID]
	}

	standings := make([]TermStanding, 0, len(totals))
	for pupilID, weighted := range totals {
		avg := round2(weighted / denom)
		standings = append(standings, TermStanding{
			PupilID:       pupilID,
			StreamID:      streamOf[pupilID],
			CombinedTotal: round2(weighted),
			CombinedAvg:   avg,
			CombinedGrade: GradeFor(avg),
			GeneralRemark: GeneralRemarkFor(avg),
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].CombinedAvg != standings[j].CombinedAvg {
			return standings[i].CombinedAvg > standings[j].CombinedAvg
		}
		return standings[i].PupilID < standings[j].PupilID
	})
	competitionRanks(len(standings),
		func(i int) float64 { return standings[i].CombinedAvg },
		func(i, rank int) { standings[i].ClassPosition = rank })

	byStream := make(map[int64][]int)
	for i, standing := range standings {
		if standing.StreamID == nil {
			continue
		}
		byStream[*standing.StreamID] = append(byStream[*standing.StreamID], i)
	}
	for _, indexes := range byStream {
		idx := indexes
		competitionRanks(len(idx),
			func(i int) float64 { return standings[idx[i]].CombinedAvg },
			func(i, rank int) { standings[idx[i]].StreamPosition = intptr(rank) })
	}
	return standings
}

// rankPerExam writes class and stream positions onto each exam's report
// rows. Per-exam ranks key on the exam's total score, unlike the combined
// ranks which key on the weighted average.
func rankPerExam(reports []models.Report, streamOf map[int64]*int64) {
	byExam := make(map[int64][]*models.Report)
	for i := range reports {
		byExam[reports[i].ExamID] = append(byExam[reports[i].ExamID], &reports[i])
	}
	for _, group := range byExam {
		grp := group
		sort.Slice(grp, func(i, j int) bool {
			if grp[i].TotalScore != grp[j].TotalScore {
				return grp[i].TotalScore > grp[j].TotalScore
			}
			return grp[i].PupilID < grp[j].PupilID
		})
		competitionRanks(len(grp),
			func(i int) float64 { return grp[i].TotalScore },
			func(i, rank int) { grp[i].ClassPosition = intptr(rank) })

		byStream := make(map[int64][]*models.Report)
		for _, report := range grp {
			streamID := streamOf[report.PupilID]
			if streamID == nil {
				continue
			}
			byStream[*streamID] = append(byStream[*streamID], report)
		}
		for _, streamGroup := range byStream {
			sub := streamGroup
			competitionRanks(len(sub),
				func(i int) float64 { return sub[i].TotalScore },
				func(i, rank int) { sub[i].StreamPosition = intptr(rank) })
		}
	}
}

// competitionRanks hands out 1224-style ranks over an already-sorted
// sequence: equal scores share a rank, the next distinct score resumes at
// its ordinal position.
func competitionRanks(n int, score func(i int) float64, set func(i, rank int)) {
	prevRank := 0
	var prevScore float64
	for i := 0; i < n; i++ {
		rank := i + 1
		if i > 0 && score(i) == prevScore {
			rank = prevRank
		} else {
			prevRank = rank
		}
		prevScore = score(i)
		set(i, rank)
	}
}

func f64ptr(v float64) *float64 { return &v }
func strptr(v string) *string   { return &v }
func intptr(v int) *int         { return &v }

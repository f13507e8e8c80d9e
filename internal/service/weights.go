package service

import (
	"strings"

	"github.com/ssekandi/psms-api/internal/models"
)

// Exam archetypes drive the term weighting heuristic. Classification is a
// substring match on the lowercased name, so "Midterm", "MID TERM" and
// "mid-year" all weigh the same.
const (
	ArchetypeMidterm = "midterm"
	ArchetypeEndTerm = "endterm"
	ArchetypeOther   = "other"
)

// ClassifyExam tags an exam name with its archetype. "mid" wins over "end"
// when a name somehow carries both.
func ClassifyExam(name string) string {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "mid") {
		return ArchetypeMidterm
	}
	if strings.Contains(lower, "end") {
		return ArchetypeEndTerm
	}
	return ArchetypeOther
}

// ResolveWeights assigns a combined-term weight to each exam in one term:
// midterms get 0.4, end-of-terms 0.6, and any unclassified exams split the
// remainder of 1.0 equally. If every exam is unclassified they split 1.0.
// The result is intentionally not re-normalized; a term holding only a
// midterm yields a combined total worth 40% of the full term.
func ResolveWeights(exams []models.Exam) map[int64]float64 {
	weights := make(map[int64]float64, len(exams))
	var assigned float64
	var unclassified []int64
	for _, exam := range exams {
		switch ClassifyExam(exam.Name) {
		case ArchetypeMidterm:
			weights[exam.ID] = 0.4
			assigned += 0.4
		case ArchetypeEndTerm:
			weights[exam.ID] = 0.6
			assigned += 0.6
		default:
			unclassified = append(unclassified, exam.ID)
		}
	}
	if len(unclassified) > 0 {
		remaining := 1.0 - assigned
		if remaining < 0 {
			remaining = 0
		}
		share := remaining / float64(len(unclassified))
		for _, id := range unclassified {
			weights[id] = share
		}
	}
	return weights
}

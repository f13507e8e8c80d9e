package service

import "math"

// Grade boundaries used everywhere an average becomes a letter. The scale
// is fixed school policy, not per-exam configuration.
const (
	gradeABound = 80
	gradeBBound = 70
	gradeCBound = 60
	gradeDBound = 50
)

// GradeFor maps a numeric average onto the A-E scale.
func GradeFor(avg float64) string {
	switch {
	case avg >= gradeABound:
		return "A"
	case avg >= gradeBBound:
		return "B"
	case avg >= gradeCBound:
		return "C"
	case avg >= gradeDBound:
		return "D"
	default:
		return "E"
	}
}

// RemarkFor returns the per-exam report remark for a grade.
func RemarkFor(grade string) string {
	if grade == "A" {
		return "Excellent work!"
	}
	return "Keep working hard!"
}

// GeneralRemarkFor returns the term-level remark for a combined average.
// The bands match the grading scale.
func GeneralRemarkFor(avg float64) string {
	switch {
	case avg >= gradeABound:
		return "Outstanding performance overall"
	case avg >= gradeBBound:
		return "Very good work overall"
	case avg >= gradeCBound:
		return "Good effort, keep improving"
	case avg >= gradeDBound:
		return "Fair performance, needs more focus"
	default:
		return "Needs significant improvement"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package models

import "time"

// Exam is an assessment event identified by (name, term, year). The name is
// stored in canonical form (underscores folded to spaces, whitespace
// collapsed) and compared case-insensitively.
type Exam struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Term int    `db:"term" json:"term"`
	Year int    `db:"year" json:"year"`
}

// Mark is one pupil's score on one subject in one exam. At most one mark
// exists per (pupil, subject, exam).
type Mark struct {
	ID        int64   `db:"id" json:"id"`
	PupilID   int64   `db:"pupil_id" json:"pupil_id"`
	SubjectID int64   `db:"subject_id" json:"subject_id"`
	ExamID    int64   `db:"exam_id" json:"exam_id"`
	Score     float64 `db:"score" json:"score"`
}

// Report is the derived per-(pupil, exam) summary. The combined_* fields
// carry the term-wide weighted snapshot written by the term aggregator so a
// single row serves printed output. At most one report exists per
// (pupil, exam); a report is always rebuildable from marks.
type Report struct {
	ID           int64   `db:"id" json:"id"`
	PupilID      int64   `db:"pupil_id" json:"pupil_id"`
	ExamID       int64   `db:"exam_id" json:"exam_id"`
	TotalScore   float64 `db:"total_score" json:"total_score"`
	AverageScore float64 `db:"average_score" json:"average_score"`
	Grade        string  `db:"grade" json:"grade"`
	Remarks      string  `db:"remarks" json:"remarks"`

	ClassPosition  *int `db:"class_position" json:"class_position,omitempty"`
	StreamPosition *int `db:"stream_position" json:"stream_position,omitempty"`

	CombinedTotal          *float64 `db:"combined_total" json:"combined_total,omitempty"`
	CombinedAverage        *float64 `db:"combined_average" json:"combined_average,omitempty"`
	CombinedGrade          *string  `db:"combined_grade" json:"combined_grade,omitempty"`
	GeneralRemark          *string  `db:"general_remark" json:"general_remark,omitempty"`
	CombinedPosition       *int     `db:"combined_position" json:"combined_position,omitempty"`
	StreamCombinedPosition *int     `db:"stream_combined_position" json:"stream_combined_position,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ExamOption is one distinct (term, year, exam-name) triple for which a
// pupil has marks or reports.
type ExamOption struct {
	ExamID int64  `db:"exam_id" json:"exam_id"`
	Name   string `db:"name" json:"name"`
	Term   int    `db:"term" json:"term"`
	Year   int    `db:"year" json:"year"`
}

package models

import "time"

// Class is a named collection of pupils and the unit of class-wide ranking.
type Class struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Stream is a sub-collection of a class; (class, stream) is the timetable
// unit and the finer ranking scope.
type Stream struct {
	ID      int64  `db:"id" json:"id"`
	ClassID int64  `db:"class_id" json:"class_id"`
	Name    string `db:"name" json:"name"`
}

// Pupil belongs to exactly one class and optionally one stream.
type Pupil struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	StreamID  *int64    `db:"stream_id" json:"stream_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Subject is a measurable dimension; all subjects contribute equally.
type Subject struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// TeacherAssignment designates a class-teacher for a (class, stream) pair.
type TeacherAssignment struct {
	ID        int64 `db:"id" json:"id"`
	TeacherID int64 `db:"teacher_id" json:"teacher_id"`
	ClassID   int64 `db:"class_id" json:"class_id"`
	StreamID  int64 `db:"stream_id" json:"stream_id"`
}

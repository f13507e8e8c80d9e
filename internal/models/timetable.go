package models

import "time"

// TimetableSlot assigns a teacher to teach a subject in a (class, stream)
// at a half-open [start, end) window on a day. Times are "HH:MM" 24-hour
// strings; start < end.
type TimetableSlot struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	StreamID  int64     `db:"stream_id" json:"stream_id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableDays lists the teaching days in order.
var TimetableDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

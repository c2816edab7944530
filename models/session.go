package models

import "time"

// ClassSession is a single scheduled occurrence of a course.
type ClassSession struct {
	ID        int       `json:"id"`
	CourseID  int       `json:"course_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Ended reports whether the session's end time has passed.
func (s *ClassSession) Ended(now time.Time) bool {
	return now.After(s.EndsAt)
}

type CreateSessionRequest struct {
	CourseID int       `json:"course_id" binding:"required"`
	Title    string    `json:"title" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
}

package models

import "time"

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// How an attendance record was written. Self check-ins and faculty
// corrections must stay distinguishable in the data.
const (
	MarkedViaCheckin  = "checkin"
	MarkedViaOverride = "override"
)

type AttendanceRecord struct {
	ID        int       `json:"id"`
	SessionID int       `json:"session_id"`
	StudentID int       `json:"student_id"`
	Status    string    `json:"status"`
	MarkedAt  time.Time `json:"marked_at"`
	MarkedBy  int       `json:"marked_by"`
	MarkedVia string    `json:"marked_via"`
}

type CheckinRequest struct {
	Token     string `json:"token" binding:"required"`
	StudentID int    `json:"student_id" binding:"required"`
}

type CheckinResponse struct {
	Status  string `json:"status"`
	Created bool   `json:"created"`
}

type UpdateAttendanceRequest struct {
	Status string `json:"status" binding:"required,oneof=present absent late"`
}

type AttendanceListEntry struct {
	AttendanceRecord
	StudentName string `json:"student_name"`
}

package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"rollcall_backend/attendance"
	"rollcall_backend/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AttendanceHandler struct {
	db     *sql.DB
	audit  *attendance.Audit
	logger *zap.Logger
}

func NewAttendanceHandler(db *sql.DB, audit *attendance.Audit, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{db: db, audit: audit, logger: logger}
}

// GetSessionAttendance lists the attendance records for a class session.
func (h *AttendanceHandler) GetSessionAttendance(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	var sessionExists bool
	err = h.db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM class_sessions
            WHERE id = $1
        )
    `, sessionID).Scan(&sessionExists)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
		return
	}

	if !sessionExists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	rows, err := h.db.Query(`
        SELECT a.id, a.session_id, a.student_id, a.status, a.marked_at, a.marked_by, a.marked_via,
               u.first_name || ' ' || u.last_name AS student_name
        FROM attendances a
        JOIN users u ON u.id = a.student_id
        WHERE a.session_id = $1
        ORDER BY a.marked_at
    `, sessionID)
	if err != nil {
		h.logger.Error("failed to fetch attendance records", zap.Int("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance records"})
		return
	}
	defer rows.Close()

	records := []models.AttendanceListEntry{}
	for rows.Next() {
		var rec models.AttendanceListEntry
		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.StudentID,
			&rec.Status,
			&rec.MarkedAt,
			&rec.MarkedBy,
			&rec.MarkedVia,
			&rec.StudentName,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan attendance record"})
			return
		}
		records = append(records, rec)
	}

	c.JSON(http.StatusOK, records)
}

// UpdateAttendance is the explicit faculty correction path. Unlike a
// check-in it overwrites the status, and the write is recorded with
// marked_via=override plus an audit entry naming the corrector.
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	userID := c.GetInt("userID")

	attendanceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendance id"})
		return
	}

	var req models.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rec models.AttendanceRecord
	err = h.db.QueryRow(`
        UPDATE attendances
        SET status = $1, marked_by = $2, marked_via = $3
        WHERE id = $4
        RETURNING id, session_id, student_id, status, marked_at, marked_by, marked_via
    `, req.Status, userID, models.MarkedViaOverride, attendanceID).Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.StudentID,
		&rec.Status,
		&rec.MarkedAt,
		&rec.MarkedBy,
		&rec.MarkedVia,
	)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to update attendance", zap.Int("attendance_id", attendanceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attendance"})
		return
	}

	h.audit.Record(rec.SessionID, rec.StudentID, "", attendance.OutcomeOverride)

	c.JSON(http.StatusOK, rec)
}

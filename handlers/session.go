package handlers

import (
	"database/sql"
	"net/http"

	"rollcall_backend/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSessionHandler(db *sql.DB, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{db: db, logger: logger}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID := c.GetInt("userID")

	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.EndsAt.After(req.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session end time must be after start time"})
		return
	}

	// Check if course exists
	var courseExists bool
	err := h.db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM courses
            WHERE id = $1
        )
    `, req.CourseID).Scan(&courseExists)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify course"})
		return
	}

	if !courseExists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	var session models.ClassSession
	err = h.db.QueryRow(`
        INSERT INTO class_sessions (course_id, title, starts_at, ends_at, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, course_id, title, starts_at, ends_at, created_by, created_at
    `, req.CourseID, req.Title, req.StartsAt, req.EndsAt, userID).Scan(
		&session.ID,
		&session.CourseID,
		&session.Title,
		&session.StartsAt,
		&session.EndsAt,
		&session.CreatedBy,
		&session.CreatedAt,
	)

	if err != nil {
		h.logger.Error("failed to create class session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) GetSessions(c *gin.Context) {
	courseID := c.Query("course_id")

	query := `
        SELECT id, course_id, title, starts_at, ends_at, created_by, created_at
        FROM class_sessions
    `
	params := []interface{}{}

	if courseID != "" {
		query += " WHERE course_id = $1"
		params = append(params, courseID)
	}

	query += " ORDER BY starts_at DESC"

	rows, err := h.db.Query(query, params...)
	if err != nil {
		h.logger.Error("failed to fetch class sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}
	defer rows.Close()

	sessions := []models.ClassSession{}
	for rows.Next() {
		var session models.ClassSession
		err := rows.Scan(
			&session.ID,
			&session.CourseID,
			&session.Title,
			&session.StartsAt,
			&session.EndsAt,
			&session.CreatedBy,
			&session.CreatedAt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan session"})
			return
		}
		sessions = append(sessions, session)
	}

	c.JSON(http.StatusOK, sessions)
}

package handlers

import (
	"database/sql"
	"net/http"

	"rollcall_backend/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CourseHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCourseHandler(db *sql.DB, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{db: db, logger: logger}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var course models.CourseResponse
	err := h.db.QueryRow(`
        INSERT INTO courses (name)
        VALUES ($1)
        RETURNING id, name, created_at
    `, req.Name).Scan(&course.ID, &course.Name, &course.CreatedAt)

	if err != nil {
		h.logger.Error("failed to create course", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) GetCourses(c *gin.Context) {
	rows, err := h.db.Query(`
        SELECT id, name, created_at
        FROM courses
        ORDER BY created_at DESC
    `)
	if err != nil {
		h.logger.Error("failed to fetch courses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}
	defer rows.Close()

	courses := []models.CourseResponse{}
	for rows.Next() {
		var course models.CourseResponse
		if err := rows.Scan(&course.ID, &course.Name, &course.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan course"})
			return
		}
		courses = append(courses, course)
	}

	c.JSON(http.StatusOK, courses)
}

package handlers

import (
	"net/http"

	"rollcall_backend/models"
	"rollcall_backend/tokens"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckinValidator is the slice of the validator the check-in endpoint needs.
type CheckinValidator interface {
	CheckIn(tokenValue string, studentID, markedBy int) (*models.CheckinResponse, error)
}

type CheckinHandler struct {
	validator CheckinValidator
	logger    *zap.Logger
}

func NewCheckinHandler(validator CheckinValidator, logger *zap.Logger) *CheckinHandler {
	return &CheckinHandler{validator: validator, logger: logger}
}

// Checkin marks the student present for the session the scanned token
// belongs to. A repeat scan returns the existing status with created=false
// and HTTP 200, so mobile clients can retry on timeouts without risk.
func (h *CheckinHandler) Checkin(c *gin.Context) {
	var req models.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Students can only mark themselves; faculty and admins may submit on a
	// student's behalf. Either way the record names the caller as marker.
	callerID := c.GetInt("userID")
	if c.GetString("userRole") == "student" && req.StudentID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Students can only check in for themselves"})
		return
	}

	result, err := h.validator.CheckIn(req.Token, req.StudentID, callerID)
	if err != nil {
		switch err {
		case tokens.ErrInvalidToken:
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid token"})
		case tokens.ErrTokenExpired:
			c.JSON(http.StatusGone, gin.H{"error": "Token expired"})
		case tokens.ErrSessionClosed:
			c.JSON(http.StatusConflict, gin.H{"error": "Session has ended"})
		default:
			h.logger.Error("check-in failed",
				zap.Int("student_id", req.StudentID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

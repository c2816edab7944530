package handlers

import (
	"net/http"
	"strconv"

	"rollcall_backend/models"
	"rollcall_backend/tokens"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenIssuer is the slice of the issuer the token endpoints need.
type TokenIssuer interface {
	GetOrCreateActiveToken(sessionID int) (*models.SessionToken, error)
	Rotate(sessionID int, force bool) (*models.SessionToken, error)
}

type TokenHandler struct {
	issuer TokenIssuer
	logger *zap.Logger
}

func NewTokenHandler(issuer TokenIssuer, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{issuer: issuer, logger: logger}
}

// GetSessionToken returns the session's active QR token, minting one on the
// first request.
func (h *TokenHandler) GetSessionToken(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	token, err := h.issuer.GetOrCreateActiveToken(sessionID)
	if err != nil {
		h.respondTokenError(c, sessionID, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Token: token.Token, ExpiresAt: token.ExpiresAt})
}

// RotateSessionToken forces an immediate rotation ahead of the scheduled
// tick.
func (h *TokenHandler) RotateSessionToken(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	token, err := h.issuer.Rotate(sessionID, true)
	if err != nil {
		h.respondTokenError(c, sessionID, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Token: token.Token, ExpiresAt: token.ExpiresAt})
}

func (h *TokenHandler) respondTokenError(c *gin.Context, sessionID int, err error) {
	switch err {
	case tokens.ErrSessionNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case tokens.ErrSessionClosed:
		c.JSON(http.StatusConflict, gin.H{"error": "Session has ended"})
	default:
		h.logger.Error("failed to issue session token",
			zap.Int("session_id", sessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
	}
}

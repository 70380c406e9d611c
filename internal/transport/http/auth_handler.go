package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/smart-dobi/internal/service"
)

const sessionMaxAge = 7 * 24 * 60 * 60

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /api/auth/session
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var in struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, session, err := h.svc.ExchangeSession(c.Request.Context(), in.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(sessionCookie, session.SessionToken, sessionMaxAge, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "session_token": session.SessionToken})
}

// GET /api/auth/me (session required)
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), tokenFromRequest(c)); err != nil {
		writeError(c, err)
		return
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sportsync/sportsync-api/internal/log"
	"go.uber.org/zap"
)

// Machine-readable error types carried in every error envelope.
const (
	TypeAuth       = "AuthError"
	TypeSecurity   = "SecurityError"
	TypeValidation = "ValidationError"
	TypeNotFound   = "ResourceNotFound"
	TypeDuplicate  = "DuplicateResource"
	TypeRateLimit  = "RateLimitError"
	TypeServer     = "ServerError"
)

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   errorBody `json:"error"`
}

func respondError(c *gin.Context, status int, typ, message string) {
	c.JSON(status, gin.H{"success": false, "error": errorBody{Message: message, Type: typ}})
}

func respondErrorDetails(c *gin.Context, status int, typ, message string, details any) {
	c.JSON(status, gin.H{"success": false, "error": errorBody{Message: message, Type: typ, Details: details}})
}

func abortError(c *gin.Context, status int, typ, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": errorBody{Message: message, Type: typ}})
}

// serverError logs the underlying cause and responds with the catch-all type.
// The cause is surfaced in details only outside production.
func (h *Handler) serverError(c *gin.Context, message string, err error) {
	log.WithDD(c.Request.Context(), log.L).Error(message, zap.Error(err))
	if h.Cfg.IsProduction() {
		respondError(c, http.StatusInternalServerError, TypeServer, message)
		return
	}
	respondErrorDetails(c, http.StatusInternalServerError, TypeServer, message, err.Error())
}

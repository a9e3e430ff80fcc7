package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sportsync/sportsync-api/internal/domain"
	"github.com/sportsync/sportsync-api/internal/repo"
	"github.com/sportsync/sportsync-api/internal/security"
)

// Me godoc
// @Summary Current user profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} ErrorResponse
// @Router /api/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	au, _ := currentUser(c)

	u, err := h.Users.FindUserByID(c.Request.Context(), au.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusNotFound, TypeNotFound, "User not found")
			return
		}
		h.serverError(c, "Server error while fetching user profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
}

type updateProfileReq struct {
	Name              *string   `json:"name"`
	Email             *string   `json:"email"`
	SportsPreferences *[]string `json:"sportsPreferences"`
}

// UpdateMe godoc
// @Summary Update user profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body updateProfileReq true "profile fields"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Router /api/users/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	var in updateProfileReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, TypeValidation, "Invalid JSON body")
		return
	}

	set := bson.M{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			respondError(c, http.StatusBadRequest, TypeValidation, "Name is required")
			return
		}
		set["name"] = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !strings.Contains(email, "@") {
			respondError(c, http.StatusBadRequest, TypeValidation, "Please include a valid email")
			return
		}
		set["email"] = email
	}
	if in.SportsPreferences != nil {
		for _, s := range *in.SportsPreferences {
			if !domain.ValidSport(s) {
				respondError(c, http.StatusBadRequest, TypeValidation, "Unknown sport: "+s)
				return
			}
		}
		set["sports_preferences"] = *in.SportsPreferences
	}
	if len(set) == 0 {
		respondError(c, http.StatusBadRequest, TypeValidation, "Nothing to update")
		return
	}

	au, _ := currentUser(c)
	u, err := h.Users.UpdateUserProfile(c.Request.Context(), au.ID, set)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			respondError(c, http.StatusNotFound, TypeNotFound, "User not found")
		case errors.Is(err, repo.ErrDuplicate):
			respondError(c, http.StatusBadRequest, TypeDuplicate, "Email already in use")
		default:
			h.serverError(c, "Server error while updating profile", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": u, "message": "Profile updated successfully"})
}

type updatePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdatePassword godoc
// @Summary Change the current user's password
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body updatePasswordReq true "passwords"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Router /api/users/me/password [put]
func (h *Handler) UpdatePassword(c *gin.Context) {
	var in updatePasswordReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, TypeValidation, "Invalid JSON body")
		return
	}
	if len(in.NewPassword) < 6 {
		respondError(c, http.StatusBadRequest, TypeValidation, "Password must be at least 6 characters")
		return
	}

	au, _ := currentUser(c)
	u, err := h.Users.FindUserByID(c.Request.Context(), au.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusNotFound, TypeNotFound, "User not found")
			return
		}
		h.serverError(c, "Server error while updating password", err)
		return
	}
	// OAuth-only accounts have no local password to verify against
	if u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		respondError(c, http.StatusBadRequest, TypeAuth, "Current password is incorrect")
		return
	}

	hash, err := security.HashPassword(in.NewPassword)
	if err != nil {
		h.serverError(c, "Server error while updating password", err)
		return
	}
	if err := h.Users.UpdateUserPassword(c.Request.Context(), au.ID, hash); err != nil {
		h.serverError(c, "Server error while updating password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}

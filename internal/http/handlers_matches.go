package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sportsync/sportsync-api/internal/domain"
	"github.com/sportsync/sportsync-api/internal/queue"
	"github.com/sportsync/sportsync-api/internal/repo"
)

// ListMatches godoc
// @Summary List matches, optionally filtered
// @Tags matches
// @Produce json
// @Param sport query string false "sport or 'all'"
// @Param skillLevel query string false "skill level or 'all'"
// @Param date query string false "today|tomorrow|week|weekend|month"
// @Param lat query number false "latitude"
// @Param lng query number false "longitude"
// @Param distance query number false "radius in miles, default 10"
// @Success 200 {object} map[string]any
// @Router /api/matches [get]
func (h *Handler) ListMatches(c *gin.Context) {
	f := repo.MatchFilter{
		Sport:      c.Query("sport"),
		SkillLevel: c.Query("skillLevel"),
		DateBucket: c.Query("date"),
	}
	if lat, err := strconv.ParseFloat(c.Query("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(c.Query("lng"), 64); err == nil {
			f.Lat, f.Lng = &lat, &lng
		}
	}
	if d, err := strconv.ParseFloat(c.Query("distance"), 64); err == nil {
		f.DistanceMiles = d
	}

	matches, err := h.Matches.ListMatches(c.Request.Context(), f)
	if err != nil {
		h.serverError(c, "Server error while fetching matches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": matches})
}

// GetMatch godoc
// @Summary Get match by ID
// @Tags matches
// @Produce json
// @Param id path string true "match ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} ErrorResponse
// @Router /api/matches/{id} [get]
func (h *Handler) GetMatch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, TypeNotFound, "Match not found - invalid ID format")
		return
	}
	m, err := h.Matches.FindMatchByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusNotFound, TypeNotFound, "Match not found")
			return
		}
		h.serverError(c, "Server error while fetching match", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": m})
}

type matchLocationReq struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type createMatchReq struct {
	Title          string           `json:"title"`
	Sport          string           `json:"sport"`
	Location       matchLocationReq `json:"location"`
	Date           time.Time        `json:"date"`
	SkillLevel     string           `json:"skillLevel"`
	SpotsAvailable int              `json:"spotsAvailable"`
	Description    string           `json:"description"`
}

func (in *createMatchReq) validate() (string, bool) {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return "Title is required", false
	case len(in.Title) > 100:
		return "Title cannot be more than 100 characters", false
	case !domain.ValidSport(in.Sport):
		return "Please specify a valid sport", false
	case strings.TrimSpace(in.Location.Address) == "":
		return "Location address is required", false
	case in.Location.Lat == nil || *in.Location.Lat < -90 || *in.Location.Lat > 90:
		return "Valid latitude is required", false
	case in.Location.Lng == nil || *in.Location.Lng < -180 || *in.Location.Lng > 180:
		return "Valid longitude is required", false
	case in.Date.IsZero():
		return "Valid date is required", false
	case in.SkillLevel != "" && !domain.ValidSkillLevel(in.SkillLevel):
		return "Invalid skill level", false
	case in.SpotsAvailable < 1:
		return "Spots available must be a positive number", false
	case len(in.Description) > 500:
		return "Description cannot be more than 500 characters", false
	}
	return "", true
}

// CreateMatch godoc
// @Summary Create a match
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body createMatchReq true "match"
// @Success 201 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Router /api/matches [post]
func (h *Handler) CreateMatch(c *gin.Context) {
	var in createMatchReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, TypeValidation, "Invalid JSON body")
		return
	}
	if msg, ok := in.validate(); !ok {
		respondError(c, http.StatusBadRequest, TypeValidation, msg)
		return
	}

	au, _ := currentUser(c)
	m := &domain.Match{
		Title: strings.TrimSpace(in.Title),
		Sport: in.Sport,
		Location: domain.Location{
			Address: strings.TrimSpace(in.Location.Address),
			Point:   domain.NewGeoPoint(*in.Location.Lng, *in.Location.Lat),
		},
		Date:           in.Date,
		SkillLevel:     in.SkillLevel,
		SpotsAvailable: in.SpotsAvailable,
		Description:    in.Description,
		Organizer:      au.ID,
	}
	if err := h.Matches.CreateMatch(c.Request.Context(), m); err != nil {
		h.serverError(c, "Server error while creating match", err)
		return
	}

	h.publish(c, queue.KeyMatchCreated, queue.MatchCreated{
		MatchID: m.ID, Organizer: m.Organizer, Sport: m.Sport,
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": m})
}

type updateMatchReq struct {
	Title          *string           `json:"title"`
	Sport          *string           `json:"sport"`
	Location       *matchLocationReq `json:"location"`
	Date           *time.Time        `json:"date"`
	SkillLevel     *string           `json:"skillLevel"`
	SpotsAvailable *int              `json:"spotsAvailable"`
	Description    *string           `json:"description"`
}

// UpdateMatch godoc
// @Summary Update a match (organizer only)
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "match ID"
// @Param payload body updateMatchReq true "fields to change"
// @Success 200 {object} map[string]any
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/matches/{id} [put]
func (h *Handler) UpdateMatch(c *gin.Context) {
	m, ok := h.ownedMatch(c, "update")
	if !ok {
		return
	}

	var in updateMatchReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, TypeValidation, "Invalid JSON body")
		return
	}

	set := bson.M{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" || len(t) > 100 {
			respondError(c, http.StatusBadRequest, TypeValidation, "Invalid title")
			return
		}
		set["title"] = t
	}
	if in.Sport != nil {
		if !domain.ValidSport(*in.Sport) {
			respondError(c, http.StatusBadRequest, TypeValidation, "Please specify a valid sport")
			return
		}
		set["sport"] = *in.Sport
	}
	if in.Location != nil {
		loc := in.Location
		if strings.TrimSpace(loc.Address) == "" || loc.Lat == nil || loc.Lng == nil ||
			*loc.Lat < -90 || *loc.Lat > 90 || *loc.Lng < -180 || *loc.Lng > 180 {
			respondError(c, http.StatusBadRequest, TypeValidation, "Invalid location")
			return
		}
		set["location"] = domain.Location{
			Address: strings.TrimSpace(loc.Address),
			Point:   domain.NewGeoPoint(*loc.Lng, *loc.Lat),
		}
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			respondError(c, http.StatusBadRequest, TypeValidation, "Valid date is required")
			return
		}
		set["date"] = *in.Date
	}
	if in.SkillLevel != nil {
		if !domain.ValidSkillLevel(*in.SkillLevel) {
			respondError(c, http.StatusBadRequest, TypeValidation, "Invalid skill level")
			return
		}
		set["skill_level"] = *in.SkillLevel
	}
	if in.SpotsAvailable != nil {
		if *in.SpotsAvailable < 0 {
			respondError(c, http.StatusBadRequest, TypeValidation, "Spots available cannot be negative")
			return
		}
		set["spots_available"] = *in.SpotsAvailable
	}
	if in.Description != nil {
		if len(*in.Description) > 500 {
			respondError(c, http.StatusBadRequest, TypeValidation, "Description cannot be more than 500 characters")
			return
		}
		set["description"] = *in.Description
	}
	if len(set) == 0 {
		respondError(c, http.StatusBadRequest, TypeValidation, "Nothing to update")
		return
	}

	updated, err := h.Matches.UpdateMatch(c.Request.Context(), m.ID, set)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusNotFound, TypeNotFound, "Match not found")
			return
		}
		h.serverError(c, "Server error while updating match", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteMatch godoc
// @Summary Delete a match (organizer only)
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path string true "match ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/matches/{id} [delete]
func (h *Handler) DeleteMatch(c *gin.Context) {
	m, ok := h.ownedMatch(c, "delete")
	if !ok {
		return
	}
	if err := h.Matches.DeleteMatch(c.Request.Context(), m.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusNotFound, TypeNotFound, "Match not found")
			return
		}
		h.serverError(c, "Server error while deleting match", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Match removed"})
}

// JoinMatch godoc
// @Summary Join a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path string true "match ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/matches/{id}/join [post]
func (h *Handler) JoinMatch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, TypeNotFound, "Match not found - invalid ID format")
		return
	}
	au, _ := currentUser(c)

	m, err := h.Matches.JoinMatch(c.Request.Context(), id, au.ID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			respondError(c, http.StatusNotFound, TypeNotFound, "Match not found")
		case errors.Is(err, repo.ErrMatchFull):
			respondError(c, http.StatusBadRequest, TypeValidation, "Match is full")
		case errors.Is(err, repo.ErrAlreadyJoined):
			respondError(c, http.StatusBadRequest, TypeValidation, "Already joined this match")
		default:
			h.serverError(c, "Server error while joining match", err)
		}
		return
	}

	h.publish(c, queue.KeyMatchJoined, queue.MatchJoined{
		MatchID: m.ID, UserID: au.ID, SpotsAvailable: m.SpotsAvailable,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully joined match", "data": m})
}

// LeaveMatch godoc
// @Summary Leave a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path string true "match ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/matches/{id}/leave [post]
func (h *Handler) LeaveMatch(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, TypeNotFound, "Match not found - invalid ID format")
		return
	}
	au, _ := currentUser(c)

	m, err := h.Matches.LeaveMatch(c.Request.Context(), id, au.ID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			respondError(c, http.StatusNotFound, TypeNotFound, "Match not found")
		case errors.Is(err, repo.ErrNotJoined):
			respondError(c, http.StatusBadRequest, TypeValidation, "Not a participant in this match")
		default:
			h.serverError(c, "Server error while leaving match", err)
		}
		return
	}

	h.publish(c, queue.KeyMatchLeft, queue.MatchLeft{
		MatchID: m.ID, UserID: au.ID, SpotsAvailable: m.SpotsAvailable,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully left match", "data": m})
}

// ownedMatch loads the match from the path ID and enforces the organizer-only
// guard shared by update and delete.
func (h *Handler) ownedMatch(c *gin.Context, action string) (*domain.Match, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, TypeNotFound, "Match not found - invalid ID format")
		return nil, false
	}
	m, err := h.Matches.FindMatchByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusNotFound, TypeNotFound, "Match not found")
			return nil, false
		}
		h.serverError(c, "Server error while fetching match", err)
		return nil, false
	}
	au, _ := currentUser(c)
	if m.Organizer != au.ID {
		respondError(c, http.StatusUnauthorized, TypeAuth, "Not authorized to "+action+" this match")
		return nil, false
	}
	return m, true
}

package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sportsync/sportsync-api/internal/domain"
	"github.com/sportsync/sportsync-api/internal/log"
	"github.com/sportsync/sportsync-api/internal/metrics"
	"github.com/sportsync/sportsync-api/internal/oauth"
	"github.com/sportsync/sportsync-api/internal/queue"
	"github.com/sportsync/sportsync-api/internal/repo"
	"github.com/sportsync/sportsync-api/internal/security"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// Register godoc
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, TypeValidation, "Invalid JSON body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		respondError(c, http.StatusBadRequest, TypeValidation, "Name is required")
		return
	case !strings.Contains(email, "@"):
		respondError(c, http.StatusBadRequest, TypeValidation, "Please include a valid email")
		return
	case len(in.Password) < 6:
		respondError(c, http.StatusBadRequest, TypeValidation, "Password must be at least 6 characters")
		return
	case !domain.ValidRole(in.UserType):
		respondError(c, http.StatusBadRequest, TypeValidation, "User type must be coach, player or organizer")
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		h.serverError(c, "Server error during registration", err)
		return
	}

	u := &domain.User{Email: email, PasswordHash: hash, Name: name, Role: in.UserType}
	if err := h.Users.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			respondError(c, http.StatusBadRequest, TypeDuplicate, "User already exists")
			return
		}
		h.serverError(c, "Server error during registration", err)
		return
	}

	token, err := h.Issuer.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		h.serverError(c, "Server error during registration", err)
		return
	}
	metrics.TokensIssued.WithLabelValues("register").Inc()

	h.publish(c, queue.KeyUserRegistered, queue.UserRegistered{
		UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "userType": u.Role})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Authenticate user and get token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, TypeValidation, "Invalid JSON body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := h.Users.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusBadRequest, TypeAuth, "Invalid credentials")
			return
		}
		h.serverError(c, "Server error during login", err)
		return
	}
	// OAuth-only accounts have no password hash and cannot log in locally
	if u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, in.Password) {
		respondError(c, http.StatusBadRequest, TypeAuth, "Invalid credentials")
		return
	}

	token, err := h.Issuer.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		h.serverError(c, "Server error during login", err)
		return
	}
	metrics.TokensIssued.WithLabelValues("login").Inc()

	exposeToken(c, token)
	h.setTokenCookie(c, token, h.Issuer.TTL())

	h.publish(c, queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: u.ID, Email: u.Email})

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

// Refresh godoc
// @Summary Reissue the session token unconditionally
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} ErrorResponse
// @Router /api/auth/refresh [get]
func (h *Handler) Refresh(c *gin.Context) {
	au, _ := currentUser(c)

	u, err := h.Users.FindUserByID(c.Request.Context(), au.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(c, http.StatusNotFound, TypeAuth, "User not found")
			return
		}
		h.serverError(c, "Server error during token refresh", err)
		return
	}

	token, err := h.Issuer.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		h.serverError(c, "Server error during token refresh", err)
		return
	}
	metrics.TokensIssued.WithLabelValues("refresh").Inc()

	exposeToken(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token refreshed"})
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	// stateless tokens: just clear the cookie and acknowledge
	c.SetCookie("token", "none", 10, "/", "", h.Cfg.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// OAuthRedirect sends the browser to the provider's consent screen with a
// signed state value.
func (h *Handler) OAuthRedirect(p oauth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := h.State.Make(uuid.NewString())
		c.Redirect(http.StatusFound, p.AuthURL(state))
	}
}

// OAuthCallback exchanges the provider code, finds or creates the local user
// and redirects to the success page carrying the session token. Failures
// redirect to the login page rather than returning JSON.
func (h *Handler) OAuthCallback(p oauth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.State.Verify(c.Query("state")) {
			log.L.Warn("oauth: state verification failed", zap.String("provider", p.Name()))
			c.Redirect(http.StatusFound, "/login")
			return
		}
		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, "/login")
			return
		}

		profile, err := p.Exchange(c.Request.Context(), code)
		if err != nil {
			log.L.Warn("oauth: exchange failed", zap.String("provider", p.Name()), zap.Error(err))
			c.Redirect(http.StatusFound, "/login")
			return
		}

		u, err := h.findOrCreateOAuthUser(c.Request.Context(), p, profile)
		if err != nil {
			log.L.Error("oauth: find-or-create failed", zap.String("provider", p.Name()), zap.Error(err))
			c.Redirect(http.StatusFound, "/login")
			return
		}

		token, err := h.Issuer.Issue(u.ID.Hex(), u.Role)
		if err != nil {
			log.L.Error("oauth: token issue failed", zap.Error(err))
			c.Redirect(http.StatusFound, "/login")
			return
		}
		metrics.TokensIssued.WithLabelValues("oauth").Inc()

		q := url.Values{}
		q.Set("token", token)
		q.Set("userType", u.Role)
		c.Redirect(http.StatusFound, "/auth/success?"+q.Encode())
	}
}

// findOrCreateOAuthUser implements the shared find-or-create contract,
// parameterized by the provider's ID field.
func (h *Handler) findOrCreateOAuthUser(ctx context.Context, p oauth.Provider, profile *oauth.Profile) (*domain.User, error) {
	u, err := h.Users.FindUserByProviderID(ctx, p.IDField(), profile.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	u = &domain.User{
		Name:  profile.Name,
		Email: strings.ToLower(profile.Email),
		Role:  domain.RolePlayer, // default role for OAuth signups
	}
	setProviderID(u, p.IDField(), profile.ID)
	if err := h.Users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	go h.publishCtx(context.WithoutCancel(ctx), queue.KeyUserRegistered, queue.UserRegistered{
		UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
	}, "")
	return u, nil
}

func setProviderID(u *domain.User, field, id string) {
	switch field {
	case "google_id":
		u.GoogleID = id
	case "facebook_id":
		u.FacebookID = id
	case "apple_id":
		u.AppleID = id
	}
}

// publish emits a lifecycle event without blocking the request.
func (h *Handler) publish(c *gin.Context, key string, event any) {
	reqID := c.GetString(requestIDKey)
	go h.publishCtx(context.WithoutCancel(c.Request.Context()), key, event, reqID)
}

func (h *Handler) publishCtx(ctx context.Context, key string, event any, reqID string) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := h.Events.Publish(ctx, h.Cfg.RabbitExchange, key, event, reqID); err != nil {
		log.L.Warn("event publish failed", zap.String("key", key), zap.Error(err))
	}
}

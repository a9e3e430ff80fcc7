package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sportsync/sportsync-api/internal/domain"
	"github.com/sportsync/sportsync-api/internal/helper"
	"github.com/sportsync/sportsync-api/internal/log"
	"github.com/sportsync/sportsync-api/internal/metrics"
	"github.com/sportsync/sportsync-api/internal/repo"
	"github.com/sportsync/sportsync-api/internal/security"
)

const (
	authUserKey  = "authUser"
	requestIDKey = "X-Request-ID"

	// tokens closer to expiry than this are reissued by the refresh sweep
	refreshWindow = 24 * time.Hour
	// cookie lifetime for sweep-issued tokens
	sweepCookieAge = 24 * time.Hour
)

type AuthUser struct {
	ID   primitive.ObjectID
	Role string
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDKey, id)
		c.Next()
	}
}

func (h *Handler) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).
			Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method,
			strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// extractToken reads the session token with the fixed precedence:
// custom header, then Authorization bearer, then cookie.
func extractToken(c *gin.Context) string {
	if t := c.GetHeader("x-auth-token"); t != "" {
		return t
	}
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimPrefix(ah, "Bearer ")
	}
	if t, err := c.Cookie("token"); err == nil {
		return t
	}
	return ""
}

// Authenticate is the request gate: verifies signature and expiry and attaches
// the token's subject to the context. No database lookup happens here.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortError(c, http.StatusUnauthorized, TypeAuth, "No token, authorization denied")
			return
		}

		claims, err := h.Issuer.Parse(token)
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				abortError(c, http.StatusUnauthorized, TypeAuth, "Token has expired")
				return
			}
			abortError(c, http.StatusUnauthorized, TypeAuth, "Invalid token format")
			return
		}

		uid, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			abortError(c, http.StatusUnauthorized, TypeAuth, "Invalid token format")
			return
		}

		c.Set(authUserKey, AuthUser{ID: uid, Role: claims.Role})
		c.Next()
	}
}

func currentUser(c *gin.Context) (AuthUser, bool) {
	v, ok := c.Get(authUserKey)
	if !ok {
		return AuthUser{}, false
	}
	au, ok := v.(AuthUser)
	return au, ok
}

// RefreshSweep reissues tokens that are within refreshWindow of expiry, after
// re-validating the user's live state. It runs after Authenticate. Refresh is
// best-effort: verification failures and unexpected store errors are swallowed
// and the request proceeds; only identity mismatches and failed live checks
// reject the request.
func (h *Handler) RefreshSweep() gin.HandlerFunc {
	return func(c *gin.Context) {
		au, ok := currentUser(c)
		if !ok {
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := h.Issuer.ParseStrict(token)
		if err != nil {
			// stricter options than the gate's; skip the refresh, keep the request
			log.WithDD(c.Request.Context(), log.L).Debug("refresh sweep: verification failed",
				zap.Error(err))
			c.Next()
			return
		}

		if claims.Subject != au.ID.Hex() {
			abortError(c, http.StatusUnauthorized, TypeAuth, "Authentication failed")
			return
		}
		if claims.Issuer != "" && claims.Issuer != h.Issuer.Name() {
			abortError(c, http.StatusUnauthorized, TypeAuth, "Invalid token source")
			return
		}

		if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) >= refreshWindow {
			c.Next()
			return
		}

		u, err := h.Users.FindUserByID(c.Request.Context(), au.ID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				abortError(c, http.StatusUnauthorized, TypeAuth, "Authentication failed")
				return
			}
			// transient store failure must not block the primary request
			log.WithDD(c.Request.Context(), log.L).Warn("refresh sweep: user lookup failed",
				zap.Error(err))
			c.Next()
			return
		}
		if !u.Active() {
			abortError(c, http.StatusUnauthorized, TypeAuth, "Account is not active")
			return
		}
		if u.PasswordChangedAt != nil && claims.IssuedAt != nil &&
			claims.IssuedAt.Time.Before(*u.PasswordChangedAt) {
			abortError(c, http.StatusUnauthorized, TypeAuth, "Authentication failed - please login again")
			return
		}
		if u.Flagged(domain.FlagSuspiciousActivity) {
			abortError(c, http.StatusUnauthorized, TypeSecurity,
				"Account security issue detected - please contact support")
			return
		}

		fresh, err := h.Issuer.Issue(u.ID.Hex(), u.Role)
		if err != nil {
			log.WithDD(c.Request.Context(), log.L).Error("refresh sweep: issue failed", zap.Error(err))
			c.Next()
			return
		}
		exposeToken(c, fresh)
		h.setTokenCookie(c, fresh, sweepCookieAge)
		metrics.TokensIssued.WithLabelValues("sweep").Inc()

		if err := h.Users.TouchTokenRefresh(c.Request.Context(), u.ID); err != nil {
			log.WithDD(c.Request.Context(), log.L).Warn("refresh sweep: touch failed", zap.Error(err))
		}
		log.WithDD(c.Request.Context(), log.L).Info("token refreshed",
			zap.String("user_id", u.ID.Hex()),
			zap.String("token_fp", helper.Hash8(fresh)))

		c.Next()
	}
}

// RateLimit is a Redis fixed-window limiter keyed by route class and client
// IP. Redis being unreachable fails open: limiting is protection, not a
// correctness requirement.
func (h *Handler) RateLimit(class string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Redis == nil || max <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("rl:%s:%s", class, c.ClientIP())
		n, err := h.Redis.CountHit(c.Request.Context(), key, window)
		if err != nil {
			log.L.Warn("rate limit: redis unavailable", zap.Error(err))
			c.Next()
			return
		}
		if n > int64(max) {
			abortError(c, http.StatusTooManyRequests, TypeRateLimit,
				"Too many requests, please try again later.")
			return
		}
		c.Next()
	}
}

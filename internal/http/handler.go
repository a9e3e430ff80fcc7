package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sportsync/sportsync-api/internal/config"
	"github.com/sportsync/sportsync-api/internal/oauth"
	"github.com/sportsync/sportsync-api/internal/queue"
	"github.com/sportsync/sportsync-api/internal/repo"
	"github.com/sportsync/sportsync-api/internal/security"
)

type Handler struct {
	Users   UserStore
	Matches MatchStore
	DB      Pinger
	Issuer  *security.Issuer
	Cfg     config.Config
	Redis   *repo.Redis // nil disables rate limiting
	Events  queue.Publisher

	Providers map[string]oauth.Provider
	State     *oauth.StateSigner
}

func NewHandler(store *repo.Store, issuer *security.Issuer, cfg config.Config, rds *repo.Redis, pub queue.Publisher) *Handler {
	h := &Handler{
		Users:     store,
		Matches:   store,
		DB:        store,
		Issuer:    issuer,
		Cfg:       cfg,
		Redis:     rds,
		Events:    pub,
		State:     oauth.NewStateSigner(cfg.OAuthStateSecret),
		Providers: map[string]oauth.Provider{},
	}
	if p := cfg.Google; p.ClientID != "" {
		h.Providers["google"] = oauth.NewGoogle(p.ClientID, p.ClientSecret, p.CallbackURL)
	}
	if p := cfg.Facebook; p.ClientID != "" {
		h.Providers["facebook"] = oauth.NewFacebook(p.ClientID, p.ClientSecret, p.CallbackURL)
	}
	if p := cfg.Apple; p.ClientID != "" {
		h.Providers["apple"] = oauth.NewApple(p.ClientID, p.ClientSecret, p.CallbackURL)
	}
	return h
}

// setTokenCookie writes the session cookie the way the login/refresh flows
// share it: httpOnly always, secure + strict same-site only in production.
func (h *Handler) setTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	if h.Cfg.IsProduction() {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie("token", token, int(maxAge.Seconds()), "/", h.Cfg.CookieDomain, true, true)
		return
	}
	c.SetSameSite(http.SameSiteDefaultMode)
	c.SetCookie("token", token, int(maxAge.Seconds()), "/", "", false, true)
}

// exposeToken surfaces a freshly issued token on the response headers.
func exposeToken(c *gin.Context, token string) {
	c.Header("x-auth-token", token)
	c.Header("Access-Control-Expose-Headers", "x-auth-token")
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.DB.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	status := gin.H{"status": "ok"}
	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()); err != nil {
			status["redis"] = "down"
		}
	}
	c.JSON(http.StatusOK, status)
}

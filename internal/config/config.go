package config

import (
	"errors"
	"os"
	"strconv"
)

type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

type Config struct {
	Port         string
	Env          string // "development" | "production"
	MongoURI     string
	MongoDB      string
	JWTSecret    string
	JWTTTLDays   int
	JWTIssuer    string
	CookieDomain string

	RedisAddr string

	// fixed-window limits per route class
	RateWindowMin   int // window for the global/api/login classes, minutes
	RateGlobalMax   int
	RateAPIMax      int
	RateLoginMax    int
	RateRegisterMax int // per hour
	RateMatchMax    int // per hour, covers create/update/join/leave

	RabbitURL        string
	RabbitExchange   string
	OAuthStateSecret string

	Google   OAuthProvider
	Facebook OAuthProvider
	Apple    OAuthProvider

	DDEnabled bool
}

func Load() (Config, error) {
	cfg := Config{
		Port:         getenv("APP_PORT", "8080"),
		Env:          getenv("APP_ENV", "development"),
		MongoURI:     getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getenv("MONGO_DB", "sportsync"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTTTLDays:   atoi(getenv("JWT_TTL_DAYS", "30")),
		JWTIssuer:    getenv("JWT_ISSUER", "sportsync-api"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),

		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),

		RateWindowMin:   atoi(getenv("RATE_LIMIT_WINDOW_MIN", "15")),
		RateGlobalMax:   atoi(getenv("RATE_LIMIT_MAX_REQUESTS", "100")),
		RateAPIMax:      atoi(getenv("API_RATE_LIMIT_MAX", "50")),
		RateLoginMax:    atoi(getenv("LOGIN_RATE_LIMIT_MAX", "5")),
		RateRegisterMax: atoi(getenv("REGISTER_RATE_LIMIT_MAX", "3")),
		RateMatchMax:    atoi(getenv("MATCH_RATE_LIMIT_MAX", "20")),

		RabbitURL:        os.Getenv("RABBIT_URL"),
		RabbitExchange:   getenv("RABBIT_EXCHANGE", "sportsync.events"),
		OAuthStateSecret: getenv("OAUTH_STATE_SECRET", "dev_state_secret"),

		Google: OAuthProvider{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},
		Facebook: OAuthProvider{
			ClientID:     os.Getenv("FACEBOOK_APP_ID"),
			ClientSecret: os.Getenv("FACEBOOK_APP_SECRET"),
			CallbackURL:  os.Getenv("FACEBOOK_CALLBACK_URL"),
		},
		Apple: OAuthProvider{
			ClientID:     os.Getenv("APPLE_CLIENT_ID"),
			ClientSecret: os.Getenv("APPLE_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("APPLE_CALLBACK_URL"),
		},

		DDEnabled: getenv("DD_ENABLED", "false") == "true",
	}

	// a missing signing secret is a startup error, not a runtime one
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}
	if cfg.JWTTTLDays <= 0 {
		return Config{}, errors.New("config: JWT_TTL_DAYS must be positive")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

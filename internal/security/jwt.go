package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly signed but
	// past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures and claim
	// type mismatches.
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issuer creates and verifies HS256 session tokens. Both the gate and the
// refresh sweep verify through the same Issuer, so the algorithm allow-list
// cannot diverge between the two passes.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("security: empty signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("security: non-positive token ttl")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }
func (i *Issuer) Name() string { return i.issuer }

func (i *Issuer) keyfunc(*jwt.Token) (interface{}, error) { return i.secret, nil }

// Issue signs a token with the user ID as subject and a fixed validity window.
func (i *Issuer) Issue(userID, role string) (string, error) {
	now := time.Now()
	c := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(i.secret)
}

// Parse verifies signature and expiry and returns the typed claims.
// Failures are classified as ErrTokenExpired or ErrTokenInvalid.
func (i *Issuer) Parse(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, i.keyfunc,
		jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrTokenInvalid
	}
	return c, nil
}

// ParseStrict applies the refresh sweep's verification options: on top of
// Parse it enforces a maximum token age equal to the configured lifetime,
// measured from the iat claim.
func (i *Issuer) ParseStrict(token string) (*Claims, error) {
	c, err := i.Parse(token)
	if err != nil {
		return nil, err
	}
	if c.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat", ErrTokenInvalid)
	}
	if time.Since(c.IssuedAt.Time) > i.ttl {
		return nil, fmt.Errorf("%w: max age exceeded", ErrTokenExpired)
	}
	return c, nil
}

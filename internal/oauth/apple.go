package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

var appleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://appleid.apple.com/auth/authorize",
	TokenURL: "https://appleid.apple.com/auth/token",
}

type Apple struct {
	cfg *oauth2.Config
}

func NewApple(clientID, clientSecret, redirectURI string) *Apple {
	return &Apple{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"name", "email"},
			Endpoint:     appleEndpoint,
		},
	}
}

func (a *Apple) Name() string { return "apple" }
func (a *Apple) IDField() string { return "apple_id" }

func (a *Apple) AuthURL(state string) string {
	// Apple requires response_mode=form_post when the name/email scopes are
	// requested.
	return a.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("response_mode", "form_post"))
}

// Exchange reads identity from the id_token; Apple has no profile endpoint and
// only exposes the email inside the token. Display name falls back to a
// placeholder since Apple only sends it on first authorization.
func (a *Apple) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("apple: no id_token")
	}
	claims, err := parseIDToken(rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("apple: %w", err)
	}
	if iss, _ := claims["iss"].(string); iss != "https://appleid.apple.com" {
		return nil, errors.New("apple: bad iss")
	}
	if aud, _ := claims["aud"].(string); aud != a.cfg.ClientID {
		return nil, errors.New("apple: bad aud")
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, errors.New("apple: missing email/sub")
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = "Apple User"
	}
	return &Profile{ID: sub, Email: email, Name: name}, nil
}

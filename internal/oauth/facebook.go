package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	fb "golang.org/x/oauth2/facebook"
)

const facebookProfileURL = "https://graph.facebook.com/v12.0/me?fields=id,name,email"

type Facebook struct {
	cfg *oauth2.Config
	// profileURL is swappable for tests
	profileURL string
}

func NewFacebook(appID, appSecret, redirectURI string) *Facebook {
	return &Facebook{
		cfg: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"email"},
			Endpoint:     fb.Endpoint,
		},
		profileURL: facebookProfileURL,
	}
}

func (f *Facebook) Name() string { return "facebook" }
func (f *Facebook) IDField() string { return "facebook_id" }

func (f *Facebook) AuthURL(state string) string {
	return f.cfg.AuthCodeURL(state)
}

// Exchange trades the code for an access token and fetches the profile from
// the Graph API; Facebook does not return an id_token.
func (f *Facebook) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	client := f.cfg.Client(ctx, tok)
	resp, err := client.Get(f.profileURL)
	if err != nil {
		return nil, fmt.Errorf("facebook: fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook: profile status %d", resp.StatusCode)
	}

	var p struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("facebook: decode profile: %w", err)
	}
	if p.ID == "" || p.Email == "" {
		return nil, errors.New("facebook: missing email/id")
	}
	return &Profile{ID: p.ID, Email: p.Email, Name: p.Name}, nil
}

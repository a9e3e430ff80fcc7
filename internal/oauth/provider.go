package oauth

import "context"

// Profile is the provider-independent identity handed to the find-or-create
// routine.
type Profile struct {
	ID    string // provider-scoped external ID
	Email string
	Name  string
}

// Provider is implemented once per OAuth provider. All implementations produce
// the same Profile shape so the callback handler stays provider-agnostic.
type Provider interface {
	Name() string
	// IDField is the user collection field holding this provider's external
	// ID ("google_id", "facebook_id", "apple_id").
	IDField() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

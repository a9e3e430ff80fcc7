package oauth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	s := NewStateSigner("secret")
	state := s.Make("nonce-123")
	assert.True(t, s.Verify(state))
}

func TestStateTamperDetected(t *testing.T) {
	s := NewStateSigner("secret")
	state := s.Make("nonce-123")

	parts := strings.SplitN(state, ".", 2)
	require.Len(t, parts, 2)

	assert.False(t, s.Verify("evil."+parts[1]), "altered payload")
	assert.False(t, s.Verify(parts[0]+".AAAA"), "altered signature")
	assert.False(t, s.Verify(parts[0]), "missing signature")
	assert.False(t, s.Verify(""), "empty state")
}

func TestStateSignerKeyed(t *testing.T) {
	a := NewStateSigner("secret-a")
	b := NewStateSigner("secret-b")
	assert.False(t, b.Verify(a.Make("nonce")))
}

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", "campuslink-test", time.Hour)

	token, err := tm.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", "campuslink-test", time.Minute)

	token, err := tm.Issue("alice")
	require.NoError(t, err)

	// Move the verifier's clock past the expiry window.
	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_Tampered(t *testing.T) {
	tm := NewTokenManager("test-secret", "campuslink-test", time.Hour)

	token, err := tm.Issue("alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = tm.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", "campuslink-test", time.Hour)
	verifier := NewTokenManager("secret-two", "campuslink-test", time.Hour)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_Malformed(t *testing.T) {
	tm := NewTokenManager("test-secret", "campuslink-test", time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	issued := Claims{
		UserID:    "user-emp-jane",
		Role:      "Employee",
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}

	claims, err := verifier.Verify(verifier.Sign(issued))
	require.NoError(t, err)
	require.Equal(t, issued.UserID, claims.UserID)
	require.Equal(t, issued.Role, claims.Role)
	require.True(t, issued.ExpiresAt.Equal(claims.ExpiresAt))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	token := verifier.Sign(Claims{UserID: "u1", Role: "Employee", ExpiresAt: time.Now().Add(time.Hour)})

	payload, sig, _ := strings.Cut(token, ".")
	other := NewTokenVerifier("test-secret").Sign(Claims{UserID: "u1", Role: "Admin", ExpiresAt: time.Now().Add(time.Hour)})
	forgedPayload, _, _ := strings.Cut(other, ".")
	_ = payload

	_, err := verifier.Verify(forgedPayload + "." + sig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewTokenVerifier("secret-a")
	verifier := NewTokenVerifier("secret-b")
	token := signer.Sign(Claims{UserID: "u1", Role: "Employee", ExpiresAt: time.Now().Add(time.Hour)})

	_, err := verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")
	token := verifier.Sign(Claims{UserID: "u1", Role: "Employee", ExpiresAt: time.Now().Add(-time.Minute)})

	_, err := verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	for _, token := range []string{"", "nodot", "a.b", "!!!.###"} {
		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/helpdesk-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	customerID := "cust-1"
	user := &domain.User{
		ID:         "u1",
		Role:       domain.RoleCustomerOwner,
		CustomerID: &customerID,
	}

	token, exp, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleCustomerOwner, claims.Role)
	require.NotNil(t, claims.CustomerID)
	assert.Equal(t, "cust-1", *claims.CustomerID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 30)
	verifier := NewTokenManager("secret-b", 30)

	token, _, err := issuer.GenerateToken(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	_, err := tm.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, ComparePassword(hash, "hunter2"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestPasswordHashingClampsInvalidCost(t *testing.T) {
	// Zero cost comes from an unset config; the hash must still verify.
	hash, err := HashPassword("hunter2", 0)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "hunter2"))
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", "operator", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	token, err := GenerateToken("s3cret", "operator", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("s3cret", "operator", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("s3cret", expired)
	assert.Error(t, err)

	_, err = ValidateToken("s3cret", "not.a.token")
	assert.Error(t, err)
}

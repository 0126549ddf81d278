package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)
	tenantID := uuid.New()

	token, err := m.GenerateToken("user-1", tenantID, "SELLER")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "SELLER", claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.GenerateToken("user-1", uuid.New(), "OWNER")
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noTenant, err := m.GenerateToken("user-1", uuid.Nil, "OWNER")
	require.NoError(t, err)
	_, err = m.ValidateToken(noTenant)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewManager("secret", time.Nanosecond)
	old, err := expired.GenerateToken("user-1", uuid.New(), "OWNER")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = expired.ValidateToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionSet_Grants(t *testing.T) {
	admin := PermissionSet{PermissionAll}
	assert.True(t, admin.Grants("sales"))
	assert.True(t, admin.Grants("anything-at-all"))

	cashier := PermissionSet{"products", "sales"}
	assert.True(t, cashier.Grants("sales"))
	assert.False(t, cashier.Grants("users"))

	var empty PermissionSet
	assert.False(t, empty.Grants("sales"))
}

func TestJWT_IssueAndParse(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	u := &User{ID: 7, Email: "cashier@shop.local", Name: "Cashier", RoleName: "cashier"}

	token, err := svc.Issue(u, PermissionSet{"products", "sales"})
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "cashier@shop.local", claims.Email)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, []string{"products", "sales"}, claims.Permissions)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).Issue(&User{ID: 1}, nil)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).Parse(token)
	require.Error(t, err)
}

func TestJWT_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	svc.ttl = -time.Minute

	token, err := svc.Issue(&User{ID: 1}, nil)
	require.NoError(t, err)

	_, err = svc.Parse(token)
	require.Error(t, err)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	_, err := svc.Parse("not.a.token")
	require.Error(t, err)
}

package main

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sad/backend/pkg/jwt"
)

func TestValidateIssue(t *testing.T) {
	assert.Error(t, validateIssue("", "admin", ""))
	assert.NoError(t, validateIssue("u1", "admin", ""))
	assert.NoError(t, validateIssue("u1", "super_admin", ""))
	assert.Error(t, validateIssue("u1", "worker", ""))
	assert.NoError(t, validateIssue("u1", "worker", "w1"))
	assert.Error(t, validateIssue("u1", "root", ""))
}

func TestDescribeToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	claims := &jwt.Claims{UserID: "u1"}
	claims.ExpiresAt = jwtv5.NewNumericDate(now.Add(-time.Minute))
	info := describeToken(claims, "HS256", now)
	assert.True(t, info.Expired)
	require.NotNil(t, info.ExpiresAt)
	assert.Equal(t, "HS256", info.Algorithm)

	claims.ExpiresAt = jwtv5.NewNumericDate(now.Add(time.Hour))
	assert.False(t, describeToken(claims, "HS256", now).Expired)

	assert.False(t, describeToken(&jwt.Claims{}, "", now).Expired)
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(&env{})

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"rls", "apply"},
		{"rls", "status"},
		{"repair", "schema"},
		{"workers", "sync-ids"},
		{"token", "decode"},
		{"token", "verify"},
		{"token", "issue"},
		{"notify", "test"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestTokenDecodeRejectsGarbage(t *testing.T) {
	root := newRootCmd(&env{})
	root.SetArgs([]string{"token", "decode", "not-a-token"})
	assert.Error(t, root.Execute())
}

func TestCheckServiceKey(t *testing.T) {
	assert.NoError(t, checkServiceKey("", ""))
	assert.NoError(t, checkServiceKey("", "anything"))
	assert.NoError(t, checkServiceKey("s3cret", "s3cret"))
	assert.Error(t, checkServiceKey("s3cret", ""))
	assert.Error(t, checkServiceKey("s3cret", "guess"))
}

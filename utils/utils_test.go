package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateETagStable(t *testing.T) {
	id := primitive.NewObjectID()
	at := time.Now()

	first := GenerateETag(id, at)
	assert.Equal(t, first, GenerateETag(id, at))
	assert.NotEqual(t, first, GenerateETag(id, at.Add(time.Second)))
	assert.NotEqual(t, first, GenerateETag(primitive.NewObjectID(), at))
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPassword("hunter2hunter2", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := CreateAccessToken("64b0c1d2e3f4a5b6c7d8e9f0", "test-secret")
	require.NoError(t, err)

	userID, err := VerifyAccessToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "64b0c1d2e3f4a5b6c7d8e9f0", userID)

	_, err = VerifyAccessToken(token, "other-secret")
	assert.Error(t, err)

	_, err = VerifyAccessToken("not-a-token", "test-secret")
	assert.Error(t, err)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ruth Boaz", FullName("Ruth", "Boaz"))
	assert.Equal(t, "Ruth", FullName("Ruth", ""))
	assert.Equal(t, "Boaz", FullName("", "Boaz"))
}

func TestExtractPublicID(t *testing.T) {
	id, err := extractPublicID("https://res.cloudinary.com/demo/image/upload/v1234567890/orchards/abc123.jpg")
	require.NoError(t, err)
	assert.Equal(t, "orchards/abc123", id)

	id, err = extractPublicID("https://res.cloudinary.com/demo/image/upload/orchards/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, "orchards/abc123", id)

	_, err = extractPublicID("https://res.cloudinary.com/short")
	assert.Error(t, err)
}

package admin

import (
	"testing"
	"time"

	"github.com/deppfellow/guardian/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanUserRequest_Validate(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.NoError(t, (&BanUserRequest{UserID: "u1"}).Validate())
	assert.NoError(t, (&BanUserRequest{UserID: "u1", BanExpires: &future}).Validate())
	assert.Error(t, (&BanUserRequest{}).Validate())

	err := (&BanUserRequest{UserID: "u1", BanExpires: &past}).Validate()
	var custom validation.CustomValidationErrors
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, "banExpires", custom[0].Field)
}

func TestBanUserRequest_ExpiresIn(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(90 * time.Minute)
	almost := now.Add(100 * time.Millisecond)

	assert.Nil(t, (&BanUserRequest{UserID: "u1"}).ExpiresIn(now))
	assert.Equal(t, int64(5400), *(&BanUserRequest{BanExpires: &expires}).ExpiresIn(now))
	assert.Equal(t, int64(1), *(&BanUserRequest{BanExpires: &almost}).ExpiresIn(now))
}

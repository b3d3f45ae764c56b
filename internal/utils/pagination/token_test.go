package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	completedAt := time.Date(2024, 5, 15, 14, 30, 45, 123456000, time.UTC)

	token := EncodeToken(completedAt, "8d3c9f3e-1f7b-4bb2-9d4e-0c1f5a2b3c4d")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, completedAt.Equal(decodedAt), "Completion time should match after decode")
	assert.Equal(t, "8d3c9f3e-1f7b-4bb2-9d4e-0c1f5a2b3c4d", decodedID)

	// Non-UTC input is normalized
	local := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("WAT", 3600))
	decodedLocal, _, err := DecodeToken(EncodeToken(local, "x"))
	assert.NoError(t, err)
	assert.True(t, local.Equal(decodedLocal))
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z"))
	_, _, err = DecodeToken(noSeparator)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	emptyID := base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z|"))
	_, _, err = DecodeToken(emptyID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|abc"))
	_, _, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "completed_at parse")
}

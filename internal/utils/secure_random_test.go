package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOAuthState(t *testing.T) {
	a, err := NewOAuthState()
	require.NoError(t, err)
	b, err := NewOAuthState()
	require.NoError(t, err)

	assert.Len(t, a, 22)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, url.QueryEscape(a), "state must survive a query string unescaped")
}

func TestRandomURLToken_RejectsNonPositiveLength(t *testing.T) {
	_, err := randomURLToken(0)
	assert.Error(t, err)
}

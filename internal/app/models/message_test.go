package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

func TestNormalizeMessageContent(t *testing.T) {
	content, err := NormalizeMessageContent("  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestNormalizeMessageContent_WhitespaceOnly(t *testing.T) {
	_, err := NormalizeMessageContent("   \n\t  ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)
}

func TestNormalizeMessageContent_Bounds(t *testing.T) {
	content, err := NormalizeMessageContent(strings.Repeat("a", MaxMessageLength))
	require.NoError(t, err)
	assert.Len(t, content, MaxMessageLength)

	_, err = NormalizeMessageContent(strings.Repeat("a", MaxMessageLength+1))
	assert.ErrorIs(t, err, apperrors.ErrMessageTooLong)
}

func TestNormalizeMessageContent_CountsRunesNotBytes(t *testing.T) {
	// Multibyte text at the limit exceeds the limit in bytes but not in runes.
	content, err := NormalizeMessageContent(strings.Repeat("ğ", MaxMessageLength))
	require.NoError(t, err)
	assert.Greater(t, len(content), MaxMessageLength)

	_, err = NormalizeMessageContent(strings.Repeat("ğ", MaxMessageLength+1))
	assert.ErrorIs(t, err, apperrors.ErrMessageTooLong)
}

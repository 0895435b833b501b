package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse 1")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse 1", hash)

	assert.True(t, CheckPassword(hash, "correct horse 1"))
	assert.False(t, CheckPassword(hash, "wrong password 1"))
	assert.False(t, CheckPassword("", "anything"))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Sufficient1!", false},
		{"too short", "Ab1!", true},
		{"no digit", "OnlyLetters!", true},
		{"no uppercase", "sufficient1!", true},
		{"no lowercase", "SUFFICIENT1!", true},
		{"no special", "Sufficient1", true},
		{"space is not special", "Sufficient1 ", true},
		{"unlisted punctuation is not special", "Sufficient1~", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

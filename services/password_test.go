package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("p1")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 2, "hash must be salt$hash")
	assert.NotContains(t, hash, "p1")

	// a fresh salt every time
	hash2, err := HashPassword("p1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		stored   string
		provided string
		want     bool
		wantErr  bool
	}{
		{"match", hash, "correct-horse", true, false},
		{"wrong password", hash, "battery-staple", false, false},
		{"empty password", hash, "", false, false},
		{"malformed stored hash", "not-a-hash", "correct-horse", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.stored, tt.provided)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

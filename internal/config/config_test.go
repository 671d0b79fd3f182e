package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"15m", 15 * time.Minute, true},
		{"1h", time.Hour, true},
		{"30d", 30 * 24 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{" 7d ", 7 * 24 * time.Hour, true},
		{"", 0, false},
		{"0d", 0, false},
		{"-5m", 0, false},
		{"xd", 0, false},
		{"banana", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_BOOL", "yes")
	assert.True(t, envBool("X_BOOL", false))
	t.Setenv("X_BOOL", "0")
	assert.False(t, envBool("X_BOOL", true))
	t.Setenv("X_BOOL", "gibberish")
	assert.True(t, envBool("X_BOOL", true))
	assert.False(t, envBool("X_BOOL_UNSET", false))
}

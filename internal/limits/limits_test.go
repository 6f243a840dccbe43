package limits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstack/internal/config"
)

func TestFromConfigDefaults(t *testing.T) {
	got, err := FromConfig(config.LimitsConfig{})
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestFromConfigOverrides(t *testing.T) {
	got, err := FromConfig(config.LimitsConfig{
		MaxBodyBytes:        512,
		ReadHeaderTimeoutMS: 100,
		WriteTimeoutMS:      250,
		IdleTimeoutMS:       1000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(512), got.MaxBodyBytes)
	assert.Equal(t, 100*time.Millisecond, got.ReadHeaderTimeout)
	assert.Equal(t, 250*time.Millisecond, got.WriteTimeout)
	assert.Zero(t, got.ReadTimeout, "read timeout stays disabled")
	assert.Equal(t, time.Second, got.IdleTimeout)
}

func TestFromConfigRejectsNegative(t *testing.T) {
	_, err := FromConfig(config.LimitsConfig{MaxBodyBytes: -1})
	assert.Error(t, err)
	_, err = FromConfig(config.LimitsConfig{ReadHeaderTimeoutMS: -5})
	assert.Error(t, err)
}

// internal/common/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5*time.Second, cfg.Timeouts.Probe)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Submit)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Transfer)
	assert.Equal(t, 600*time.Second, cfg.Timeouts.Job)
	assert.Equal(t, 60*time.Second, cfg.Timeouts.Transcode)
	assert.Equal(t, []string{"prompt", "text", "string", "value"}, cfg.Inject.TextFields)
	assert.Equal(t, "ffmpeg", cfg.Media.FFmpegPath)
}

func TestValidateConfig(t *testing.T) {
	cfg := Default()
	require.Error(t, validateConfig(cfg), "empty address must be rejected")

	cfg.Server.Address = "127.0.0.1:8188"
	assert.NoError(t, validateConfig(cfg))

	cfg.Timeouts.Probe = -time.Second
	assert.Error(t, validateConfig(cfg))
}

func TestDefaultTextFieldsNotShared(t *testing.T) {
	a := Default()
	a.Inject.TextFields[0] = "mutated"
	b := Default()
	assert.Equal(t, "prompt", b.Inject.TextFields[0])
}

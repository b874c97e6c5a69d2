package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("TRIAGE_MAX_IMAGE_MB", "")

	cfg := Load()

	assert.Equal(t, "gemini", cfg.Ai.LLMProvider)
	assert.Equal(t, 3, cfg.Triage.MaxImages)
	assert.Equal(t, int64(8*1024*1024), cfg.Triage.MaxImageBytes)
	assert.Equal(t, "", cfg.Keys.GoogleGemini)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-custom")
	t.Setenv("GEMINI_TEMPERATURE", "0.9")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "5")
	t.Setenv("TRIAGE_MAX_IMAGE_MB", "2")

	cfg := Load()

	assert.Equal(t, "gemini-custom", cfg.Ai.GeminiModel)
	assert.Equal(t, 0.9, cfg.Ai.Temperature)
	assert.Equal(t, 5*time.Second, cfg.Ai.Timeout)
	assert.Equal(t, int64(2*1024*1024), cfg.Triage.MaxImageBytes)
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}

package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:       5,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Second,
	}

	assert.Equal(t, time.Second, cfg.Backoff(1))
	assert.Equal(t, 2*time.Second, cfg.Backoff(2))
	assert.Equal(t, 4*time.Second, cfg.Backoff(3))
	// Capped by MaxBackoff from here on.
	assert.Equal(t, 5*time.Second, cfg.Backoff(4))
	assert.Equal(t, 5*time.Second, cfg.Backoff(10))
}

func TestBackoffWithJitter_StaysWithinBounds(t *testing.T) {
	c := NewClient(EndpointConfig{Provider: "ollama", Model: "m"},
		WithRetryConfig(RetryConfig{
			MaxAttempts:       3,
			BackoffBase:       time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        30 * time.Second,
		}))

	for i := 0; i < 100; i++ {
		d := c.backoffWithJitter(2)
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.LessOrEqual(t, d, 2500*time.Millisecond)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Greater(t, cfg.BackoffMultiplier, 1.0)
	assert.Greater(t, cfg.PerCallTimeout, time.Duration(0))
}

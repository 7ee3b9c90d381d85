package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.EqualValues(t, 1, cfg.DefaultMaxRetries, "an always-retryable action with max_retries unset must run N+1=2 times")
	assert.EqualValues(t, 250, cfg.DefaultBackoffMs)
	assert.EqualValues(t, 30_000, cfg.MaxBackoffMs)
	assert.EqualValues(t, 1_000, cfg.AsyncShutdownGraceMs)
	assert.EqualValues(t, 100, cfg.AsyncDownGraceMs)
}

package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varalys/asmscan/internal/config"
)

func TestNew_MissingBinary(t *testing.T) {
	missing := "/nonexistent/asmscan-engine"
	_, err := New(Config{Engine: config.EngineConfig{BinaryPath: &missing}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create engine scanner")
	assert.Contains(t, err.Error(), "custom engine path not found")
}

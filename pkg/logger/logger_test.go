package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNamed(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		log, err := NewNamed(env, "service-booking")
		require.NoError(t, err)
		assert.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("hello") })
	}
}

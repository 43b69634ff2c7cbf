package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// Test 1: production 環境以指定等級建立
func TestNew_Production(t *testing.T) {
	logger, err := New("warn", "production")

	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

// Test 2: 開發環境允許 debug
func TestNew_Development(t *testing.T) {
	logger, err := New("DEBUG", "development")

	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

// Test 3: 無效等級返回錯誤
func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "production")

	assert.Error(t, err)
}

package logger

import (
	"os"
	"testing"

	"trivia-quiz-service/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Level("debug"))
	assert.Equal(t, zapcore.WarnLevel, Level("warn"))
	assert.Equal(t, zapcore.InfoLevel, Level(""))
	assert.Equal(t, zapcore.InfoLevel, Level("loud"))
}

func TestNewHonoursLevel(t *testing.T) {
	log := New(config.LoggerConfig{Level: "warn", Env: "production"})
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestOutputDefaultsToStderr(t *testing.T) {
	assert.Same(t, os.Stderr, outputFile(""))
	assert.Same(t, os.Stderr, outputFile("stderr"))
	assert.Same(t, os.Stdout, outputFile("stdout"))
}

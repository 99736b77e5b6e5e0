package log_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentweave/agentweave/pkg/log"
)

func TestSetup_LevelFiltering(t *testing.T) {
	log.Setup("warn", "text")

	logger := slog.Default()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	log.Setup("debug", "json")
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestSetup_UnknownLevelDefaultsToInfo(t *testing.T) {
	log.Setup("verbose", "text")

	logger := slog.Default()
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestWithModule(t *testing.T) {
	log.Setup("info", "text")

	assert.NotNil(t, log.WithModule("engine"))
}

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentweave/agentweave/pkg/models"
)

func TestNodeIsControlFlow(t *testing.T) {
	assert.True(t, (&models.Node{Type: models.NodeTypeCondition}).IsControlFlow())
	assert.True(t, (&models.Node{Type: models.NodeTypeLoop}).IsControlFlow())
	assert.False(t, (&models.Node{Type: models.NodeTypeLLM}).IsControlFlow())
	assert.False(t, (&models.Node{Type: models.NodeTypeInput}).IsControlFlow())
}

func TestNodeConfigString(t *testing.T) {
	n := &models.Node{Config: map[string]any{
		"expression": "{{seed.value}} > 10",
		"count":      3,
	}}

	v, ok := n.ConfigString("expression")
	assert.True(t, ok)
	assert.Equal(t, "{{seed.value}} > 10", v)

	_, ok = n.ConfigString("count")
	assert.False(t, ok)

	_, ok = n.ConfigString("missing")
	assert.False(t, ok)
}

func TestNodeStatusTerminal(t *testing.T) {
	assert.True(t, models.NodeStatusSucceeded.Terminal())
	assert.True(t, models.NodeStatusFailed.Terminal())
	assert.True(t, models.NodeStatusSkipped.Terminal())
	assert.False(t, models.NodeStatusPending.Terminal())
	assert.False(t, models.NodeStatusRunning.Terminal())
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/agentweave/agentweave/pkg/channels/gochannel"
	"github.com/agentweave/agentweave/pkg/eventbus"
)

// NewEventBus creates the in-process event bus used for execution
// lifecycle notifications.
func NewEventBus(logger *slog.Logger) eventbus.EventBus {
	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	if err != nil {
		panic(fmt.Errorf("failed to create gochannel pub/sub: %w", err))
	}

	return eventbus.NewWatermillEventBus(pub, sub)
}

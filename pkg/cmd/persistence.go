package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agentweave/agentweave/pkg/persistence"
	"github.com/agentweave/agentweave/pkg/persistence/file"
	"github.com/agentweave/agentweave/pkg/persistence/postgresql"
)

// NewPersistence picks the persistence backend from the database URL
// scheme: "postgres://" for PostgreSQL, anything else is treated as a file
// system root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgresql persistence: %w", err)
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}

// Package postgresql provides PostgreSQL persistence for graphs and
// execution traces.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the "postgres" database/sql driver.
	_ "github.com/lib/pq"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/persistence/sqlbase"
	"github.com/agentweave/agentweave/pkg/trace"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	graphRepo     *GraphRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects, runs migrations and returns a ready persistence
// layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:            database,
		logger:        logger,
		graphRepo:     NewGraphRepository(database, logger),
		executionRepo: NewExecutionRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Graphs(ctx context.Context) ([]*models.Graph, error) {
	return p.graphRepo.GetAll(ctx)
}

func (p *Persistence) GraphByID(ctx context.Context, id string) (*models.Graph, error) {
	return p.graphRepo.GetByID(ctx, id)
}

func (p *Persistence) SaveGraph(ctx context.Context, graph *models.Graph) error {
	return p.graphRepo.Save(ctx, graph)
}

// DeleteGraph soft deletes a graph by setting its deleted_at timestamp.
func (p *Persistence) DeleteGraph(ctx context.Context, id string) error {
	return p.graphRepo.Delete(ctx, id)
}

func (p *Persistence) Executions(ctx context.Context, graphID string) ([]*trace.Snapshot, error) {
	return p.executionRepo.GetByGraph(ctx, graphID)
}

func (p *Persistence) SaveExecution(ctx context.Context, snapshot *trace.Snapshot) error {
	return p.executionRepo.Save(ctx, snapshot)
}

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*trace.Snapshot, error) {
	return p.executionRepo.GetByID(ctx, id)
}

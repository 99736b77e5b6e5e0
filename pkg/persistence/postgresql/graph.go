package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/persistence"
)

// GraphRepository handles graph-related database operations. Nodes and
// edges are stored as JSONB documents alongside the graph row.
type GraphRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGraphRepository creates a new graph repository.
func NewGraphRepository(db *sql.DB, logger *slog.Logger) *GraphRepository {
	return &GraphRepository{db: db, logger: logger}
}

// GetAll returns all graphs, newest first.
func (r *GraphRepository) GetAll(ctx context.Context) ([]*models.Graph, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , nodes
		  , edges
		  , created_at
		  , updated_at
		FROM graphs
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query graphs: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	graphs := make([]*models.Graph, 0)

	for rows.Next() {
		graph, err := scanGraph(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}

		graphs = append(graphs, graph)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating graphs: %w", err)
	}

	return graphs, nil
}

// GetByID returns a graph by its ID.
func (r *GraphRepository) GetByID(ctx context.Context, id string) (*models.Graph, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , nodes
		  , edges
		  , created_at
		  , updated_at
		FROM graphs
		WHERE id = $1 AND deleted_at IS NULL
	`

	graph, err := scanGraph(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewGraphError("GetByID", id, persistence.ErrGraphNotFound)
		}

		return nil, persistence.NewGraphError("GetByID", id, err)
	}

	return graph, nil
}

// Save upserts a graph, assigning ID and timestamps when missing.
func (r *GraphRepository) Save(ctx context.Context, graph *models.Graph) error {
	if graph.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return persistence.NewGraphError("Save", "", err)
		}

		graph.ID = id.String()
	}

	now := time.Now().UTC()
	if graph.CreatedAt.IsZero() {
		graph.CreatedAt = now
	}

	graph.UpdatedAt = now

	nodes, err := json.Marshal(graph.Nodes)
	if err != nil {
		return persistence.NewGraphError("Save", graph.ID, err)
	}

	edges, err := json.Marshal(graph.Edges)
	if err != nil {
		return persistence.NewGraphError("Save", graph.ID, err)
	}

	query := `
		INSERT INTO graphs (id, name, description, nodes, edges, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`

	_, err = r.db.ExecContext(ctx, query,
		graph.ID, graph.Name, graph.Description, nodes, edges, graph.CreatedAt, graph.UpdatedAt)
	if err != nil {
		return persistence.NewGraphError("Save", graph.ID, err)
	}

	return nil
}

// Delete soft deletes a graph.
func (r *GraphRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE graphs SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return persistence.NewGraphError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewGraphError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewGraphError("Delete", id, persistence.ErrGraphNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGraph(row rowScanner) (*models.Graph, error) {
	var (
		graph models.Graph
		nodes []byte
		edges []byte
	)

	err := row.Scan(&graph.ID, &graph.Name, &graph.Description, &nodes, &edges,
		&graph.CreatedAt, &graph.UpdatedAt)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(nodes, &graph.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nodes: %w", err)
	}

	err = json.Unmarshal(edges, &graph.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to decode edges: %w", err)
	}

	return &graph, nil
}

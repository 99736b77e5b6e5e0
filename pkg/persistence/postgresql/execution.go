package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agentweave/agentweave/pkg/persistence"
	"github.com/agentweave/agentweave/pkg/trace"
)

// ExecutionRepository stores sealed execution traces as JSONB documents.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// GetByGraph returns the executions of one graph, newest first. An empty
// graphID returns every execution.
func (r *ExecutionRepository) GetByGraph(ctx context.Context, graphID string) ([]*trace.Snapshot, error) {
	query := `
		SELECT
			id
		  , graph_id
		  , status
		  , failed_nodes
		  , records
		  , started_at
		  , finished_at
		FROM executions
		WHERE ($1 = '' OR graph_id = $1)
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	snapshots := make([]*trace.Snapshot, 0)

	for rows.Next() {
		snapshot, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		snapshots = append(snapshots, snapshot)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return snapshots, nil
}

// GetByID returns one execution trace.
func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*trace.Snapshot, error) {
	query := `
		SELECT
			id
		  , graph_id
		  , status
		  , failed_nodes
		  , records
		  , started_at
		  , finished_at
		FROM executions
		WHERE id = $1
	`

	snapshot, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return snapshot, nil
}

// Save inserts a sealed trace. Traces are immutable, so conflicts replace
// the stored document wholesale.
func (r *ExecutionRepository) Save(ctx context.Context, snapshot *trace.Snapshot) error {
	failedNodes, err := json.Marshal(snapshot.FailedNodes)
	if err != nil {
		return persistence.NewExecutionError("Save", snapshot.ExecutionID, err)
	}

	records, err := json.Marshal(snapshot.Records)
	if err != nil {
		return persistence.NewExecutionError("Save", snapshot.ExecutionID, err)
	}

	query := `
		INSERT INTO executions (id, graph_id, status, failed_nodes, records, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			failed_nodes = EXCLUDED.failed_nodes,
			records = EXCLUDED.records,
			finished_at = EXCLUDED.finished_at
	`

	_, err = r.db.ExecContext(ctx, query,
		snapshot.ExecutionID, snapshot.GraphID, string(snapshot.Status),
		failedNodes, records, snapshot.StartedAt, snapshot.FinishedAt)
	if err != nil {
		return persistence.NewExecutionError("Save", snapshot.ExecutionID, err)
	}

	return nil
}

func scanExecution(row rowScanner) (*trace.Snapshot, error) {
	var (
		snapshot    trace.Snapshot
		status      string
		failedNodes []byte
		records     []byte
	)

	err := row.Scan(&snapshot.ExecutionID, &snapshot.GraphID, &status,
		&failedNodes, &records, &snapshot.StartedAt, &snapshot.FinishedAt)
	if err != nil {
		return nil, err
	}

	snapshot.Status = trace.RunStatus(status)

	err = json.Unmarshal(failedNodes, &snapshot.FailedNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode failed nodes: %w", err)
	}

	err = json.Unmarshal(records, &snapshot.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	return &snapshot, nil
}

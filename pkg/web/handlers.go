package web

import (
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/registry"
	"github.com/agentweave/agentweave/pkg/services"
)

type APIHandlers struct {
	graphService     *services.Graph
	executionService *services.Execution
	validator        *validator.Validate
	registry         *registry.Registry
}

func NewAPIHandlers(
	graphService *services.Graph,
	executionService *services.Execution,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		graphService:     graphService,
		executionService: executionService,
		validator:        validator,
		registry:         registry,
	}
}

func (h *APIHandlers) GetGraphs(c fiber.Ctx) error {
	graphs, err := h.graphService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graphs)
}

func (h *APIHandlers) GetGraph(c fiber.Ctx) error {
	graph, err := h.graphService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) CreateGraph(c fiber.Ctx) error {
	req, err := h.parseSaveGraphRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	graph, err := h.graphService.Create(c.Context(), req.ToGraph())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(graph)
}

func (h *APIHandlers) UpdateGraph(c fiber.Ctx) error {
	req, err := h.parseSaveGraphRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	graph, err := h.graphService.Update(c.Context(), c.Params("id"), req.ToGraph())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) DeleteGraph(c fiber.Ctx) error {
	err := h.graphService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteGraph runs a stored graph synchronously and returns the sealed
// trace. Per-node failures are reported inside the trace, not as an HTTP
// error.
func (h *APIHandlers) ExecuteGraph(c fiber.Ctx) error {
	var req ExecuteGraphRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	snapshot, err := h.executionService.Run(c.Context(), c.Params("id"), req.Variables)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(snapshot)
}

func (h *APIHandlers) GetGraphExecutions(c fiber.Ctx) error {
	snapshots, err := h.executionService.ListByGraph(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(snapshots)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	snapshot, err := h.executionService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(snapshot)
}

// GetNodeTypes lists the executable node types: the provider-backed types
// from the registry plus the control-flow types the engine handles itself.
func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := h.registry.Available()
	types = append(types, string(models.NodeTypeCondition), string(models.NodeTypeLoop))
	sort.Strings(types)

	return c.JSON(fiber.Map{"node_types": types})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, healthy := h.graphService.HealthCheck(c.Context())
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"message": message,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": message,
	})
}

func (h *APIHandlers) parseSaveGraphRequest(c fiber.Ctx) (*SaveGraphRequest, error) {
	var req SaveGraphRequest

	if err := c.Bind().JSON(&req); err != nil {
		return nil, err
	}

	if err := h.validator.Struct(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

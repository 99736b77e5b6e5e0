package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/agentweave/agentweave/pkg/config"
	"github.com/agentweave/agentweave/pkg/engine"
	"github.com/agentweave/agentweave/pkg/log"
	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/registry"
	"github.com/agentweave/agentweave/pkg/trace"
)

// RunCommand executes a graph definition from a file and prints the sealed
// trace as JSON.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Execute a graph definition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the graph definition JSON file",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Initial input variable as key=value (repeatable)",
			},
			&cli.IntFlag{
				Name:  "max-parallel",
				Usage: "Maximum concurrent nodes per dependency level (0 = sequential)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), "text")
			logger := log.WithModule("cli")

			graph, err := loadGraph(command.String("file"))
			if err != nil {
				return err
			}

			variables, err := parseInputs(command.StringSlice("input"))
			if err != nil {
				return err
			}

			cfg := config.Load()
			reg := registry.NewRegistry(logger)
			reg.RegisterDefaultProviders(cfg)

			eng := engine.NewEngine(reg, logger)
			eng.MaxParallel = command.Int("max-parallel")

			tr, err := eng.Run(ctx, graph, variables)
			if err != nil {
				return fmt.Errorf("graph rejected: %w", err)
			}

			snapshot := tr.Snapshot()

			out, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return err
			}

			fmt.Println(string(out))

			if tr.Status() != trace.RunStatusSucceeded {
				return fmt.Errorf("execution finished with status %s", tr.Status())
			}

			return nil
		},
	}
}

// ValidateCommand checks a graph definition without executing it.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a graph definition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the graph definition JSON file",
				Required: true,
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			graph, err := loadGraph(command.String("file"))
			if err != nil {
				return err
			}

			if err := graph.Validate(); err != nil {
				return err
			}

			fmt.Printf("graph %s is valid: %d nodes, %d edges\n",
				graph.ID, len(graph.Nodes), len(graph.Edges))

			return nil
		},
	}
}

func loadGraph(path string) (*models.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var graph models.Graph

	err = json.Unmarshal(data, &graph)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph file: %w", err)
	}

	return &graph, nil
}

// parseInputs turns repeated key=value flags into the initial variables
// map. Values that parse as JSON keep their type, everything else stays a
// string.
func parseInputs(pairs []string) (map[string]any, error) {
	variables := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid input %q, expected key=value", pair)
		}

		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			variables[key] = parsed
		} else {
			variables[key] = value
		}
	}

	return variables, nil
}

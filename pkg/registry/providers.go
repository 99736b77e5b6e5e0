package registry

import (
	"time"

	"github.com/agentweave/agentweave/pkg/config"
	"github.com/agentweave/agentweave/pkg/providers/httpapi"
	"github.com/agentweave/agentweave/pkg/providers/io"
	"github.com/agentweave/agentweave/pkg/providers/llm"
	"github.com/agentweave/agentweave/pkg/providers/transform"
)

// RegisterDefaultProviders registers the built-in provider factories. LLM
// credentials come from the process configuration; they are never read from
// the graph.
func (r *Registry) RegisterDefaultProviders(cfg *config.Config) {
	timeout := time.Duration(cfg.ProviderTimeoutSeconds) * time.Second

	completers := map[string]llm.Completer{
		"openai":    llm.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, timeout),
		"anthropic": llm.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, timeout),
	}

	r.Register(io.NewInputFactory())
	r.Register(io.NewOutputFactory())
	r.Register(llm.NewFactory(completers, r.logger))
	r.Register(httpapi.NewFactory(r.logger))
	r.Register(transform.NewFactory())
}

package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

// compileRoleGraph builds the prompt -> model chain every role runs on. The
// raw completion comes back as a message so the role wrapper owns the
// schema-coercion step and can report transport and schema failures as
// distinct errors.
func compileRoleGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add role prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add role model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add role edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add role edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add role edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile role graph: %w", err)
	}
	return runner, nil
}

// invokeStructured marshals the payload, runs the role graph, and coerces
// the completion into T. A transport failure is ErrModelInvoke; a
// completion that does not decode is ErrSchemaViolation so the caller can
// re-prompt on it.
func invokeStructured[T any](
	ctx context.Context,
	runner compose.Runnable[map[string]any, *schema.Message],
	payload map[string]any,
) (T, error) {
	var zero T

	input, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("%w: marshal role payload: %v", contractx.ErrValidation, err)
	}

	msg, err := runner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return zero, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return zero, fmt.Errorf("%w: empty completion", contractx.ErrSchemaViolation)
	}

	var out T
	if err := json.Unmarshal([]byte(stripCodeFence(msg.Content)), &out); err != nil {
		return zero, fmt.Errorf("%w: decode completion: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}

// stripCodeFence tolerates models that wrap the JSON object in a markdown
// code block.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

package roles

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

type classifierImpl struct {
	runner     compose.Runnable[map[string]any, *schema.Message]
	categories contractx.Categories
}

type classifierLLMOutput struct {
	Category string `json:"category"`
}

func newClassifier(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	categories contractx.Categories,
) (*classifierImpl, error) {
	runner, err := compileRoleGraph(ctx, chatModel, systemPrompt, "triage.classifier_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner, categories: categories}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.Classification, error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Description) == "" {
		return contractx.Classification{}, fmt.Errorf("%w: subject and description are required", contractx.ErrValidation)
	}

	out, err := invokeStructured[classifierLLMOutput](ctx, c.runner, map[string]any{
		"subject":     req.Subject,
		"description": req.Description,
		"categories":  c.categories.Strings(),
	})
	if err != nil {
		return contractx.Classification{}, err
	}

	category, err := c.categories.Parse(out.Category)
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}
	return contractx.Classification{Category: category}, nil
}

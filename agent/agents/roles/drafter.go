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

type drafterImpl struct {
	runner     compose.Runnable[map[string]any, *schema.Message]
	categories contractx.Categories
}

type resolutionLLMOutput struct {
	Category          string  `json:"category"`
	RecommendedAction string  `json:"recommended_action"`
	Rationale         string  `json:"rationale"`
	Confidence        float64 `json:"confidence"`
}

func newDrafter(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	categories contractx.Categories,
) (*drafterImpl, error) {
	runner, err := compileRoleGraph(ctx, chatModel, systemPrompt, "triage.drafter_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile drafter graph: %v", contractx.ErrModelInvoke, err)
	}
	return &drafterImpl{runner: runner, categories: categories}, nil
}

func (d *drafterImpl) Draft(ctx context.Context, req contractx.DraftRequest) (contractx.Resolution, error) {
	passages := make([]map[string]any, 0, len(req.Passages))
	for _, p := range req.Passages {
		passages = append(passages, map[string]any{
			"text":      p.Text,
			"source_id": p.SourceID,
		})
	}

	out, err := invokeStructured[resolutionLLMOutput](ctx, d.runner, map[string]any{
		"subject":     req.Subject,
		"description": req.Description,
		"passages":    passages,
		"grounded":    len(passages) > 0,
		"feedback":    req.Feedback,
	})
	if err != nil {
		return contractx.Resolution{}, err
	}

	return validateResolution(out, d.categories)
}

// validateResolution is the all-or-nothing coercion gate for the final
// structured record.
func validateResolution(out resolutionLLMOutput, categories contractx.Categories) (contractx.Resolution, error) {
	category, err := categories.Parse(out.Category)
	if err != nil {
		return contractx.Resolution{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}

	res := contractx.Resolution{
		Category:          category,
		RecommendedAction: strings.TrimSpace(out.RecommendedAction),
		Rationale:         strings.TrimSpace(out.Rationale),
		Confidence:        out.Confidence,
	}
	if err := res.Validate(categories); err != nil {
		return contractx.Resolution{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}
	return res, nil
}

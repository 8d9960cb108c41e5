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

type reviewerImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

type reviewLLMOutput struct {
	Status         string   `json:"status"`
	Feedback       string   `json:"feedback,omitempty"`
	RetrievalHints []string `json:"retrieval_hints,omitempty"`
}

func newReviewer(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*reviewerImpl, error) {
	runner, err := compileRoleGraph(ctx, chatModel, systemPrompt, "triage.reviewer_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile reviewer graph: %v", contractx.ErrModelInvoke, err)
	}
	return &reviewerImpl{runner: runner}, nil
}

func (r *reviewerImpl) Review(ctx context.Context, req contractx.ReviewRequest) (contractx.ReviewResult, error) {
	if strings.TrimSpace(req.Draft) == "" {
		return contractx.ReviewResult{}, fmt.Errorf("%w: draft is required", contractx.ErrValidation)
	}

	out, err := invokeStructured[reviewLLMOutput](ctx, r.runner, map[string]any{
		"subject":     req.Subject,
		"description": req.Description,
		"draft":       req.Draft,
	})
	if err != nil {
		return contractx.ReviewResult{}, err
	}

	return validateReview(out)
}

func validateReview(out reviewLLMOutput) (contractx.ReviewResult, error) {
	status := contractx.ReviewStatus(strings.ToLower(strings.TrimSpace(out.Status)))
	switch status {
	case contractx.ReviewApproved, contractx.ReviewRejected:
	default:
		return contractx.ReviewResult{}, fmt.Errorf("%w: unknown review status %q", contractx.ErrSchemaViolation, out.Status)
	}

	feedback := strings.TrimSpace(out.Feedback)
	if status == contractx.ReviewRejected && feedback == "" {
		return contractx.ReviewResult{}, fmt.Errorf("%w: rejection requires feedback", contractx.ErrSchemaViolation)
	}

	return contractx.ReviewResult{
		Status:         status,
		Feedback:       feedback,
		RetrievalHints: out.RetrievalHints,
	}, nil
}

package roles

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	llmx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/llm"
	promptx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/prompt"
)

type registryImpl struct {
	classifier contractx.Classifier
	drafter    contractx.Drafter
	reviewer   contractx.Reviewer
}

func (r *registryImpl) Classifier() contractx.Classifier {
	return r.classifier
}

func (r *registryImpl) Drafter() contractx.Drafter {
	return r.drafter
}

func (r *registryImpl) Reviewer() contractx.Reviewer {
	return r.reviewer
}

// NewRegistry builds one chat model per role from the shared LLM config and
// compiles each role graph once; the registry is safe to share across
// concurrent runs.
func NewRegistry(ctx context.Context, cfg llmx.Config, categories contractx.Categories) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: category set is required", contractx.ErrValidation)
	}

	prompts := promptx.LoadPromptSet()

	classifierModelCfg := cfg.OpenRouterFor(contractx.RoleClassifier)
	classifierModel, err := classifierModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}
	drafterModelCfg := cfg.OpenRouterFor(contractx.RoleDrafter)
	drafterModel, err := drafterModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create drafter model: %v", contractx.ErrModelInvoke, err)
	}
	reviewerModelCfg := cfg.OpenRouterFor(contractx.RoleReviewer)
	reviewerModel, err := reviewerModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create reviewer model: %v", contractx.ErrModelInvoke, err)
	}

	classifier, err := newClassifier(ctx, classifierModel, prompts.Classifier, categories)
	if err != nil {
		return nil, err
	}
	drafter, err := newDrafter(ctx, drafterModel, prompts.Drafter, categories)
	if err != nil {
		return nil, err
	}
	reviewer, err := newReviewer(ctx, reviewerModel, prompts.Reviewer)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		classifier: classifier,
		drafter:    drafter,
		reviewer:   reviewer,
	}, nil
}

package triage

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/nodes/triage"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

// compileProcessTicketGraph wires the node functions into the triage graph.
// Conditional edges route on the merged state after each node; every
// domain failure path converges on format_output, the single terminal.
// The review loop (review -> retrieve) is bounded by the review budget and,
// as a second line of defense, by the compiled step limit.
func (s *Service) compileProcessTicketGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodex.NodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*statex.TriageState, error) {
			return nodex.ValidateRequest(in, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeClassifyTicket,
		compose.InvokableLambda(func(ctx context.Context, in *statex.TriageState) (*statex.TriageState, error) {
			return nodex.ClassifyTicket(ctx, in, s.models.Classifier(), s.categories, s.retry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeClassifyTicket, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeRetrieveContext,
		compose.InvokableLambda(func(ctx context.Context, in *statex.TriageState) (*statex.TriageState, error) {
			return nodex.RetrieveContext(ctx, in, s.retriever)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeRetrieveContext, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeDraftResponse,
		compose.InvokableLambda(func(ctx context.Context, in *statex.TriageState) (*statex.TriageState, error) {
			return nodex.DraftResponse(ctx, in, s.models.Drafter(), s.categories, s.retry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeDraftResponse, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeReviewDraft,
		compose.InvokableLambda(func(ctx context.Context, in *statex.TriageState) (*statex.TriageState, error) {
			return nodex.ReviewDraft(ctx, in, s.models.Reviewer(), s.retry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeReviewDraft, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeArchiveRejected,
		compose.InvokableLambda(func(ctx context.Context, in *statex.TriageState) (*statex.TriageState, error) {
			return nodex.ArchiveRejected(ctx, in, s.archiver)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeArchiveRejected, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeFormatOutput,
		compose.InvokableLambda(func(ctx context.Context, in *statex.TriageState) (nodex.GraphOutput, error) {
			return nodex.FormatOutput(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeFormatOutput, err)
	}

	if err := graph.AddEdge(compose.START, nodex.NodeValidateRequest); err != nil {
		return nil, fmt.Errorf("add edge start->%s: %w", nodex.NodeValidateRequest, err)
	}
	if err := graph.AddEdge(nodex.NodeValidateRequest, nodex.NodeClassifyTicket); err != nil {
		return nil, fmt.Errorf("add edge %s->%s: %w", nodex.NodeValidateRequest, nodex.NodeClassifyTicket, err)
	}

	if err := graph.AddBranch(nodex.NodeClassifyTicket, compose.NewGraphBranch(
		func(ctx context.Context, in *statex.TriageState) (string, error) {
			return nodex.RouteAfterClassify(in), nil
		},
		map[string]bool{
			nodex.NodeRetrieveContext: true,
			nodex.NodeFormatOutput:    true,
		},
	)); err != nil {
		return nil, fmt.Errorf("add branch after %s: %w", nodex.NodeClassifyTicket, err)
	}

	if err := graph.AddBranch(nodex.NodeRetrieveContext, compose.NewGraphBranch(
		func(ctx context.Context, in *statex.TriageState) (string, error) {
			return nodex.RouteAfterRetrieve(in), nil
		},
		map[string]bool{
			nodex.NodeDraftResponse: true,
			nodex.NodeFormatOutput:  true,
		},
	)); err != nil {
		return nil, fmt.Errorf("add branch after %s: %w", nodex.NodeRetrieveContext, err)
	}

	if err := graph.AddBranch(nodex.NodeDraftResponse, compose.NewGraphBranch(
		func(ctx context.Context, in *statex.TriageState) (string, error) {
			return nodex.RouteAfterDraft(in), nil
		},
		map[string]bool{
			nodex.NodeReviewDraft:  true,
			nodex.NodeFormatOutput: true,
		},
	)); err != nil {
		return nil, fmt.Errorf("add branch after %s: %w", nodex.NodeDraftResponse, err)
	}

	if err := graph.AddBranch(nodex.NodeReviewDraft, compose.NewGraphBranch(
		func(ctx context.Context, in *statex.TriageState) (string, error) {
			return nodex.RouteAfterReview(in, s.reviewBudget), nil
		},
		map[string]bool{
			nodex.NodeFormatOutput:    true,
			nodex.NodeArchiveRejected: true,
			nodex.NodeRetrieveContext: true,
		},
	)); err != nil {
		return nil, fmt.Errorf("add branch after %s: %w", nodex.NodeReviewDraft, err)
	}

	if err := graph.AddEdge(nodex.NodeArchiveRejected, nodex.NodeFormatOutput); err != nil {
		return nil, fmt.Errorf("add edge %s->%s: %w", nodex.NodeArchiveRejected, nodex.NodeFormatOutput, err)
	}
	if err := graph.AddEdge(nodex.NodeFormatOutput, compose.END); err != nil {
		return nil, fmt.Errorf("add edge %s->end: %w", nodex.NodeFormatOutput, err)
	}

	runner, err := graph.Compile(ctx,
		compose.WithGraphName("triage.process_ticket"),
		compose.WithMaxRunSteps(3*s.reviewBudget+8),
	)
	if err != nil {
		return nil, fmt.Errorf("compile triage graph: %w", err)
	}
	return runner, nil
}

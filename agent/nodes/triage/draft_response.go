package triagenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	llmx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/llm"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

// DraftResponse asks the drafter for a schema-valid Resolution grounded in
// the retrieved passages plus any reviewer feedback from earlier passes. If
// coercion keeps failing past the retry budget the run gets an
// extraction_failed marker; a partially valid resolution is never stored.
func DraftResponse(
	ctx context.Context,
	st *statex.TriageState,
	drafter contractx.Drafter,
	categories contractx.Categories,
	retry llmx.RetryPolicy,
) (*statex.TriageState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: triage state is nil", contractx.ErrValidation)
	}
	if !st.CategorySet {
		return nil, fmt.Errorf("%w: drafting requires a classified ticket", statex.ErrCategoryUnset)
	}

	res, err := llmx.Do(ctx, retry, func(ctx context.Context) (contractx.Resolution, error) {
		r, err := drafter.Draft(ctx, contractx.DraftRequest{
			Subject:     st.Subject,
			Description: st.Description,
			Passages:    st.Passages,
			Feedback:    st.Feedback,
		})
		if err != nil {
			return contractx.Resolution{}, err
		}
		if err := r.Validate(categories); err != nil {
			return contractx.Resolution{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
		}
		return r, nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("draft extraction failed")
		st.RecordFailure(contractx.FailureExtraction, err.Error())
		return st, nil
	}

	st.AppendDraft(res.RecommendedAction)
	st.Resolution = &res
	log.Debug().Int("draft", len(st.Drafts)).Msg("draft response generated")
	return st, nil
}

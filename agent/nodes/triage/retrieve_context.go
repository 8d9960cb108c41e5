package triagenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

// RetrieveContext runs the refresh-then-query gateway call with the detected
// category as the filter. An empty result set is valid state, not an error:
// it means no grounding is available and the drafter must say so. Routing
// guarantees the category is set before this node runs; an unset category
// here is a programming error and fails fast.
func RetrieveContext(
	ctx context.Context,
	st *statex.TriageState,
	retriever contractx.Retriever,
) (*statex.TriageState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: triage state is nil", contractx.ErrValidation)
	}
	if !st.CategorySet {
		return nil, fmt.Errorf("%w: retrieval requires a classified ticket", statex.ErrCategoryUnset)
	}

	passages, err := retriever.Query(ctx, st.QueryText(), st.Category)
	if err != nil {
		log.Warn().Err(err).Str("category", string(st.Category)).Msg("knowledge retrieval failed")
		st.RecordFailure(contractx.FailureRetrievalUnavailable, err.Error())
		return st, nil
	}

	st.Passages = passages
	log.Debug().
		Str("category", string(st.Category)).
		Int("passages", len(passages)).
		Msg("retrieved knowledge-base context")
	return st, nil
}

package triagenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	llmx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/llm"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

// ClassifyTicket tags the ticket with one value of the closed category set.
// A model answer outside the set fails closed: the run gets a
// classification_failed marker and routes to the failure terminal instead of
// guessing a default category.
func ClassifyTicket(
	ctx context.Context,
	st *statex.TriageState,
	classifier contractx.Classifier,
	categories contractx.Categories,
	retry llmx.RetryPolicy,
) (*statex.TriageState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: triage state is nil", contractx.ErrValidation)
	}

	out, err := llmx.Do(ctx, retry, func(ctx context.Context) (contractx.Classification, error) {
		c, err := classifier.Classify(ctx, contractx.ClassifyRequest{
			Subject:     st.Subject,
			Description: st.Description,
		})
		if err != nil {
			return contractx.Classification{}, err
		}
		parsed, err := categories.Parse(string(c.Category))
		if err != nil {
			return contractx.Classification{}, err
		}
		return contractx.Classification{Category: parsed}, nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("ticket classification failed")
		st.RecordFailure(contractx.FailureClassification, err.Error())
		return st, nil
	}

	if err := st.SetCategory(out.Category); err != nil {
		return nil, err
	}
	log.Debug().Str("category", string(out.Category)).Msg("ticket classified")
	return st, nil
}

package triagenode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	llmx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/llm"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

// ReviewDraft asks the reviewer to judge the latest draft. A reviewer error
// counts as a rejection with an explanatory note rather than failing the
// run: the review loop is bounded, so the run still terminates through the
// archive path.
func ReviewDraft(
	ctx context.Context,
	st *statex.TriageState,
	reviewer contractx.Reviewer,
	retry llmx.RetryPolicy,
) (*statex.TriageState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: triage state is nil", contractx.ErrValidation)
	}
	draft, err := st.LatestDraft()
	if err != nil {
		return nil, fmt.Errorf("%w: review requires a draft", contractx.ErrValidation)
	}

	st.ReviewCount++

	verdict, err := llmx.Do(ctx, retry, func(ctx context.Context) (contractx.ReviewResult, error) {
		return reviewer.Review(ctx, contractx.ReviewRequest{
			Subject:     st.Subject,
			Description: st.Description,
			Draft:       draft,
		})
	})
	if err != nil {
		log.Warn().Err(err).Int("review", st.ReviewCount).Msg("draft review errored, counting as rejection")
		st.Status = statex.StatusRejected
		st.AppendFeedback(fmt.Sprintf("review unavailable: %v", err))
		return st, nil
	}

	st.RetrievalHints = verdict.RetrievalHints

	if verdict.Status == contractx.ReviewApproved {
		st.Status = statex.StatusApproved
		st.AppendFeedback("Draft approved by reviewer.")
		log.Debug().Int("review", st.ReviewCount).Msg("draft approved")
		return st, nil
	}

	st.Status = statex.StatusRejected
	if note := strings.TrimSpace(verdict.Feedback); note != "" {
		st.AppendFeedback(note)
	}
	log.Debug().Int("review", st.ReviewCount).Str("feedback", verdict.Feedback).Msg("draft rejected")
	return st, nil
}

package triagenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

// ArchiveRejected persists a ticket that exhausted its review budget so a
// human can pick it up. An archive write failure is noted in state but does
// not fail the run; the caller still gets the rejected response.
func ArchiveRejected(
	ctx context.Context,
	st *statex.TriageState,
	archiver contractx.Archiver,
) (*statex.TriageState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: triage state is nil", contractx.ErrValidation)
	}

	rec := contractx.RejectedTicket{
		Subject:     st.Subject,
		Description: st.Description,
		Category:    st.Category,
		Drafts:      append([]string(nil), st.Drafts...),
		Feedback:    append([]string(nil), st.Feedback...),
		CreatedAt:   st.StartedAt,
	}
	if err := archiver.ArchiveRejected(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("failed to archive rejected ticket")
		st.AppendFeedback(fmt.Sprintf("archive failed: %v", err))
		return st, nil
	}

	log.Info().
		Str("category", string(st.Category)).
		Int("reviews", st.ReviewCount).
		Msg("rejected ticket archived for human follow-up")
	return st, nil
}

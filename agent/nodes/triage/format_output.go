package triagenode

import (
	"fmt"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

const fallbackMessage = "A human support agent will review your issue."

// FormatOutput is the terminal node. It makes no model calls and builds the
// response strictly from validated state: an approved run exposes its
// resolution, everything else gets the well-defined fallback. The caller
// never sees a partially populated record.
func FormatOutput(st *statex.TriageState) (GraphOutput, error) {
	if st == nil {
		return GraphOutput{}, fmt.Errorf("%w: triage state is nil", contractx.ErrValidation)
	}

	if st.Failure != nil {
		return GraphOutput{
			Status:  statex.StatusFailed,
			Message: fallbackMessage,
			Failure: st.Failure,
		}, nil
	}

	if st.Status == statex.StatusApproved && st.Resolution != nil {
		return GraphOutput{
			Status:     statex.StatusApproved,
			Message:    st.Resolution.RecommendedAction,
			Resolution: st.Resolution,
		}, nil
	}

	return GraphOutput{
		Status:  statex.StatusRejected,
		Message: fallbackMessage,
	}, nil
}

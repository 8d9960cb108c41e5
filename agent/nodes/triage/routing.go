package triagenode

import (
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

// Node identifiers shared between the routing predicates and the compiled
// graph.
const (
	NodeValidateRequest = "validate_request"
	NodeClassifyTicket  = "classify_ticket"
	NodeRetrieveContext = "retrieve_context"
	NodeDraftResponse   = "draft_response"
	NodeReviewDraft     = "review_draft"
	NodeArchiveRejected = "archive_rejected"
	NodeFormatOutput    = "format_output"
)

// The routing predicates below are pure functions over the merged state.
// They decide the next node only; they never mutate anything.

func RouteAfterClassify(st *statex.TriageState) string {
	if st == nil || st.Failed() || !st.CategorySet {
		return NodeFormatOutput
	}
	return NodeRetrieveContext
}

func RouteAfterRetrieve(st *statex.TriageState) string {
	if st == nil || st.Failed() {
		return NodeFormatOutput
	}
	return NodeDraftResponse
}

func RouteAfterDraft(st *statex.TriageState) string {
	if st == nil || st.Failed() {
		return NodeFormatOutput
	}
	return NodeReviewDraft
}

// RouteAfterReview implements the bounded review loop: approval finalizes,
// an exhausted budget archives the ticket, anything else retries from
// retrieval with the reviewer's hints.
func RouteAfterReview(st *statex.TriageState, reviewBudget int) string {
	if st == nil || st.Failed() {
		return NodeFormatOutput
	}
	if st.Status == statex.StatusApproved {
		return NodeFormatOutput
	}
	if st.ReviewCount >= reviewBudget {
		return NodeArchiveRejected
	}
	return NodeRetrieveContext
}

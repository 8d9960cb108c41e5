package triagenode

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	llmx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/llm"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

var testCategories = contractx.Categories{"billing", "technical", "security", "general"}

func fastRetry() llmx.RetryPolicy {
	return llmx.RetryPolicy{TransientAttempts: 2, RepromptAttempts: 1, Backoff: time.Millisecond}
}

type fakeClassifier struct {
	responses []contractx.Classification
	errs      []error
	calls     int
}

func (f *fakeClassifier) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.Classification, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return contractx.Classification{}, f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return contractx.Classification{}, errors.New("no classifier response left")
}

type fakeRetriever struct {
	passages []contractx.Passage
	err      error
	queries  []string
	calls    int
}

func (f *fakeRetriever) Query(ctx context.Context, queryText string, category contractx.Category) ([]contractx.Passage, error) {
	f.calls++
	f.queries = append(f.queries, queryText)
	if f.err != nil {
		return nil, f.err
	}
	return append([]contractx.Passage(nil), f.passages...), nil
}

type fakeReviewer struct {
	result contractx.ReviewResult
	err    error
}

func (f *fakeReviewer) Review(ctx context.Context, req contractx.ReviewRequest) (contractx.ReviewResult, error) {
	if f.err != nil {
		return contractx.ReviewResult{}, f.err
	}
	return f.result, nil
}

func classifiedState(t *testing.T) *statex.TriageState {
	t.Helper()
	st, err := statex.NewTriageState("Cannot log in", "Password rejected", time.Now())
	if err != nil {
		t.Fatalf("NewTriageState() error = %v", err)
	}
	if err := st.SetCategory("security"); err != nil {
		t.Fatalf("SetCategory() error = %v", err)
	}
	return st
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	st, err := ValidateRequest(GraphInput{Subject: " Cannot log in ", Description: "details"}, now)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if st.Subject != "Cannot log in" {
		t.Fatalf("subject not trimmed: %q", st.Subject)
	}
	if st.Status != statex.StatusOpen {
		t.Fatalf("status = %s", st.Status)
	}

	if _, err := ValidateRequest(GraphInput{Description: "x"}, now); !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
	if _, err := ValidateRequest(GraphInput{Subject: "x"}, now); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
}

func TestClassifyTicketSetsCategory(t *testing.T) {
	t.Parallel()

	st, err := statex.NewTriageState("subj", "desc", time.Now())
	if err != nil {
		t.Fatalf("NewTriageState() error = %v", err)
	}
	classifier := &fakeClassifier{responses: []contractx.Classification{{Category: "billing"}}}

	out, err := ClassifyTicket(context.Background(), st, classifier, testCategories, fastRetry())
	if err != nil {
		t.Fatalf("ClassifyTicket() error = %v", err)
	}
	if !out.CategorySet || out.Category != "billing" {
		t.Fatalf("category not set: %+v", out)
	}
	if out.Failed() {
		t.Fatalf("unexpected failure: %+v", out.Failure)
	}
}

func TestClassifyTicketRecoversWithinRetryBudget(t *testing.T) {
	t.Parallel()

	st, err := statex.NewTriageState("subj", "desc", time.Now())
	if err != nil {
		t.Fatalf("NewTriageState() error = %v", err)
	}
	classifier := &fakeClassifier{
		errs:      []error{fmt.Errorf("%w: not json", contractx.ErrSchemaViolation), nil},
		responses: []contractx.Classification{{}, {Category: "technical"}},
	}

	out, err := ClassifyTicket(context.Background(), st, classifier, testCategories, fastRetry())
	if err != nil {
		t.Fatalf("ClassifyTicket() error = %v", err)
	}
	if out.Failed() {
		t.Fatalf("expected recovery, got failure %+v", out.Failure)
	}
	if out.Category != "technical" {
		t.Fatalf("category = %s", out.Category)
	}
	if classifier.calls != 2 {
		t.Fatalf("classifier calls = %d, want 2", classifier.calls)
	}
}

func TestClassifyTicketFailsClosedOnOutOfEnum(t *testing.T) {
	t.Parallel()

	st, err := statex.NewTriageState("subj", "desc", time.Now())
	if err != nil {
		t.Fatalf("NewTriageState() error = %v", err)
	}
	classifier := &fakeClassifier{responses: []contractx.Classification{
		{Category: "refunds"},
		{Category: "refunds"},
	}}

	out, err := ClassifyTicket(context.Background(), st, classifier, testCategories, fastRetry())
	if err != nil {
		t.Fatalf("ClassifyTicket() error = %v", err)
	}
	if !out.Failed() || out.Failure.Code != contractx.FailureClassification {
		t.Fatalf("expected classification failure, got %+v", out.Failure)
	}
	if out.CategorySet {
		t.Fatal("category must not be set on failure")
	}
}

func TestRetrieveContextRequiresCategory(t *testing.T) {
	t.Parallel()

	st, err := statex.NewTriageState("subj", "desc", time.Now())
	if err != nil {
		t.Fatalf("NewTriageState() error = %v", err)
	}
	if _, err := RetrieveContext(context.Background(), st, &fakeRetriever{}); !errors.Is(err, statex.ErrCategoryUnset) {
		t.Fatalf("expected ErrCategoryUnset, got %v", err)
	}
}

func TestRetrieveContextEmptyResultIsValid(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	out, err := RetrieveContext(context.Background(), st, &fakeRetriever{})
	if err != nil {
		t.Fatalf("RetrieveContext() error = %v", err)
	}
	if out.Failed() {
		t.Fatalf("empty retrieval must not fail the run: %+v", out.Failure)
	}
	if len(out.Passages) != 0 {
		t.Fatalf("passages = %d", len(out.Passages))
	}
}

func TestRetrieveContextRecordsGatewayFailure(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	retriever := &fakeRetriever{err: fmt.Errorf("%w: refresh failed", contractx.ErrRetrievalUnavailable)}

	out, err := RetrieveContext(context.Background(), st, retriever)
	if err != nil {
		t.Fatalf("RetrieveContext() error = %v", err)
	}
	if !out.Failed() || out.Failure.Code != contractx.FailureRetrievalUnavailable {
		t.Fatalf("expected retrieval failure marker, got %+v", out.Failure)
	}
}

func TestReviewDraftErrorCountsAsRejection(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	st.AppendDraft("draft text")
	reviewer := &fakeReviewer{err: fmt.Errorf("%w: not json", contractx.ErrSchemaViolation)}

	out, err := ReviewDraft(context.Background(), st, reviewer, fastRetry())
	if err != nil {
		t.Fatalf("ReviewDraft() error = %v", err)
	}
	if out.Status != statex.StatusRejected {
		t.Fatalf("status = %s, want rejected", out.Status)
	}
	if out.ReviewCount != 1 {
		t.Fatalf("review count = %d", out.ReviewCount)
	}
	if len(out.Feedback) == 0 {
		t.Fatal("expected feedback note on reviewer error")
	}
}

func TestReviewDraftApproval(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	st.AppendDraft("draft text")
	reviewer := &fakeReviewer{result: contractx.ReviewResult{Status: contractx.ReviewApproved}}

	out, err := ReviewDraft(context.Background(), st, reviewer, fastRetry())
	if err != nil {
		t.Fatalf("ReviewDraft() error = %v", err)
	}
	if out.Status != statex.StatusApproved {
		t.Fatalf("status = %s, want approved", out.Status)
	}
}

func TestReviewDraftRejectionKeepsHints(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	st.AppendDraft("draft text")
	reviewer := &fakeReviewer{result: contractx.ReviewResult{
		Status:         contractx.ReviewRejected,
		Feedback:       "tone too casual",
		RetrievalHints: []string{"account lockout"},
	}}

	out, err := ReviewDraft(context.Background(), st, reviewer, fastRetry())
	if err != nil {
		t.Fatalf("ReviewDraft() error = %v", err)
	}
	if out.Status != statex.StatusRejected {
		t.Fatalf("status = %s", out.Status)
	}
	if len(out.RetrievalHints) != 1 || out.RetrievalHints[0] != "account lockout" {
		t.Fatalf("hints = %v", out.RetrievalHints)
	}
	if out.Feedback[len(out.Feedback)-1] != "tone too casual" {
		t.Fatalf("feedback = %v", out.Feedback)
	}
}

func TestFormatOutputFallbackWithoutResolution(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	st.Status = statex.StatusRejected

	out, err := FormatOutput(st)
	if err != nil {
		t.Fatalf("FormatOutput() error = %v", err)
	}
	if out.Status != statex.StatusRejected {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Resolution != nil {
		t.Fatal("rejected output must not carry a resolution")
	}
	if out.Message == "" {
		t.Fatal("fallback message must be non-empty")
	}
}

func TestFormatOutputFailure(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	st.RecordFailure(contractx.FailureExtraction, "coercion failed")

	out, err := FormatOutput(st)
	if err != nil {
		t.Fatalf("FormatOutput() error = %v", err)
	}
	if out.Status != statex.StatusFailed {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Failure == nil || out.Failure.Code != contractx.FailureExtraction {
		t.Fatalf("failure = %+v", out.Failure)
	}
}

func TestFormatOutputApproved(t *testing.T) {
	t.Parallel()

	st := classifiedState(t)
	st.Status = statex.StatusApproved
	st.Resolution = &contractx.Resolution{
		Category:          "security",
		RecommendedAction: "Reset your password via the self-service portal.",
		Rationale:         "KB entry 3 covers lockouts.",
		Confidence:        0.8,
	}

	out, err := FormatOutput(st)
	if err != nil {
		t.Fatalf("FormatOutput() error = %v", err)
	}
	if out.Status != statex.StatusApproved {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Resolution == nil || out.Message != st.Resolution.RecommendedAction {
		t.Fatalf("unexpected output: %+v", out)
	}
}

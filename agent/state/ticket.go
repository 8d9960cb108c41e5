package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

var (
	ErrNilState       = errors.New("triage state is nil")
	ErrEmptyTicket    = errors.New("ticket subject and description are required")
	ErrCategoryUnset  = errors.New("ticket category is not set")
	ErrNoDraft        = errors.New("no draft available")
	ErrAlreadyClassed = errors.New("category already set")
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// TriageState is the single shared record threaded through every node of one
// triage run. Exactly one instance exists per run and it is never shared
// across runs.
//
// Nodes follow a merge-only discipline: each node appends to or sets its own
// fields and never clears another node's contribution. The finalize node is
// the only reader that assembles the external response.
type TriageState struct {
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	StartedAt   time.Time `json:"started_at"`

	Category    contractx.Category `json:"category,omitempty"`
	CategorySet bool               `json:"category_set"`

	Passages []contractx.Passage `json:"passages,omitempty"`

	Drafts         []string `json:"drafts,omitempty"`
	Feedback       []string `json:"feedback,omitempty"`
	RetrievalHints []string `json:"retrieval_hints,omitempty"`
	ReviewCount    int      `json:"review_count"`

	Resolution *contractx.Resolution `json:"resolution,omitempty"`

	Status  Status             `json:"status"`
	Failure *contractx.Failure `json:"failure,omitempty"`
}

func NewTriageState(subject, description string, now time.Time) (*TriageState, error) {
	subject = strings.TrimSpace(subject)
	description = strings.TrimSpace(description)
	if subject == "" || description == "" {
		return nil, ErrEmptyTicket
	}
	return &TriageState{
		Subject:     subject,
		Description: description,
		StartedAt:   now.UTC(),
		Status:      StatusOpen,
	}, nil
}

func (s *TriageState) SetCategory(c contractx.Category) error {
	if s.CategorySet {
		return fmt.Errorf("%w: %s", ErrAlreadyClassed, s.Category)
	}
	s.Category = c
	s.CategorySet = true
	return nil
}

func (s *TriageState) AppendDraft(draft string) {
	s.Drafts = append(s.Drafts, draft)
}

func (s *TriageState) AppendFeedback(note string) {
	s.Feedback = append(s.Feedback, note)
}

func (s *TriageState) LatestDraft() (string, error) {
	if len(s.Drafts) == 0 {
		return "", ErrNoDraft
	}
	return s.Drafts[len(s.Drafts)-1], nil
}

// RecordFailure marks the run as failed. The first failure wins; later
// calls keep the original marker so the terminal node reports the root cause.
func (s *TriageState) RecordFailure(code contractx.FailureCode, reason string) {
	if s.Failure != nil {
		return
	}
	s.Failure = &contractx.Failure{Code: code, Reason: reason}
	s.Status = StatusFailed
}

func (s *TriageState) Failed() bool {
	return s.Failure != nil
}

// QueryText builds the retrieval query from the ticket plus any
// retrieval-improvement hints from earlier review passes.
func (s *TriageState) QueryText() string {
	parts := []string{s.Subject, s.Description}
	parts = append(parts, s.RetrievalHints...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (s *TriageState) Validate() error {
	if s == nil {
		return ErrNilState
	}
	if strings.TrimSpace(s.Subject) == "" || strings.TrimSpace(s.Description) == "" {
		return ErrEmptyTicket
	}
	if s.ReviewCount < 0 {
		return fmt.Errorf("%w: negative review count", contractx.ErrValidation)
	}
	if s.Status == StatusFailed && s.Failure == nil {
		return fmt.Errorf("%w: failed status without failure marker", contractx.ErrValidation)
	}
	return nil
}

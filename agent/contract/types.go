package contract

import (
	"fmt"
	"strings"
	"time"
)

// Role selects which model configuration an LLM-backed component runs with.
type Role string

const (
	RoleClassifier Role = "classifier"
	RoleDrafter    Role = "drafter"
	RoleReviewer   Role = "reviewer"
)

// Category is one value of the closed ticket-category set. The set itself is
// supplied by configuration; code never enumerates the members.
type Category string

// Categories is the configured closed set. It is the single coercion point
// for free-form model output into a Category.
type Categories []Category

func ParseCategories(raw []string) (Categories, error) {
	seen := make(map[Category]struct{}, len(raw))
	out := make(Categories, 0, len(raw))
	for _, r := range raw {
		c := Category(strings.ToLower(strings.TrimSpace(r)))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: category set is empty", ErrValidation)
	}
	return out, nil
}

func (cs Categories) Contains(c Category) bool {
	for _, v := range cs {
		if v == c {
			return true
		}
	}
	return false
}

// Parse coerces a raw model answer into a member of the set.
func (cs Categories) Parse(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !cs.Contains(c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return c, nil
}

func (cs Categories) Strings() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// Passage is one knowledge-base entry returned by the retrieval gateway,
// tagged with the category it was filtered on.
type Passage struct {
	Text     string   `json:"text"`
	SourceID string   `json:"source_id"`
	Score    float64  `json:"score"`
	Category Category `json:"category"`
}

// Classification is the classify-node output.
type Classification struct {
	Category Category `json:"category"`
}

// Resolution is the final structured record of a triage run. It is either
// fully valid or absent from state; nothing in between leaks downstream.
type Resolution struct {
	Category          Category `json:"category"`
	RecommendedAction string   `json:"recommended_action"`
	Rationale         string   `json:"rationale"`
	Confidence        float64  `json:"confidence"`
}

func (r Resolution) Validate(categories Categories) error {
	if !categories.Contains(r.Category) {
		return fmt.Errorf("%w: resolution category %q", ErrUnknownCategory, r.Category)
	}
	if strings.TrimSpace(r.RecommendedAction) == "" {
		return fmt.Errorf("%w: recommended_action is empty", ErrValidation)
	}
	if strings.TrimSpace(r.Rationale) == "" {
		return fmt.Errorf("%w: rationale is empty", ErrValidation)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of [0,1]", ErrValidation, r.Confidence)
	}
	return nil
}

type ReviewStatus string

const (
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewResult is the reviewer verdict on a draft. RetrievalHints are
// keywords fed back into the next retrieval pass when the draft is rejected.
type ReviewResult struct {
	Status         ReviewStatus `json:"status"`
	Feedback       string       `json:"feedback,omitempty"`
	RetrievalHints []string     `json:"retrieval_hints,omitempty"`
}

type FailureCode string

const (
	FailureInvalidRequest       FailureCode = "invalid_request"
	FailureClassification       FailureCode = "classification_failed"
	FailureRetrievalUnavailable FailureCode = "retrieval_unavailable"
	FailureExtraction           FailureCode = "extraction_failed"
)

// Failure is the explicit marker a node records in shared state instead of
// crashing the run. The orchestrator routes on it.
type Failure struct {
	Code   FailureCode `json:"code"`
	Reason string      `json:"reason"`
}

// RejectedTicket is the archive record for a run that exhausted its review
// budget without an approved draft.
type RejectedTicket struct {
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Drafts      []string  `json:"drafts"`
	Feedback    []string  `json:"feedback"`
	CreatedAt   time.Time `json:"created_at"`
}

package contract

import "context"

type ClassifyRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type DraftRequest struct {
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Passages    []Passage `json:"passages,omitempty"`
	Feedback    []string  `json:"feedback,omitempty"`
}

type ReviewRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Draft       string `json:"draft"`
}

type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (Classification, error)
}

type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (Resolution, error)
}

type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResult, error)
}

type Registry interface {
	Classifier() Classifier
	Drafter() Drafter
	Reviewer() Reviewer
}

// Retriever refreshes the backing index from its source of truth and then
// runs a category-filtered similarity search, in that order, on every call.
type Retriever interface {
	Query(ctx context.Context, queryText string, category Category) ([]Passage, error)
}

type Archiver interface {
	ArchiveRejected(ctx context.Context, rec RejectedTicket) error
}

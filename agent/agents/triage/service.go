package triage

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	llmx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/llm"
	nodex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/nodes/triage"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

var (
	ErrInvalidSubject     = nodex.ErrInvalidSubject
	ErrInvalidDescription = nodex.ErrInvalidDescription
)

const defaultReviewBudget = 2

type Config struct {
	ReviewBudget int `envconfig:"REVIEW_BUDGET" split_words:"true" default:"2"`
}

// Service drives one ticket through the triage graph. The compiled runner
// and every collaborator are process-wide shared resources; each Invoke owns
// its own TriageState, so concurrent runs are isolated by construction.
type Service struct {
	models     contractx.Registry
	retriever  contractx.Retriever
	archiver   contractx.Archiver
	categories contractx.Categories

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	reviewBudget int
	retry        llmx.RetryPolicy

	now func() time.Time
}

func New(
	models contractx.Registry,
	retriever contractx.Retriever,
	archiver contractx.Archiver,
	categories contractx.Categories,
	cfg Config,
) (*Service, error) {
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if archiver == nil {
		archiver = noopArchiver{}
	}
	if len(categories) == 0 {
		return nil, errors.New("category set is required")
	}

	reviewBudget := cfg.ReviewBudget
	if reviewBudget <= 0 {
		reviewBudget = defaultReviewBudget
	}

	s := &Service{
		models:       models,
		retriever:    retriever,
		archiver:     archiver,
		categories:   categories,
		reviewBudget: reviewBudget,
		retry:        llmx.DefaultRetryPolicy,
		now:          time.Now,
	}

	graphRunner, err := s.compileProcessTicketGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// ProcessTicket is the single externally invocable operation. It always
// returns either a schema-valid resolution or a structured failure record;
// the error return is reserved for infrastructure faults and cancellation.
func (s *Service) ProcessTicket(ctx context.Context, subject, description string) (nodex.GraphOutput, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		Subject:     subject,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, nodex.ErrInvalidSubject) || errors.Is(err, nodex.ErrInvalidDescription) {
			return nodex.GraphOutput{
				Status:  statex.StatusFailed,
				Message: "Ticket subject and description are required.",
				Failure: &contractx.Failure{
					Code:   contractx.FailureInvalidRequest,
					Reason: err.Error(),
				},
			}, nil
		}
		return nodex.GraphOutput{}, err
	}

	log.Info().
		Str("status", string(out.Status)).
		Msg("ticket processed")
	return out, nil
}

type noopArchiver struct{}

func (noopArchiver) ArchiveRejected(context.Context, contractx.RejectedTicket) error {
	return nil
}

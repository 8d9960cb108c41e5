package triagenode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
	statex "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/state"
)

var (
	ErrInvalidSubject     = errors.New("ticket subject is empty")
	ErrInvalidDescription = errors.New("ticket description is empty")
)

type GraphInput struct {
	Subject     string
	Description string
}

// GraphOutput is the externally visible result of one run: either an
// approved resolution, a rejected-with-fallback message, or a structured
// failure. It is assembled exclusively from validated state fields.
type GraphOutput struct {
	Status     statex.Status
	Message    string
	Resolution *contractx.Resolution
	Failure    *contractx.Failure
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*statex.TriageState, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, ErrInvalidSubject
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, ErrInvalidDescription
	}
	return statex.NewTriageState(in.Subject, in.Description, nowFn())
}

package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

type rejectedTicketRow struct {
	bun.BaseModel `bun:"table:rejected_tickets,alias:rt"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Subject     string    `bun:"subject,notnull"`
	Description string    `bun:"description,notnull"`
	Category    string    `bun:"category,notnull"`
	Drafts      []string  `bun:"drafts,array"`
	Feedback    []string  `bun:"feedback,array"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

// PostgresArchive keeps rejected tickets for human follow-up. It shares the
// process-wide database pool with the vector index.
type PostgresArchive struct {
	db *bun.DB
}

var _ contractx.Archiver = (*PostgresArchive)(nil)

func NewPostgresArchive(db *bun.DB) (*PostgresArchive, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle is required", contractx.ErrValidation)
	}
	return &PostgresArchive{db: db}, nil
}

func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.NewCreateTable().
		Model((*rejectedTicketRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create rejected_tickets table: %w", err)
	}
	return nil
}

func (a *PostgresArchive) ArchiveRejected(ctx context.Context, rec contractx.RejectedTicket) error {
	if strings.TrimSpace(rec.Subject) == "" {
		return fmt.Errorf("%w: rejected ticket subject is empty", contractx.ErrValidation)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	row := rejectedTicketRow{
		Subject:     rec.Subject,
		Description: rec.Description,
		Category:    string(rec.Category),
		Drafts:      rec.Drafts,
		Feedback:    rec.Feedback,
		CreatedAt:   createdAt.UTC(),
	}
	if _, err := a.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert rejected ticket: %w", err)
	}
	return nil
}

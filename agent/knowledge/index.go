package knowledge

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

// Index is the vector-store contract the gateway depends on. Reload must be
// all-or-nothing: a cancelled or failed reload leaves the previous contents
// intact.
type Index interface {
	Reload(ctx context.Context, docs []Document, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, category contractx.Category, k int) ([]contractx.Passage, error)
}

const embeddingDim = 1536

type passageRow struct {
	bun.BaseModel `bun:"table:kb_passages,alias:p"`

	ID         int64           `bun:"id,pk,autoincrement"`
	Collection string          `bun:"collection,notnull"`
	Category   string          `bun:"category,notnull"`
	Entry      string          `bun:"entry,notnull"`
	Source     string          `bun:"source,notnull"`
	Content    string          `bun:"content,notnull"`
	Embedding  pgvector.Vector `bun:"embedding,type:vector(1536)"`
}

type searchRow struct {
	Category string  `bun:"category"`
	Entry    string  `bun:"entry"`
	Source   string  `bun:"source"`
	Content  string  `bun:"content"`
	Distance float64 `bun:"distance"`
}

// PGVectorIndex keeps one collection of embedded passages in Postgres and
// answers cosine-similarity queries over it.
type PGVectorIndex struct {
	db         *bun.DB
	collection string
}

func NewPGVectorIndex(db *bun.DB, collection string) (*PGVectorIndex, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database handle is required", contractx.ErrValidation)
	}
	if collection == "" {
		collection = "support_docs"
	}
	return &PGVectorIndex{db: db, collection: collection}, nil
}

func (idx *PGVectorIndex) EnsureSchema(ctx context.Context) error {
	if _, err := idx.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if _, err := idx.db.NewCreateTable().
		Model((*passageRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create kb_passages table: %w", err)
	}
	return nil
}

// Reload replaces the collection contents in a single transaction so a
// mid-flight cancellation can never leave the index half-refreshed.
func (idx *PGVectorIndex) Reload(ctx context.Context, docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%w: %d documents but %d vectors", contractx.ErrValidation, len(docs), len(vectors))
	}

	rows := make([]passageRow, len(docs))
	for i, doc := range docs {
		rows[i] = passageRow{
			Collection: idx.collection,
			Category:   string(doc.Category),
			Entry:      doc.Entry,
			Source:     doc.Source,
			Content:    doc.Text,
			Embedding:  pgvector.NewVector(vectors[i]),
		}
	}

	return idx.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*passageRow)(nil)).
			Where("collection = ?", idx.collection).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear collection %s: %w", idx.collection, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert %d passages: %w", len(rows), err)
		}
		return nil
	})
}

// Search filters by category server-side and orders by cosine distance;
// score is reported as 1 - distance so callers see descending relevance.
func (idx *PGVectorIndex) Search(
	ctx context.Context,
	vector []float32,
	category contractx.Category,
	k int,
) ([]contractx.Passage, error) {
	if k <= 0 {
		k = 5
	}
	qv := pgvector.NewVector(vector)

	var rows []searchRow
	err := idx.db.NewSelect().
		Model((*passageRow)(nil)).
		Column("category", "entry", "source", "content").
		ColumnExpr("embedding <=> ? AS distance", qv).
		Where("collection = ?", idx.collection).
		Where("category = ?", string(category)).
		OrderExpr("embedding <=> ?", qv).
		Limit(k).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	passages := make([]contractx.Passage, len(rows))
	for i, row := range rows {
		passages[i] = contractx.Passage{
			Text:     row.Content,
			SourceID: fmt.Sprintf("%s#%s", row.Source, row.Entry),
			Score:    1 - row.Distance,
			Category: contractx.Category(row.Category),
		}
	}
	return passages, nil
}

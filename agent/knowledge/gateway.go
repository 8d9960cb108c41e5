package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Support-Ticket-Triage-Agent/agent/contract"
)

// Gateway implements contract.Retriever: every Query re-syncs the index from
// the dataset directory and only then runs the filtered similarity search.
// Refresh-then-query is the recency guarantee this system trades latency
// for; it is acceptable only while the corpus stays small. A refresh
// failure fails the whole query rather than serving stale passages.
type Gateway struct {
	embedder    Embedder
	index       Index
	datasetPath string
	topK        int
}

var _ contractx.Retriever = (*Gateway)(nil)

func NewGateway(embedder Embedder, index Index, cfg Config) (*Gateway, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", contractx.ErrValidation)
	}
	if index == nil {
		return nil, fmt.Errorf("%w: index is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(cfg.DatasetPath) == "" {
		return nil, fmt.Errorf("%w: dataset path is required", contractx.ErrValidation)
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}

	return &Gateway{
		embedder:    embedder,
		index:       index,
		datasetPath: cfg.DatasetPath,
		topK:        topK,
	}, nil
}

func (g *Gateway) Query(ctx context.Context, queryText string, category contractx.Category) ([]contractx.Passage, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: query text is empty", contractx.ErrValidation)
	}

	if err := g.refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: refresh: %v", contractx.ErrRetrievalUnavailable, err)
	}

	qvecs, err := g.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", contractx.ErrRetrievalUnavailable, err)
	}
	if len(qvecs) != 1 {
		return nil, fmt.Errorf("%w: expected one query vector, got %d", contractx.ErrRetrievalUnavailable, len(qvecs))
	}

	passages, err := g.index.Search(ctx, qvecs[0], category, g.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", contractx.ErrRetrievalUnavailable, err)
	}

	// The index already orders by distance; keep the descending-score
	// invariant independent of the backend.
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	log.Debug().
		Str("category", string(category)).
		Int("passages", len(passages)).
		Msg("refresh-then-query completed")
	return passages, nil
}

func (g *Gateway) refresh(ctx context.Context) error {
	docs, err := LoadDataset(g.datasetPath)
	if err != nil {
		return err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	vectors, err := g.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	if err := g.index.Reload(ctx, docs, vectors); err != nil {
		return err
	}

	log.Debug().Int("entries", len(docs)).Msg("knowledge index refreshed")
	return nil
}

package knowledge

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	PostgresDSN    string        `envconfig:"POSTGRES_DSN" split_words:"true" required:"true"`
	DatasetPath    string        `envconfig:"DATASET_PATH" split_words:"true" default:"static/dataset"`
	Collection     string        `envconfig:"COLLECTION" split_words:"true" default:"support_docs"`
	TopK           int           `envconfig:"TOP_K" split_words:"true" default:"5"`
	EmbeddingModel string        `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
	QueryTimeout   time.Duration `envconfig:"QUERY_TIMEOUT" split_words:"true" default:"30s"`
}

// NewDB opens the shared Postgres pool used by the vector index (and, by
// the caller's choice, the rejected-ticket archive).
func NewDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

package suggester

import (
	"context"

	"github.com/lintang-b-s/go-suggest/pkg/kvdb"
)

// TermSource is the document store view suggesters are built from.
type TermSource interface {
	CurrentValues(ctx context.Context, index string, shard int, field string) ([]string, error)
	CurrentAnalyzedValues(ctx context.Context, index string, shard int, field, analyzer string) ([]kvdb.AnalyzedValue, error)
	Shards(index string) (int, error)
	HasField(index, field string) (bool, error)
	Fields(index string) ([]string, error)
}

// Store is a TermSource that reports index deletion.
type Store interface {
	TermSource
	OnIndexDeleted(fn func(index string))
}

type Tokenizer interface {
	Tokenize(text, analyzerName string) ([]string, error)
	Has(name string) bool
}

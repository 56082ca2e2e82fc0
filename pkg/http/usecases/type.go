package usecases

import (
	"context"

	"github.com/lintang-b-s/go-suggest/pkg/kvdb"
	"github.com/lintang-b-s/go-suggest/pkg/suggester"
)

type Suggester interface {
	Suggest(ctx context.Context, q suggester.Query) ([]string, error)
	RefreshAll(ctx context.Context) error
	RefreshIndex(ctx context.Context, index string) error
	RefreshField(ctx context.Context, index, field string) error
	Statistics() suggester.Snapshot
}

type DocumentStore interface {
	CreateIndex(index string, shards int) error
	DeleteIndex(index string) error
	SaveDocs(index string, docs []kvdb.Document) error
	DeleteAllDocs(index string) error
	Shards(index string) (int, error)
}

package usecases

import (
	"context"

	"github.com/lintang-b-s/go-suggest/pkg/kvdb"
	"github.com/lintang-b-s/go-suggest/pkg/suggester"

	"go.uber.org/zap"
)

type SuggestService struct {
	log       *zap.Logger
	suggester Suggester
	store     DocumentStore
}

func New(log *zap.Logger, suggester Suggester, store DocumentStore) *SuggestService {
	return &SuggestService{
		log:       log,
		suggester: suggester,
		store:     store,
	}
}

func (s *SuggestService) Suggest(ctx context.Context, q suggester.Query) ([]string, error) {
	return s.suggester.Suggest(ctx, q)
}

func (s *SuggestService) RefreshAll(ctx context.Context) error {
	return s.suggester.RefreshAll(ctx)
}

// RefreshIndex fails with not found when index does not exist.
func (s *SuggestService) RefreshIndex(ctx context.Context, index string) error {
	if _, err := s.store.Shards(index); err != nil {
		return err
	}
	return s.suggester.RefreshIndex(ctx, index)
}

func (s *SuggestService) RefreshField(ctx context.Context, index, field string) error {
	if _, err := s.store.Shards(index); err != nil {
		return err
	}
	return s.suggester.RefreshField(ctx, index, field)
}

func (s *SuggestService) Statistics() suggester.Snapshot {
	return s.suggester.Statistics()
}

func (s *SuggestService) CreateIndex(index string, shards int) error {
	if err := s.store.CreateIndex(index, shards); err != nil {
		return err
	}
	s.log.Info("created index", zap.String("index", index), zap.Int("shards", shards))
	return nil
}

func (s *SuggestService) DeleteIndex(index string) error {
	if err := s.store.DeleteIndex(index); err != nil {
		return err
	}
	s.log.Info("deleted index", zap.String("index", index))
	return nil
}

// AddDocuments stores docs. They become suggestible once the affected fields are refreshed.
func (s *SuggestService) AddDocuments(index string, docs []kvdb.Document) error {
	if err := s.store.SaveDocs(index, docs); err != nil {
		return err
	}
	s.log.Debug("indexed documents", zap.String("index", index), zap.Int("docs", len(docs)))
	return nil
}

func (s *SuggestService) ClearDocuments(index string) error {
	if err := s.store.DeleteAllDocs(index); err != nil {
		return err
	}
	s.log.Info("cleared documents", zap.String("index", index))
	return nil
}

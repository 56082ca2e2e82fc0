package suggester

import (
	"context"

	"github.com/lintang-b-s/go-suggest/pkg/metrics"

	"go.uber.org/zap"
)

// Service bundles the registry with the resolver, refresher and reporter working on it.
type Service struct {
	Registry  *Registry
	Resolver  *Resolver
	Refresher *Refresher
	Reporter  *Reporter
	log       *zap.Logger
}

// NewService wires the components and drops suggesters of indices deleted from store.
func NewService(store Store, tokenizer Tokenizer, mappings *Mappings, cfg Config, log *zap.Logger,
	m *metrics.Metrics) *Service {
	registry := NewRegistry(store, mappings, cfg, log, m)
	store.OnIndexDeleted(registry.DropIndex)

	return &Service{
		Registry:  registry,
		Resolver:  NewResolver(registry, store, tokenizer, mappings, cfg, log, m),
		Refresher: NewRefresher(registry, cfg.RefreshWorkers, log),
		Reporter:  NewReporter(registry),
		log:       log,
	}
}

func (s *Service) Suggest(ctx context.Context, q Query) ([]string, error) {
	return s.Resolver.Resolve(ctx, q)
}

func (s *Service) RefreshAll(ctx context.Context) error {
	return s.Refresher.RefreshAll(ctx)
}

func (s *Service) RefreshIndex(ctx context.Context, index string) error {
	return s.Refresher.RefreshIndex(ctx, index)
}

func (s *Service) RefreshField(ctx context.Context, index, field string) error {
	return s.Refresher.RefreshField(ctx, index, field)
}

func (s *Service) Statistics() Snapshot {
	return s.Reporter.Snapshot()
}

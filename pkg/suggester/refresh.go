package suggester

import (
	"context"
	"errors"
	"time"

	"github.com/lintang-b-s/go-suggest/pkg/concurrent"

	"go.uber.org/zap"
)

// Refresher forces rebuilds of registry entries at three granularities. Every call blocks
// until all targeted rebuilds are done.
type Refresher struct {
	registry *Registry
	workers  int
	log      *zap.Logger
}

func NewRefresher(registry *Registry, workers int, log *zap.Logger) *Refresher {
	if workers < 1 {
		workers = DEFAULT_REFRESH_WORKERS
	}
	return &Refresher{registry: registry, workers: workers, log: log}
}

func (r *Refresher) RefreshAll(ctx context.Context) error {
	return r.rebuild(ctx, "all", r.registry.Instances(nil))
}

func (r *Refresher) RefreshIndex(ctx context.Context, index string) error {
	return r.rebuild(ctx, index, r.registry.Instances(func(k Key) bool { return k.Index == index }))
}

// RefreshField rebuilds every kind and shard of index/field. Other fields are left alone.
func (r *Refresher) RefreshField(ctx context.Context, index, field string) error {
	instances := []*Instance{}
	for in := range r.registry.ForEach(index, field) {
		instances = append(instances, in)
	}
	return r.rebuild(ctx, index+"/"+field, instances)
}

func (r *Refresher) rebuild(ctx context.Context, scope string, instances []*Instance) error {
	start := time.Now()
	errs := concurrent.Run(r.workers, instances, func(in *Instance) error {
		return in.Rebuild(ctx)
	})

	err := errors.Join(errs...)
	if err != nil {
		r.log.Error("refresh finished with errors", zap.String("scope", scope),
			zap.Int("instances", len(instances)), zap.Error(err))
		return err
	}
	r.log.Info("refreshed suggesters", zap.String("scope", scope),
		zap.Int("instances", len(instances)), zap.Duration("took", time.Since(start)))
	return nil
}

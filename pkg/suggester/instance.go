package suggester

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/go-suggest/pkg"
	"github.com/lintang-b-s/go-suggest/pkg/automaton"
	"github.com/lintang-b-s/go-suggest/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// snapshot is one built generation. It is never mutated after publication.
type snapshot struct {
	aut        *automaton.Automaton
	generation uint64
	builtAt    time.Time
}

// Instance owns the automaton of one (index, shard, field, kind). It starts unbuilt and is
// built on first lookup or by an explicit Rebuild.
type Instance struct {
	key      Key
	mapping  FieldMapping
	source   TermSource
	strategy strategy
	log      *zap.Logger
	metrics  *metrics.Metrics

	current     atomic.Pointer[snapshot]
	generations atomic.Uint64
	group       singleflight.Group
	buildMu     sync.Mutex
}

func newInstance(key Key, mapping FieldMapping, source TermSource, cfg Config, log *zap.Logger,
	m *metrics.Metrics) *Instance {
	var s strategy = shingleStrategy{maxShingleSize: cfg.MaxShingleSize}
	if key.Kind == KindAnalyzing {
		s = analyzingStrategy{fuzzy: cfg.Fuzzy}
	}
	return &Instance{
		key:      key,
		mapping:  mapping,
		source:   source,
		strategy: s,
		log:      log.With(zap.Stringer("suggester", key)),
		metrics:  m,
	}
}

func (in *Instance) Key() Key {
	return in.key
}

func (in *Instance) Built() bool {
	return in.current.Load() != nil
}

// Generation returns the id of the current build, zero while unbuilt.
func (in *Instance) Generation() uint64 {
	if s := in.current.Load(); s != nil {
		return s.generation
	}
	return 0
}

// SizeBytes reports the current automaton size. ok is false while unbuilt.
func (in *Instance) SizeBytes() (size int, ok bool) {
	s := in.current.Load()
	if s == nil {
		return 0, false
	}
	return s.aut.SizeBytes(), true
}

// EnsureBuilt builds the automaton if there is none yet. Concurrent callers share one build.
func (in *Instance) EnsureBuilt(ctx context.Context) error {
	_, err := in.ensureBuilt(ctx)
	return err
}

func (in *Instance) ensureBuilt(ctx context.Context) (*snapshot, error) {
	if s := in.current.Load(); s != nil {
		return s, nil
	}

	// the shared build outlives any single caller; each caller only stops waiting
	buildCtx := context.WithoutCancel(ctx)
	ch := in.group.DoChan("build", func() (interface{}, error) {
		return in.build(buildCtx, true)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Rebuild recomputes the term set and swaps in a new automaton. On failure the previous
// automaton stays in place.
func (in *Instance) Rebuild(ctx context.Context) error {
	_, err := in.build(ctx, false)
	return err
}

// build publishes a new snapshot. With onlyIfUnbuilt it returns a snapshot published while
// waiting for buildMu instead of building again.
func (in *Instance) build(ctx context.Context, onlyIfUnbuilt bool) (*snapshot, error) {
	in.buildMu.Lock()
	defer in.buildMu.Unlock()

	if s := in.current.Load(); onlyIfUnbuilt && s != nil {
		return s, nil
	}

	start := time.Now()
	aut, err := in.strategy.build(ctx, in.source, in.key, in.mapping)
	took := time.Since(start)
	in.metrics.ObserveBuild(in.key.Kind.String(), took, err)
	if err != nil {
		in.log.Warn("failed to build suggester, keeping previous automaton",
			zap.Bool("built", in.Built()), zap.Error(err))
		if errors.Is(err, pkg.ErrUnknownAnalyzer) {
			return nil, err
		}
		return nil, pkg.NewBuildFailure(err, in.key.Index, in.key.Shard, in.key.Field)
	}

	s := &snapshot{aut: aut, generation: in.generations.Add(1), builtAt: time.Now()}
	in.current.Store(s)

	in.metrics.SetAutomatonBytes(in.key.Index, in.key.Label(), in.key.Shard, aut.SizeBytes())
	in.log.Debug("built suggester",
		zap.Uint64("generation", s.generation),
		zap.Int("keys", aut.Len()),
		zap.Int("bytes", aut.SizeBytes()),
		zap.Duration("took", took))
	return s, nil
}

// Lookup returns completions of prefix, building the automaton first if needed.
func (in *Instance) Lookup(ctx context.Context, prefix string, limit int) ([]string, error) {
	s, err := in.ensureBuilt(ctx)
	if err != nil {
		return nil, err
	}
	return s.aut.Lookup(prefix, limit)
}

// FuzzyLookup returns matches within maxEdits of term, ranked by distance then value.
// Shingle instances compare whole terms, analyzing instances compare prefixes.
func (in *Instance) FuzzyLookup(ctx context.Context, term string, maxEdits, limit int) ([]automaton.Match, error) {
	s, err := in.ensureBuilt(ctx)
	if err != nil {
		return nil, err
	}
	return in.strategy.fuzzyLookup(s.aut, term, maxEdits, limit)
}

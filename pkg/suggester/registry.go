package suggester

import (
	"cmp"
	"iter"
	"sort"
	"sync"

	"github.com/lintang-b-s/go-suggest/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Registry maps (index, shard, field, kind) to suggester instances. Entries are created on
// first access and removed when their index or field is dropped.
type Registry struct {
	source   TermSource
	mappings *Mappings
	cfg      Config
	log      *zap.Logger
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	entries map[Key]*Instance
}

func NewRegistry(source TermSource, mappings *Mappings, cfg Config, log *zap.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		source:   source,
		mappings: mappings,
		cfg:      cfg,
		log:      log,
		metrics:  m,
		entries:  make(map[Key]*Instance),
	}
}

// Get returns the instance for key, creating an unbuilt one on first access.
func (r *Registry) Get(key Key) *Instance {
	if key.Kind == KindShingle {
		key.Analyzer = ""
	}

	r.mu.RLock()
	in, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return in
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if in, ok := r.entries[key]; ok {
		return in
	}
	in = newInstance(key, r.mappings.Resolve(key.Field), r.source, r.cfg, r.log, r.metrics)
	r.entries[key] = in
	return in
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Instances returns the instances matching filter ordered by index, field, kind, analyzer, shard.
func (r *Registry) Instances(filter func(Key) bool) []*Instance {
	r.mu.RLock()
	instances := make([]*Instance, 0, len(r.entries))
	for key, in := range r.entries {
		if filter == nil || filter(key) {
			instances = append(instances, in)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(instances, func(a, b *Instance) int {
		ka, kb := a.key, b.key
		if c := cmp.Compare(ka.Index, kb.Index); c != 0 {
			return c
		}
		if c := cmp.Compare(ka.Field, kb.Field); c != 0 {
			return c
		}
		if c := cmp.Compare(ka.Kind, kb.Kind); c != 0 {
			return c
		}
		if c := cmp.Compare(ka.Analyzer, kb.Analyzer); c != 0 {
			return c
		}
		return cmp.Compare(ka.Shard, kb.Shard)
	})
	return instances
}

// Indices returns every index with at least one registered instance.
func (r *Registry) Indices() []string {
	r.mu.RLock()
	set := make(map[string]struct{})
	for key := range r.entries {
		set[key.Index] = struct{}{}
	}
	r.mu.RUnlock()
	return sortedKeys(set)
}

// Fields returns the fields of index registered under kind.
func (r *Registry) Fields(index string, kind Kind) []string {
	r.mu.RLock()
	set := make(map[string]struct{})
	for key := range r.entries {
		if key.Index == index && key.Kind == kind {
			set[key.Field] = struct{}{}
		}
	}
	r.mu.RUnlock()
	return sortedKeys(set)
}

// ForEachField yields every registered field of index once, in order.
func (r *Registry) ForEachField(index string) iter.Seq[string] {
	return func(yield func(string) bool) {
		r.mu.RLock()
		set := make(map[string]struct{})
		for key := range r.entries {
			if key.Index == index {
				set[key.Field] = struct{}{}
			}
		}
		r.mu.RUnlock()

		for _, field := range sortedKeys(set) {
			if !yield(field) {
				return
			}
		}
	}
}

// ForEach yields the instances of index/field across shards and kinds.
func (r *Registry) ForEach(index, field string) iter.Seq[*Instance] {
	return func(yield func(*Instance) bool) {
		for _, in := range r.Instances(func(k Key) bool { return k.Index == index && k.Field == field }) {
			if !yield(in) {
				return
			}
		}
	}
}

func (r *Registry) DropIndex(index string) {
	r.mu.Lock()
	dropped := 0
	for key := range r.entries {
		if key.Index == index {
			delete(r.entries, key)
			dropped++
		}
	}
	r.mu.Unlock()

	r.metrics.ForgetIndex(index)
	r.log.Info("dropped suggesters of index", zap.String("index", index), zap.Int("instances", dropped))
}

func (r *Registry) DropField(index, field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if key.Index == index && key.Field == field {
			delete(r.entries, key)
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := maps.Keys(set)
	sort.Strings(keys)
	return keys
}

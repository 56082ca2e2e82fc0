package suggester

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lintang-b-s/go-suggest/pkg"
	"github.com/lintang-b-s/go-suggest/pkg/automaton"
	"github.com/lintang-b-s/go-suggest/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Resolver struct {
	registry  *Registry
	source    TermSource
	tokenizer Tokenizer
	mappings  *Mappings
	cfg       Config
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewResolver(registry *Registry, source TermSource, tokenizer Tokenizer, mappings *Mappings, cfg Config,
	log *zap.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		registry:  registry,
		source:    source,
		tokenizer: tokenizer,
		mappings:  mappings,
		cfg:       cfg,
		log:       log,
		metrics:   m,
	}
}

// target is one field the query runs against, with its term already prepared.
type target struct {
	field    string
	kind     Kind
	analyzer string
	term     string
}

// Resolve answers q with distinct suggestions in ascending order, at most q.Size of them.
func (r *Resolver) Resolve(ctx context.Context, q Query) ([]string, error) {
	start := time.Now()
	suggestions, err := r.resolve(ctx, q)
	kind := q.SuggestType
	if kind == "" {
		kind = SuggestSimple
	}
	r.metrics.ObserveQuery(string(kind), time.Since(start), len(suggestions), err)
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (r *Resolver) resolve(ctx context.Context, q Query) ([]string, error) {
	q, err := validate(q)
	if err != nil {
		return nil, err
	}

	shards, err := r.source.Shards(q.Index)
	if err != nil {
		return nil, err
	}

	targets, err := r.targets(q)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		merged = make(map[string]struct{})
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		if t.term == "" && t.kind == KindAnalyzing {
			// query analyzed to nothing
			continue
		}
		for shard := 0; shard < shards; shard++ {
			in := r.registry.Get(Key{Index: q.Index, Shard: shard, Field: t.field, Kind: t.kind, Analyzer: t.analyzer})
			g.Go(func() error {
				values, err := r.lookupShard(gctx, in, q, t.term)
				if err != nil {
					return err
				}
				mu.Lock()
				for _, v := range values {
					merged[v] = struct{}{}
				}
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	suggestions := make([]string, 0, len(merged))
	for v := range merged {
		suggestions = append(suggestions, v)
	}
	sort.Strings(suggestions)
	if len(suggestions) > q.Size {
		suggestions = suggestions[:q.Size]
	}
	return suggestions, nil
}

func validate(q Query) (Query, error) {
	if q.Size <= 0 {
		return q, pkg.NewInvalidQueryError("size must be positive, got %d", q.Size)
	}
	if q.Index == "" {
		return q, pkg.NewInvalidQueryError("index is required")
	}
	if q.Field == "" {
		return q, pkg.NewInvalidQueryError("field is required")
	}
	if !utf8.ValidString(q.Term) {
		return q, pkg.NewInvalidQueryError("term is not valid UTF-8")
	}
	if q.Similarity < 0 || q.Similarity > 1 {
		return q, pkg.NewInvalidQueryError("similarity must be within [0, 1], got %v", q.Similarity)
	}
	switch q.SuggestType {
	case "":
		q.SuggestType = SuggestSimple
	case SuggestSimple, SuggestFull, SuggestFuzzy:
	default:
		return q, pkg.NewInvalidQueryError("unknown suggest type %q", q.SuggestType)
	}
	return q, nil
}

func (r *Resolver) targets(q Query) ([]target, error) {
	if q.Field == AllFields {
		return r.wildcardTargets(q)
	}

	mapping := r.mappings.Resolve(q.Field)
	ok, err := r.source.HasField(q.Index, mapping.Source)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.NewUnknownFieldError(q.Index, q.Field)
	}

	if q.SuggestType.Kind() == KindShingle {
		return []target{{field: q.Field, kind: KindShingle, term: mapping.NormalizeQuery(q.Term)}}, nil
	}

	indexAnalyzer := firstNonEmpty(q.IndexAnalyzer, q.Analyzer, mapping.Analyzer)
	queryAnalyzer := firstNonEmpty(q.QueryAnalyzer, q.Analyzer, indexAnalyzer)
	if !r.tokenizer.Has(indexAnalyzer) {
		return nil, pkg.NewUnknownAnalyzerError(indexAnalyzer)
	}

	tokens, err := r.tokenizer.Tokenize(q.Term, queryAnalyzer)
	if err != nil {
		return nil, err
	}
	term := AnalyzedKey(tokens)
	if term != "" && endsWithSpace(q.Term) {
		// a finished last word should not complete to longer words
		term += " "
	}
	return []target{{field: q.Field, kind: KindAnalyzing, analyzer: indexAnalyzer, term: term}}, nil
}

// wildcardTargets covers every stored field of the index plus the simple-kind fields already
// registered for it. The wildcard always uses the simple kind.
func (r *Resolver) wildcardTargets(q Query) ([]target, error) {
	stored, err := r.source.Fields(q.Index)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	targets := []target{}
	for _, fields := range [][]string{stored, r.registry.Fields(q.Index, KindShingle)} {
		for _, field := range fields {
			if _, dup := seen[field]; dup || field == AllFields {
				continue
			}
			seen[field] = struct{}{}

			mapping := r.mappings.Resolve(field)
			ok, err := r.source.HasField(q.Index, mapping.Source)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			targets = append(targets, target{field: field, kind: KindShingle, term: mapping.NormalizeQuery(q.Term)})
		}
	}
	return targets, nil
}

func (r *Resolver) lookupShard(ctx context.Context, in *Instance, q Query, term string) ([]string, error) {
	maxEdits, fuzzy := r.maxEdits(q, term)
	if !fuzzy {
		return in.Lookup(ctx, term, q.Size)
	}

	matches, err := in.FuzzyLookup(ctx, term, maxEdits, q.Size)
	if err != nil {
		return nil, err
	}
	return values(matches), nil
}

// maxEdits decides whether the lookup is fuzzy and with how many edits.
// simple: fuzzy only when a similarity below 1 is given.
// fuzzy: similarity when given, the configured default otherwise.
// full: never fuzzy.
func (r *Resolver) maxEdits(q Query, term string) (int, bool) {
	switch q.SuggestType {
	case SuggestSimple:
		if q.Similarity > 0 && q.Similarity < 1 {
			return SimilarityToMaxEdits(q.Similarity, term), true
		}
	case SuggestFuzzy:
		if q.Similarity > 0 && q.Similarity < 1 {
			return SimilarityToMaxEdits(q.Similarity, term), true
		}
		return r.cfg.Fuzzy.MaxEdits, true
	}
	return 0, false
}

// SimilarityToMaxEdits maps a similarity in (0, 1] to round((1-similarity) * runes(term)),
// clamped to the automaton's supported range.
func SimilarityToMaxEdits(similarity float64, term string) int {
	edits := int(math.Round((1 - similarity) * float64(utf8.RuneCountInString(strings.TrimSpace(term)))))
	if edits < 0 {
		return 0
	}
	if edits > automaton.MaxEdits {
		return automaton.MaxEdits
	}
	return edits
}

func values(matches []automaton.Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Value)
	}
	return out
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}

func endsWithSpace(s string) bool {
	last, _ := utf8.DecodeLastRuneInString(s)
	return last != utf8.RuneError && unicode.IsSpace(last)
}

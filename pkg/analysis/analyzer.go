package analysis

import (
	"sort"
	"sync"

	"github.com/lintang-b-s/go-suggest/pkg"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	StandardAnalyzer   = "standard"
	StopwordsAnalyzer  = "suggest_analyzer_stopwords"
	KeywordAnalyzer    = "keyword"
	LowercaseAnalyzer  = "lowercase"
	WhitespaceAnalyzer = "whitespace"
	IndonesianAnalyzer = "indonesian"
)

type chain struct {
	tokenizer string
	filters   []string
}

var chains = map[string]chain{
	StandardAnalyzer:   {tokenizer: unicode.Name, filters: []string{lowercase.Name}},
	StopwordsAnalyzer:  {tokenizer: unicode.Name, filters: []string{lowercase.Name, en.StopName}},
	KeywordAnalyzer:    {tokenizer: single.Name},
	LowercaseAnalyzer:  {tokenizer: single.Name, filters: []string{lowercase.Name}},
	WhitespaceAnalyzer: {tokenizer: whitespace.Name, filters: []string{lowercase.Name}},
	IndonesianAnalyzer: {tokenizer: unicode.Name, filters: []string{lowercase.Name, SastrawiStemmerName}},
}

// Registry resolves analyzer names to bleve analysis chains.
type Registry struct {
	analyzers map[string]analysis.Analyzer
	mu        sync.RWMutex
}

func NewRegistry() (*Registry, error) {
	cache := registry.NewCache()
	r := &Registry{analyzers: make(map[string]analysis.Analyzer, len(chains))}

	for name, c := range chains {
		a, err := newAnalyzer(cache, c)
		if err != nil {
			return nil, pkg.WrapErrorf(err, pkg.ErrInternalServerError, "failed to construct analyzer %q", name)
		}
		r.analyzers[name] = a
	}
	return r, nil
}

func newAnalyzer(cache *registry.Cache, c chain) (*analysis.DefaultAnalyzer, error) {
	tokenizer, err := cache.TokenizerNamed(c.tokenizer)
	if err != nil {
		return nil, err
	}

	filters := make([]analysis.TokenFilter, 0, len(c.filters))
	for _, name := range c.filters {
		f, err := cache.TokenFilterNamed(name)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	return &analysis.DefaultAnalyzer{
		Tokenizer:    tokenizer,
		TokenFilters: filters,
	}, nil
}

// Register adds or replaces an analyzer under name.
func (r *Registry) Register(name string, a analysis.Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers[name] = a
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.analyzers[name]
	return ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tokenize runs text through the named analyzer and returns the non-empty terms in order.
func (r *Registry) Tokenize(text, analyzerName string) ([]string, error) {
	r.mu.RLock()
	a, ok := r.analyzers[analyzerName]
	r.mu.RUnlock()
	if !ok {
		return nil, pkg.NewUnknownAnalyzerError(analyzerName)
	}

	tokens := a.Analyze([]byte(text))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token.Term) == 0 {
			continue
		}
		terms = append(terms, string(token.Term))
	}
	return terms, nil
}

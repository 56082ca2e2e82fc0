package suggester

import (
	"context"
	"strings"

	"github.com/lintang-b-s/go-suggest/pkg/automaton"
)

// strategy is the part of a suggester that differs per kind: how the term set is pulled
// and turned into an automaton, and how fuzzy matching is done against it.
type strategy interface {
	build(ctx context.Context, source TermSource, key Key, mapping FieldMapping) (*automaton.Automaton, error)
	fuzzyLookup(aut *automaton.Automaton, term string, maxEdits, limit int) ([]automaton.Match, error)
}

type shingleStrategy struct {
	maxShingleSize int
}

func (s shingleStrategy) build(ctx context.Context, source TermSource, key Key, mapping FieldMapping) (*automaton.Automaton, error) {
	values, err := source.CurrentValues(ctx, key.Index, key.Shard, mapping.Source)
	if err != nil {
		return nil, err
	}

	terms := make([]string, 0, len(values))
	for _, v := range values {
		terms = append(terms, mapping.TermsOf(v, s.maxShingleSize)...)
	}
	return automaton.Build(terms)
}

// whole-term edit distance, the term has to be close to an entire shingle
func (s shingleStrategy) fuzzyLookup(aut *automaton.Automaton, term string, maxEdits, limit int) ([]automaton.Match, error) {
	return aut.FuzzyLookup(term, maxEdits, limit)
}

type analyzingStrategy struct {
	fuzzy automaton.FuzzyOptions
}

func (s analyzingStrategy) build(ctx context.Context, source TermSource, key Key, mapping FieldMapping) (*automaton.Automaton, error) {
	values, err := source.CurrentAnalyzedValues(ctx, key.Index, key.Shard, mapping.Source, key.Analyzer)
	if err != nil {
		return nil, err
	}

	entries := make([]automaton.Entry, 0, len(values))
	for _, v := range values {
		entries = append(entries, automaton.Entry{Key: AnalyzedKey(v.Tokens), Output: v.Raw})
	}
	return automaton.BuildEntries(entries)
}

func (s analyzingStrategy) fuzzyLookup(aut *automaton.Automaton, term string, maxEdits, limit int) ([]automaton.Match, error) {
	opts := s.fuzzy
	opts.MaxEdits = maxEdits
	return aut.FuzzyPrefixLookup(term, opts, limit)
}

// AnalyzedKey joins analyzer tokens into the form analyzing automatons are keyed on.
func AnalyzedKey(tokens []string) string {
	return strings.Join(tokens, " ")
}

package automaton

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/levenshtein"
)

const (
	// MaxEdits is the largest edit distance the levenshtein builders are prepared for.
	MaxEdits = 2

	acceptAll = -1
)

// FuzzyOptions controls prefix-fuzzy matching.
type FuzzyOptions struct {
	MaxEdits int
	// NonFuzzyPrefix is the number of leading runes that must match exactly.
	NonFuzzyPrefix int
	// MinFuzzyLength is the shortest query (in runes) that gets any edits at all.
	MinFuzzyLength int
}

var lvBuilders [MaxEdits + 1]struct {
	once    sync.Once
	builder *levenshtein.LevenshteinAutomatonBuilder
	err     error
}

// levenshteinDFA returns a dfa for query. builders are expensive so one per distance is shared.
func levenshteinDFA(query string, maxEdits int) (*levenshtein.DFA, error) {
	lb := &lvBuilders[maxEdits]
	lb.once.Do(func() {
		lb.builder, lb.err = levenshtein.NewLevenshteinAutomatonBuilder(uint8(maxEdits), true)
	})
	if lb.err != nil {
		return nil, lb.err
	}
	return lb.builder.BuildDfa(query, uint8(maxEdits))
}

func clampEdits(maxEdits int) int {
	if maxEdits < 0 {
		return 0
	}
	if maxEdits > MaxEdits {
		return MaxEdits
	}
	return maxEdits
}

// FuzzyLookup returns outputs whose whole key is within maxEdits of term,
// ranked by distance then value, capped at limit. Transpositions count as one edit.
func (a *Automaton) FuzzyLookup(term string, maxEdits int, limit int) ([]Match, error) {
	if a.fst == nil || limit <= 0 {
		return []Match{}, nil
	}

	maxEdits = clampEdits(maxEdits)
	if maxEdits == 0 {
		val, ok, err := a.fst.Get([]byte(term))
		if err != nil || !ok {
			return []Match{}, err
		}
		matches := []Match{}
		for _, v := range a.valuesOf([]byte(term), val) {
			matches = append(matches, Match{Value: v})
		}
		return rankMatches(matches, limit), nil
	}

	dfa, err := levenshteinDFA(term, maxEdits)
	if err != nil {
		return []Match{}, fmt.Errorf("error when building levenshtein automaton: %w", err)
	}

	return a.collect(dfa, nil, nil, limit, func(key []byte) int {
		_, d := dfa.MatchAndDistance(string(key))
		return int(d)
	})
}

// FuzzyPrefixLookup returns outputs whose key has some prefix within opts.MaxEdits of term.
// Results are ranked by distance then value and capped at limit.
func (a *Automaton) FuzzyPrefixLookup(term string, opts FuzzyOptions, limit int) ([]Match, error) {
	if a.fst == nil || limit <= 0 {
		return []Match{}, nil
	}

	maxEdits := clampEdits(opts.MaxEdits)
	if utf8.RuneCountInString(term) < opts.MinFuzzyLength {
		maxEdits = 0
	}
	if maxEdits == 0 {
		values, err := a.Lookup(term, int(^uint(0)>>1))
		if err != nil {
			return []Match{}, err
		}
		matches := make([]Match, 0, len(values))
		for _, v := range values {
			matches = append(matches, Match{Value: v})
		}
		return rankMatches(matches, limit), nil
	}

	dfa, err := levenshteinDFA(term, maxEdits)
	if err != nil {
		return []Match{}, fmt.Errorf("error when building levenshtein automaton: %w", err)
	}

	exact := runePrefix(term, opts.NonFuzzyPrefix)
	var start, end []byte
	if len(exact) > 0 {
		start = []byte(exact)
		end = prefixSuccessor(start)
	}

	return a.collect(prefixFuzzy{dfa: dfa}, start, end, limit, func(key []byte) int {
		return prefixDistance(dfa, key)
	})
}

func (a *Automaton) collect(aut vellum.Automaton, start, end []byte, limit int,
	distance func(key []byte) int) ([]Match, error) {
	fstIt, err := a.fst.Search(aut, start, end)
	if err != nil {
		if errors.Is(err, vellum.ErrIteratorDone) {
			return []Match{}, nil
		}
		return []Match{}, fmt.Errorf("error when executing fuzzy automaton: %w", err)
	}

	matches := []Match{}
	for err == nil {
		key, val := fstIt.Current()
		d := distance(key)
		for _, v := range a.valuesOf(key, val) {
			matches = append(matches, Match{Value: v, Distance: d})
		}

		err = fstIt.Next()
		if err != nil {
			if errors.Is(err, vellum.ErrIteratorDone) {
				break
			}
			return []Match{}, err
		}
	}
	return rankMatches(matches, limit), nil
}

// rankMatches keeps the closest distance per value, sorts by distance then value and truncates.
func rankMatches(matches []Match, limit int) []Match {
	best := make(map[string]int, len(matches))
	for _, m := range matches {
		if d, ok := best[m.Value]; !ok || m.Distance < d {
			best[m.Value] = m.Distance
		}
	}

	ranked := make([]Match, 0, len(best))
	for v, d := range best {
		ranked = append(ranked, Match{Value: v, Distance: d})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].Value < ranked[j].Value
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// prefixFuzzy matches every key that has a prefix accepted by the wrapped dfa.
// Once a prefix matches, the automaton moves to acceptAll and stays there.
type prefixFuzzy struct {
	dfa *levenshtein.DFA
}

func (p prefixFuzzy) Start() int {
	s := p.dfa.Start()
	if p.dfa.IsMatch(s) {
		return acceptAll
	}
	return s
}

func (p prefixFuzzy) IsMatch(state int) bool {
	return state == acceptAll
}

func (p prefixFuzzy) CanMatch(state int) bool {
	return state == acceptAll || p.dfa.CanMatch(state)
}

func (p prefixFuzzy) WillAlwaysMatch(state int) bool {
	return state == acceptAll
}

func (p prefixFuzzy) Accept(state int, b byte) int {
	if state == acceptAll {
		return acceptAll
	}
	if !p.dfa.CanMatch(state) {
		return int(levenshtein.SinkState)
	}
	next := p.dfa.Accept(state, b)
	if p.dfa.IsMatch(next) {
		return acceptAll
	}
	return next
}

// prefixDistance is the smallest edit distance between the dfa query and any prefix of key.
func prefixDistance(dfa *levenshtein.DFA, key []byte) int {
	best := -1
	state := dfa.Start()
	if dfa.IsMatch(state) {
		best = int(dfa.EditDistance(state))
	}
	for _, b := range key {
		if !dfa.CanMatch(state) {
			break
		}
		state = dfa.Accept(state, b)
		if dfa.IsMatch(state) {
			if d := int(dfa.EditDistance(state)); best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return MaxEdits + 1
	}
	return best
}

func runePrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// prefixSuccessor returns the smallest key greater than every key starting with prefix,
// or nil when no such key exists.
func prefixSuccessor(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

package automaton

import (
	"bytes"
	"errors"
	"fmt"
	rege "regexp"
	"sort"

	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/regexp"
)

// Entry pairs an FST key with the string returned when the key matches.
// Analyzing suggesters key on the analyzed form and return the raw value.
type Entry struct {
	Key    string
	Output string
}

// Match is a single fuzzy hit. Distance is the number of edits between the query and the key.
type Match struct {
	Value    string
	Distance int
}

// Automaton is an immutable completion structure over a finite term set.
// It is safe for concurrent use once built.
type Automaton struct {
	fst         *vellum.FST
	outputs     [][]string // fst value -> outputs sharing that key
	keyIsOutput bool
	size        int
	numKeys     int
}

// Build creates an automaton whose keys are also its outputs. Duplicates collapse.
func Build(terms []string) (*Automaton, error) {
	sortedTerms := make([]string, len(terms))
	copy(sortedTerms, terms)
	sort.Strings(sortedTerms)
	sortedTerms = dedupSorted(sortedTerms)

	aut := &Automaton{keyIsOutput: true}
	if len(sortedTerms) == 0 {
		return aut, nil
	}

	var buf bytes.Buffer
	fstBuilder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}

	for _, term := range sortedTerms {
		if err := fstBuilder.Insert([]byte(term), 0); err != nil {
			return nil, fmt.Errorf("error when inserting term %q: %w", term, err)
		}
	}

	if err := fstBuilder.Close(); err != nil {
		return nil, err
	}

	return aut.load(buf.Bytes(), len(sortedTerms))
}

// BuildEntries creates an automaton keyed on Entry.Key. Entries with an empty key are skipped
// since no query can reach them.
func BuildEntries(entries []Entry) (*Automaton, error) {
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Key != sorted[j].Key {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Output < sorted[j].Output
	})

	aut := &Automaton{}
	if len(sorted) == 0 {
		return aut, nil
	}

	var buf bytes.Buffer
	fstBuilder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(sorted); {
		key := sorted[i].Key
		group := []string{}
		for ; i < len(sorted) && sorted[i].Key == key; i++ {
			if n := len(group); n > 0 && group[n-1] == sorted[i].Output {
				continue
			}
			group = append(group, sorted[i].Output)
		}

		if err := fstBuilder.Insert([]byte(key), uint64(len(aut.outputs))); err != nil {
			return nil, fmt.Errorf("error when inserting key %q: %w", key, err)
		}
		aut.outputs = append(aut.outputs, group)
	}

	if err := fstBuilder.Close(); err != nil {
		return nil, err
	}

	return aut.load(buf.Bytes(), len(aut.outputs))
}

func (a *Automaton) load(data []byte, numKeys int) (*Automaton, error) {
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, err
	}
	a.fst = fst
	a.size = len(data)
	a.numKeys = numKeys
	return a, nil
}

// SizeBytes returns the size of the encoded FST. An empty automaton has size zero.
func (a *Automaton) SizeBytes() int {
	return a.size
}

// Len returns the number of distinct keys.
func (a *Automaton) Len() int {
	return a.numKeys
}

func (a *Automaton) valuesOf(key []byte, val uint64) []string {
	if a.keyIsOutput {
		return []string{string(key)}
	}
	return a.outputs[val]
}

// Lookup returns the outputs whose key starts with prefix, ascending, capped at limit.
func (a *Automaton) Lookup(prefix string, limit int) ([]string, error) {
	if a.fst == nil || limit <= 0 {
		return []string{}, nil
	}

	prefixReg := fmt.Sprintf(`(?s)%s.*`, rege.QuoteMeta(prefix))
	regAutomaton, err := regexp.New(prefixReg)
	if err != nil {
		return []string{}, fmt.Errorf("error when initializing regex automaton: %w", err)
	}

	fstIt, err := a.fst.Search(regAutomaton, nil, nil)
	if err != nil {
		if errors.Is(err, vellum.ErrIteratorDone) {
			return []string{}, nil
		}
		return []string{}, fmt.Errorf("error when executing regex automaton: %w", err)
	}

	matched := []string{}
	for err == nil {
		key, val := fstIt.Current()
		matched = append(matched, a.valuesOf(key, val)...)

		// keys come out sorted, so with key == output we can stop early
		if a.keyIsOutput && len(matched) >= limit {
			break
		}

		err = fstIt.Next()
		if err != nil {
			if errors.Is(err, vellum.ErrIteratorDone) {
				break
			}
			return []string{}, err
		}
	}

	if !a.keyIsOutput {
		sort.Strings(matched)
		matched = dedupSorted(matched)
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func dedupSorted(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

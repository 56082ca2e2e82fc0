package suggester

import (
	"fmt"

	"github.com/lintang-b-s/go-suggest/pkg/automaton"
)

// Kind is the suggester strategy backing a registry entry.
type Kind int

const (
	// KindShingle completes lowercased shingles of the field value. Serves "simple" queries.
	KindShingle Kind = iota
	// KindAnalyzing matches on analyzer tokens and returns the raw value. Serves "full" and "fuzzy".
	KindAnalyzing
)

func (k Kind) String() string {
	switch k {
	case KindShingle:
		return "shingle"
	case KindAnalyzing:
		return "analyzing"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Label is the statistics prefix for the kind.
func (k Kind) Label() string {
	return k.String() + "suggester"
}

type SuggestType string

const (
	SuggestSimple SuggestType = "simple"
	SuggestFull   SuggestType = "full"
	SuggestFuzzy  SuggestType = "fuzzy"
)

func (t SuggestType) Kind() Kind {
	if t == SuggestFull || t == SuggestFuzzy {
		return KindAnalyzing
	}
	return KindShingle
}

// Query is an immutable suggestion request.
type Query struct {
	Index string
	// Type is the document type. Fields are shared by every type of an index, so it does not
	// narrow the lookup.
	Type          string
	Field         string
	Term          string
	Size          int
	SuggestType   SuggestType
	Analyzer      string
	IndexAnalyzer string
	QueryAnalyzer string
	Similarity    float64
}

// Key identifies one suggester instance. Analyzer is the index-time analyzer of analyzing
// instances and empty for shingle ones.
type Key struct {
	Index    string
	Shard    int
	Field    string
	Kind     Kind
	Analyzer string
}

func (k Key) Label() string {
	return k.Kind.Label() + "-" + k.Field
}

func (k Key) String() string {
	if k.Analyzer == "" {
		return fmt.Sprintf("%s/%d/%s/%s", k.Index, k.Shard, k.Field, k.Kind)
	}
	return fmt.Sprintf("%s/%d/%s/%s[%s]", k.Index, k.Shard, k.Field, k.Kind, k.Analyzer)
}

type Config struct {
	// MaxShingleSize bounds the number of tokens per shingle. Zero means unbounded.
	MaxShingleSize  int
	Fuzzy           automaton.FuzzyOptions
	RefreshWorkers  int
	DefaultAnalyzer string
}

func DefaultConfig() Config {
	return Config{
		Fuzzy: automaton.FuzzyOptions{
			MaxEdits:       DEFAULT_FUZZY_MAX_EDITS,
			NonFuzzyPrefix: DEFAULT_FUZZY_PREFIX,
			MinFuzzyLength: DEFAULT_FUZZY_MIN_LENGTH,
		},
		RefreshWorkers:  DEFAULT_REFRESH_WORKERS,
		DefaultAnalyzer: DEFAULT_ANALYZER,
	}
}

package automaton

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	aut, err := Build([]string{"foo", "foob", "foobar", "boof"})
	require.NoError(t, err)
	assert.Equal(t, 4, aut.Len())
	assert.Greater(t, aut.SizeBytes(), 0)

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{name: "prefix foo", prefix: "foo", limit: 10, want: []string{"foo", "foob", "foobar"}},
		{name: "limit applies after ordering", prefix: "foo", limit: 2, want: []string{"foo", "foob"}},
		{name: "empty prefix returns all", prefix: "", limit: 10, want: []string{"boof", "foo", "foob", "foobar"}},
		{name: "no match", prefix: "x", limit: 10, want: []string{}},
		{name: "case sensitive", prefix: "FOO", limit: 10, want: []string{}},
		{name: "zero limit", prefix: "foo", limit: 0, want: []string{}},
		{name: "prefix longer than every key", prefix: "foobarbaz", limit: 10, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := aut.Lookup(tt.prefix, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupRegexMetaCharacters(t *testing.T) {
	aut, err := Build([]string{"c++ primer", "c# in depth", "cobol", "a.b", "axb"})
	require.NoError(t, err)

	got, err := aut.Lookup("c+", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c++ primer"}, got)

	got, err = aut.Lookup("a.", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b"}, got)
}

func TestBuildDuplicates(t *testing.T) {
	aut, err := Build([]string{"foo", "foo", "foob"})
	require.NoError(t, err)
	assert.Equal(t, 2, aut.Len())

	got, err := aut.Lookup("foo", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "foob"}, got)
}

func TestEmptyAutomaton(t *testing.T) {
	for _, aut := range []*Automaton{mustBuild(t, nil), mustBuildEntries(t, nil)} {
		assert.Equal(t, 0, aut.SizeBytes())
		assert.Equal(t, 0, aut.Len())

		got, err := aut.Lookup("a", 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		matches, err := aut.FuzzyLookup("abc", 1, 10)
		require.NoError(t, err)
		assert.Empty(t, matches)

		matches, err = aut.FuzzyPrefixLookup("abc", FuzzyOptions{MaxEdits: 1}, 10)
		require.NoError(t, err)
		assert.Empty(t, matches)
	}
}

func TestBuildEntries(t *testing.T) {
	aut := mustBuildEntries(t, []Entry{
		{Key: "bmw 318", Output: "BMW 318"},
		{Key: "bmw 528", Output: "BMW 528"},
		{Key: "bmw m3", Output: "BMW M3"},
		{Key: "the bmw 320", Output: "the BMW 320"},
		{Key: "vw jetta", Output: "VW Jetta"},
		{Key: "bmw", Output: "bmw"},
		{Key: "bmw", Output: "BMW"},
		{Key: "bmw", Output: "BMW"},
		{Key: "", Output: "the"},
	})
	assert.Equal(t, 6, aut.Len())

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{name: "outputs keep their case", prefix: "b", limit: 10, want: []string{"BMW", "BMW 318", "BMW 528", "BMW M3", "bmw"}},
		{name: "limit after sorting outputs", prefix: "bmw ", limit: 2, want: []string{"BMW 318", "BMW 528"}},
		{name: "key with stopword", prefix: "the", limit: 10, want: []string{"the BMW 320"}},
		{name: "outputs are not searchable", prefix: "BMW", limit: 10, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := aut.Lookup(tt.prefix, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFuzzyLookup(t *testing.T) {
	shingles := mustBuild(t, []string{"kochjacke", "kochjacke paul", "paul", "kochjacke bla", "bla", "blubb"})
	words := mustBuild(t, []string{"test", "text", "tent", "best", "toast"})

	tests := []struct {
		name     string
		aut      *Automaton
		term     string
		maxEdits int
		limit    int
		want     []Match
	}{
		{
			name: "transposition is one edit", aut: shingles, term: "kochajcke", maxEdits: 2, limit: 10,
			want: []Match{{Value: "kochjacke", Distance: 1}},
		},
		{
			name: "whole key only", aut: shingles, term: "bla", maxEdits: 1, limit: 10,
			want: []Match{{Value: "bla", Distance: 0}},
		},
		{
			name: "exact when no edits", aut: shingles, term: "paul", maxEdits: 0, limit: 10,
			want: []Match{{Value: "paul", Distance: 0}},
		},
		{
			name: "exact miss", aut: shingles, term: "pau", maxEdits: 0, limit: 10,
			want: []Match{},
		},
		{
			name: "ranked by distance then value", aut: words, term: "test", maxEdits: 1, limit: 10,
			want: []Match{{"test", 0}, {"best", 1}, {"tent", 1}, {"text", 1}},
		},
		{
			name: "limit after ranking", aut: words, term: "test", maxEdits: 1, limit: 2,
			want: []Match{{"test", 0}, {"best", 1}},
		},
		{
			name: "edits are clamped", aut: words, term: "tost", maxEdits: 9, limit: 10,
			want: []Match{{"test", 1}, {"toast", 1}, {"best", 2}, {"tent", 2}, {"text", 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.aut.FuzzyLookup(tt.term, tt.maxEdits, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFuzzyPrefixLookup(t *testing.T) {
	cars := mustBuildEntries(t, []Entry{
		{Key: "bmw 318", Output: "BMW 318"},
		{Key: "bmw 528", Output: "BMW 528"},
		{Key: "bmw m3", Output: "BMW M3"},
		{Key: "the bmw 320", Output: "the BMW 320"},
		{Key: "vw jetta", Output: "VW Jetta"},
	})
	autos := mustBuild(t, []string{"autorad", "autoreifen", "aurora", "bauto"})

	opts := FuzzyOptions{MaxEdits: 1, NonFuzzyPrefix: 1, MinFuzzyLength: 3}

	tests := []struct {
		name  string
		aut   *Automaton
		term  string
		opts  FuzzyOptions
		limit int
		want  []Match
	}{
		{
			name: "swapped letters", aut: cars, term: "bwm", opts: opts, limit: 10,
			want: []Match{{"BMW 318", 1}, {"BMW 528", 1}, {"BMW M3", 1}},
		},
		{
			name: "exact prefix has distance zero", aut: cars, term: "bmw", opts: opts, limit: 10,
			want: []Match{{"BMW 318", 0}, {"BMW 528", 0}, {"BMW M3", 0}},
		},
		{
			name: "closer first", aut: autos, term: "auto", opts: opts, limit: 10,
			want: []Match{{"autorad", 0}, {"autoreifen", 0}, {"aurora", 1}},
		},
		{
			name: "first letter must match", aut: autos, term: "xuto", opts: opts, limit: 10,
			want: []Match{},
		},
		{
			name: "short query is exact", aut: cars, term: "bw", opts: opts, limit: 10,
			want: []Match{},
		},
		{
			name: "fully fuzzy", aut: autos, term: "xauto", opts: FuzzyOptions{MaxEdits: 1}, limit: 10,
			want: []Match{{"autorad", 1}, {"autoreifen", 1}, {"bauto", 1}},
		},
		{
			name: "limit", aut: cars, term: "bwm", opts: opts, limit: 1,
			want: []Match{{"BMW 318", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.aut.FuzzyPrefixLookup(tt.term, tt.opts, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	alphabet := []rune("abcde ")

	for round := 0; round < 50; round++ {
		terms := make([]string, rnd.Intn(200))
		set := make(map[string]bool)
		for i := range terms {
			var sb strings.Builder
			for j := 0; j < 1+rnd.Intn(6); j++ {
				sb.WriteRune(alphabet[rnd.Intn(len(alphabet))])
			}
			terms[i] = sb.String()
			set[terms[i]] = true
		}

		aut := mustBuild(t, terms)
		prefix := string(alphabet[rnd.Intn(len(alphabet)-1)])
		limit := 1 + rnd.Intn(30)

		got, err := aut.Lookup(prefix, limit)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(got), limit)
		assert.True(t, sort.StringsAreSorted(got))
		for i, s := range got {
			assert.True(t, set[s], "%q is not a stored term", s)
			assert.True(t, strings.HasPrefix(s, prefix))
			if i > 0 {
				assert.NotEqual(t, got[i-1], s)
			}
		}

		want := 0
		for s := range set {
			if strings.HasPrefix(s, prefix) {
				want++
			}
		}
		if want > limit {
			want = limit
		}
		assert.Len(t, got, want)
	}
}

func TestPrefixSuccessor(t *testing.T) {
	assert.Equal(t, []byte("ac"), prefixSuccessor([]byte("ab")))
	assert.Equal(t, []byte("b"), prefixSuccessor([]byte{'a', 0xff}))
	assert.Nil(t, prefixSuccessor([]byte{0xff, 0xff}))

	assert.Equal(t, "", runePrefix("bmw", 0))
	assert.Equal(t, "b", runePrefix("bmw", 1))
	assert.Equal(t, "äb", runePrefix("äbc", 2))
	assert.Equal(t, "ab", runePrefix("ab", 5))
}

func mustBuild(t *testing.T, terms []string) *Automaton {
	t.Helper()
	aut, err := Build(terms)
	require.NoError(t, err)
	return aut
}

func mustBuildEntries(t *testing.T, entries []Entry) *Automaton {
	t.Helper()
	aut, err := BuildEntries(entries)
	require.NoError(t, err)
	return aut
}

package suggester

import (
	"fmt"
	"strings"

	"github.com/lintang-b-s/go-suggest/pkg"
)

// TermMode selects how the shingle kind turns a stored value into terms.
type TermMode string

const (
	TermsShingle   TermMode = "shingle"
	TermsLowercase TermMode = "lowercase"
	TermsKeyword   TermMode = "keyword"
)

// FieldMapping ties a suggest field path to the stored field it reads from.
type FieldMapping struct {
	Path     string   `mapstructure:"path"`
	Source   string   `mapstructure:"source"`
	Terms    TermMode `mapstructure:"terms"`
	Analyzer string   `mapstructure:"analyzer"`
}

func DefaultMappings() []FieldMapping {
	return []FieldMapping{
		{Path: "ProductName.suggest", Source: "ProductName", Terms: TermsShingle},
		{Path: "ProductName.lowercase", Source: "ProductName", Terms: TermsLowercase},
		{Path: "ProductName.keyword", Source: "ProductName", Terms: TermsKeyword},
	}
}

type Mappings struct {
	byPath          map[string]FieldMapping
	defaultAnalyzer string
}

func NewMappings(defaultAnalyzer string, mappings ...FieldMapping) (*Mappings, error) {
	if defaultAnalyzer == "" {
		defaultAnalyzer = DEFAULT_ANALYZER
	}
	m := &Mappings{byPath: make(map[string]FieldMapping, len(mappings)), defaultAnalyzer: defaultAnalyzer}
	for _, fm := range mappings {
		if fm.Path == "" {
			return nil, pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "field mapping without path")
		}
		if fm.Source == "" {
			fm.Source = fm.Path
		}
		switch fm.Terms {
		case "":
			fm.Terms = TermsKeyword
		case TermsShingle, TermsLowercase, TermsKeyword:
		default:
			return nil, pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "field %q: unknown terms mode %q", fm.Path, fm.Terms)
		}
		if fm.Analyzer == "" {
			fm.Analyzer = defaultAnalyzer
		}
		m.byPath[fm.Path] = fm
	}
	return m, nil
}

// Resolve returns the mapping for path. Unmapped paths read their own stored field as keywords.
func (m *Mappings) Resolve(path string) FieldMapping {
	if fm, ok := m.byPath[path]; ok {
		return fm
	}
	return FieldMapping{Path: path, Source: path, Terms: TermsKeyword, Analyzer: m.defaultAnalyzer}
}

func (fm FieldMapping) String() string {
	return fmt.Sprintf("%s<-%s(%s,%s)", fm.Path, fm.Source, fm.Terms, fm.Analyzer)
}

// TermsOf derives the shingle-kind term set of one stored value.
func (fm FieldMapping) TermsOf(value string, maxShingleSize int) []string {
	switch fm.Terms {
	case TermsShingle:
		return Shingles(value, maxShingleSize)
	case TermsLowercase:
		if value == "" {
			return nil
		}
		return []string{strings.ToLower(value)}
	default:
		if value == "" {
			return nil
		}
		return []string{value}
	}
}

// NormalizeQuery applies the same case folding to a query term that TermsOf applies to values.
func (fm FieldMapping) NormalizeQuery(term string) string {
	if fm.Terms == TermsKeyword {
		return term
	}
	return strings.ToLower(term)
}

// Shingles lowercases value and returns every run of consecutive whitespace separated tokens,
// e.g. "Kochjacke Paul" -> "kochjacke", "kochjacke paul", "paul". maxSize <= 0 means unbounded.
func Shingles(value string, maxSize int) []string {
	tokens := strings.Fields(strings.ToLower(value))
	shingles := make([]string, 0, len(tokens))
	for i := range tokens {
		end := len(tokens)
		if maxSize > 0 && i+maxSize < end {
			end = i + maxSize
		}
		for j := i + 1; j <= end; j++ {
			shingles = append(shingles, strings.Join(tokens[i:j], " "))
		}
	}
	return shingles
}

package analysis

import (
	"github.com/RadhiFadlillah/go-sastrawi"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

const SastrawiStemmerName = "stemmer_id_sastrawi"

var dictionary = sastrawi.DefaultDictionary()

// SastrawiStemmerFilter stems Indonesian words, e.g. "perjalanan" -> "jalan".
type SastrawiStemmerFilter struct {
	stem func(string) string
}

func NewSastrawiStemmerFilter() *SastrawiStemmerFilter {
	stemmer := sastrawi.NewStemmer(dictionary)
	return &SastrawiStemmerFilter{stem: stemmer.Stem}
}

func (f *SastrawiStemmerFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, token := range input {
		if stemmed := f.stem(string(token.Term)); stemmed != "" {
			token.Term = []byte(stemmed)
		}
	}
	return input
}

func SastrawiStemmerFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return NewSastrawiStemmerFilter(), nil
}

func init() {
	registry.RegisterTokenFilter(SastrawiStemmerName, SastrawiStemmerFilterConstructor)
}

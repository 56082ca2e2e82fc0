package kvdb

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/lintang-b-s/go-suggest/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

type splitTokenizer struct{}

func (splitTokenizer) Tokenize(text, analyzerName string) ([]string, error) {
	if analyzerName != "standard" {
		return nil, pkg.NewUnknownAnalyzerError(analyzerName)
	}
	return strings.Fields(strings.ToLower(text)), nil
}

func newTestKVDB(t *testing.T, shards int) *KVDB {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "docs_store.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kv, err := NewKVDB(db, splitTokenizer{}, shards)
	require.NoError(t, err)
	return kv
}

func allValues(t *testing.T, kv *KVDB, index, field string) []string {
	t.Helper()
	shards, err := kv.Shards(index)
	require.NoError(t, err)

	values := []string{}
	for shard := 0; shard < shards; shard++ {
		v, err := kv.CurrentValues(context.Background(), index, shard, field)
		require.NoError(t, err)
		values = append(values, v...)
	}
	sort.Strings(values)
	return values
}

func TestSaveDocsAndCurrentValues(t *testing.T) {
	for _, shards := range []int{1, 4, 10} {
		kv := newTestKVDB(t, shards)

		docs := []Document{
			{ID: "1", Fields: map[string]string{"ProductName": "foo", "Description": "Kochjacke Hahn"}},
			{ID: "2", Fields: map[string]string{"ProductName": "foob"}},
			{ID: "3", Fields: map[string]string{"ProductName": "foobar"}},
			{ID: "4", Fields: map[string]string{"ProductName": "boof"}},
		}
		require.NoError(t, kv.SaveDocs("products", docs))

		assert.Equal(t, []string{"boof", "foo", "foob", "foobar"}, allValues(t, kv, "products", "ProductName"))
		assert.Equal(t, []string{"Kochjacke Hahn"}, allValues(t, kv, "products", "Description"))

		fields, err := kv.Fields("products")
		require.NoError(t, err)
		assert.Equal(t, []string{"Description", "ProductName"}, fields)

		ok, err := kv.HasField("products", "Color")
		require.NoError(t, err)
		assert.False(t, ok)

		// same id overwrites
		require.NoError(t, kv.SaveDocs("products", []Document{{ID: "4", Fields: map[string]string{"ProductName": "oof"}}}))
		assert.Equal(t, []string{"foo", "foob", "foobar", "oof"}, allValues(t, kv, "products", "ProductName"))

		doc, err := kv.GetDoc("products", "4")
		require.NoError(t, err)
		assert.Equal(t, "oof", doc.Fields["ProductName"])
	}
}

func TestIndexLifecycle(t *testing.T) {
	kv := newTestKVDB(t, 2)

	require.NoError(t, kv.CreateIndex("products", 4))
	err := kv.CreateIndex("products", 4)
	assert.True(t, errors.Is(err, pkg.ErrConflict))

	shards, err := kv.Shards("products")
	require.NoError(t, err)
	assert.Equal(t, 4, shards)

	deleted := []string{}
	kv.OnIndexDeleted(func(index string) { deleted = append(deleted, index) })

	require.NoError(t, kv.SaveDocs("products", []Document{{ID: "a", Fields: map[string]string{"ProductName": "autorad"}}}))
	require.NoError(t, kv.DeleteAllDocs("products"))
	assert.Empty(t, allValues(t, kv, "products", "ProductName"))

	ok, err := kv.HasField("products", "ProductName")
	require.NoError(t, err)
	assert.True(t, ok, "fields survive a clear")

	require.NoError(t, kv.DeleteIndex("products"))
	assert.Equal(t, []string{"products"}, deleted)

	_, err = kv.Shards("products")
	assert.True(t, errors.Is(err, pkg.ErrNotFound))

	err = kv.DeleteIndex("products")
	assert.True(t, errors.Is(err, pkg.ErrNotFound))

	indices, err := kv.Indices()
	require.NoError(t, err)
	assert.Empty(t, indices)
}

func TestSaveDocsAutoCreatesIndex(t *testing.T) {
	kv := newTestKVDB(t, 3)
	require.NoError(t, kv.SaveDocs("cars", []Document{{ID: "1", Fields: map[string]string{"ProductName": "BMW 318"}}}))

	shards, err := kv.Shards("cars")
	require.NoError(t, err)
	assert.Equal(t, 3, shards)

	err = kv.SaveDocs("cars", []Document{{Fields: map[string]string{"ProductName": "VW Jetta"}}})
	assert.True(t, errors.Is(err, pkg.ErrBadParamInput))
}

func TestCurrentAnalyzedValues(t *testing.T) {
	kv := newTestKVDB(t, 1)
	require.NoError(t, kv.SaveDocs("cars", []Document{
		{ID: "1", Fields: map[string]string{"ProductName": "BMW 318"}},
		{ID: "2", Fields: map[string]string{"ProductName": "the BMW 320"}},
	}))

	got, err := kv.CurrentAnalyzedValues(context.Background(), "cars", 0, "ProductName", "standard")
	require.NoError(t, err)
	sort.Slice(got, func(i, j int) bool { return got[i].Raw < got[j].Raw })
	assert.Equal(t, []AnalyzedValue{
		{Raw: "BMW 318", Tokens: []string{"bmw", "318"}},
		{Raw: "the BMW 320", Tokens: []string{"the", "bmw", "320"}},
	}, got)

	_, err = kv.CurrentAnalyzedValues(context.Background(), "cars", 0, "ProductName", "klingon")
	assert.True(t, errors.Is(err, pkg.ErrUnknownAnalyzer))

	_, err = kv.CurrentValues(context.Background(), "cars", 5, "ProductName")
	assert.True(t, errors.Is(err, pkg.ErrBadParamInput))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = kv.CurrentValues(ctx, "cars", 0, "ProductName")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShardOfIsStable(t *testing.T) {
	for _, id := range []string{"1", "2", "abc", ""} {
		s := ShardOf(id, 10)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 10)
		assert.Equal(t, s, ShardOf(id, 10))
	}
	assert.Equal(t, 0, ShardOf("anything", 1))
}

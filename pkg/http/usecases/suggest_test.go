package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/lintang-b-s/go-suggest/pkg"
	"github.com/lintang-b-s/go-suggest/pkg/kvdb"
	"github.com/lintang-b-s/go-suggest/pkg/suggester"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSuggester struct {
	refreshed []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, q suggester.Query) ([]string, error) {
	return []string{q.Term}, nil
}

func (f *fakeSuggester) RefreshAll(ctx context.Context) error {
	f.refreshed = append(f.refreshed, "*")
	return nil
}

func (f *fakeSuggester) RefreshIndex(ctx context.Context, index string) error {
	f.refreshed = append(f.refreshed, index)
	return nil
}

func (f *fakeSuggester) RefreshField(ctx context.Context, index, field string) error {
	f.refreshed = append(f.refreshed, index+"/"+field)
	return nil
}

func (f *fakeSuggester) Statistics() suggester.Snapshot { return suggester.Snapshot{} }

type fakeStore struct {
	indices map[string]int
}

func (f *fakeStore) CreateIndex(index string, shards int) error {
	f.indices[index] = shards
	return nil
}

func (f *fakeStore) DeleteIndex(index string) error {
	if _, ok := f.indices[index]; !ok {
		return pkg.WrapErrorf(nil, pkg.ErrNotFound, "index %q not found", index)
	}
	delete(f.indices, index)
	return nil
}

func (f *fakeStore) SaveDocs(index string, docs []kvdb.Document) error { return nil }

func (f *fakeStore) DeleteAllDocs(index string) error { return nil }

func (f *fakeStore) Shards(index string) (int, error) {
	shards, ok := f.indices[index]
	if !ok {
		return 0, pkg.WrapErrorf(nil, pkg.ErrNotFound, "index %q not found", index)
	}
	return shards, nil
}

func TestRefreshChecksIndex(t *testing.T) {
	sugg := &fakeSuggester{}
	svc := New(zap.NewNop(), sugg, &fakeStore{indices: map[string]int{"cars": 2}})
	ctx := context.Background()

	assert.NoError(t, svc.RefreshIndex(ctx, "cars"))
	assert.NoError(t, svc.RefreshField(ctx, "cars", "ProductName.suggest"))
	assert.NoError(t, svc.RefreshAll(ctx))

	err := svc.RefreshIndex(ctx, "boats")
	assert.True(t, errors.Is(err, pkg.ErrNotFound))
	err = svc.RefreshField(ctx, "boats", "ProductName.suggest")
	assert.True(t, errors.Is(err, pkg.ErrNotFound))

	assert.Equal(t, []string{"cars", "cars/ProductName.suggest", "*"}, sugg.refreshed)
}

func TestIndexLifecycle(t *testing.T) {
	store := &fakeStore{indices: map[string]int{}}
	svc := New(zap.NewNop(), &fakeSuggester{}, store)

	assert.NoError(t, svc.CreateIndex("cars", 4))
	assert.Equal(t, 4, store.indices["cars"])
	assert.NoError(t, svc.AddDocuments("cars", []kvdb.Document{{ID: "1"}}))
	assert.NoError(t, svc.ClearDocuments("cars"))
	assert.NoError(t, svc.DeleteIndex("cars"))
	assert.True(t, errors.Is(svc.DeleteIndex("cars"), pkg.ErrNotFound))
}

package loader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lintang-b-s/go-suggest/pkg"
	"github.com/lintang-b-s/go-suggest/pkg/kvdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memSink struct {
	batches [][]kvdb.Document
}

func (m *memSink) SaveDocs(index string, docs []kvdb.Document) error {
	m.batches = append(m.batches, append([]kvdb.Document{}, docs...))
	return nil
}

func TestLoad(t *testing.T) {
	input := strings.Join([]string{
		`{"id": "1", "fields": {"ProductName": "BMW 318"}}`,
		``,
		`{"id": 2, "ProductName": "BMW 528", "Price": 10}`,
		`{"id": "3", "ProductName": "VW Jetta", "Description": "Kombi"}`,
	}, "\n")

	sink := &memSink{}
	n, err := New(sink, zap.NewNop(), 2).Load(context.Background(), strings.NewReader(input), "cars")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, sink.batches, 2)
	assert.Len(t, sink.batches[0], 2)
	assert.Equal(t, kvdb.Document{ID: "1", Fields: map[string]string{"ProductName": "BMW 318"}}, sink.batches[0][0])
	assert.Equal(t, kvdb.Document{ID: "2", Fields: map[string]string{"ProductName": "BMW 528"}}, sink.batches[0][1])
	assert.Equal(t, kvdb.Document{ID: "3", Fields: map[string]string{"ProductName": "VW Jetta", "Description": "Kombi"}},
		sink.batches[1][0])
}

func TestLoadRejectsBadLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `BMW 318`},
		{"missing id", `{"ProductName": "BMW 318"}`},
		{"empty id", `{"id": "", "ProductName": "BMW 318"}`},
		{"object id", `{"id": {"x": 1}, "ProductName": "BMW 318"}`},
		{"non string fields", `{"id": "1", "fields": {"Price": 10}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &memSink{}
			input := `{"id": "0", "ProductName": "ok"}` + "\n" + tt.line
			n, err := New(sink, zap.NewNop(), 10).Load(context.Background(), strings.NewReader(input), "cars")
			assert.True(t, errors.Is(err, pkg.ErrBadParamInput), "got %v", err)
			assert.Equal(t, 0, n)
			assert.Empty(t, sink.batches)
		})
	}
}

package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lintang-b-s/go-suggest/pkg"
	"github.com/lintang-b-s/go-suggest/pkg/kvdb"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const (
	DEFAULT_BATCH_SIZE = 1000
	maxLineBytes       = 4 << 20
)

type DocumentSink interface {
	SaveDocs(index string, docs []kvdb.Document) error
}

// Loader reads JSON-lines documents and stores them in batches.
type Loader struct {
	sink      DocumentSink
	log       *zap.Logger
	batchSize int
}

func New(sink DocumentSink, log *zap.Logger, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = DEFAULT_BATCH_SIZE
	}
	return &Loader{sink: sink, log: log, batchSize: batchSize}
}

// Load stores every document read from r into index and returns how many were stored.
// Each line is either {"id": .., "fields": {..}} or a flat object whose "id" key is the id and
// whose other string values are fields. Blank lines are skipped.
func (l *Loader) Load(ctx context.Context, r io.Reader, index string) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]kvdb.Document, 0, l.batchSize)
	stored, lineNo := 0, 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.sink.SaveDocs(index, batch); err != nil {
			return err
		}
		stored += len(batch)
		l.log.Debug("stored batch", zap.String("index", index), zap.Int("docs", len(batch)), zap.Int("total", stored))
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		doc, err := parseDocument(line)
		if err != nil {
			return stored, pkg.WrapErrorf(err, pkg.ErrBadParamInput, "line %d", lineNo)
		}
		batch = append(batch, doc)
		if len(batch) == l.batchSize {
			if err := flush(); err != nil {
				return stored, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stored, err
	}
	if err := flush(); err != nil {
		return stored, err
	}

	l.log.Info("loaded documents", zap.String("index", index), zap.Int("docs", stored))
	return stored, nil
}

func parseDocument(line []byte) (kvdb.Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return kvdb.Document{}, err
	}

	id, err := parseID(raw["id"])
	if err != nil {
		return kvdb.Document{}, err
	}
	doc := kvdb.Document{ID: id, Fields: make(map[string]string)}

	if nested, ok := raw["fields"]; ok {
		if err := json.Unmarshal(nested, &doc.Fields); err != nil {
			return kvdb.Document{}, fmt.Errorf("fields must be an object of strings: %w", err)
		}
		return doc, nil
	}

	for k, v := range raw {
		if k == "id" {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			// non string values are not suggestible
			continue
		}
		doc.Fields[k] = s
	}
	return doc, nil
}

func parseID(v json.RawMessage) (string, error) {
	if len(v) == 0 {
		return "", fmt.Errorf("document without id")
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if s == "" {
			return "", fmt.Errorf("document with empty id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", fmt.Errorf("id must be a string or a number")
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", fmt.Errorf("id must be a string or a number")
	}
	return n.String(), nil
}

// NewProgressBar returns a byte progress bar for reading a file of size bytes.
func NewProgressBar(size int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

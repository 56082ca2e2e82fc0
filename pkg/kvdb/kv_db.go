package kvdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/lintang-b-s/go-suggest/pkg"

	"github.com/klauspost/compress/s2"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var (
	ErrorsKeyNotExists = errors.New("key not exists")
)

const (
	BBOLTDB_META_BUCKET = "suggestIndices"
	docsBucketPrefix    = "docs/"
)

// Document is a stored record. Fields maps a field name to its value.
type Document struct {
	ID     string            `msgpack:"id" json:"id"`
	Fields map[string]string `msgpack:"fields" json:"fields"`
}

type IndexMeta struct {
	Name   string          `msgpack:"name"`
	Shards int             `msgpack:"shards"`
	Fields map[string]bool `msgpack:"fields"`
}

// AnalyzedValue is a raw field value together with the tokens an analyzer produced for it.
type AnalyzedValue struct {
	Raw    string
	Tokens []string
}

type Tokenizer interface {
	Tokenize(text, analyzerName string) ([]string, error)
}

type KVDB struct {
	db            *bbolt.DB
	tokenizer     Tokenizer
	defaultShards int

	listenerMu     sync.RWMutex
	onIndexDeleted []func(index string)
	sync.Mutex
}

func NewKVDB(db *bbolt.DB, tokenizer Tokenizer, defaultShards int) (*KVDB, error) {
	if defaultShards < 1 {
		defaultShards = 1
	}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BBOLTDB_META_BUCKET))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &KVDB{db: db, tokenizer: tokenizer, defaultShards: defaultShards}, nil
}

// OnIndexDeleted registers fn to run after an index and its documents are removed.
func (db *KVDB) OnIndexDeleted(fn func(index string)) {
	db.listenerMu.Lock()
	defer db.listenerMu.Unlock()
	db.onIndexDeleted = append(db.onIndexDeleted, fn)
}

func (db *KVDB) notify(listeners []func(string), index string) {
	db.listenerMu.RLock()
	fns := make([]func(string), len(listeners))
	copy(fns, listeners)
	db.listenerMu.RUnlock()
	for _, fn := range fns {
		fn(index)
	}
}

func docsBucket(index string) []byte {
	return []byte(docsBucketPrefix + index)
}

// ShardOf routes a document id to one of shards.
func ShardOf(id string, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(shards))
}

func docKey(shard int, id string) []byte {
	key := make([]byte, 4+len(id))
	binary.BigEndian.PutUint32(key, uint32(shard))
	copy(key[4:], id)
	return key
}

func shardPrefix(shard int) []byte {
	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, uint32(shard))
	return prefix
}

func (db *KVDB) CreateIndex(index string, shards int) error {
	if index == "" {
		return pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "index name is empty")
	}
	if shards < 1 {
		shards = db.defaultShards
	}
	db.Lock()
	defer db.Unlock()
	return db.db.Update(func(tx *bbolt.Tx) error {
		if _, err := getMeta(tx, index); err == nil {
			return pkg.WrapErrorf(nil, pkg.ErrConflict, "index %q already exists", index)
		}
		return createIndex(tx, index, shards)
	})
}

func createIndex(tx *bbolt.Tx, index string, shards int) error {
	if _, err := tx.CreateBucketIfNotExists(docsBucket(index)); err != nil {
		return err
	}
	return putMeta(tx, IndexMeta{Name: index, Shards: shards, Fields: map[string]bool{}})
}

func (db *KVDB) DeleteIndex(index string) error {
	db.Lock()
	err := db.db.Update(func(tx *bbolt.Tx) error {
		if _, err := getMeta(tx, index); err != nil {
			return err
		}
		if err := tx.DeleteBucket(docsBucket(index)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		return tx.Bucket([]byte(BBOLTDB_META_BUCKET)).Delete([]byte(index))
	})
	db.Unlock()
	if err != nil {
		return err
	}

	db.notify(db.onIndexDeleted, index)
	return nil
}

// DeleteAllDocs removes every document of index. The index and its known fields stay.
func (db *KVDB) DeleteAllDocs(index string) error {
	db.Lock()
	err := db.db.Update(func(tx *bbolt.Tx) error {
		if _, err := getMeta(tx, index); err != nil {
			return err
		}
		if err := tx.DeleteBucket(docsBucket(index)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(docsBucket(index))
		return err
	})
	db.Unlock()
	return err
}

func (db *KVDB) Indices() ([]string, error) {
	indices := []string{}
	err := db.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BBOLTDB_META_BUCKET)).ForEach(func(k, _ []byte) error {
			indices = append(indices, string(k))
			return nil
		})
	})
	return indices, err
}

func (db *KVDB) Meta(index string) (meta IndexMeta, err error) {
	err = db.db.View(func(tx *bbolt.Tx) error {
		meta, err = getMeta(tx, index)
		return err
	})
	return
}

func (db *KVDB) Shards(index string) (int, error) {
	meta, err := db.Meta(index)
	if err != nil {
		return 0, err
	}
	return meta.Shards, nil
}

func (db *KVDB) HasField(index, field string) (bool, error) {
	meta, err := db.Meta(index)
	if err != nil {
		return false, err
	}
	return meta.Fields[field], nil
}

// Fields returns every field name ever indexed in index, sorted.
func (db *KVDB) Fields(index string) ([]string, error) {
	meta, err := db.Meta(index)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(meta.Fields))
	for f := range meta.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields, nil
}

// SaveDocs stores docs in index, creating the index with the default shard count if needed.
// batching
func (db *KVDB) SaveDocs(index string, docs []Document) error {
	db.Lock()
	defer db.Unlock()
	return db.db.Batch(func(tx *bbolt.Tx) error {
		meta, err := getMeta(tx, index)
		if errors.Is(err, pkg.ErrNotFound) {
			if err := createIndex(tx, index, db.defaultShards); err != nil {
				return err
			}
			meta, err = getMeta(tx, index)
		}
		if err != nil {
			return err
		}

		b := tx.Bucket(docsBucket(index))
		for _, doc := range docs {
			if doc.ID == "" {
				return pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "document without id in index %q", index)
			}
			if err := db.set(b, meta.Shards, doc); err != nil {
				return err
			}
			for field := range doc.Fields {
				meta.Fields[field] = true
			}
		}
		return putMeta(tx, meta) // harus return nil kalau sukses, kalau return err kena rollback txn-nya
	})
}

func (db *KVDB) set(b *bbolt.Bucket, shards int, doc Document) error {
	docBytes, err := serializeDoc(doc)
	if err != nil {
		return err
	}
	return b.Put(docKey(ShardOf(doc.ID, shards), doc.ID), docBytes)
}

func (db *KVDB) GetDoc(index, id string) (doc Document, err error) {
	err = db.db.View(func(tx *bbolt.Tx) error {
		meta, err := getMeta(tx, index)
		if err != nil {
			return err
		}
		docBytes := tx.Bucket(docsBucket(index)).Get(docKey(ShardOf(id, meta.Shards), id))
		if docBytes == nil {
			return ErrorsKeyNotExists
		}
		doc, err = deserializeDoc(docBytes)
		return err
	})
	return
}

func (db *KVDB) DeleteDoc(index, id string) error {
	db.Lock()
	defer db.Unlock()
	return db.db.Update(func(tx *bbolt.Tx) error {
		meta, err := getMeta(tx, index)
		if err != nil {
			return err
		}
		return tx.Bucket(docsBucket(index)).Delete(docKey(ShardOf(id, meta.Shards), id))
	})
}

// forEachDoc walks the documents of one shard in key order.
func (db *KVDB) forEachDoc(ctx context.Context, index string, shard int, fn func(doc Document) error) error {
	return db.db.View(func(tx *bbolt.Tx) error {
		meta, err := getMeta(tx, index)
		if err != nil {
			return err
		}
		if shard < 0 || shard >= meta.Shards {
			return pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "index %q has no shard %d", index, shard)
		}

		prefix := shardPrefix(shard)
		c := tx.Bucket(docsBucket(index)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := deserializeDoc(v)
			if err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// CurrentValues returns the values of field over every document of the shard.
func (db *KVDB) CurrentValues(ctx context.Context, index string, shard int, field string) ([]string, error) {
	values := []string{}
	err := db.forEachDoc(ctx, index, shard, func(doc Document) error {
		if v, ok := doc.Fields[field]; ok {
			values = append(values, v)
		}
		return nil
	})
	return values, err
}

// CurrentAnalyzedValues returns each value of field together with its tokens under analyzer.
func (db *KVDB) CurrentAnalyzedValues(ctx context.Context, index string, shard int, field, analyzer string) ([]AnalyzedValue, error) {
	values, err := db.CurrentValues(ctx, index, shard, field)
	if err != nil {
		return nil, err
	}

	analyzed := make([]AnalyzedValue, 0, len(values))
	for _, v := range values {
		tokens, err := db.tokenizer.Tokenize(v, analyzer)
		if err != nil {
			return nil, err
		}
		analyzed = append(analyzed, AnalyzedValue{Raw: v, Tokens: tokens})
	}
	return analyzed, nil
}

func getMeta(tx *bbolt.Tx, index string) (IndexMeta, error) {
	var meta IndexMeta
	metaBytes := tx.Bucket([]byte(BBOLTDB_META_BUCKET)).Get([]byte(index))
	if metaBytes == nil {
		return meta, pkg.WrapErrorf(ErrorsKeyNotExists, pkg.ErrNotFound, "index %q not found", index)
	}
	if err := msgpack.Unmarshal(metaBytes, &meta); err != nil {
		return meta, err
	}
	if meta.Fields == nil {
		meta.Fields = map[string]bool{}
	}
	return meta, nil
}

func putMeta(tx *bbolt.Tx, meta IndexMeta) error {
	metaBytes, err := msgpack.Marshal(meta)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(BBOLTDB_META_BUCKET)).Put([]byte(meta.Name), metaBytes)
}

func serializeDoc(doc Document) ([]byte, error) {
	docBytes, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return s2.Encode(nil, docBytes), nil
}

func deserializeDoc(buf []byte) (Document, error) {
	var doc Document
	docBytes, err := s2.Decode(nil, buf)
	if err != nil {
		return doc, err
	}
	err = msgpack.Unmarshal(docBytes, &doc)
	return doc, err
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lintang-b-s/go-suggest/pkg/analysis"
	"github.com/lintang-b-s/go-suggest/pkg/kvdb"
	"github.com/lintang-b-s/go-suggest/pkg/loader"

	"github.com/schollz/progressbar/v3"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	docsFile  = flag.String("f", "docs.jsonl", "file JSON-lines berisi dokumen yang mau diindex")
	indexName = flag.String("index", "products", "nama index tujuan")
	shards    = flag.Int("shards", 1, "jumlah shard kalau index belum ada")
	dbPath    = flag.String("db", "suggest_store.db", "path bbolt document store")
	batchSize = flag.Int("batch", loader.DEFAULT_BATCH_SIZE, "jumlah dokumen per batch")
)

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bolt.Open(*dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}
	defer db.Close()

	analyzers, err := analysis.NewRegistry()
	if err != nil {
		logger.Fatal("failed to build analyzers", zap.Error(err))
	}
	store, err := kvdb.NewKVDB(db, analyzers, *shards)
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}

	f, err := os.Open(*docsFile)
	if err != nil {
		logger.Fatal("failed to open documents file", zap.Error(err))
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		logger.Fatal("failed to stat documents file", zap.Error(err))
	}
	bar := loader.NewProgressBar(stat.Size(), fmt.Sprintf("[cyan]Loading documents into %s...", *indexName))
	reader := progressbar.NewReader(f, bar)

	start := time.Now()
	n, err := loader.New(store, logger, *batchSize).Load(ctx, &reader, *indexName)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		logger.Fatal("failed to load documents", zap.Int("stored", n), zap.Error(err))
	}
	logger.Info("done", zap.String("index", *indexName), zap.Int("docs", n), zap.Duration("took", time.Since(start)))
}

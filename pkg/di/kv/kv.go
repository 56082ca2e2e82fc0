package kv_di

import (
	"time"

	"github.com/lintang-b-s/go-suggest/pkg/analysis"
	"github.com/lintang-b-s/go-suggest/pkg/di/config"
	"github.com/lintang-b-s/go-suggest/pkg/kvdb"

	"github.com/spf13/viper"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

func New(_ *config.Config, log *zap.Logger, analyzers *analysis.Registry) (*kvdb.KVDB, func(), error) {
	viper.SetDefault("DB_PATH", "suggest_store.db")
	viper.SetDefault("SHARDS", 1)

	path := viper.GetString("DB_PATH")
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, nil, err
	}

	bboltKV, err := kvdb.NewKVDB(db, analyzers, viper.GetInt("SHARDS"))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("opened document store", zap.String("path", path), zap.Int("default_shards", viper.GetInt("SHARDS")))

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close document store", zap.Error(err))
		}
	}

	return bboltKV, cleanup, nil
}

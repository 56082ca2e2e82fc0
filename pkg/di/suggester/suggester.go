package suggester_di

import (
	"github.com/lintang-b-s/go-suggest/pkg/analysis"
	"github.com/lintang-b-s/go-suggest/pkg/automaton"
	"github.com/lintang-b-s/go-suggest/pkg/di/config"
	"github.com/lintang-b-s/go-suggest/pkg/kvdb"
	"github.com/lintang-b-s/go-suggest/pkg/metrics"
	"github.com/lintang-b-s/go-suggest/pkg/suggester"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func New(_ *config.Config, log *zap.Logger, store *kvdb.KVDB, analyzers *analysis.Registry,
	m *metrics.Metrics) (*suggester.Service, error) {
	cfg := Config()

	fields := suggester.DefaultMappings()
	if viper.IsSet("SUGGEST_FIELDS") {
		fields = nil
		if err := viper.UnmarshalKey("SUGGEST_FIELDS", &fields); err != nil {
			return nil, err
		}
	}
	mappings, err := suggester.NewMappings(cfg.DefaultAnalyzer, fields...)
	if err != nil {
		return nil, err
	}

	log.Info("suggester config",
		zap.Int("max_shingle_size", cfg.MaxShingleSize),
		zap.Int("fuzzy_max_edits", cfg.Fuzzy.MaxEdits),
		zap.Int("fuzzy_prefix", cfg.Fuzzy.NonFuzzyPrefix),
		zap.Int("fuzzy_min_length", cfg.Fuzzy.MinFuzzyLength),
		zap.Int("refresh_workers", cfg.RefreshWorkers),
		zap.Int("field_mappings", len(fields)))

	return suggester.NewService(store, analyzers, mappings, cfg, log, m), nil
}

// Config reads the suggester settings from viper.
func Config() suggester.Config {
	viper.SetDefault("SUGGEST_MAX_SHINGLE_SIZE", 0)
	viper.SetDefault("SUGGEST_FUZZY_MAX_EDITS", suggester.DEFAULT_FUZZY_MAX_EDITS)
	viper.SetDefault("SUGGEST_FUZZY_PREFIX", suggester.DEFAULT_FUZZY_PREFIX)
	viper.SetDefault("SUGGEST_FUZZY_MIN_LENGTH", suggester.DEFAULT_FUZZY_MIN_LENGTH)
	viper.SetDefault("REFRESH_WORKERS", suggester.DEFAULT_REFRESH_WORKERS)
	viper.SetDefault("SUGGEST_DEFAULT_ANALYZER", suggester.DEFAULT_ANALYZER)

	return suggester.Config{
		MaxShingleSize: viper.GetInt("SUGGEST_MAX_SHINGLE_SIZE"),
		Fuzzy: automaton.FuzzyOptions{
			MaxEdits:       viper.GetInt("SUGGEST_FUZZY_MAX_EDITS"),
			NonFuzzyPrefix: viper.GetInt("SUGGEST_FUZZY_PREFIX"),
			MinFuzzyLength: viper.GetInt("SUGGEST_FUZZY_MIN_LENGTH"),
		},
		RefreshWorkers:  viper.GetInt("REFRESH_WORKERS"),
		DefaultAnalyzer: viper.GetString("SUGGEST_DEFAULT_ANALYZER"),
	}
}

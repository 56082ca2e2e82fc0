package analysis_di

import (
	"github.com/lintang-b-s/go-suggest/pkg/analysis"

	"go.uber.org/zap"
)

func New(log *zap.Logger) (*analysis.Registry, error) {
	analyzers, err := analysis.NewRegistry()
	if err != nil {
		return nil, err
	}
	log.Info("registered analyzers", zap.Strings("analyzers", analyzers.Names()))
	return analyzers, nil
}

//go:build wireinject

//go:generate wire
package di

import (
	"context"

	analysis_di "github.com/lintang-b-s/go-suggest/pkg/di/analysis"
	"github.com/lintang-b-s/go-suggest/pkg/di/config"
	shortcontext "github.com/lintang-b-s/go-suggest/pkg/di/context"
	kv_di "github.com/lintang-b-s/go-suggest/pkg/di/kv"
	logger_di "github.com/lintang-b-s/go-suggest/pkg/di/logger"
	metrics_di "github.com/lintang-b-s/go-suggest/pkg/di/metrics"
	suggester_di "github.com/lintang-b-s/go-suggest/pkg/di/suggester"
	suggestHttp "github.com/lintang-b-s/go-suggest/pkg/http"
	"github.com/lintang-b-s/go-suggest/pkg/http/usecases"
	"github.com/lintang-b-s/go-suggest/pkg/kvdb"
	"github.com/lintang-b-s/go-suggest/pkg/metrics"
	"github.com/lintang-b-s/go-suggest/pkg/suggester"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var defaultSet = wire.NewSet(
	shortcontext.New,
	config.New,
	logger_di.New,
	analysis_di.New,
	kv_di.New,
	metrics_di.New,
	suggester_di.New,
)

var suggestSet = wire.NewSet(
	defaultSet,
	NewSuggestService,
	NewSuggestAPIServer,
)

func NewSuggestService(log *zap.Logger, svc *suggester.Service, store *kvdb.KVDB) *usecases.SuggestService {
	return usecases.New(log, svc, store)
}

func NewSuggestAPIServer(ctx context.Context, log *zap.Logger, m *metrics.Metrics,
	suggestService *usecases.SuggestService) (*suggestHttp.Server, error) {
	api := suggestHttp.NewServer(log)

	apiService, err := api.Use(
		ctx, log, m, suggestService, suggestService,
	)
	if err != nil {
		return nil, err
	}

	return apiService, nil
}

func InitializeSuggestService() (*suggestHttp.Server, func(), error) {

	panic(wire.Build(suggestSet))
}

package http_router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lintang-b-s/go-suggest/pkg/http/http-router/controllers"
	router_helper "github.com/lintang-b-s/go-suggest/pkg/http/http-router/router-helper"
	http_server "github.com/lintang-b-s/go-suggest/pkg/http/server"
	"github.com/lintang-b-s/go-suggest/pkg/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type API struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewAPI(log *zap.Logger, m *metrics.Metrics) *API {
	return &API{log: log, metrics: m}
}

// Handler builds the router with the full middleware chain.
func (api *API) Handler(
	suggestService controllers.SuggestService,
	indexService controllers.IndexService,
) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	group := router_helper.NewRouteGroup(router, "/api")

	suggestRoutes := controllers.New(suggestService, indexService, api.log)
	suggestRoutes.Routes(group)

	if api.metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.metrics.Handler())
	}

	return alice.New(corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Metrics(api.metrics)).Then(router)
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	suggestService controllers.SuggestService,
	indexService controllers.IndexService,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(suggestService, indexService), config)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			api.log.Error("failed to shutdown API server", zap.Error(err))
		}
	}()

	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

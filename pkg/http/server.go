package http

import (
	"context"

	http_router "github.com/lintang-b-s/go-suggest/pkg/http/http-router"
	"github.com/lintang-b-s/go-suggest/pkg/http/http-router/controllers"
	http_server "github.com/lintang-b-s/go-suggest/pkg/http/server"
	"github.com/lintang-b-s/go-suggest/pkg/metrics"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger

	g *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API in the background. Wait blocks until it stops.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,
	m *metrics.Metrics,

	suggestService controllers.SuggestService,
	indexService controllers.IndexService,
) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)

	viper.SetDefault("API_TIMEOUT", "60s")

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(log, m)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(
			ctx, config, suggestService, indexService,
		)
	})

	s.g = g
	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}

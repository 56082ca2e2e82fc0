package router_helper

import (
	"net/http"
	"path"

	"github.com/julienschmidt/httprouter"
)

// RouteGroup registers httprouter handles under a common path prefix.
type RouteGroup struct {
	r *httprouter.Router
	p string
}

func NewRouteGroup(r *httprouter.Router, prefix string) *RouteGroup {
	return &RouteGroup{r: r, p: prefix}
}

func (g *RouteGroup) NewGroup(prefix string) *RouteGroup {
	return NewRouteGroup(g.r, g.subPath(prefix))
}

func (g *RouteGroup) Handle(method, p string, handle httprouter.Handle) {
	g.r.Handle(method, g.subPath(p), handle)
}

func (g *RouteGroup) GET(p string, handle httprouter.Handle) {
	g.Handle(http.MethodGet, p, handle)
}

func (g *RouteGroup) POST(p string, handle httprouter.Handle) {
	g.Handle(http.MethodPost, p, handle)
}

func (g *RouteGroup) PUT(p string, handle httprouter.Handle) {
	g.Handle(http.MethodPut, p, handle)
}

func (g *RouteGroup) DELETE(p string, handle httprouter.Handle) {
	g.Handle(http.MethodDelete, p, handle)
}

func (g *RouteGroup) subPath(p string) string {
	joined := path.Join(g.p, p)
	// path.Join drops the trailing slash httprouter needs for catch-all routes
	if len(p) > 1 && p[len(p)-1] == '/' {
		joined += "/"
	}
	return joined
}

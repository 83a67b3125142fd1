package httpserver

import (
	"strings"

	"github.com/go-chi/chi/v5"
)

// RouteGroup is a set of routes mounted under a shared prefix and tag.
type RouteGroup struct {
	Prefix string
	Tag    string
	Routes func(r chi.Router)
}

// MountAPI mounts every group under base (e.g. /api/v1). Registering the same
// prefix twice panics inside chi; that only happens at startup.
func (s *Server) MountAPI(base string, groups ...RouteGroup) {
	api := chi.NewRouter()
	for _, g := range groups {
		sub := chi.NewRouter()
		if g.Tag != "" {
			sub.Use(Tag(g.Tag))
		}
		g.Routes(sub)
		api.Mount(g.Prefix, sub)
	}
	s.mux.Mount(normalizeBase(base), api)
}

func normalizeBase(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return base
}

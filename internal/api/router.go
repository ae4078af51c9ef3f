package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Original control surface, path-compatible with existing clients.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/init/neopixels", s.handleInitNeoPixels)
		r.Post("/init/dotstars", s.handleInitDotStars)
		r.Post("/init/animation", s.handleInitAnimation)

		r.Get("/pixels/{stripID}", s.handleGetPixels)
		r.Post("/pixels/{stripID}", s.handleSetPixels)
		r.Post("/show/{stripID}", s.handleShow)
		r.Post("/fill/{stripID}", s.handleFill)
		r.Get("/brightness/{stripID}", s.handleGetBrightness)
		r.Post("/brightness/{stripID}", s.handleSetBrightness)
		r.Get("/auto_write/{stripID}", s.handleGetAutoWrite)
		r.Post("/auto_write/{stripID}", s.handleSetAutoWrite)

		r.Post("/start/animation/{animationID}", s.handleStartAnimation)
		r.Post("/animation/{animationID}/setprop", s.handleSetAnimationProperty)
	})

	// Service surface
	r.Route("/api/v1", func(r chi.Router) {
		// No auth: health probes and the login endpoint itself.
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/strips", s.handleListStrips)
			r.Get("/strips/{stripID}", s.handleGetStrip)
			r.Get("/animations", s.handleListAnimations)
			r.Get("/ops", s.handleListOps)

			// WebSocket event hub; auth via ?token= handled by the same
			// middleware.
			r.Get("/events", s.handleWebSocket)
		})
	})

	return r
}

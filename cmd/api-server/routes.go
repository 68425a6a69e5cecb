package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	mux := chi.NewRouter()

	mux.NotFound(app.notFound)
	mux.MethodNotAllowed(app.methodNotAllowed)

	mux.Use(app.traceID)
	mux.Use(app.logAccess)
	mux.Use(app.recoverPanic)

	mux.Use(app.CORS)

	mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", app.handleStatus)

		r.Group(func(r chi.Router) {
			r.Use(app.authenticate)

			r.Route("/users/{userId}", func(r chi.Router) {
				r.Get("/session", app.handleGetSession)
				r.Post("/session", app.handleSwitchSession)
				r.Delete("/session", app.handleStopSession)

				r.Post("/entries", app.handleAddManualEntry)
				r.Get("/history", app.handleGetHistory)

				r.Post("/attendance/leave", app.handleLeave)
				r.Post("/attendance/resume", app.handleResume)
				r.Put("/attendance/{date}", app.handleFixDay)
				r.Get("/attendance/{date}", app.handleCheckStatus)
			})

			r.Patch("/entries/{entryId}", app.handleEditEntry)
			r.Delete("/entries/{entryId}", app.handleDeleteEntry)

			r.Get("/stats", app.handleGetStats)
		})
	})

	app.logger.Debug("routes configured", "routes", chiRoutesToStrings(mux.Routes()))

	return mux
}

func chiRoutesToStrings(routes []chi.Route) []string {
	parsedRoutes := make([]string, 0, len(routes))
	for _, route := range routes {
		parsedRoutes = append(parsedRoutes, route.Pattern)
	}
	return parsedRoutes
}

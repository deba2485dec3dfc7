package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	mux := chi.NewRouter()

	mux.NotFound(app.notFound)
	mux.MethodNotAllowed(app.methodNotAllowed)

	mux.Use(app.traceID)
	mux.Use(app.logAccess)
	mux.Use(app.recoverPanic)

	mux.Use(app.CORS)

	mux.Get("/api/v1/status", app.handleStatus)

	mux.Post("/api/v1/auth/login", app.handleLogin)

	mux.Get("/api/v1/people", app.handleListPeople)
	mux.Post("/api/v1/people", app.handleAddPerson)
	mux.Delete("/api/v1/people/{personId}", app.handleDeletePerson)
	mux.Put("/api/v1/people/{personId}/break", app.handleSetBreak)

	// Machine-to-machine note intake.
	mux.Group(func(mux chi.Router) {
		mux.Use(app.requireIntakeSecret)
		mux.Post("/api/v1/notes", app.handleCreateNote)
		mux.Put("/api/v1/notes/{number}", app.handleUpdateNote)
	})
	mux.Get("/api/v1/notes/check", app.handleCheckNote)
	mux.Get("/api/v1/notes/{number}", app.handleGetNote)

	mux.Get("/api/v1/timers", app.handleListTimers)
	mux.Post("/api/v1/timers/claim", app.handleClaimTimer)
	mux.Post("/api/v1/timers/{number}/stop", app.handleStopTimer)
	mux.Post("/api/v1/timers/{number}/approve", app.handleApproveNote)
	mux.Post("/api/v1/timers/cancel", app.handleCancelNotes)
	mux.Put("/api/v1/timers/queue", app.handleReorderQueue)

	mux.Get("/api/v1/reports/summary", app.handleReportSummary)
	mux.Get("/api/v1/reports/export", app.handleReportExport)

	mux.Get("/api/v1/panel/ws", app.handlePanelSocket)

	mux.Get("/api/v1/blobs/{key}", app.handleLoadBlob)
	mux.Put("/api/v1/blobs/{key}", app.handleSaveBlob)

	mux.Handle("/metrics", promhttp.Handler())

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

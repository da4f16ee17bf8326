package httpapi

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, app *App) {
	r.Get("/healthz", healthHandler)
	r.Get("/report-email", app.viewReportEmail)
	r.Put("/report-email", app.updateReportEmail)
	r.Get("/report/preview", app.previewReport)
}

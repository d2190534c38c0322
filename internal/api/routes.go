package api

import "net/http"

// BuildRoutes registers the API endpoints and wraps them with CORS and request logging.
func (app *Application) BuildRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", app.healthz)
	mux.HandleFunc("GET /api/branding/default", app.getDefaultBranding)
	mux.HandleFunc("POST /api/branding/extract", app.extractBranding)
	mux.HandleFunc("GET /api/companies/{id}/branding", app.getCompanyBranding)
	mux.HandleFunc("PUT /api/companies/{id}/branding", app.putCompanyBranding)

	return app.withRequestLogging(app.withCorsAndOrigins(mux))
}

package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedCardRoutes(mux, handler, verifier)
	registerAuthorizedStandingsRoutes(mux, handler, verifier)
}

func registerAuthorizedCardRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/week", RequireAuth(verifier, http.HandlerFunc(handler.CurrentWeek)))
	mux.Handle("PUT /v1/leagues/{leagueID}/cards/{year}/{week}", RequireAuth(verifier, http.HandlerFunc(handler.SubmitCard)))
	mux.Handle("GET /v1/leagues/{leagueID}/cards/{year}/{week}/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyCard)))
	mux.Handle("GET /v1/cards/{cardID}", RequireAuth(verifier, http.HandlerFunc(handler.GetCard)))
}

func registerAuthorizedStandingsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/standings/weekly/{year}/{week}", RequireAuth(verifier, http.HandlerFunc(handler.WeeklyStandings)))
	mux.Handle("GET /v1/leagues/{leagueID}/standings/all-time", RequireAuth(verifier, http.HandlerFunc(handler.AllTimeStandings)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/settlement", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettlementJob)))
	mux.Handle("GET /v1/internal/settlement/runs/{runID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetSettlementRun)))
}

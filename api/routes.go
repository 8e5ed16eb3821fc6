package api

import (
	"net/http"

	"github.com/go-pkgz/auth/v2"
	"github.com/gorilla/mux"

	"watchdeck/handlers"
)

// Register mounts API endpoints onto the provided router. Everything under
// /api requires a valid session; /api/admin additionally requires the admin
// claim. The auth service's own login/logout and avatar handlers are mounted
// at /auth and /avatar.
func Register(
	r *mux.Router,
	authSvc *auth.Service,
	watchlistHandler *handlers.WatchlistHandler,
	metadataHandler *handlers.MetadataHandler,
	usersHandler *handlers.UsersHandler,
) {
	r.Use(requestLogMiddleware)

	authRoutes, avaRoutes := authSvc.Handlers()
	r.PathPrefix("/auth").Handler(authRoutes)
	r.PathPrefix("/avatar").Handler(avaRoutes)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Preflight requests carry no credentials, so OPTIONS is answered on the
	// unauthenticated subrouter; the CORS middleware only runs on a route
	// match, which makes these explicit registrations necessary.
	for _, path := range []string{
		"/watchlist",
		"/tmdb/search",
		"/tmdb/details",
		"/user/sync",
		"/session",
		"/admin/users",
	} {
		api.HandleFunc(path, handleOptions).Methods(http.MethodOptions)
	}

	m := authSvc.Middleware()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(m.Auth)

	protected.HandleFunc("/watchlist", watchlistHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist", watchlistHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/watchlist", watchlistHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/watchlist", watchlistHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/tmdb/search", metadataHandler.Search).Methods(http.MethodGet)
	protected.HandleFunc("/tmdb/details", metadataHandler.Details).Methods(http.MethodGet)

	protected.HandleFunc("/user/sync", usersHandler.Sync).Methods(http.MethodPost)
	protected.HandleFunc("/session", usersHandler.RecordSession).Methods(http.MethodPost)

	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(m.AdminOnly)
	adminRouter.HandleFunc("/users", usersHandler.AdminStats).Methods(http.MethodGet)
}

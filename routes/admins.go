package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"helphive/controllers/admins"
	"helphive/middleware"
)

func registerAdminRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/admin").Subrouter()
	api.Use(middleware.AdminAuthMiddleware)

	api.HandleFunc("/dashboard", admins.DashboardHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/status", admins.UpdateUserStatusHandler).Methods(http.MethodPut)
}

package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"helphive/controllers/users"
	"helphive/middleware"
)

func registerUserRoutes(r *mux.Router, h *users.Handler) {
	api := r.PathPrefix("/api/users").Subrouter()
	api.Use(middleware.AuthMiddleware)

	// Mutations share a modest per-IP budget; reads are uncapped.
	writeLimiter := middleware.NewIPRateLimiter(30, time.Minute)

	api.HandleFunc("/profile", h.ProfileHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}/trust", h.TrustScoreHandler).Methods(http.MethodGet)

	api.HandleFunc("/tasks", h.TaskListHandler).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id:[0-9]+}", h.TaskDetailHandler).Methods(http.MethodGet)
	api.Handle("/tasks", writeLimiter.Middleware(http.HandlerFunc(h.CreateTaskHandler))).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/accept", writeLimiter.Middleware(http.HandlerFunc(h.AcceptTaskHandler))).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/complete", writeLimiter.Middleware(http.HandlerFunc(h.CompleteTaskHandler))).Methods(http.MethodPost)

	api.HandleFunc("/swaps", h.SwapListHandler).Methods(http.MethodGet)
	api.Handle("/swaps", writeLimiter.Middleware(http.HandlerFunc(h.RequestSwapHandler))).Methods(http.MethodPost)
	api.Handle("/swaps/{id:[0-9]+}/respond", writeLimiter.Middleware(http.HandlerFunc(h.RespondSwapHandler))).Methods(http.MethodPost)
	api.Handle("/swaps/helper", writeLimiter.Middleware(http.HandlerFunc(h.HelperSwapHandler))).Methods(http.MethodPost)

	api.HandleFunc("/tasks/{id:[0-9]+}/reviewable", h.ReviewableHandler).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/reviews", writeLimiter.Middleware(http.HandlerFunc(h.SubmitReviewHandler))).Methods(http.MethodPost)
}

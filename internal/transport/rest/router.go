package rest

import (
	"net/http"
	"os"

	"github.com/Maxim12412/Monopolista/internal/service"
	"github.com/Maxim12412/Monopolista/internal/transport/rest/handler"
	"github.com/Maxim12412/Monopolista/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService *service.AuthService
	GameService *service.GameService
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.GameService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.GameService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

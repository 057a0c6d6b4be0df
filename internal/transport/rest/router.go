package rest

import (
	"net/http"

	"kenolive/internal/service"
	"kenolive/internal/transport/rest/handler"
	"kenolive/internal/transport/rest/middleware"
	"kenolive/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	RoomService    *service.RoomService
	GameService    *service.GameService
	LobbyService   *service.LobbyService
	RankingService *service.RankingService
	WSHub          *ws.Hub
	CORSOrigins    string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	roomHandler := handler.NewRoomHandler(c.LobbyService)
	rankingHandler := handler.NewRankingHandler(c.RankingService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.RoomService, c.GameService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/salas/{roomId}/qr", roomHandler.QR).Methods("GET", "OPTIONS")
	v1.HandleFunc("/ranking", rankingHandler.Top).Methods("GET", "OPTIONS")

	// WebSocket routes (token optional, in query param)
	v1.HandleFunc("/ws/sala/{roomId}", wsHandler.RoomWS).Methods("GET")
	v1.HandleFunc("/ws/game", wsHandler.GameWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/salas/enter", roomHandler.Enter).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

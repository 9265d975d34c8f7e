// internal/handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/babo/internal/middleware"
)

// Register mounts every endpoint on mux behind the request logger.
func Register(mux *http.ServeMux, s *RoomServer) {
	logged := middleware.LogMiddleware(s.Logger)

	mux.Handle("POST /rooms", logged(CreateRoomHandler(s)))
	mux.Handle("POST /rooms/{code}/join", logged(JoinRoomHandler(s)))
	mux.Handle("POST /rooms/{code}/start", logged(StartGameHandler(s)))
	mux.Handle("POST /rooms/{code}/reset", logged(ResetGameHandler(s)))
	mux.Handle("POST /rooms/{code}/leave", logged(LeaveRoomHandler(s)))
	mux.Handle("POST /rooms/{code}/kick", logged(KickPlayerHandler(s)))
	mux.Handle("GET /rooms/{code}/players", logged(ListPlayersHandler(s)))
	mux.Handle("GET /rooms/{code}/qr", logged(RoomQRHandler(s)))
	mux.Handle("GET /categories", logged(ListCategoriesHandler(s)))

	// polled once a second by every client, so only failures are logged
	mux.Handle("GET /rooms/{code}/state", middleware.LogFailures(s.Logger)(RoomStateHandler(s)))
	mux.HandleFunc("GET /healthz", HealthHandler)
}

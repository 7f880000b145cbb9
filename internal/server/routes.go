package server

import "net/http"

// Routes returns the ServeMux with all application routes: the WebSocket
// endpoint and the read-only HTTP projections.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.HandleWebSocket)
	mux.HandleFunc("GET /api/health", s.HandleHealth)
	mux.HandleFunc("GET /api/rooms", s.HandleRooms)
	mux.HandleFunc("GET /api/rooms/{room_id}", s.HandleRoomDetail)
	return mux
}

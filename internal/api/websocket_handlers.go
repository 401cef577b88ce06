package api

import (
	"net/http"

	"invoice-server/internal/auth"
	"invoice-server/internal/websocket"
)

// @Summary      Invoice event stream
// @Description  Upgrades to a websocket that receives an "invoice.created" event for every invoice the user generates.
// @Tags         events
// @Param        token  query  string  true  "Bearer token"
// @Success      101
// @Failure      401  {object}  MessageResponse
// @Router       /ws [get]
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		writeMessage(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, claims.UserID)
	if !s.wsHub.Join(client) {
		conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}

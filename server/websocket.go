package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"social/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.resolveViewer(r)
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Errorf("Error upgrading websocket for user %s: %v", viewerID, err)
		return
	}

	client := realtime.NewClient(s.hub, conn, viewerID)
	go client.Run()
}

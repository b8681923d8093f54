package api

import (
	"encoding/json"
	"log"
	"net/http"

	"magazyn-plikow/internal/auth"
	"magazyn-plikow/internal/models"
	"magazyn-plikow/internal/websocket"
)

type FileEvent struct {
	EventType string       `json:"event_type" example:"file_uploaded"`
	File      FileResponse `json:"file"`
}

// publishFileEvent notifies the owner's live connections. Called only after
// the change is committed, so clients never see state that can roll back.
func (s *Server) publishFileEvent(userID, eventType string, file *models.File) {
	event := FileEvent{
		EventType: eventType,
		File:      toFileResponse(file),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: Failed to marshal %s event: %v", eventType, err)
		return
	}

	s.wsHub.PublishEvent(userID, payload)
}

func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		log.Println("WS connection attempt without token")
		return
	}

	claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
	if err != nil {
		log.Printf("WS connection attempt with invalid token: %v", err)
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, claims.UserID)
	s.wsHub.Register <- client

	go client.ReadPump()
	go client.WritePump()
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestFileEventsReachTheOwner(t *testing.T) {
	env := newTestEnv(t)
	account := env.register("events@example.com", "password123", "Event User")

	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + account.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Rejestracja klienta w hubie idzie przez kanał; daj jej chwilę.
	time.Sleep(100 * time.Millisecond)

	rr := env.upload(account.Token, []uploadFile{{name: "announced.txt", content: []byte("payload")}})
	require.Equal(t, http.StatusCreated, rr.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event FileEvent
	require.NoError(t, json.Unmarshal(message, &event))
	require.Equal(t, "file_uploaded", event.EventType)
	require.Equal(t, "announced.txt", event.File.Name)
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"magazyn-plikow/internal/config"
	"magazyn-plikow/internal/database"
	"magazyn-plikow/internal/storage"
	"magazyn-plikow/internal/websocket"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t        *testing.T
	cfg      *config.Config
	store    *database.Store
	server   *Server
	handler  http.Handler
	dbPath   string
	blobPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		t:        t,
		cfg:      &config.Config{JWT: config.JWTConfig{Secret: "api_test_secret"}},
		dbPath:   filepath.Join(t.TempDir(), "api-test.db"),
		blobPath: t.TempDir(),
	}
	env.open()

	t.Cleanup(func() { env.store.Close() })

	return env
}

func (e *testEnv) open() {
	store, err := database.NewStore(e.dbPath)
	require.NoError(e.t, err)
	e.store = store

	localStorage, err := storage.NewLocalStorage(e.blobPath)
	require.NoError(e.t, err)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	e.server = NewServer(e.cfg, store, localStorage, wsHub)
	e.handler = e.server.Router()
}

// restart symuluje restart procesu: zamyka bazę i otwiera wszystko od nowa
// na tych samych plikach.
func (e *testEnv) restart() {
	require.NoError(e.t, e.store.Close())
	e.open()
}

func (e *testEnv) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	e.t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(e.t, err)
	return e.do(method, path, token, bytes.NewReader(body), "application/json")
}

// register zakłada konto i zwraca token oraz widok użytkownika.
func (e *testEnv) register(email, password, name string) AuthResponse {
	e.t.Helper()

	rr := e.doJSON("POST", "/api/auth/register", "", RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	require.Equal(e.t, http.StatusCreated, rr.Code, "register failed: %s", rr.Body.String())

	var resp AuthResponse
	require.NoError(e.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(e.t, resp.Token)
	return resp
}

// setStorageLimit shrinks an account's quota so tests do not need gigabytes.
func (e *testEnv) setStorageLimit(userID string, limit int64) {
	e.t.Helper()

	_, err := e.store.DB().Exec(`UPDATE users SET storage_limit_bytes = ? WHERE id = ?`, limit, userID)
	require.NoError(e.t, err)
}

type uploadFile struct {
	name    string
	content []byte
}

func multipartBody(t *testing.T, files []uploadFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(token string, files []uploadFile) *httptest.ResponseRecorder {
	e.t.Helper()

	body, contentType := multipartBody(e.t, files)
	return e.do("POST", "/api/files/upload", token, body, contentType)
}

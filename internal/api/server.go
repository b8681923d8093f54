package api

import (
	"sync"

	"magazyn-plikow/internal/config"
	"magazyn-plikow/internal/database"
	"magazyn-plikow/internal/storage"
	"magazyn-plikow/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	config  *config.Config
	store   *database.Store
	storage *storage.LocalStorage
	wsHub   *websocket.Hub

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewServer(cfg *config.Config, store *database.Store, storage *storage.LocalStorage, wsHub *websocket.Hub) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		storage: storage,
		wsHub:   wsHub,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockUser serializes durable mutation per account. Two requests for the same
// account never evaluate quota admission concurrently; different accounts
// proceed in parallel. Returns the unlock func.
func (s *Server) lockUser(userID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(MetricsMiddleware)

	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ServeWsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.HealthCheckHandler)
		r.Post("/auth/register", s.RegisterHandler)
		r.Post("/auth/login", s.LoginHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Get("/auth/me", s.GetCurrentUserHandler)
			r.Post("/files/upload", s.UploadFilesHandler)
			r.Get("/files", s.ListFilesHandler)
			r.Get("/files/search", s.SearchFilesHandler)
			r.Get("/files/download/{fileId}", s.DownloadFileHandler)
			r.Delete("/files/{fileId}", s.DeleteFileHandler)
			r.Get("/storage", s.GetStorageUsageHandler)
		})
	})

	return r
}

// @title           Magazyn Plikow API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"magazyn-plikow/internal/api"
	"magazyn-plikow/internal/config"
	"magazyn-plikow/internal/database"
	"magazyn-plikow/internal/storage"
	"magazyn-plikow/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), os.ModePerm); err != nil {
		log.Fatalf("Nie można utworzyć katalogu bazy danych: %v", err)
	}

	store, err := database.NewStore(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Nie można otworzyć bazy danych: %v", err)
	}
	defer store.Close()
	log.Printf("Baza danych: %s", cfg.DB.Path)

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Nie można zainicjować local storage: %v", err)
	}
	log.Printf("Pliki będą przechowywane w: %s", cfg.Storage.Path)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	server := api.NewServer(cfg, store, localStorage, wsHub)

	log.Printf("Uruchamianie serwera na %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, server.Router()); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}

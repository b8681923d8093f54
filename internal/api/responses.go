package api

import (
	"encoding/json"
	"net/http"
	"time"

	"magazyn-plikow/internal/models"
)

type ErrorResponse struct {
	Error string `json:"error" example:"File not found"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	StorageUsed  int64  `json:"storageUsed"`
	StorageLimit int64  `json:"storageLimit"`
}

type FileResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		StorageUsed:  user.StorageUsedBytes,
		StorageLimit: user.StorageLimitBytes,
	}
}

func toFileResponse(file *models.File) FileResponse {
	return FileResponse{
		ID:         file.ID,
		Name:       file.OriginalName,
		Size:       file.SizeBytes,
		Type:       file.MimeType,
		UploadedAt: file.UploadedAt,
	}
}

func toFileResponses(files []models.File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for i := range files {
		out = append(out, toFileResponse(&files[i]))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

package api

import (
	"net/http"
	"time"
)

type StorageStatusResponse struct {
	StorageUsed  int64   `json:"storageUsed"`
	StorageLimit int64   `json:"storageLimit"`
	Percentage   float64 `json:"percentage"`
}

type HealthResponse struct {
	Status    string    `json:"status" example:"OK"`
	Timestamp time.Time `json:"timestamp"`
}

// @Summary      Get storage usage
// @Description  Returns used bytes, the quota, and usage as a percentage (not clamped).
// @Tags         storage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StorageStatusResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /storage [get]
func (s *Server) GetStorageUsageHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, StorageStatusResponse{
		StorageUsed:  user.StorageUsedBytes,
		StorageLimit: user.StorageLimitBytes,
		Percentage:   float64(user.StorageUsedBytes) / float64(user.StorageLimitBytes) * 100,
	})
}

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
	})
}

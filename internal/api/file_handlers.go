package api

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime/multipart"
	"net/http"

	"magazyn-plikow/internal/database"
	"magazyn-plikow/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxFilesPerUpload = 10
	maxFileSizeBytes  = 100 << 20 // 100 MiB per file
	maxRequestBytes   = 1 << 30   // whole multipart body
)

type UploadResponse struct {
	Message     string         `json:"message"`
	Files       []FileResponse `json:"files"`
	StorageUsed int64          `json:"storageUsed"`
}

type FileListResponse struct {
	Files []FileResponse `json:"files"`
}

type DeleteResponse struct {
	Message     string `json:"message"`
	StorageUsed int64  `json:"storageUsed"`
}

// savedBlob records a blob written during this request so it can be removed
// again when the batch is denied or the commit fails.
type savedBlob struct {
	ownerID    string
	storedName string
}

func (s *Server) removeBlobs(blobs []savedBlob) {
	for _, b := range blobs {
		if err := s.storage.Delete(b.ownerID, b.storedName); err != nil {
			log.Printf("WARN: Failed to remove orphaned blob %s: %v", b.storedName, err)
		}
	}
}

// @Summary      Upload files
// @Description  Uploads up to 10 files in one batch. The batch is admitted against the quota as a whole and committed all-or-nothing.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        files  formData  file  true  "Files to upload"
// @Success      201    {object}  UploadResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /files/upload [post]
func (s *Server) UploadFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Error parsing multipart form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(headers) > maxFilesPerUpload {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Too many files (max %d)", maxFilesPerUpload))
		return
	}

	var totalSize int64
	for _, fh := range headers {
		if fh.Size > maxFileSizeBytes {
			writeError(w, http.StatusBadRequest, "File too large (max 100MB)")
			return
		}
		totalSize += fh.Size
	}

	// Krytyczna sekcja dla tego konta: dopuszczenie i zapis muszą być jednym
	// krokiem, inaczej dwa równoległe uploady przejdą na tym samym liczniku.
	unlock := s.lockUser(claims.UserID)
	defer unlock()

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	// Admission is evaluated against the cumulative batch size, not per file.
	if user.StorageUsedBytes+totalSize > user.StorageLimitBytes {
		writeError(w, http.StatusBadRequest, "Storage limit exceeded")
		return
	}

	var saved []savedBlob
	var params []database.CreateFileParams

	for _, fh := range headers {
		storedName, size, err := s.saveUploadedFile(claims.UserID, fh)
		if err != nil {
			s.removeBlobs(saved)
			log.Printf("ERROR: Failed to save uploaded file %q: %v", fh.Filename, err)
			writeError(w, http.StatusInternalServerError, "Failed to save file")
			return
		}
		saved = append(saved, savedBlob{ownerID: claims.UserID, storedName: storedName})

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		params = append(params, database.CreateFileParams{
			ID:           uuid.New().String(),
			OwnerID:      claims.UserID,
			OriginalName: fh.Filename,
			StoredName:   storedName,
			MimeType:     mimeType,
			SizeBytes:    size,
		})
	}

	var created []models.File
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		created = created[:0]
		for _, p := range params {
			file, err := q.CreateFile(r.Context(), p)
			if err != nil {
				return err
			}
			created = append(created, *file)
		}
		// The guarded update is the commit point for the whole batch.
		return q.AdjustUsage(r.Context(), claims.UserID, totalSize)
	})
	if txErr != nil {
		s.removeBlobs(saved)
		if errors.Is(txErr, database.ErrQuotaExceeded) {
			writeError(w, http.StatusBadRequest, "Storage limit exceeded")
			return
		}
		log.Printf("ERROR: Upload transaction failed for user %s: %v", claims.UserID, txErr)
		writeError(w, http.StatusInternalServerError, "Failed to store file metadata")
		return
	}

	for i := range created {
		s.publishFileEvent(claims.UserID, "file_uploaded", &created[i])
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Message:     "Files uploaded successfully",
		Files:       toFileResponses(created),
		StorageUsed: user.StorageUsedBytes + totalSize,
	})
}

// saveUploadedFile streams one multipart part to blob storage under a fresh
// collision-free name and returns the byte count actually written.
func (s *Server) saveUploadedFile(ownerID string, fh *multipart.FileHeader) (string, int64, error) {
	storedName, err := s.storage.NewBlobName(fh.Filename)
	if err != nil {
		return "", 0, err
	}

	part, err := fh.Open()
	if err != nil {
		return "", 0, err
	}
	defer part.Close()

	written, err := s.storage.Save(ownerID, storedName, part)
	if err != nil {
		return "", 0, err
	}

	return storedName, written, nil
}

// @Summary      List files
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  FileListResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /files [get]
func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	files, err := s.store.ListFilesByOwner(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	writeJSON(w, http.StatusOK, FileListResponse{Files: toFileResponses(files)})
}

// @Summary      Search files
// @Description  Case-insensitive substring match on the original filename.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  true  "Search phrase"
// @Success      200    {object}  FileListResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /files/search [get]
func (s *Server) SearchFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query required")
		return
	}

	files, err := s.store.SearchFilesByOwner(r.Context(), claims.UserID, query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search files")
		return
	}

	writeJSON(w, http.StatusOK, FileListResponse{Files: toFileResponses(files)})
}

// @Summary      Download a file
// @Description  Streams the file with its original name. Files owned by other accounts are reported as not found.
// @Tags         files
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /files/download/{fileId} [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	file, err := s.store.GetFileOwned(r.Context(), fileID, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve file metadata")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	stream, err := s.storage.Open(file.OwnerID, file.StoredName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// The blob was deleted but the index row survived (crash between
			// the two delete steps). Treat the file as removed and reconcile.
			s.reconcileMissingBlob(r, file)
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to open file")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	if file.MimeType != "" {
		w.Header().Set("Content-Type", file.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.SizeBytes))

	io.Copy(w, stream)
}

// reconcileMissingBlob drops the index row and usage for a file whose bytes
// are already gone.
func (s *Server) reconcileMissingBlob(r *http.Request, file *models.File) {
	unlock := s.lockUser(file.OwnerID)
	defer unlock()

	err := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		removed, err := q.DeleteFile(r.Context(), file.ID, file.OwnerID)
		if err != nil || !removed {
			return err
		}
		return q.AdjustUsage(r.Context(), file.OwnerID, -file.SizeBytes)
	})
	if err != nil {
		log.Printf("WARN: Failed to reconcile missing blob for file %s: %v", file.ID, err)
	}
}

// @Summary      Delete a file
// @Description  Deletes the blob, then the metadata, then decrements usage.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      200  {object}  DeleteResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /files/{fileId} [delete]
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return
	}

	unlock := s.lockUser(claims.UserID)
	defer unlock()

	file, err := s.store.GetFileOwned(r.Context(), fileID, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve file metadata")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	// Blob first. Delete is idempotent, so a blob already missing (previous
	// crash) does not block removing the metadata.
	if err := s.storage.Delete(file.OwnerID, file.StoredName); err != nil {
		log.Printf("ERROR: Failed to delete blob for file %s: %v", file.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		removed, err := q.DeleteFile(r.Context(), file.ID, claims.UserID)
		if err != nil {
			return err
		}
		if !removed {
			return database.ErrNotFound
		}
		return q.AdjustUsage(r.Context(), claims.UserID, -file.SizeBytes)
	})
	if txErr != nil {
		if errors.Is(txErr, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		log.Printf("ERROR: Delete transaction failed for file %s: %v", file.ID, txErr)
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	s.publishFileEvent(claims.UserID, "file_deleted", file)

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{
		Message:     "File deleted successfully",
		StorageUsed: user.StorageUsedBytes,
	})
}

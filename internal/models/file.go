package models

import "time"

// File is one uploaded object. StoredName is the collision-free name the blob
// lives under inside the owner's storage namespace; it is generated
// independently of OriginalName and never shown to the user.
type File struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	OriginalName string    `json:"original_name" db:"original_name"`
	StoredName   string    `json:"-" db:"stored_name"`
	MimeType     string    `json:"mime_type" db:"mime_type"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
}

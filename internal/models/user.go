package models

import "time"

// DefaultStorageLimitBytes is the quota assigned to every new account (10 GiB).
const DefaultStorageLimitBytes int64 = 10 * 1024 * 1024 * 1024

type User struct {
	ID                string    `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	Name              string    `json:"name" db:"name"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	StorageUsedBytes  int64     `json:"storageUsed" db:"storage_used_bytes"`
	StorageLimitBytes int64     `json:"storageLimit" db:"storage_limit_bytes"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

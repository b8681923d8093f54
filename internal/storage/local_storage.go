package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// LocalStorage keeps blobs on disk, one directory per account. Stored names
// are generated here and never derived from user input, so two uploads can
// never collide and a hostile filename can never escape the base path.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// NewBlobName generates a collision-free blob name, keeping the original
// extension so the file on disk is still recognizable by type.
func (ls *LocalStorage) NewBlobName(originalName string) (string, error) {
	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	ext := filepath.Ext(originalName)
	if strings.ContainsAny(ext, "/\\") || len(ext) > 16 {
		ext = ""
	}
	return generateID() + ext, nil
}

func (ls *LocalStorage) path(ownerID, storedName string) string {
	return filepath.Join(ls.basePath, filepath.Base(ownerID), filepath.Base(storedName))
}

// Save writes the blob and returns the number of bytes written. The O_EXCL
// create guarantees an existing location is never overwritten. A failed copy
// (disk error, client gone) leaves nothing behind.
func (ls *LocalStorage) Save(ownerID, storedName string, data io.Reader) (int64, error) {
	filePath := ls.path(ownerID, storedName)

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return 0, err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(file, data)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filePath)
		return 0, err
	}

	return written, nil
}

func (ls *LocalStorage) Open(ownerID, storedName string) (io.ReadCloser, error) {
	filePath := ls.path(ownerID, storedName)

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s not found: %w", storedName, fs.ErrNotExist)
		}
		return nil, err
	}

	return file, nil
}

// Delete is idempotent: the caller is reconciling index state, not asking
// whether the bytes were still there.
func (ls *LocalStorage) Delete(ownerID, storedName string) error {
	err := os.Remove(ls.path(ownerID, storedName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

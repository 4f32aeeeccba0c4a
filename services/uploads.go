package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadStore keeps note images on disk under a single directory and hands
// out the server-relative paths ("/uploads/<name>") stored on notes.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes an uploaded file under a fresh uuid name, keeping the original
// extension, and returns the relative URL to store on the note.
func (s *UploadStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return "/uploads/" + name, nil
}

// Remove deletes a previously saved image by its relative URL. A missing
// file is not an error; the record is already consistent without it.
func (s *UploadStore) Remove(imageURL string) error {
	name := strings.TrimPrefix(imageURL, "/uploads/")
	if name == "" || name == imageURL {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

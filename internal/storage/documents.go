package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PaymentDocumentPath returns a collision-free relative path for an uploaded
// payment document: uploads/payment_docs/<event_slug>/<uuid><ext>, with
// dashes in the slug replaced by underscores.
func PaymentDocumentPath(eventSlug, filename string) string {
	dir := strings.ReplaceAll(eventSlug, "-", "_")
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("uploads", "payment_docs", dir, uuid.NewString()+ext)
}

// EventImagePath returns events/image/<event_slug>/<uuid><ext>.
func EventImagePath(eventSlug, filename string) string {
	return path.Join("events", "image", eventSlug, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

// UserPhotoPath returns users/photo/<username>/<uuid><ext>.
func UserPhotoPath(username, filename string) string {
	return path.Join("users", "photo", username, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// IsImage accepts the raster formats browsers render inline, judged by extension.
func IsImage(filename string) bool {
	return imageExts[strings.ToLower(filepath.Ext(filename))]
}

// DocumentStore keeps uploaded files on the local filesystem under Root.
type DocumentStore struct {
	Root string
}

func NewDocumentStore(root string) *DocumentStore {
	return &DocumentStore{Root: root}
}

func (s *DocumentStore) Save(relPath string, r io.Reader) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("write document: %w", err)
	}
	return f.Close()
}

// Open fails with an error wrapping fs.ErrNotExist when the file is gone.
func (s *DocumentStore) Open(relPath string) (io.ReadCloser, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *DocumentStore) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DocumentStore) resolve(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("document path %q escapes storage root", relPath)
	}
	return filepath.Join(s.Root, clean), nil
}

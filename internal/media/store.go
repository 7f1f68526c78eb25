package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store persists uploaded ad videos on the local filesystem and hands
// out /uploads/ URLs for them.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a media store rooted at dir, creating it if needed
func NewStore(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{
		dir: dir,
		log: log.With().Str("component", "media").Logger(),
	}, nil
}

// Dir returns the directory backing the store
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the content to a fresh random filename, keeping only the
// original extension, and returns the public URL path.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}

	return "/uploads/" + name, nil
}

// Delete removes the file backing a /uploads/ URL. Best effort: a
// missing or locked file is logged and otherwise ignored, the caller
// never sees the failure.
func (s *Store) Delete(fileURL string) {
	name := strings.TrimPrefix(fileURL, "/uploads/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("file", name).Msg("failed to delete media file")
	}
}

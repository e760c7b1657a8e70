package filestore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store keeps uploaded statement files on local disk under random
// names, so originals stay available for re-parsing.
type Store struct {
	basePath string
}

// New creates a file store rooted at basePath, creating the directory
// if needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save stores a file under a random name, keeping the original
// extension (lowercased) so the parser can still route on it. Returns
// the stored name.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	uniqueID, err := generateID()
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	storedName := uniqueID + ext

	fullPath := filepath.Join(s.basePath, storedName)
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return storedName, nil
}

// Get opens a stored file.
func (s *Store) Get(filename string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.basePath, filename))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file; a missing file is not an error.
func (s *Store) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	fullPath := filepath.Join(s.basePath, filename)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// FullPath returns the full filesystem path for a stored name.
func (s *Store) FullPath(filename string) string {
	return filepath.Join(s.basePath, filename)
}

// generateID creates a random 16-character hex string.
func generateID() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrDisallowedType = errors.New("file type is not allowed")
	ErrTooLarge       = errors.New("file exceeds the size limit")
	ErrBadName        = errors.New("invalid file name")
)

// allowedExtensions mirrors the upload filter the existing clients rely on.
var allowedExtensions = []string{
	".pdf", ".doc", ".docx", ".zip", ".txt",
	".py", ".java", ".js", ".cpp", ".c", ".html", ".css",
}

// Store keeps uploads in a single local directory under server-generated
// names. The naming convention <timestamp>-<random>-<original-name> is
// load-bearing: existing stored files decode their original name by
// stripping the first two dash-delimited segments.
type Store struct {
	Dir         string
	MaxFileSize int64
}

func New(dir string, maxFileSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir, MaxFileSize: maxFileSize}, nil
}

// ValidateFile checks extension and size without touching the disk.
func (s *Store) ValidateFile(file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range allowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%s: %w", file.Filename, ErrDisallowedType)
	}
	if file.Size > s.MaxFileSize {
		return fmt.Errorf("%s: %w", file.Filename, ErrTooLarge)
	}
	return nil
}

// SaveAll persists a batch of uploads. The whole batch is validated up
// front; if any file fails validation or a write fails midway, nothing
// from the batch is kept. Returns the generated names in input order.
func (s *Store) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	for _, file := range files {
		if err := s.ValidateFile(file); err != nil {
			return nil, err
		}
	}

	saved := make([]string, 0, len(files))
	for _, file := range files {
		name := GeneratedName(file.Filename)
		if err := s.save(file, name); err != nil {
			s.Remove(saved...)
			return nil, err
		}
		saved = append(saved, name)
	}
	return saved, nil
}

func (s *Store) save(file *multipart.FileHeader, name string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Remove deletes stored files, ignoring individual failures.
func (s *Store) Remove(names ...string) {
	for _, name := range names {
		path, err := s.Path(name)
		if err != nil {
			continue
		}
		os.Remove(path)
	}
}

// Path resolves a stored name to its on-disk path, rejecting anything
// that could escape the upload directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrBadName
	}
	return filepath.Join(s.Dir, name), nil
}

// Exists reports whether a stored name is present on disk.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GeneratedName builds the unique stored name for an upload.
func GeneratedName(originalName string) string {
	original := filepath.Base(originalName)
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), original)
}

// OriginalName recovers the user-supplied name by stripping the
// timestamp and random segments.
func OriginalName(storedName string) string {
	parts := strings.SplitN(storedName, "-", 3)
	if len(parts) < 3 {
		return storedName
	}
	return parts[2]
}

package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// DefaultAllowedTypes are the image formats accepted for upload
var DefaultAllowedTypes = []string{"image/png", "image/jpeg"}

type Config struct {
	// Dir is where files are written
	Dir string
	// URLPrefix is prepended to stored file names to build the src path
	URLPrefix string
	MaxBytes  int64
	// AllowedTypes are MIME types checked against the sniffed content
	AllowedTypes []string
}

// Store writes uploaded files to a local directory under server-assigned names
type Store struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	allowed   []string
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	allowed := cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}

	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "/uploads"
	}

	return &Store{
		dir:       cfg.Dir,
		urlPrefix: strings.TrimSuffix(prefix, "/"),
		maxBytes:  cfg.MaxBytes,
		allowed:   allowed,
	}, nil
}

// Dir returns the directory files are written to
func (s *Store) Dir() string {
	return s.dir
}

// URLPrefix returns the path prefix under which stored files are served
func (s *Store) URLPrefix() string {
	return s.urlPrefix
}

// Save validates and writes fh, returning its storage-relative path
// (for example "/uploads/3f0c....png").
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, fh.Size, s.maxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	if !mimetype.EqualsAny(mtype.String(), s.allowed...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	filename := uuid.NewString() + mtype.Extension()
	dst, err := os.OpenFile(filepath.Join(s.dir, filename), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create stored file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write stored file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write stored file: %w", err)
	}

	return path.Join(s.urlPrefix, filename), nil
}

// Remove deletes a file previously returned by Save. Missing files are ignored.
func (s *Store) Remove(src string) error {
	name := path.Base(src)
	if !strings.HasPrefix(src, s.urlPrefix+"/") || name == "." || name == "/" {
		return fmt.Errorf("%q is not a stored upload", src)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stored file: %w", err)
	}

	return nil
}

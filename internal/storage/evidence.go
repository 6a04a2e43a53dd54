// Package storage persists evidence images for in-kind donations under a
// fixed directory and serves their public URLs from the same path prefix.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"donaciones-backend/internal/apperr"

	"go.uber.org/zap"
)

const urlPrefix = "/evidencias"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type StoredFile struct {
	FileName     string
	OriginalName string
	Path         string
	Size         int64
	URL          string
}

type EvidenceStore struct {
	dir     string
	baseURL string
	maxSize int64
	logger  *zap.Logger

	// injectable for collision tests
	now      func() time.Time
	randRead func(b []byte) (int, error)
}

func NewEvidenceStore(dir, baseURL string, maxSize int64, logger *zap.Logger) *EvidenceStore {
	return &EvidenceStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxSize:  maxSize,
		logger:   logger,
		now:      time.Now,
		randRead: rand.Read,
	}
}

// Validate checks one file header against the size limit and the image
// allow-lists. Extension and declared content type must both pass.
func (s *EvidenceStore) Validate(fh *multipart.FileHeader) error {
	if fh.Size > s.maxSize {
		return apperr.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return apperr.ErrDisallowedType
	}

	contentType := fh.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return apperr.ErrDisallowedType
	}

	return nil
}

// Save validates and persists one uploaded file. A failed copy removes the
// partial file so a rejected item leaves nothing on disk.
func (s *EvidenceStore) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	if err := s.Validate(fh); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir: %w", err)
	}

	name, err := s.generateName(fh.Filename)
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(s.dir, name)

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create evidence file: %w", err)
	}

	written, err := io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("write evidence file: %w", err)
	}

	return &StoredFile{
		FileName:     name,
		OriginalName: fh.Filename,
		Path:         dst,
		Size:         written,
		URL:          s.baseURL + urlPrefix + "/" + name,
	}, nil
}

// generateName builds a collision-resistant name from the current
// millisecond and an 8-hex random suffix. Concurrent writers in the same
// millisecond diverge on the suffix.
func (s *EvidenceStore) generateName(originalName string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := s.randRead(suffix); err != nil {
		return "", fmt.Errorf("random suffix: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), hex.EncodeToString(suffix), ext), nil
}

// CleanupOlderThan removes every evidence file whose mtime is older than
// maxAge, with no check against live donation references. Returns the
// removed names.
func (s *EvidenceStore) CleanupOlderThan(maxAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read evidence dir: %w", err)
	}

	cutoff := s.now().Add(-maxAge)
	var removed []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("remove expired evidence file",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		s.logger.Info("removed expired evidence file",
			zap.String("file", entry.Name()),
			zap.Time("modified", info.ModTime()))
		removed = append(removed, entry.Name())
	}

	return removed, nil
}

// Dir exposes the storage directory for static file serving.
func (s *EvidenceStore) Dir() string {
	return s.dir
}

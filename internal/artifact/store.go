// Package artifact stores uploaded payment proofs by content address.
package artifact

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"saas-commerce/internal/model"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrTooLarge    = errors.New("artifact exceeds size limit")
	ErrUnsupported = errors.New("artifact type not allowed")
)

// allowed maps accepted content types to the extension used in refs.
var allowed = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

var refPattern = regexp.MustCompile(`^[0-9a-f]{64}\.(png|jpg|webp|pdf)$`)

// FileStore keeps artifacts under <dir>/<tenant>/<digest>.<ext>. A ref is the
// blake2b-256 digest of the content plus its extension and only resolves inside
// the tenant that uploaded it. Identical uploads of one tenant share one file.
type FileStore struct {
	dir      string
	maxBytes int64
}

func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// Put stores r and returns its ref. The content type is detected from the bytes,
// not taken from the client.
func (s *FileStore) Put(ctx context.Context, tenantID uuid.UUID, r io.Reader) (string, error) {
	if tenantID == uuid.Nil {
		return "", model.ValidationError("tenant is required")
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %w (max %d bytes)", model.ErrValidation, ErrTooLarge, s.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowed[mtype.String()]
	if !ok {
		return "", fmt.Errorf("%w: %w: %s", model.ErrValidation, ErrUnsupported, mtype.String())
	}

	sum := blake2b.Sum256(data)
	ref := hex.EncodeToString(sum[:]) + ext
	dir := s.tenantDir(tenantID)
	path := filepath.Join(dir, ref)
	if _, err := os.Stat(path); err == nil {
		return ref, nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("store artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	return ref, nil
}

// Open returns the tenant's artifact content and its content type.
func (s *FileStore) Open(tenantID uuid.UUID, ref string) (io.ReadCloser, string, error) {
	if tenantID == uuid.Nil || !refPattern.MatchString(ref) {
		return nil, "", fmt.Errorf("artifact %q: %w", ref, model.ErrNotFound)
	}
	f, err := os.Open(filepath.Join(s.tenantDir(tenantID), ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("artifact %q: %w", ref, model.ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}
	ext := filepath.Ext(ref)
	for ct, e := range allowed {
		if e == ext {
			return f, ct, nil
		}
	}
	return f, "application/octet-stream", nil
}

// Exists reports whether ref names an artifact uploaded by the tenant.
func (s *FileStore) Exists(tenantID uuid.UUID, ref string) bool {
	if tenantID == uuid.Nil || !refPattern.MatchString(ref) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.tenantDir(tenantID), ref))
	return err == nil
}

func (s *FileStore) tenantDir(tenantID uuid.UUID) string {
	return filepath.Join(s.dir, tenantID.String())
}

package storage

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded files. Saved files are addressed by the path
// returned from Save, which is what gets recorded on the owning row.
type Store interface {
	// Save writes r under dir with a fresh unique name and returns its path.
	Save(ctx context.Context, dir, originalName, contentType string, r io.Reader) (string, error)

	// Delete removes a previously saved file. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}

// uniqueName returns a random file name keeping the original extension,
// or one derived from the content type.
func uniqueName(originalName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = extensionFor(contentType)
	}
	return uuid.NewString() + ext
}

func extensionFor(contentType string) string {
	if contentType == "application/pdf" {
		return ".pdf"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// cleanDir keeps dir relative and free of parent references.
func cleanDir(dir string) string {
	dir = filepath.ToSlash(filepath.Clean("/" + dir))
	return strings.Trim(dir, "/")
}

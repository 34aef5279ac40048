package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// localStore keeps files on the local file system under root. Saved files
// are reported under publicPath so they can be served statically.
type localStore struct {
	root       string
	publicPath string
	logger     zerolog.Logger
}

// NewLocalStore creates a store writing below root.
func NewLocalStore(root, publicPath string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	logger = logger.With().Str("component", "local-store").Logger()
	logger.Info().Str("root", root).Str("public_path", publicPath).Msg("local upload store initialised")

	return &localStore{
		root:       root,
		publicPath: "/" + strings.Trim(publicPath, "/"),
		logger:     logger,
	}, nil
}

// Save writes the file and returns its public path.
func (s *localStore) Save(ctx context.Context, dir, originalName, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir = cleanDir(dir)
	target := filepath.Join(s.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uniqueName(originalName, contentType)
	file, err := os.OpenFile(filepath.Join(target, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(file.Name())
		s.logger.Error().Err(err).Str("file", file.Name()).Msg("failed to write upload")
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	public := path.Join(s.publicPath, dir, name)
	s.logger.Debug().Str("path", public).Int64("bytes", written).Msg("upload stored")
	return public, nil
}

// Delete removes a file previously returned by Save.
func (s *localStore) Delete(ctx context.Context, publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, s.publicPath+"/")
	if !ok || rel == "" {
		return fmt.Errorf("path %q is outside the upload store", publicPath)
	}

	rel = cleanDir(rel)
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error().Err(err).Str("path", publicPath).Msg("failed to delete upload")
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

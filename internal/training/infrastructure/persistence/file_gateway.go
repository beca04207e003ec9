package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
)

// FileGateway stores the snapshot as a single JSON or YAML document.
// Writes go to a temp file that is renamed over the target.
type FileGateway struct {
	path   string
	format Format
	logger *slog.Logger
}

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// NewFileGateway creates a gateway for the document at path.
func NewFileGateway(path string, logger *slog.Logger) (*FileGateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cleanPath, err := security.ValidateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid state path: %w", err)
	}
	format, err := FormatForPath(cleanPath)
	if err != nil {
		return nil, err
	}

	return &FileGateway{
		path:   cleanPath,
		format: format,
		logger: logger,
	}, nil
}

// Path returns the resolved document path.
func (g *FileGateway) Path() string {
	return g.path
}

// Load reads the document. A missing file is not an error.
func (g *FileGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := security.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", g.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	snapshot, err := Decode(g.format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", g.path, err)
	}
	return snapshot, nil
}

// Save replaces the document atomically.
func (g *FileGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := Encode(g.format, snapshot)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(g.path), "."+filepath.Base(g.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, g.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", g.path, err)
	}

	g.logger.Debug("snapshot written", "path", g.path, "bytes", len(data))
	return nil
}

// Clear removes the document.
func (g *FileGateway) Clear(ctx context.Context) error {
	if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", g.path, err)
	}
	return nil
}

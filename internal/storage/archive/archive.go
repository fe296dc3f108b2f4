// Package archive snapshots the run's artifacts (history ledger,
// dashboard, validation report) to cold storage, keyed by run date.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/qjlxg/fe/internal/config"
)

// Storage is a flat byte store for snapshot artifacts.
type Storage interface {
	// Put stores data under key, creating parents as needed.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the data stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Keys returns all stored keys under the prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Open builds the configured backend. Callers should check
// cfg.Enabled before calling.
func Open(cfg config.ArchiveConfig) (Storage, error) {
	switch cfg.Type {
	case "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
}

// Snapshotter copies run artifacts into the store under a dated
// prefix, so every cycle's outputs stay retrievable after the working
// files are overwritten by the next run.
type Snapshotter struct {
	store  Storage
	logger *zap.Logger
}

// NewSnapshotter creates a Snapshotter over the given store.
func NewSnapshotter(store Storage, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshotter{store: store, logger: logger}
}

// Snapshot archives each existing file under snapshots/<date>/<name>.
// Missing files are skipped: a risk-off day produces no ledger delta
// and that is not an error.
func (s *Snapshotter) Snapshot(ctx context.Context, date string, files []string) error {
	stored := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			s.logger.Debug("snapshot source missing, skipping", zap.String("path", path))
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		key := fmt.Sprintf("snapshots/%s/%s", date, filepath.Base(path))
		if err := s.store.Put(ctx, key, data); err != nil {
			return fmt.Errorf("archiving %s: %w", path, err)
		}
		stored++
	}
	s.logger.Info("run artifacts archived",
		zap.String("date", date),
		zap.Int("stored", stored),
	)
	return nil
}

// Package migration wires the legacy export and the target import together.
package migration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/seed"
	"github.com/pageza/recipebox/backend/internal/snapshotstore"
)

// Extractor produces the raw legacy dataset.
type Extractor interface {
	Extract(ctx context.Context) (legacy.RawDataset, error)
	Database() string
}

// ExportResult describes a written snapshot.
type ExportResult struct {
	Location string
	Format   legacy.Format
	Counts   map[string]int
	Bytes    int
}

// Export extracts, normalizes and serializes the legacy database and writes
// the snapshot. Nothing is written unless every step succeeds.
func Export(ctx context.Context, src Extractor, store snapshotstore.Store, format legacy.Format, logger *zap.Logger) (*ExportResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	raw, err := src.Extract(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := legacy.BuildSnapshot(raw, src.Database(), time.Now())
	if err != nil {
		return nil, err
	}
	data, err := legacy.Marshal(snap, format)
	if err != nil {
		return nil, err
	}
	if err := store.Write(ctx, data); err != nil {
		return nil, err
	}

	logger.Info("snapshot written",
		zap.String("location", store.Location()),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
		zap.Any("counts", snap.Counts))

	return &ExportResult{
		Location: store.Location(),
		Format:   format,
		Counts:   snap.Counts,
		Bytes:    len(data),
	}, nil
}

// Load reads and decodes a snapshot.
func Load(ctx context.Context, store snapshotstore.Store, format legacy.Format) (*legacy.Snapshot, error) {
	data, err := store.Read(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := legacy.Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", store.Location(), err)
	}
	return snap, nil
}

// Import loads a snapshot and replays it through the seeder.
func Import(ctx context.Context, store snapshotstore.Store, format legacy.Format, seeder *seed.Seeder) (*seed.Result, error) {
	snap, err := Load(ctx, store, format)
	if err != nil {
		return nil, err
	}
	return seeder.Run(ctx, snap)
}

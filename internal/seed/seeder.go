package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/legacy"
	"github.com/pageza/recipebox/backend/internal/models"
)

// Options configure a Seeder.
type Options struct {
	// Owner is upserted first and owns every migrated recipe and cookbook.
	Owner  models.User
	Tables []Table
	Logger *zap.Logger
	Now    func() time.Time
}

// Seeder writes snapshots into the target database.
type Seeder struct {
	db     *gorm.DB
	tables []Table
	owner  models.User
	logger *zap.Logger
	now    func() time.Time
}

// TableResult is the outcome of one pass.
type TableResult struct {
	Table string
	Rows  int
}

// Result summarises a run. On failure it holds the passes that completed.
type Result struct {
	Tables   []TableResult
	Duration time.Duration
}

// Total is the number of rows written.
func (r *Result) Total() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Rows
	}
	return total
}

// New orders the table passes. It fails when the declared foreign keys form a
// cycle or reference an undeclared table.
func New(db *gorm.DB, opts Options) (*Seeder, error) {
	if opts.Owner.ID == "" || opts.Owner.Email == "" {
		return nil, fmt.Errorf("legacy owner needs an id and an email")
	}
	tables := opts.Tables
	if tables == nil {
		tables = DefaultTables()
	}
	ordered, err := Order(tables)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Seeder{
		db:     db,
		tables: ordered,
		owner:  opts.Owner,
		logger: opts.Logger,
		now:    opts.Now,
	}, nil
}

// Tables returns the passes in execution order.
func (s *Seeder) Tables() []Table {
	return s.tables
}

// PlanStep describes one pass without running it.
type PlanStep struct {
	Table     string
	DependsOn []string
	Rows      int
}

// Plan lists the passes a run would perform for the snapshot.
func (s *Seeder) Plan(snap *legacy.Snapshot) []PlanStep {
	steps := make([]PlanStep, len(s.tables))
	for i, t := range s.tables {
		steps[i] = PlanStep{Table: t.Name, DependsOn: t.DependsOn(), Rows: t.Rows(snap)}
	}
	return steps
}

// Run validates the snapshot, then upserts every table in dependency order.
// The first failed write stops the run; earlier writes are not rolled back.
func (s *Seeder) Run(ctx context.Context, snap *legacy.Snapshot) (*Result, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot rejected before writing: %w", err)
	}

	start := time.Now()
	w := &writer{db: s.db, owner: s.owner, now: s.now}
	result := &Result{}

	for _, t := range s.tables {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		n, err := t.write(ctx, w, snap)
		if err != nil {
			result.Duration = time.Since(start)
			s.logger.Error("seed pass failed", zap.String("table", t.Name), zap.Error(err))
			return result, err
		}
		result.Tables = append(result.Tables, TableResult{Table: t.Name, Rows: n})
		s.logger.Info("seeded table", zap.String("table", t.Name), zap.Int("rows", n))
	}

	result.Duration = time.Since(start)
	return result, nil
}

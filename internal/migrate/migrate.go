// Package migrate copies source collections into the relational schema.
//
// Each job is an ordered list of steps. A step fetches one collection, maps
// every document through its mapping.Table and writes rows, resolving foreign
// keys by natural key (email, room number). The first store error aborts the
// job.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hostel-migrate/internal/metrics"
	"hostel-migrate/internal/source"
	"hostel-migrate/models"
)

const (
	JobCore = "core"
	JobFull = "full"
)

var ErrUnknownJob = errors.New("unknown job")

// Stats counts the outcome of one step for one target table.
type Stats struct {
	Collection   string `json:"collection"`
	Table        string `json:"table"`
	Processed    int    `json:"processed"`
	Inserted     int    `json:"inserted"`
	Updated      int    `json:"updated"`
	Skipped      int    `json:"skipped"`
	TargetBefore int64  `json:"target_before"`
	TargetAfter  int64  `json:"target_after"`
}

type Migrator struct {
	src     source.Store
	db      models.Database
	log     *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

type Option func(*Migrator)

func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Migrator) { m.metrics = r }
}

// WithClock replaces time.Now as the source of "now" defaults.
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) { m.now = now }
}

func New(src source.Store, db models.Database, log *zap.Logger, opts ...Option) *Migrator {
	m := &Migrator{src: src, db: db, log: log, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m
}

type step struct {
	name string
	fn   func(context.Context) ([]Stats, error)
}

func one(fn func(context.Context) (Stats, error)) func(context.Context) ([]Stats, error) {
	return func(ctx context.Context) ([]Stats, error) {
		st, err := fn(ctx)
		return []Stats{st}, err
	}
}

// Run executes the named job.
func (m *Migrator) Run(ctx context.Context, job string) ([]Stats, error) {
	switch job {
	case JobCore:
		return m.RunCore(ctx)
	case JobFull:
		return m.RunFull(ctx)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownJob, job)
}

// run executes steps in order. Stats of completed steps, and the partial
// stats of a failed one, are returned alongside the error.
func (m *Migrator) run(ctx context.Context, steps []step) ([]Stats, error) {
	var all []Stats
	for _, s := range steps {
		m.log.Info("starting migration", zap.String("step", s.name))
		stats, err := s.fn(ctx)
		all = append(all, stats...)
		if err != nil {
			return all, fmt.Errorf("migration %s failed: %w", s.name, err)
		}
		m.log.Info("completed migration", zap.String("step", s.name))
	}
	return all, nil
}

func (m *Migrator) targetCount(ctx context.Context, table string) int64 {
	var count int64
	if err := m.db.GetDB().WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		m.log.Warn("could not count target table", zap.String("table", table), zap.Error(err))
		return 0
	}
	return count
}

func (m *Migrator) fetch(ctx context.Context, collection string) ([]source.Document, error) {
	docs, err := m.src.Fetch(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}
	return docs, nil
}

func (m *Migrator) begin(ctx context.Context, collection, table string, docs int) *Stats {
	st := &Stats{Collection: collection, Table: table, TargetBefore: m.targetCount(ctx, table)}
	m.log.Info("collection loaded",
		zap.String("collection", collection),
		zap.String("table", table),
		zap.Int("source", docs),
		zap.Int64("target_before", st.TargetBefore))
	return st
}

func (m *Migrator) finish(ctx context.Context, st *Stats) {
	st.TargetAfter = m.targetCount(ctx, st.Table)
	m.log.Info("collection migrated",
		zap.String("collection", st.Collection),
		zap.String("table", st.Table),
		zap.Int("processed", st.Processed),
		zap.Int("inserted", st.Inserted),
		zap.Int("updated", st.Updated),
		zap.Int("skipped", st.Skipped),
		zap.Int64("target_after", st.TargetAfter))
}

func (m *Migrator) processed(st *Stats) {
	st.Processed++
	m.metrics.Processed(st.Table)
}

func (m *Migrator) inserted(st *Stats, n int) {
	st.Inserted += n
	m.metrics.Inserted(st.Table, n)
}

func (m *Migrator) skipped(st *Stats, docID, reason string) {
	st.Skipped++
	m.metrics.Skipped(st.Table)
	m.log.Warn("document skipped",
		zap.String("collection", st.Collection),
		zap.String("table", st.Table),
		zap.String("id", docID),
		zap.String("reason", reason))
}

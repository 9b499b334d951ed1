// Package migration runs versioned changes against the MongoDB database:
// index creation, collection validators and data backfills.
//
// Usage (in database/migrations):
//
//	func init() {
//	    migration.Register("20260101000000_users_email_unique", &UsersEmailUnique{})
//	}
//
//	type UsersEmailUnique struct{}
//	func (m *UsersEmailUnique) Up(ctx context.Context, db *mongo.Database) error { ... }
//	func (m *UsersEmailUnique) Down(ctx context.Context, db *mongo.Database) error { ... }
//
// Run from the CLI:
//
//	planty migrate             // run all pending
//	planty migrate:rollback    // roll back the last batch
//	planty migrate:status
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/planty/pkg/logger"
)

// Migration is implemented by every migration.
type Migration interface {
	Up(ctx context.Context, db *mongo.Database) error
	Down(ctx context.Context, db *mongo.Database) error
}

// Record is one applied migration in the tracking collection.
type Record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"run_at"`
}

// TrackingCollection holds one Record per applied migration.
const TrackingCollection = "planty_migrations"

// ErrNoMigrations is returned by Run when nothing is registered.
var ErrNoMigrations = errors.New("no migrations registered")

// ------------------- Registry -------------------

type registeredMigration struct {
	name string
	m    Migration
}

var registry []registeredMigration

// Register adds a migration. name should be timestamp-prefixed so the
// lexical order is the chronological order.
func Register(name string, m Migration) {
	registry = append(registry, registeredMigration{name: name, m: m})
}

// ------------------- Tracker -------------------

// Tracker persists which migrations have run.
type Tracker interface {
	Applied(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, rec Record) error
	Remove(ctx context.Context, name string) error
}

type mongoTracker struct{ col *mongo.Collection }

// NewMongoTracker stores records in TrackingCollection, with a unique
// index on name.
func NewMongoTracker(ctx context.Context, db *mongo.Database) (Tracker, error) {
	col := db.Collection(TrackingCollection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("migration: ensure tracking index: %w", err)
	}
	return mongoTracker{col: col}, nil
}

func (t mongoTracker) Applied(ctx context.Context) ([]Record, error) {
	cur, err := t.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t mongoTracker) Insert(ctx context.Context, rec Record) error {
	_, err := t.col.InsertOne(ctx, rec)
	return err
}

func (t mongoTracker) Remove(ctx context.Context, name string) error {
	_, err := t.col.DeleteOne(ctx, bson.M{"name": name})
	return err
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db         *mongo.Database
	tracker    Tracker
	out        io.Writer
	migrations []registeredMigration
	now        func() time.Time
}

// New builds a Runner over every registered migration.
func New(db *mongo.Database, tracker Tracker, out io.Writer) *Runner {
	ms := make([]registeredMigration, len(registry))
	copy(ms, registry)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].name < ms[j].name })
	return &Runner{db: db, tracker: tracker, out: out, migrations: ms, now: time.Now}
}

// Pending returns migrations not yet applied, oldest first.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, reg := range r.migrations {
		if _, ok := applied[reg.name]; !ok {
			names = append(names, reg.name)
		}
	}
	return names, nil
}

// Run applies every pending migration as one batch.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.migrations) == 0 {
		return ErrNoMigrations
	}

	applied, err := r.applied(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch applied: %w", err)
	}

	batch := 1
	for _, rec := range applied {
		if rec.Batch >= batch {
			batch = rec.Batch + 1
		}
	}

	ran := 0
	for _, reg := range r.migrations {
		if _, ok := applied[reg.name]; ok {
			continue
		}

		logger.Info("migration: running", "name", reg.name)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", reg.name)

		if err := reg.m.Up(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.tracker.Insert(ctx, Record{Name: reg.name, Batch: batch, RunAt: r.now().UTC()}); err != nil {
			return fmt.Errorf("migration: record %s: %w", reg.name, err)
		}

		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", reg.name)
		ran++
	}

	if ran == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}
	logger.Info("migration: done", "ran", ran, "batch", batch)
	return nil
}

// Rollback reverses the most recent batch, newest migration first.
func (r *Runner) Rollback(ctx context.Context) error {
	applied, err := r.applied(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch applied: %w", err)
	}

	last := 0
	for _, rec := range applied {
		if rec.Batch > last {
			last = rec.Batch
		}
	}
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	var batch []Record
	for _, rec := range applied {
		if rec.Batch == last {
			batch = append(batch, rec)
		}
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Name > batch[j].Name })

	byName := make(map[string]Migration, len(r.migrations))
	for _, reg := range r.migrations {
		byName[reg.name] = reg.m
	}

	for _, rec := range batch {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		logger.Info("migration: rolling back", "name", rec.Name)

		if err := m.Down(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.tracker.Remove(ctx, rec.Name); err != nil {
			return err
		}

		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", rec.Name)
	}
	return nil
}

// Status prints every registered migration with its batch, or Pending.
func (r *Runner) Status(ctx context.Context) error {
	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-50s  %-8s  %s\n", "Migration", "Status", "Batch")
	for _, reg := range r.migrations {
		if rec, ok := applied[reg.name]; ok {
			fmt.Fprintf(r.out, "%-50s  %-8s  %d\n", reg.name, "Ran", rec.Batch)
		} else {
			fmt.Fprintf(r.out, "%-50s  %-8s  -\n", reg.name, "Pending")
		}
	}
	return nil
}

func (r *Runner) applied(ctx context.Context) (map[string]Record, error) {
	recs, err := r.tracker.Applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec
	}
	return out, nil
}

// Package sqlstore holds the queries shared by the SQLite and PostgreSQL
// backends. Queries are written with "?" placeholders and rebound for the
// active dialect.
package sqlstore

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/julianstephens/peakstreak/internal/migration"
	"github.com/julianstephens/peakstreak/internal/storage"
	"github.com/julianstephens/peakstreak/migrations"
)

// timestampLayout is fixed width so that text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Dialect describes the differences between the supported databases.
type Dialect struct {
	// Name selects the migrations subdirectory.
	Name            string
	Placeholder     migration.Placeholder
	UniqueViolation func(error) bool
}

// Queries implements the data methods of storage.Provider over a *sql.DB.
// Backends embed it and call Attach once the connection is open.
type Queries struct {
	db      *sql.DB
	dialect Dialect
}

// Attach binds an open connection.
func (q *Queries) Attach(db *sql.DB, dialect Dialect) {
	q.db = db
	q.dialect = dialect
}

// GetDB returns the underlying connection, or nil before Init/Load.
func (q *Queries) GetDB() *sql.DB {
	return q.db
}

// Close closes the connection. Closing twice is a no-op.
func (q *Queries) Close() error {
	if q.db == nil {
		return nil
	}
	err := q.db.Close()
	q.db = nil
	return err
}

func (q *Queries) conn() (*sql.DB, error) {
	if q.db == nil {
		return nil, storage.ErrNotInitialized
	}
	return q.db, nil
}

func (q *Queries) rebind(query string) string {
	if q.dialect.Placeholder == nil || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(q.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (q *Queries) runner() (*migration.Runner, error) {
	db, err := q.conn()
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(migrations.FS, q.dialect.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", q.dialect.Name, err)
	}
	placeholder := q.dialect.Placeholder
	if placeholder == nil {
		placeholder = migration.QuestionPlaceholder
	}
	return migration.NewRunner(db, sub, migration.WithPlaceholder(placeholder)), nil
}

// Migrate applies pending schema migrations.
func (q *Queries) Migrate() (int, error) {
	r, err := q.runner()
	if err != nil {
		return 0, err
	}
	return r.Apply()
}

// ValidateSchema fails when the database is ahead of this release.
func (q *Queries) ValidateSchema() error {
	r, err := q.runner()
	if err != nil {
		return err
	}
	return r.ValidateVersion()
}

// SchemaVersion reports the applied and the latest embedded schema versions.
func (q *Queries) SchemaVersion() (int, int, error) {
	r, err := q.runner()
	if err != nil {
		return 0, 0, err
	}
	current, err := r.CurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	latest, err := r.LatestVersion()
	if err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
}

package database

import (
	"strconv"
	"strings"

	contextutils "notlikethat/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Dialect captures the differences between the supported SQL backends
type Dialect struct {
	// Name is the storage driver name used in configuration
	Name string
	// DriverName is the database/sql driver wrapped by otelsql
	DriverName string
	// System is the semconv db.system attribute
	System attribute.KeyValue
	// MigrationsDir is the embedded directory holding this dialect's migrations
	MigrationsDir string
	// positional reports whether placeholders are $1, $2, ... instead of ?
	positional bool
}

var (
	// Postgres is backed by github.com/lib/pq
	Postgres = Dialect{
		Name:          "postgres",
		DriverName:    "postgres",
		System:        semconv.DBSystemPostgreSQL,
		MigrationsDir: "migrations/postgres",
		positional:    true,
	}

	// SQLite is backed by modernc.org/sqlite
	SQLite = Dialect{
		Name:          "sqlite",
		DriverName:    "sqlite",
		System:        semconv.DBSystemSqlite,
		MigrationsDir: "migrations/sqlite",
	}
)

// DialectFor returns the dialect for a storage driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case Postgres.Name, "postgresql":
		return Postgres, nil
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, contextutils.WrapErrorf(contextutils.ErrUnsupportedStore, "no SQL dialect for driver %q", driver)
	}
}

// IsSQLite reports whether d is the SQLite dialect.
func (d Dialect) IsSQLite() bool { return d.Name == SQLite.Name }

// Rebind rewrites ? placeholders into the dialect's style. Queries are written with ?.
func (d Dialect) Rebind(query string) string {
	if !d.positional {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

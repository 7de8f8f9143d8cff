// Package sqlstore holds the record queries shared by the SQLite and
// PostgreSQL providers. Queries are written with ? placeholders and rebound
// for PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/julianstephens/orbitflow/internal/errors"
)

// Dialect names a SQL flavor.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Store runs owner-scoped queries against DB. The embedding provider opens
// DB and sets it before any query runs.
type Store struct {
	DB     *sql.DB
	Flavor Dialect
	// IsUniqueViolation reports whether err came from a unique constraint.
	IsUniqueViolation func(error) bool
}

// Rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *Store) Rebind(query string) string {
	if s.Flavor != Postgres {
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

func (s *Store) db() (*sql.DB, error) {
	if s.DB == nil {
		return nil, errors.Upstream("storage", stderrors.New("database not opened; run 'orbitflow init' first"))
	}
	return s.DB, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx, s.Rebind(query), args...)
	if err != nil {
		if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
			return nil, errors.ErrConflict
		}
		return nil, errors.Upstream(op, err)
	}
	return res, nil
}

// execOne runs a write that must touch exactly one row; zero rows means the
// record is missing or owned by someone else.
func (s *Store) execOne(ctx context.Context, op, what, id, query string, args ...any) error {
	res, err := s.exec(ctx, op, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Upstream(op, err)
	}
	if n == 0 {
		return errors.NotFoundf("%s %s", what, id)
	}
	return nil
}

func (s *Store) query(ctx context.Context, op, query string, args ...any) (*sql.Rows, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, s.Rebind(query), args...)
	if err != nil {
		return nil, errors.Upstream(op, err)
	}
	return rows, nil
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.QueryRowContext(ctx, s.Rebind(query), args...), nil
}

// scanErr maps sql.ErrNoRows to a not-found error for what/id.
func scanErr(op, what, id string, err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundf("%s %s", what, id)
	}
	return errors.Upstream(op, err)
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.Upstream("ping", err)
	}
	return nil
}

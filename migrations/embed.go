// Package migrations embeds the SQL schema files for each supported database.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Dialect returns the migration files for dialect ("sqlite" or "postgres")
// rooted so that the NNN_name.sql files sit at the top level.
func Dialect(dialect string) (fs.FS, error) {
	switch dialect {
	case "sqlite", "postgres":
		return fs.Sub(FS, dialect)
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}
}

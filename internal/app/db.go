package app

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rabsht/fpl-h2h/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxSpanQueryBytes = 512

// OpenDB opens the instrumented postgres pool and verifies connectivity.
func OpenDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", normalizeDSN(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(databaseName(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatQueryForSpan),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// normalizeDSN appends disable_prepared_binary_result=yes when the
// config asks for it, which PgBouncer transaction pooling needs. An
// explicit value already on the DSN wins.
func normalizeDSN(dsn string, disableBinaryResults bool) string {
	if !disableBinaryResults || strings.Contains(dsn, "disable_prepared_binary_result") {
		return dsn
	}
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "disable_prepared_binary_result=yes"
	}
	return dsn + " disable_prepared_binary_result=yes"
}

// databaseName pulls the database name out of either DSN form for the
// span attribute. Unknown shapes report empty rather than guessing.
func databaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if strings.Contains(dsn, "://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		return strings.TrimPrefix(parsed.Path, "/")
	}

	for _, field := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// formatQueryForSpan collapses whitespace so multi-line queries read as
// one span attribute line, and cuts anything unreasonably long.
func formatQueryForSpan(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) > maxSpanQueryBytes {
		return normalized[:maxSpanQueryBytes] + "..."
	}
	return normalized
}

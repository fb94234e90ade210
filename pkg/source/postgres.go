package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/logging"
	"github.com/tdiff/tdiff/pkg/table"
)

// Config holds the PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN renders the configuration as a connection URL.
func (c Config) DSN() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, host, port, c.Database, sslMode)
}

// Postgres is a Source backed by a pgx connection pool. It optionally
// runs a preparation script (building staging tables) before fetching
// the final query into a table.
type Postgres struct {
	pool  *pgxpool.Pool
	query string
}

// NewPostgres opens a connection pool and verifies it with a ping.
// query is the final SELECT whose result becomes the input table.
func NewPostgres(ctx context.Context, cfg Config, query string) (*Postgres, error) {
	if query == "" {
		return nil, errors.NewSourceError("connect", cfg.Database, errors.New("final query is required"))
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.WrapSource("connect", cfg.Database, err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.WrapSource("connect", cfg.Database, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WrapSource("connect", cfg.Database, err)
	}

	return &Postgres{pool: pool, query: query}, nil
}

// Prepare executes the preparation statements in order. Statement-level
// server errors (bad DDL, integrity violations) are logged and skipped so
// a partially reusable script still runs; connection-level failures abort.
// It returns the number of executed and failed statements.
func (p *Postgres) Prepare(ctx context.Context, statements []string) (executed, failed int, err error) {
	log := logging.Ctx(ctx)
	for i, stmt := range statements {
		log.Debug().Int("statement", i+1).Str("sql", truncate(stmt, 50)).Msg("Executing preparation statement")
		if _, execErr := p.pool.Exec(ctx, stmt); execErr != nil {
			var pgErr *pgconn.PgError
			if stderrors.As(execErr, &pgErr) {
				failed++
				log.Warn().Int("statement", i+1).Str("code", pgErr.Code).Err(execErr).
					Msg("Preparation statement failed")
				continue
			}
			return executed, failed, errors.WrapSource("prepare", fmt.Sprintf("statement %d", i+1), execErr)
		}
		executed++
	}
	return executed, failed, nil
}

// Fetch implements Source: it runs the final query and buffers the whole
// result set into a table. Zero rows is a valid outcome.
func (p *Postgres) Fetch(ctx context.Context) (*table.Table, error) {
	rows, err := p.pool.Query(ctx, p.query)
	if err != nil {
		return nil, errors.WrapSource("query", truncate(p.query, 50), err)
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	tbl := table.New(columns...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.WrapSource("query", "row scan", err)
		}
		tbl.Append(values...)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapSource("query", truncate(p.query, 50), err)
	}

	return tbl, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// truncate shortens a string for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// Package postgres provides the `postgres` context, a database connection
// scoped to one invocation, and the `postgres_query` pipe.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vk/pipesgo/internal/ctxlog"
	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
)

// Module implements the pipe.Module interface for this package.
type Module struct{}

// Context declares the `postgres` context.
func Context() *pipe.ContextSpec {
	return pipe.NewContext("postgres").
		Help("PostgreSQL connection.").
		Field("url", pipe.Config("postgres-url").Type(pipe.String).Help("Connection string, URL or key=value form.")).
		Field("timeout", pipe.Config("postgres-timeout").Type(pipe.String).Default("5s").Help("Connect timeout.")).
		OnEnter(connect).
		OnExit(closeConn)
}

func connect(ctx context.Context, c *pipe.Context) error {
	timeout, err := time.ParseDuration(c.GetString("timeout"))
	if err != nil {
		return fmt.Errorf("invalid postgres-timeout: %w", err)
	}
	cfg, err := pgx.ParseConfig(c.GetString("url"))
	if err != nil {
		return fmt.Errorf("invalid postgres-url: %w", err)
	}
	cfg.ConnectTimeout = timeout

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Connected to postgres.", "host", cfg.Host, "database", cfg.Database)
	c.SetResource(conn)
	return nil
}

func closeConn(ctx context.Context, c *pipe.Context, _ error) error {
	conn, ok := c.Resource().(*pgx.Conn)
	if !ok {
		return nil
	}
	return conn.Close(context.WithoutCancel(ctx))
}

// onRunQuery runs the query and stores the rows as a list of mappings.
func onRunQuery(ctx context.Context, args *pipe.Args) error {
	query := args.GetString("query")
	queryArgs := args.GetList("args")
	logger := args.Logger()

	if args.DryRun() {
		logger.Info("Dry run: skipping query", "query", query, "args", len(queryArgs))
		return nil
	}

	conn, ok := args.Sub("postgres").Resource().(*pgx.Conn)
	if !ok {
		return fmt.Errorf("postgres connection was not initialized")
	}

	logger.Info("Running query", "query", query, "args", len(queryArgs))
	rows, err := conn.Query(ctx, query, queryArgs...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	out := make([]any, 0, len(records))
	for _, rec := range records {
		row, err := document.Normalize(rec)
		if err != nil {
			return fmt.Errorf("unsupported column value: %w", err)
		}
		out = append(out, row)
	}
	logger.Info("Query finished", "rows", len(out))
	return args.Set("rows", out)
}

// Register registers the module's pipes.
func (m *Module) Register(r *pipe.Registry) error {
	_, err := r.Register("postgres", pipe.Define("postgres_query", onRunQuery).
		Help("Run a SQL query and store the resulting rows.").
		Param(pipe.DryRunParam).
		Param(pipe.LogParam).
		Bind("postgres", Context()).
		Bind("query", pipe.Config("query").Type(pipe.String)).
		Bind("args", pipe.Config("args").Type(pipe.List).Default(nil).Help("Positional query arguments ($1, $2, ...).")).
		Bind("rows", pipe.State("rows").Mutable().Help("Destination list of row mappings.")))
	return err
}

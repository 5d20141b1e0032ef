// Package source reads the legacy MySQL recipe database.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/internal/legacy"
)

// Config holds the legacy connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// Addr is host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DSN renders the driver data source name. Dates are parsed into time.Time in UTC.
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Addr()
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	if c.Timeout > 0 {
		mc.Timeout = c.Timeout
	}
	return mc.FormatDSN()
}

// Source is an open session to the legacy database.
type Source struct {
	db       *sql.DB
	database string
	logger   *zap.Logger
}

// New wraps an existing pool.
func New(db *sql.DB, database string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{db: db, database: database, logger: logger}
}

func openPool(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, &legacy.ConnectionError{Addr: cfg.Addr(), Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &legacy.ConnectionError{Addr: cfg.Addr(), Err: err}
	}
	return db, nil
}

// Open connects to the configured catalog.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Source, error) {
	if cfg.Database == "" {
		return nil, &legacy.ConnectionError{Addr: cfg.Addr(), Err: fmt.Errorf("no database selected")}
	}
	db, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := New(db, cfg.Database, logger)
	s.logger.Info("connected to legacy database",
		zap.String("addr", cfg.Addr()),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))
	return s, nil
}

// ListDatabases lists the catalogs visible to the configured user. It uses its
// own connection with no catalog selected and always releases it.
func ListDatabases(ctx context.Context, cfg Config) ([]string, error) {
	cfg.Database = ""
	db, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return listDatabases(ctx, db)
}

// Databases lists the catalogs visible through this session.
func (s *Source) Databases(ctx context.Context) ([]string, error) {
	return listDatabases(ctx, s.db)
}

func listDatabases(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, &legacy.ExtractionError{Table: "SHOW DATABASES", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &legacy.ExtractionError{Table: "SHOW DATABASES", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &legacy.ExtractionError{Table: "SHOW DATABASES", Err: err}
	}
	return names, nil
}

// Database is the selected catalog.
func (s *Source) Database() string { return s.database }

// BeginSnapshot opens the read-only transaction Extract reads under.
const BeginSnapshot = "START TRANSACTION WITH CONSISTENT SNAPSHOT, READ ONLY"

// Extract reads every legacy table inside one read-only transaction, so all
// tables come from the same point in time. A failure on any table discards
// everything read so far.
func (s *Source) Extract(ctx context.Context) (legacy.RawDataset, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &legacy.ExtractionError{Table: "connection", Err: err}
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, BeginSnapshot); err != nil {
		return nil, &legacy.ExtractionError{Table: "transaction", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			// The session may already be gone; the server drops the transaction then.
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	ds := make(legacy.RawDataset, len(legacy.Tables))
	for _, table := range legacy.Tables {
		start := time.Now()
		rows, err := readTable(ctx, conn, table)
		if err != nil {
			return nil, &legacy.ExtractionError{Table: table, Err: err}
		}
		ds[table] = rows
		s.logger.Debug("extracted table",
			zap.String("table", table),
			zap.Int("rows", len(rows)),
			zap.Duration("took", time.Since(start)))
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return nil, &legacy.ExtractionError{Table: "transaction", Err: err}
	}
	committed = true
	return ds, nil
}

// Close releases the pool.
func (s *Source) Close() error {
	return s.db.Close()
}

func readTable(ctx context.Context, conn *sql.Conn, table string) ([]legacy.RawRow, error) {
	rows, err := conn.QueryContext(ctx, "SELECT * FROM `"+table+"`")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []legacy.RawRow{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(legacy.RawRow, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

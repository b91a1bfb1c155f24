package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// dialect holds the statements that differ between database engines.
type dialect struct {
	name   string
	create string
	upsert string
}

var (
	sqliteDialect = dialect{
		name:   "sqlite",
		create: `CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v BLOB NOT NULL)`,
		upsert: `INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
	}
	mysqlDialect = dialect{
		name:   "mysql",
		create: `CREATE TABLE IF NOT EXISTS kv (k VARCHAR(191) PRIMARY KEY, v LONGBLOB NOT NULL)`,
		upsert: `INSERT INTO kv (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`,
	}
)

// SQL is a Store backed by a single table in a relational database.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating it if needed) an SQLite database file.
func OpenSQLite(pathname string) (*SQL, error) {
	if pathname == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	db, err := sql.Open("sqlite", pathname)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	// A single connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)
	return newSQL(db, sqliteDialect)
}

// OpenMySQL connects to the MySQL database identified by the DSN, in the go-sql-driver/mysql format, e.g.,
// "user:password@tcp(localhost:3306)/todo".
func OpenMySQL(dsn string) (*SQL, error) {
	cfg, err := MySQLConfig(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql store: %w", err)
	}
	return newSQL(sql.OpenDB(connector), mysqlDialect)
}

// MySQLConfig parses the DSN and checks it names a database.
func MySQLConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql store: %w", err)
	}
	if cfg.DBName == "" {
		return nil, errors.New("mysql store: no database name in DSN")
	}
	return cfg, nil
}

func newSQL(db *sql.DB, d dialect) (*SQL, error) {
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s store: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, d.create); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s store: create table: %w", d.name, err)
	}
	return &SQL{db: db, dialect: d}, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s store: get %q: %w", s.dialect.name, key, err)
	}
	return v, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value); err != nil {
		return fmt.Errorf("%s store: set %q: %w", s.dialect.name, key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// SQLiteFile is the database file name used under the data directory.
const SQLiteFile = "todo.db"

type dialect struct {
	driver string
	create string
	get    string
	upsert string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	create: `CREATE TABLE IF NOT EXISTS kv_store (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`,
	get: `SELECT v FROM kv_store WHERE k = ?`,
	upsert: `INSERT INTO kv_store (k, v, updated_at) VALUES (?, ?, ?)
ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`,
}

var mysqlDialect = dialect{
	driver: "mysql",
	create: `CREATE TABLE IF NOT EXISTS kv_store (
    k VARCHAR(191) NOT NULL PRIMARY KEY,
    v LONGTEXT NOT NULL,
    updated_at VARCHAR(40) NOT NULL
)`,
	get: `SELECT v FROM kv_store WHERE k = ?`,
	upsert: `INSERT INTO kv_store (k, v, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)`,
}

// SQL is a Store backed by a kv_store table.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens <dir>/todo.db with the pure-Go sqlite driver.
func OpenSQLite(ctx context.Context, dir string) (*SQL, error) {
	if dir == "" {
		return nil, errors.New("sqlite backend requires a data directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := filepath.Join(dir, SQLiteFile) + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open(sqliteDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers inside the process.
	db.SetMaxOpenConns(1)
	return newSQL(ctx, db, sqliteDialect)
}

// OpenMySQL connects to the database named by dsn.
func OpenMySQL(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("mysql backend requires a DSN")
	}
	db, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	return newSQL(ctx, db, mysqlDialect)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", d.driver, err)
	}
	s := &SQL{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.create); err != nil {
		return fmt.Errorf("migrate %s: %w", s.dialect.driver, err)
	}
	return nil
}

// Driver returns the database/sql driver name.
func (s *SQL) Driver() string {
	return s.dialect.driver
}

// Get implements Store.
func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ValidKey(key); err != nil {
		return "", false, err
	}
	var v string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return v, true, nil
}

// Set implements Store.
func (s *SQL) Set(ctx context.Context, key, value string) error {
	if err := ValidKey(key); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, now); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (s *SQL) Close() error {
	return s.db.Close()
}

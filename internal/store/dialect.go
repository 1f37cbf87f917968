package store

import (
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

// sqlDialect pairs a database/sql driver with its ent dialect and the DDL
// needed to create the store's tables.
type sqlDialect struct {
	driverName string
	name       string
	schema     []string
}

func dialectFor(driver string) (sqlDialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return sqlDialect{driverName: "sqlite", name: dialect.SQLite, schema: sqliteSchema}, nil
	case "postgres", "postgresql":
		return sqlDialect{driverName: "postgres", name: dialect.Postgres, schema: postgresSchema}, nil
	case "mysql":
		return sqlDialect{driverName: "mysql", name: dialect.MySQL, schema: mysqlSchema}, nil
	default:
		return sqlDialect{}, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// Timestamps are unix milliseconds so the same scan code works on every driver.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_created_at ON documents (collection, created_at)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection VARCHAR(191) NOT NULL,
		id VARCHAR(191) NOT NULL,
		data TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_created_at ON documents (collection, created_at)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id BIGSERIAL PRIMARY KEY,
		timestamp BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection VARCHAR(191) NOT NULL,
		id VARCHAR(191) NOT NULL,
		data LONGTEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (collection, id),
		INDEX documents_created_at (collection, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		timestamp BIGINT NOT NULL,
		provider VARCHAR(64) NOT NULL,
		model VARCHAR(191) NOT NULL,
		purpose VARCHAR(64) NOT NULL,
		input_tokens INT NOT NULL DEFAULT 0,
		output_tokens INT NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL,
		request_body LONGTEXT NOT NULL,
		response_body LONGTEXT NOT NULL,
		INDEX llm_request_events_purpose (purpose)
	)`,
}

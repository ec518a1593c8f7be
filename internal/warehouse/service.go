// Package warehouse wraps database/sql over the gosnowflake driver with the
// connection, session, and full-refresh primitives the batch layers build on.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

// Service provides Snowflake database operations
type Service struct {
	db             *sql.DB
	config         models.WarehouseConfig
	password       string
	connected      bool
	logger         *zap.Logger
	circuitBreaker *errors.CircuitBreaker
}

// NewService creates a new warehouse service. The password is resolved by
// the caller from the credential store; it never lives in the config.
func NewService(config models.WarehouseConfig, password string, logger *zap.Logger) *Service {
	return &Service{
		config:         config,
		password:       password,
		logger:         logger,
		circuitBreaker: errors.NewCircuitBreaker("warehouse", 5, 30*time.Second),
	}
}

// NewServiceWithDB wraps an existing database handle. Used by tests and by
// callers that manage the connection themselves.
func NewServiceWithDB(db *sql.DB, config models.WarehouseConfig, logger *zap.Logger) *Service {
	return &Service{
		db:             db,
		config:         config,
		connected:      true,
		logger:         logger,
		circuitBreaker: errors.NewCircuitBreaker("warehouse", 5, 30*time.Second),
	}
}

// Connect establishes a connection to Snowflake. The dial loop retries with
// exponential backoff behind a circuit breaker; a ping plus the session USE
// statements must succeed before the service reports connected.
func (s *Service) Connect(ctx context.Context) error {
	if s.connected {
		return nil
	}

	return s.circuitBreaker.Execute(ctx, func() error {
		dial := func() error {
			dsn := fmt.Sprintf("%s:%s@%s/%s?warehouse=%s&role=%s",
				s.config.Username,
				s.password,
				s.config.Account,
				s.config.Database,
				s.config.Warehouse,
				s.config.Role,
			)

			db, err := sql.Open("snowflake", dsn)
			if err != nil {
				return backoff.Permanent(errors.ConnectionError("Failed to open Snowflake connection", err).
					WithContext("account", s.config.Account).
					WithContext("warehouse", s.config.Warehouse))
			}

			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(10 * time.Minute)

			pingCtx, cancel := context.WithTimeout(ctx, s.config.ConnectTimeout())
			defer cancel()

			if err := db.PingContext(pingCtx); err != nil {
				db.Close()

				if strings.Contains(err.Error(), "authentication") {
					return backoff.Permanent(errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
						WithContext("user", s.config.Username).
						WithSuggestions(
							"Verify your username and stored password",
							"Run 'flakeforge setup' to re-store the warehouse password",
						))
				}

				return errors.ConnectionError("Failed to connect to Snowflake", err).
					WithContext("account", s.config.Account).
					AsRecoverable()
			}

			s.db = db
			return nil
		}

		bo := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4),
			ctx,
		)
		if err := backoff.Retry(dial, bo); err != nil {
			return err
		}

		if err := s.useSession(ctx); err != nil {
			s.db.Close()
			s.db = nil
			return err
		}

		s.connected = true
		s.logger.Info("connected to warehouse",
			zap.String("account", s.config.Account),
			zap.String("database", s.config.Database),
			zap.String("warehouse", s.config.Warehouse),
		)
		return nil
	})
}

// useSession pins the session to the configured role, warehouse, and database.
func (s *Service) useSession(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf("USE ROLE %s", s.config.Role),
		fmt.Sprintf("USE WAREHOUSE %s", s.config.Warehouse),
		fmt.Sprintf("USE DATABASE %s", s.config.Database),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.SQLError("Failed to initialize session", stmt, err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected || s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// Ping verifies the connection is still usable
func (s *Service) Ping(ctx context.Context) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to warehouse")
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.config.ConnectTimeout())
	defer cancel()

	return s.db.PingContext(pingCtx)
}

// Exec executes a single statement
func (s *Service) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if !s.connected {
		return nil, errors.New(errors.ErrCodeConnectionFailed, "Not connected to warehouse").
			WithSuggestions("Call Connect() before executing SQL")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.SQLError("Failed to execute statement", query, err)
	}
	return res, nil
}

// Query executes a query and returns its rows
func (s *Service) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if !s.connected {
		return nil, errors.New(errors.ErrCodeConnectionFailed, "Not connected to warehouse")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.SQLError("Failed to execute query", query, err)
	}
	return rows, nil
}

// QueryRowCount returns the row count of a table
func (s *Service) QueryRowCount(ctx context.Context, table string) (int64, error) {
	if !s.connected {
		return 0, errors.New(errors.ErrCodeConnectionFailed, "Not connected to warehouse")
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, errors.SQLError("Failed to count rows", query, err)
	}
	return count, nil
}

// ExecScript splits a multi-statement SQL script and executes each statement
// in order. Used by schema provisioning.
func (s *Service) ExecScript(ctx context.Context, script string) error {
	for _, stmt := range SplitStatements(script) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SplitStatements splits SQL text on semicolons that are not inside string
// literals.
func SplitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := rune(0)

	for i, char := range script {
		if !inString {
			if char == '\'' || char == '"' {
				inString = true
				stringChar = char
			} else if char == ';' {
				if i == 0 || script[i-1] != '\\' {
					statements = append(statements, current.String())
					current.Reset()
					continue
				}
			}
		} else {
			if char == stringChar && (i == 0 || script[i-1] != '\\') {
				inString = false
			}
		}
		current.WriteRune(char)
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}

// DB returns the underlying database handle
func (s *Service) DB() *sql.DB {
	return s.db
}

// Database returns the configured database name
func (s *Service) Database() string {
	return s.config.Database
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/mohamedkhairy/stock-cruncher/internal/config"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
)

const createAlertsTable = `
CREATE TABLE IF NOT EXISTS crossover_alerts (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL DEFAULT '',
	series_id  TEXT NOT NULL,
	idx        INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	date       TEXT NOT NULL DEFAULT '',
	price      DOUBLE PRECISION NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// PostgresAlertStorage implements AlertStorage on PostgreSQL
type PostgresAlertStorage struct {
	db *sql.DB
}

// ConnectionString builds a lib/pq keyword/value connection string
func ConnectionString(dbConfig config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Database,
		dbConfig.SSLMode,
	)
}

// NewPostgresAlertStorage connects to PostgreSQL and ensures the alerts table exists
func NewPostgresAlertStorage(dbConfig config.DatabaseConfig) (*PostgresAlertStorage, error) {
	db, err := sql.Open("postgres", ConnectionString(dbConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(dbConfig.MaxConnections)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createAlertsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}

	logger.Info("PostgreSQL alert storage initialized",
		logger.String("host", dbConfig.Host),
		logger.Int("port", dbConfig.Port),
		logger.String("database", dbConfig.Database),
	)

	return &PostgresAlertStorage{db: db}, nil
}

// WriteAlert writes a single alert
func (s *PostgresAlertStorage) WriteAlert(ctx context.Context, alert *models.Alert) error {
	return s.WriteAlerts(ctx, []*models.Alert{alert})
}

// WriteAlerts writes all alerts in one transaction. Alerts already stored
// under the same ID are left untouched.
func (s *PostgresAlertStorage) WriteAlerts(ctx context.Context, alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	for _, alert := range alerts {
		if err := alert.Validate(); err != nil {
			return fmt.Errorf("invalid alert %q: %w", alert.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO crossover_alerts (`+alertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, alert := range alerts {
		if _, err := stmt.ExecContext(ctx,
			alert.ID,
			alert.RunID,
			alert.SeriesID,
			alert.Index,
			string(alert.Kind),
			alert.Date,
			alert.Price,
			alert.Message,
			alert.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert alert %s: %w", alert.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("Wrote alerts to PostgreSQL", logger.Int("count", len(alerts)))
	return nil
}

// GetAlerts retrieves alerts with filtering options
func (s *PostgresAlertStorage) GetAlerts(ctx context.Context, filter AlertFilter) ([]*models.Alert, error) {
	query, args := buildAlertQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return alerts, nil
}

// GetAlert retrieves a single alert by ID, or nil if it does not exist
func (s *PostgresAlertStorage) GetAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+alertColumns+" FROM crossover_alerts WHERE id = $1", alertID)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return alert, err
}

// Close closes the database connection
func (s *PostgresAlertStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row scanner) (*models.Alert, error) {
	var alert models.Alert
	var kind string

	err := row.Scan(
		&alert.ID,
		&alert.RunID,
		&alert.SeriesID,
		&alert.Index,
		&kind,
		&alert.Date,
		&alert.Price,
		&alert.Message,
		&alert.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	alert.Kind = models.AlertKind(kind)
	return &alert, nil
}

package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
)

// ItemAuditRepo vuelca los eventos de mutación de items en ClickHouse
// para analítica; la tabla es append-only y se consulta por agregados.
type ItemAuditRepo struct {
	db *sql.DB
}

var _ sharedDomain.AuditSink = (*ItemAuditRepo)(nil)

// NewItemAuditRepo es el constructor.
func NewItemAuditRepo(addr string, dbName string) (*ItemAuditRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &ItemAuditRepo{db: conn}, nil
}

// LogBatch inserta un lote de entradas de auditoría. ClickHouse funciona
// mejor con inserciones en lotes.
func (r *ItemAuditRepo) LogBatch(ctx context.Context, entries []sharedDomain.AuditEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO items_log (id, entity, record_id, event_type, payload, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(
			ctx,
			e.ID,
			e.Entity,
			e.RecordID,
			e.EventType,
			string(e.Payload),
			e.EventTime,
		); err != nil {
			// Si una entrada falla, hacemos rollback de todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// GetDailyTrend agrega creaciones, actualizaciones y borrados por día.
func (r *ItemAuditRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]sharedDomain.DailyTrend, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			countIf(event_type = 'item.created') AS created,
			countIf(event_type = 'item.updated') AS updated,
			countIf(event_type = 'item.deleted') AS deleted
		FROM items_log
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []sharedDomain.DailyTrend
	for rows.Next() {
		var t sharedDomain.DailyTrend
		if err := rows.Scan(&t.Day, &t.Created, &t.Updated, &t.Deleted); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *ItemAuditRepo) InitSchema() error {
	// Particionada por mes y ordenada por los campos de consulta habituales.
	query := `
		CREATE TABLE IF NOT EXISTS items_log (
			id         UUID,
			entity     String,
			record_id  String,
			event_type String,
			payload    String,
			event_time DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (entity, event_type, event_time);
	`
	_, err := r.db.Exec(query)
	return err
}

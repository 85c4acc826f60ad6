package postgre

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davicafu/crudlab/internal/item/domain"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	"github.com/davicafu/crudlab/internal/shared/infra/platform/db/sqlstore"
)

// ItemRepoPostgres es el repositorio de items sobre PostgreSQL vía el
// driver pgx en modo database/sql.
type ItemRepoPostgres struct {
	*sqlstore.Store[*domain.Item]
}

var _ domain.ItemRepository = (*ItemRepoPostgres)(nil)

func NewItemRepoPostgres(db *sql.DB) *ItemRepoPostgres {
	return &ItemRepoPostgres{
		Store: sqlstore.New(db, sqlstore.Postgres, domain.Schema(), itemMapper()),
	}
}

func itemMapper() sqlstore.Mapper[*domain.Item] {
	return sqlstore.Mapper[*domain.Item]{
		Columns: []string{"id", "name", "value", "description", "created_at", "updated_at"},
		ScanRow: func(scan func(dest ...any) error) (*domain.Item, error) {
			var it domain.Item
			var idStr string
			if err := scan(&idStr, &it.Name, &it.Value, &it.Description, &it.CreatedAt, &it.UpdatedAt); err != nil {
				return nil, err
			}
			parsedID, err := uuid.Parse(idStr)
			if err != nil {
				return nil, fmt.Errorf("invalid UUID in DB: %w", err)
			}
			it.ID = parsedID
			return &it, nil
		},
		InsertArgs: func(it *domain.Item) []any {
			return []any{it.ID.String(), it.Name, it.Value, it.Description, it.CreatedAt, it.UpdatedAt}
		},
		UpdateCols: []string{"name", "value", "description", "updated_at"},
		UpdateArgs: func(it *domain.Item) []any {
			return []any{it.Name, it.Value, it.Description, it.UpdatedAt}
		},
	}
}

// ------------------ Inicialización de DB ------------------

// InitPostgres crea la tabla items si no existe
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS items (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            value BIGINT NOT NULL,
            description TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )
    `)
	if err != nil {
		return sharedDomain.Storage(err)
	}
	return nil
}

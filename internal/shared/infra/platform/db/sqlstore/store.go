package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	sharedUtils "github.com/davicafu/crudlab/internal/shared/infra/utils"
)

// ---------- Dialectos ----------

// Dialect encapsula las diferencias de SQL entre backends: estilo de
// placeholder y condición de búsqueda case-insensitive.
type Dialect struct {
	// Placeholder devuelve el marcador para el argumento n (1-based).
	Placeholder func(n int) string
	// Search devuelve la condición de subcadena case-insensitive para la
	// columna usando el placeholder dado.
	Search func(column, placeholder string) string
}

var SQLite = Dialect{
	Placeholder: func(n int) string { return "?" },
	Search: func(column, placeholder string) string {
		return fmt.Sprintf(`LOWER(%s) LIKE LOWER(%s) ESCAPE '\'`, column, placeholder)
	},
}

var Postgres = Dialect{
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Search: func(column, placeholder string) string {
		return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, placeholder)
	},
}

// likeEscaper neutraliza los comodines de LIKE: la búsqueda es por
// subcadena literal, igual que en el backend de Mongo.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ---------- Mapper por entidad ----------

// Mapper conecta un tipo de registro con sus columnas SQL. Cada entidad
// define el suyo; el Store hace el resto de forma genérica.
type Mapper[T sharedDomain.Record] struct {
	// Columns en orden de SELECT/INSERT (incluye id y timestamps).
	Columns []string
	// ScanRow construye un registro desde una fila.
	ScanRow func(scan func(dest ...any) error) (T, error)
	// InsertArgs devuelve los valores en el orden de Columns.
	InsertArgs func(rec T) []any
	// UpdateCols son las columnas mutables (incluye updated_at, nunca id
	// ni created_at).
	UpdateCols []string
	// UpdateArgs devuelve los valores de UpdateCols; el Store añade el id.
	UpdateArgs func(rec T) []any
}

// ---------- Store genérico ----------

// Store implementa el Repository genérico sobre database/sql para
// cualquier entidad con Schema y Mapper. Cada operación usa su propia
// sesión del pool y la libera en todos los caminos de salida.
type Store[T sharedDomain.Record] struct {
	db      *sql.DB
	dialect Dialect
	schema  sharedDomain.Schema
	mapper  Mapper[T]
}

var _ sharedDomain.Repository[sharedDomain.Record] = (*Store[sharedDomain.Record])(nil)

func New[T sharedDomain.Record](db *sql.DB, dialect Dialect, schema sharedDomain.Schema, mapper Mapper[T]) *Store[T] {
	return &Store[T]{db: db, dialect: dialect, schema: schema, mapper: mapper}
}

// ---------- Mutaciones ----------

func (st *Store[T]) Insert(ctx context.Context, rec T) error {
	placeholders := make([]string, len(st.mapper.Columns))
	for i := range st.mapper.Columns {
		placeholders[i] = st.dialect.Placeholder(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		st.schema.Table,
		strings.Join(st.mapper.Columns, ", "),
		strings.Join(placeholders, ", "),
	)

	if _, err := st.db.ExecContext(ctx, query, st.mapper.InsertArgs(rec)...); err != nil {
		return sharedDomain.Storage(err)
	}
	return nil
}

func (st *Store[T]) Update(ctx context.Context, rec T) error {
	sets := make([]string, len(st.mapper.UpdateCols))
	for i, col := range st.mapper.UpdateCols {
		sets[i] = fmt.Sprintf("%s=%s", col, st.dialect.Placeholder(i+1))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id=%s",
		st.schema.Table,
		strings.Join(sets, ", "),
		st.dialect.Placeholder(len(st.mapper.UpdateCols)+1),
	)
	args := append(st.mapper.UpdateArgs(rec), rec.RecordID().String())

	res, err := st.db.ExecContext(ctx, query, args...)
	if err != nil {
		return sharedDomain.Storage(err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return sharedDomain.ErrNotFound
	}
	return nil
}

func (st *Store[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id=%s",
		st.schema.Table, st.dialect.Placeholder(1))

	res, err := st.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return sharedDomain.Storage(err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return sharedDomain.ErrNotFound
	}
	return nil
}

// ---------- Lectura ----------

func (st *Store[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id=%s",
		strings.Join(st.mapper.Columns, ", "),
		st.schema.Table,
		st.dialect.Placeholder(1),
	)

	row := st.db.QueryRowContext(ctx, query, id.String())
	rec, err := st.mapper.ScanRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, sharedDomain.ErrNotFound
		}
		return zero, sharedDomain.Storage(err)
	}
	return rec, nil
}

// List aplica filtros, búsqueda y orden, sin paginación.
func (st *Store[T]) List(ctx context.Context, q sharedDomain.Query) ([]T, error) {
	where, args, err := st.whereClause(q)
	if err != nil {
		return nil, err
	}
	orderBy, err := st.orderBy(q)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(st.mapper.Columns, ", "), st.schema.Table, where, orderBy)

	return st.queryRecords(ctx, query, args)
}

// ListPage aplica los MISMOS filtros y orden que List y acota la página
// con LIMIT/OFFSET. (El comportamiento histórico de paginar el conjunto
// sin filtrar producía páginas inconsistentes con los metadatos.)
func (st *Store[T]) ListPage(ctx context.Context, q sharedDomain.Query) ([]T, error) {
	where, args, err := st.whereClause(q)
	if err != nil {
		return nil, err
	}
	orderBy, err := st.orderBy(q)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %s OFFSET %s",
		strings.Join(st.mapper.Columns, ", "), st.schema.Table, where, orderBy,
		st.dialect.Placeholder(len(args)+1), st.dialect.Placeholder(len(args)+2))
	args = append(args, q.Limit, q.Offset())

	return st.queryRecords(ctx, query, args)
}

// Count devuelve el total que cumple los filtros de la query.
func (st *Store[T]) Count(ctx context.Context, q sharedDomain.Query) (int64, error) {
	where, args, err := st.whereClause(q)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", st.schema.Table, where)

	var total int64
	if err := st.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, sharedDomain.Storage(err)
	}
	return total, nil
}

func (st *Store[T]) queryRecords(ctx context.Context, query string, args []any) ([]T, error) {
	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storage(err)
	}
	defer rows.Close()

	var recs []T
	for rows.Next() {
		rec, err := st.mapper.ScanRow(rows.Scan)
		if err != nil {
			return nil, sharedDomain.Storage(err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, sharedDomain.Storage(err)
	}
	return recs, nil
}

// ---------- Traducción Query -> SQL ----------

// whereClause traduce los filtros a condiciones SQL con bounds inclusivos.
func (st *Store[T]) whereClause(q sharedDomain.Query) (string, []any, error) {
	if err := q.Validate(st.schema); err != nil {
		return "", nil, err
	}

	var conds []string
	var args []any
	next := func() string { return st.dialect.Placeholder(len(args) + 1) }

	if q.MinDate != nil {
		conds = append(conds, fmt.Sprintf("created_at >= %s", next()))
		args = append(args, *q.MinDate)
	}
	if q.MaxDate != nil {
		conds = append(conds, fmt.Sprintf("created_at <= %s", next()))
		args = append(args, *q.MaxDate)
	}
	if q.MinValue != nil {
		conds = append(conds, fmt.Sprintf("%s >= %s", st.schema.NumericField, next()))
		args = append(args, *q.MinValue)
	}
	if q.MaxValue != nil {
		conds = append(conds, fmt.Sprintf("%s <= %s", st.schema.NumericField, next()))
		args = append(args, *q.MaxValue)
	}
	if q.Search != "" && q.SearchField != "" {
		conds = append(conds, st.dialect.Search(q.SearchField, next()))
		args = append(args, "%"+likeEscaper.Replace(q.Search)+"%")
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (st *Store[T]) orderBy(q sharedDomain.Query) (string, error) {
	field, err := st.schema.SortField(q.SortBy)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s", field, sharedUtils.Ternary(q.Desc(), "DESC", "ASC")), nil
}

package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	_ "modernc.org/sqlite"

	itemDomain "github.com/davicafu/crudlab/internal/item/domain"
	"github.com/davicafu/crudlab/internal/item/infra/outbound/db/sqlite"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err)
	// una sola conexión: cada conexión in-memory sería una DB distinta
	db.SetMaxOpenConns(1)

	assert.NoError(t, sqlite.InitSQLite(db))
	return db
}

func seedItems(t *testing.T, repo *sqlite.ItemRepoSQLite, n int) []*itemDomain.Item {
	t.Helper()
	base := time.Now().UTC().Add(-time.Duration(n) * time.Hour).Truncate(time.Second)

	names := []string{"Alpha", "Beta", "Gamma", "Delta", "Example"}
	items := make([]*itemDomain.Item, 0, n)
	for i := 0; i < n; i++ {
		it := itemDomain.NewItem(names[i%len(names)], int64(i*10), "seed item")
		it.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		it.UpdatedAt = it.CreatedAt
		assert.NoError(t, repo.Insert(context.Background(), it))
		items = append(items, it)
	}
	return items
}

func TestItemRepoSQLite_CreateGetUpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewItemRepoSQLite(db)

	item := itemDomain.NewItem("Integrado", 7, "round trip")
	assert.NoError(t, repo.Insert(context.Background(), item))

	got, err := repo.GetByID(context.Background(), item.ID)
	assert.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "Integrado", got.Name)
	assert.Equal(t, int64(7), got.Value)

	// actualizar
	item.Name = "Actualizado"
	item.Touch(time.Now().UTC())
	assert.NoError(t, repo.Update(context.Background(), item))
	got, err = repo.GetByID(context.Background(), item.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Actualizado", got.Name)

	// listar
	items, err := repo.List(context.Background(), sharedDomain.Query{Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	// eliminar
	assert.NoError(t, repo.DeleteByID(context.Background(), item.ID))
	_, err = repo.GetByID(context.Background(), item.ID)
	assert.ErrorIs(t, err, sharedDomain.ErrNotFound)
}

func TestItemRepoSQLite_UpdateAndDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewItemRepoSQLite(db)

	ghost := itemDomain.NewItem("Ghost", 0, "never stored")
	assert.ErrorIs(t, repo.Update(context.Background(), ghost), sharedDomain.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), uuid.New()), sharedDomain.ErrNotFound)
}

func TestItemRepoSQLite_PaginatedRespectsFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewItemRepoSQLite(db)
	seedItems(t, repo, 5) // values 0,10,20,30,40

	min := int64(10)
	max := int64(30)
	q := sharedDomain.Query{
		Page: 1, Limit: 2,
		SortBy: "value", Order: sharedDomain.OrderAsc,
		MinValue: &min, MaxValue: &max, // bounds inclusivos
	}

	total, err := repo.Count(context.Background(), q)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// la página sale del mismo conjunto filtrado que el count
	page1, err := repo.ListPage(context.Background(), q)
	assert.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.Equal(t, int64(10), page1[0].Value)
	assert.Equal(t, int64(20), page1[1].Value)

	q.Page = 2
	page2, err := repo.ListPage(context.Background(), q)
	assert.NoError(t, err)
	assert.Len(t, page2, 1)
	assert.Equal(t, int64(30), page2[0].Value)

	// página fuera de rango: vacía, sin error
	q.Page = 5
	empty, err := repo.ListPage(context.Background(), q)
	assert.NoError(t, err)
	assert.Len(t, empty, 0)
}

func TestItemRepoSQLite_SearchCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewItemRepoSQLite(db)
	seedItems(t, repo, 5) // incluye un "Example"

	q := sharedDomain.Query{
		Page: 1, Limit: 10,
		SearchField: "name", Search: "EXAMP",
	}
	items, err := repo.List(context.Background(), q)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Example", items[0].Name)
}

func TestItemRepoSQLite_SearchTreatsWildcardsAsLiterals(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewItemRepoSQLite(db)
	assert.NoError(t, repo.Insert(context.Background(), itemDomain.NewItem("100% cotton", 1, "fabric")))
	assert.NoError(t, repo.Insert(context.Background(), itemDomain.NewItem("100x cotton", 2, "fabric")))
	assert.NoError(t, repo.Insert(context.Background(), itemDomain.NewItem("a_b", 3, "underscore")))
	assert.NoError(t, repo.Insert(context.Background(), itemDomain.NewItem("axb", 4, "no underscore")))

	// "%" no es comodín: sólo el literal coincide
	q := sharedDomain.Query{Page: 1, Limit: 10, SearchField: "name", Search: "100%"}
	items, err := repo.List(context.Background(), q)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "100% cotton", items[0].Name)

	// "_" tampoco
	q.Search = "a_b"
	items, err = repo.List(context.Background(), q)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "a_b", items[0].Name)
}

func TestItemRepoSQLite_SortDescending(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewItemRepoSQLite(db)
	seedItems(t, repo, 3)

	q := sharedDomain.Query{Page: 1, Limit: 10, SortBy: "value", Order: sharedDomain.OrderDesc}
	items, err := repo.List(context.Background(), q)
	assert.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int64(20), items[0].Value)
	assert.Equal(t, int64(0), items[2].Value)
}

func TestItemRepoSQLite_RejectsUnknownSortField(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := sqlite.NewItemRepoSQLite(db)

	q := sharedDomain.Query{Page: 1, Limit: 10, SortBy: "password"}
	_, err := repo.List(context.Background(), q)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
}

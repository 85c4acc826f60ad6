package contracts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	itemDomain "github.com/davicafu/crudlab/internal/item/domain"
	itemHttp "github.com/davicafu/crudlab/internal/item/infra/inbound/http"
	"github.com/davicafu/crudlab/internal/shared/application"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	"github.com/davicafu/crudlab/internal/shared/infra/auth"
	sharedHttp "github.com/davicafu/crudlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/crudlab/tests/mocks"
)

// itemBody define el formato que esperamos para un item en las
// respuestas JSON.
type itemBody struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Value       int64  `json:"value"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type singleResponse struct {
	Message string   `json:"message"`
	Data    itemBody `json:"data"`
}

type pageResponse struct {
	Message      string     `json:"message"`
	Data         []itemBody `json:"data"`
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
	TotalRecords int64      `json:"total_records"`
	PageSize     int        `json:"page_size"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(repo itemDomain.ItemRepository, guard sharedDomain.CapabilityChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := application.NewCRUDService("item", repo, nil, nil, zap.NewNop())

	router := gin.New()
	router.Use(sharedHttp.ErrorHandler(zap.NewNop()))
	router.Use(auth.TokenFromHeader())

	handler := itemHttp.NewItemHandler(service, guard, 10)
	itemHttp.RegisterItemRoutes(router, handler)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestItemHTTP_Lifecycle(t *testing.T) {
	router := setupRouter(mocks.NewInMemoryItemRepo(), auth.AllowAll{})

	// crear
	rec := doJSON(router, http.MethodPost, "/items/", gin.H{
		"name": "Example", "value": 5, "description": "first item",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created singleResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Item Created Successfully", created.Message)
	assert.NotEmpty(t, created.Data.ID)
	assert.Equal(t, int64(5), created.Data.Value)
	// recién creado: ambos timestamps coinciden
	assert.Equal(t, created.Data.CreatedAt, created.Data.UpdatedAt)

	id := created.Data.ID

	// obtener
	rec = doJSON(router, http.MethodGet, "/items/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got singleResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Item Found", got.Message)
	assert.Equal(t, "Example", got.Data.Name)

	// página con metadatos
	rec = doJSON(router, http.MethodGet, "/items/paginated?page=1&limit=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page pageResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "All Item records", page.Message)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, int64(1), page.TotalRecords)
	assert.Equal(t, 1, page.PageSize)

	// actualización parcial
	rec = doJSON(router, http.MethodPut, "/items/"+id, gin.H{"name": "Renamed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated singleResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Item Updated Successfully", updated.Message)
	assert.Equal(t, "Renamed", updated.Data.Name)
	assert.Equal(t, int64(5), updated.Data.Value) // campo no enviado se conserva
	assert.Equal(t, created.Data.CreatedAt, updated.Data.CreatedAt)
	assert.NotEqual(t, created.Data.UpdatedAt, updated.Data.UpdatedAt)

	// eliminar
	rec = doJSON(router, http.MethodDelete, "/items/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Item Deleted Successfully")

	// tras borrar: 404
	rec = doJSON(router, http.MethodGet, "/items/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var notFound errorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notFound))
	assert.Contains(t, notFound.Error.Message, "Resource not found")
}

func TestItemHTTP_EmptyListMessage(t *testing.T) {
	router := setupRouter(mocks.NewInMemoryItemRepo(), auth.AllowAll{})

	rec := doJSON(router, http.MethodGet, "/items/all", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No Item records found")
	// lista vacía serializa como [] y no como null
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestItemHTTP_BadRequests(t *testing.T) {
	router := setupRouter(mocks.NewInMemoryItemRepo(), auth.AllowAll{})

	// id que no es uuid
	rec := doJSON(router, http.MethodGet, "/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// body sin campos obligatorios
	rec = doJSON(router, http.MethodPost, "/items/", gin.H{"name": "incomplete"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// sort_by no registrado
	rec = doJSON(router, http.MethodGet, "/items/paginated?sort_by=password", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// order inválido
	rec = doJSON(router, http.MethodGet, "/items/all?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// page no positivo
	rec = doJSON(router, http.MethodGet, "/items/paginated?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// search sin search_field
	rec = doJSON(router, http.MethodGet, "/items/all?search=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemHTTP_StorageFailureIsNot500(t *testing.T) {
	router := setupRouter(mocks.FailingItemRepo{}, auth.AllowAll{})

	rec := doJSON(router, http.MethodPost, "/items/", gin.H{
		"name": "x", "value": 1, "description": "y",
	})
	// el fallo de persistencia tiene su propio código, distinto de 500
	assert.Equal(t, sharedHttp.StatusStorageError, rec.Code)

	var resp errorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error.Message, "Database connection error occurred")
	assert.Contains(t, resp.Error.Message, "connection refused")
}

func TestItemHTTP_DeniedCapabilityPassesThrough(t *testing.T) {
	router := setupRouter(mocks.NewInMemoryItemRepo(), mocks.DenyGuard{})

	rec := doJSON(router, http.MethodGet, "/items/all", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient permissions")

	rec = doJSON(router, http.MethodDelete, "/items/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestItemHTTP_TokenChecker(t *testing.T) {
	router := setupRouter(mocks.NewInMemoryItemRepo(), auth.NewTokenChecker("s3cret"))

	// sin credenciales
	req := httptest.NewRequest(http.MethodGet, "/items/all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// token incorrecto
	req = httptest.NewRequest(http.MethodGet, "/items/all", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// token correcto
	req = httptest.NewRequest(http.MethodGet, "/items/all", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

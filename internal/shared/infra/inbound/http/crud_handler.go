package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/crudlab/internal/shared/application"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	"github.com/davicafu/crudlab/pkg/api"
)

// Hooks son los puntos por entidad del handler genérico: decodificar el
// body de creación y aplicar una actualización parcial sobre un registro
// existente. Ambos deben envolver fallos de binding en ErrInvalidInput.
type Hooks[T sharedDomain.Record] struct {
	DecodeCreate func(c *gin.Context) (T, error)
	ApplyUpdate  func(c *gin.Context, rec T) error
}

// CRUDHandler genera los seis endpoints de una entidad sobre su servicio.
// Cada endpoint pasa por el chequeo de permisos (lectura o escritura)
// antes de tocar el servicio; los fallos se adjuntan al contexto y los
// resuelve el ErrorHandler del borde.
type CRUDHandler[T sharedDomain.Record] struct {
	schema       sharedDomain.Schema
	svc          *application.CRUDService[T]
	guard        sharedDomain.CapabilityChecker
	defaultLimit int
	hooks        Hooks[T]
}

// NewCRUDHandler crea el handler genérico de una entidad.
func NewCRUDHandler[T sharedDomain.Record](schema sharedDomain.Schema, svc *application.CRUDService[T], guard sharedDomain.CapabilityChecker, defaultLimit int, hooks Hooks[T]) *CRUDHandler[T] {
	return &CRUDHandler[T]{
		schema:       schema,
		svc:          svc,
		guard:        guard,
		defaultLimit: defaultLimit,
		hooks:        hooks,
	}
}

// Register monta las seis rutas bajo el grupo de la entidad.
func (h *CRUDHandler[T]) Register(rg *gin.RouterGroup) {
	rg.GET("/all", h.ListAll)
	rg.GET("/paginated", h.ListPaginated)
	rg.GET("/:id", h.GetByID)
	rg.POST("/", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// ---------------- Handlers ----------------

// ListAll endpoint GET /all
func (h *CRUDHandler[T]) ListAll(c *gin.Context) {
	if !h.authorize(c, sharedDomain.CapabilityRead) {
		return
	}

	q, err := h.parseQuery(c)
	if err != nil {
		c.Error(err)
		return
	}

	recs, err := h.svc.ListAll(c.Request.Context(), q)
	if err != nil {
		c.Error(err)
		return
	}

	api.SendList(c, http.StatusOK, h.listMessage(len(recs)), nonNil(recs))
}

// ListPaginated endpoint GET /paginated
func (h *CRUDHandler[T]) ListPaginated(c *gin.Context) {
	if !h.authorize(c, sharedDomain.CapabilityRead) {
		return
	}

	q, err := h.parseQuery(c)
	if err != nil {
		c.Error(err)
		return
	}

	recs, meta, err := h.svc.ListPage(c.Request.Context(), q)
	if err != nil {
		c.Error(err)
		return
	}

	api.SendPaginated(c, http.StatusOK, h.listMessage(len(recs)), nonNil(recs), meta)
}

// GetByID endpoint GET /:id
func (h *CRUDHandler[T]) GetByID(c *gin.Context) {
	if !h.authorize(c, sharedDomain.CapabilityRead) {
		return
	}

	id, err := h.parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	api.SendSuccess(c, http.StatusOK, h.schema.Entity+" Found", rec)
}

// Create endpoint POST /
func (h *CRUDHandler[T]) Create(c *gin.Context) {
	if !h.authorize(c, sharedDomain.CapabilityWrite) {
		return
	}

	rec, err := h.hooks.DecodeCreate(c)
	if err != nil {
		c.Error(err)
		return
	}

	stored, err := h.svc.Create(c.Request.Context(), rec)
	if err != nil {
		c.Error(err)
		return
	}

	api.SendSuccess(c, http.StatusCreated, h.schema.Entity+" Created Successfully", stored)
}

// Update endpoint PUT /:id (actualización parcial)
func (h *CRUDHandler[T]) Update(c *gin.Context) {
	if !h.authorize(c, sharedDomain.CapabilityWrite) {
		return
	}

	id, err := h.parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	// existencia primero (404 limpio), leyendo sin repoblar la caché
	rec, err := h.svc.GetForUpdate(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.hooks.ApplyUpdate(c, rec); err != nil {
		c.Error(err)
		return
	}

	if err := h.svc.Update(c.Request.Context(), rec); err != nil {
		c.Error(err)
		return
	}

	api.SendSuccess(c, http.StatusOK, h.schema.Entity+" Updated Successfully", rec)
}

// Delete endpoint DELETE /:id
func (h *CRUDHandler[T]) Delete(c *gin.Context) {
	if !h.authorize(c, sharedDomain.CapabilityWrite) {
		return
	}

	id, err := h.parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	// existencia primero (404 limpio), leyendo sin repoblar la caché
	if _, err := h.svc.GetForUpdate(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	api.SendSuccess(c, http.StatusOK, h.schema.Entity+" Deleted Successfully", nil)
}

// ---------------- Helpers ----------------

func (h *CRUDHandler[T]) authorize(c *gin.Context, cap sharedDomain.Capability) bool {
	if err := h.guard.Check(c.Request.Context(), cap); err != nil {
		c.Error(err)
		return false
	}
	return true
}

func (h *CRUDHandler[T]) parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s id", sharedDomain.ErrInvalidInput, h.schema.Entity)
	}
	return id, nil
}

func (h *CRUDHandler[T]) listMessage(n int) string {
	if n == 0 {
		return "No " + h.schema.Entity + " records found"
	}
	return "All " + h.schema.Entity + " records"
}

// parseQuery lee los query params de listado, aplica defaults y valida
// los campos dinámicos contra el registro de la entidad.
func (h *CRUDHandler[T]) parseQuery(c *gin.Context) (sharedDomain.Query, error) {
	var q sharedDomain.Query

	q.SortBy = c.Query("sort_by")
	q.Order = c.Query("order")
	q.SearchField = c.Query("search_field")
	q.Search = c.Query("search")

	if pageStr := c.Query("page"); pageStr != "" {
		v, err := strconv.Atoi(pageStr)
		if err != nil || v < 1 {
			return q, fmt.Errorf("%w: page must be a positive integer", sharedDomain.ErrInvalidInput)
		}
		q.Page = v
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			return q, fmt.Errorf("%w: limit must be a positive integer", sharedDomain.ErrInvalidInput)
		}
		q.Limit = v
	}

	if minDate := c.Query("min_date"); minDate != "" {
		t, err := parseDate(minDate)
		if err != nil {
			return q, fmt.Errorf("%w: invalid min_date, use YYYY-MM-DD or RFC3339", sharedDomain.ErrInvalidInput)
		}
		q.MinDate = &t
	}
	if maxDate := c.Query("max_date"); maxDate != "" {
		t, err := parseDate(maxDate)
		if err != nil {
			return q, fmt.Errorf("%w: invalid max_date, use YYYY-MM-DD or RFC3339", sharedDomain.ErrInvalidInput)
		}
		q.MaxDate = &t
	}

	if minValue := c.Query("min_value"); minValue != "" {
		v, err := strconv.ParseInt(minValue, 10, 64)
		if err != nil {
			return q, fmt.Errorf("%w: min_value must be an integer", sharedDomain.ErrInvalidInput)
		}
		q.MinValue = &v
	}
	if maxValue := c.Query("max_value"); maxValue != "" {
		v, err := strconv.ParseInt(maxValue, 10, 64)
		if err != nil {
			return q, fmt.Errorf("%w: max_value must be an integer", sharedDomain.ErrInvalidInput)
		}
		q.MaxValue = &v
	}

	q.Normalize(h.defaultLimit)
	if err := q.Validate(h.schema); err != nil {
		return q, err
	}
	return q, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// nonNil evita serializar null cuando el listado está vacío.
func nonNil[T any](recs []T) []T {
	if recs == nil {
		return []T{}
	}
	return recs
}

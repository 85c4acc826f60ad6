package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/crudlab/internal/item/domain"
	"github.com/davicafu/crudlab/internal/shared/application"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	sharedHttp "github.com/davicafu/crudlab/internal/shared/infra/inbound/http"
)

// createItemRequest es el body de POST /items/.
type createItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Value       *int64 `json:"value" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// updateItemRequest es el body de PUT /items/:id; todos los campos son
// opcionales y sólo se aplican los presentes.
type updateItemRequest struct {
	Name        *string `json:"name"`
	Value       *int64  `json:"value"`
	Description *string `json:"description"`
}

// NewItemHandler construye el handler CRUD de items con sus hooks de
// binding.
func NewItemHandler(svc *application.CRUDService[*domain.Item], guard sharedDomain.CapabilityChecker, defaultLimit int) *sharedHttp.CRUDHandler[*domain.Item] {
	hooks := sharedHttp.Hooks[*domain.Item]{
		DecodeCreate: func(c *gin.Context) (*domain.Item, error) {
			var req createItemRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, fmt.Errorf("%w: %v", sharedDomain.ErrInvalidInput, err)
			}
			return domain.NewItem(req.Name, *req.Value, req.Description), nil
		},
		ApplyUpdate: func(c *gin.Context, it *domain.Item) error {
			var req updateItemRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return fmt.Errorf("%w: %v", sharedDomain.ErrInvalidInput, err)
			}
			if req.Name != nil {
				it.Name = *req.Name
			}
			if req.Value != nil {
				it.Value = *req.Value
			}
			if req.Description != nil {
				it.Description = *req.Description
			}
			return nil
		},
	}

	return sharedHttp.NewCRUDHandler(domain.Schema(), svc, guard, defaultLimit, hooks)
}

// RegisterItemRoutes monta las rutas de items en el router.
func RegisterItemRoutes(r *gin.Engine, h *sharedHttp.CRUDHandler[*domain.Item]) {
	h.Register(r.Group("/items"))
}

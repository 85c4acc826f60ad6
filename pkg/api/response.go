package api

import (
	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
)

// ErrorBody define la estructura estándar de las respuestas de error.
type ErrorBody struct {
	Message string `json:"message"`
}

// SendSuccess envía una respuesta con mensaje y payload.
func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, gin.H{
		"message": message,
		"data":    data,
	})
}

// SendList envía una respuesta de listado.
func SendList(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, gin.H{
		"message": message,
		"data":    data,
	})
}

// SendPaginated envía un listado con los metadatos de paginación al
// mismo nivel que data.
func SendPaginated(c *gin.Context, statusCode int, message string, data interface{}, meta sharedDomain.PageMeta) {
	c.JSON(statusCode, gin.H{
		"message":       message,
		"data":          data,
		"page":          meta.Page,
		"total_pages":   meta.TotalPages,
		"total_records": meta.TotalRecords,
		"page_size":     meta.PageSize,
	})
}

// SendError envía una respuesta de error con formato estandarizado.
func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error": ErrorBody{Message: message},
	})
}

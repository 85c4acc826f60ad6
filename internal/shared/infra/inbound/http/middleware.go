package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	"github.com/davicafu/crudlab/pkg/api"
)

// StatusStorageError es el código externo para fallos de persistencia.
// Es deliberadamente distinto de 4xx/5xx estándar para que los clientes
// distingan un fallo transitorio de infraestructura de un 500 genérico.
const StatusStorageError = 420

// ErrorHandler es el único punto que traduce fallos internos a códigos
// externos. Los handlers adjuntan errores con c.Error y no formatean
// respuestas de error por su cuenta.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var statusErr *sharedDomain.StatusError
		var storageErr *sharedDomain.StorageError

		switch {
		case errors.As(err, &statusErr):
			// señal ya clasificada: pasa sin re-envolver
			api.SendError(c, statusErr.Code, statusErr.Message)

		case errors.Is(err, sharedDomain.ErrNotFound):
			api.SendError(c, http.StatusNotFound, "Resource not found: "+err.Error())

		case errors.As(err, &storageErr):
			log.Error("Storage failure", zap.Error(storageErr.Cause))
			api.SendError(c, StatusStorageError, "Database connection error occurred: "+storageErr.Cause.Error())

		case errors.Is(err, sharedDomain.ErrInvalidInput):
			api.SendError(c, http.StatusBadRequest, "Bad request error occurred: "+err.Error())

		default:
			log.Error("Unhandled error", zap.Error(err))
			api.SendError(c, http.StatusInternalServerError, "Internal server error occurred: "+err.Error())
		}
	}
}

// CORS habilita el origen configurado (el dashboard local, normalmente).
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

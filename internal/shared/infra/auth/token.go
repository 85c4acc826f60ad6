package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
)

type contextKey string

// tokenKey guarda el bearer token de la petición en el contexto.
const tokenKey contextKey = "auth.token"

// TokenFromHeader copia el Authorization header al contexto de la
// petición para que los checkers trabajen sobre context.Context y no
// sobre gin.
func TokenFromHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		ctx := context.WithValue(c.Request.Context(), tokenKey, raw)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AllowAll concede cualquier capability. Para despliegues locales.
type AllowAll struct{}

var _ sharedDomain.CapabilityChecker = AllowAll{}

func (AllowAll) Check(ctx context.Context, cap sharedDomain.Capability) error {
	return nil
}

// TokenChecker exige un bearer token estático para leer o escribir.
// Devuelve señales ya clasificadas: el traductor del borde las deja
// pasar tal cual.
type TokenChecker struct {
	token string
}

var _ sharedDomain.CapabilityChecker = (*TokenChecker)(nil)

func NewTokenChecker(token string) *TokenChecker {
	return &TokenChecker{token: token}
}

func (t *TokenChecker) Check(ctx context.Context, cap sharedDomain.Capability) error {
	got, _ := ctx.Value(tokenKey).(string)
	if got == "" {
		return &sharedDomain.StatusError{Code: http.StatusUnauthorized, Message: "missing credentials"}
	}
	if got != t.token {
		return &sharedDomain.StatusError{Code: http.StatusForbidden, Message: "insufficient permissions for " + string(cap)}
	}
	return nil
}

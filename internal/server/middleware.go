package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
)

const cronContextKey = "cron_request"

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authMiddleware resolves the tenant from a JWT bearer token. The email
// claim scopes every downstream query.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenant, err := s.parseTenantToken(token)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := tenantctx.WithTenant(c.Request.Context(), tenant)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) parseTenantToken(token string) (tenantctx.Tenant, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.AuthJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return tenantctx.Tenant{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return tenantctx.Tenant{}, ErrUnauthorized
	}
	email, _ := claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return tenantctx.Tenant{}, ErrUnauthorized
	}
	superUser, _ := claims["superuser"].(bool)

	return tenantctx.Tenant{Email: email, SuperUser: superUser}, nil
}

// cronOrAuthMiddleware lets the cron job in with the shared secret and
// everyone else with a tenant token.
func (s *Server) cronOrAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if s.cfg.CronSecret != "" &&
			subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.CronSecret)) == 1 {
			c.Set(cronContextKey, true)
			c.Next()
			return
		}

		tenant, err := s.parseTenantToken(token)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		ctx := tenantctx.WithTenant(c.Request.Context(), tenant)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func isCronRequest(c *gin.Context) bool {
	return c.GetBool(cronContextKey)
}

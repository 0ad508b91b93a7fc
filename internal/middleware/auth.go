package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ManagerKeyKey is the context key for the authenticated manager's key.
const ManagerKeyKey = "manager_key"

var errMissingToken = errors.New("missing bearer token")

// ManagerAuth requires an HS256 bearer token signed with secret. The token
// subject is the caller's opaque manager key. A non-empty issuer must match
// the iss claim. An empty secret rejects every request.
func ManagerAuth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(c *gin.Context) {
		if secret == "" {
			rejectUnauthenticated(c, "Manager authentication is not configured", nil)
			return
		}

		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			rejectUnauthenticated(c, "Missing Authorization header", err)
			return
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			rejectUnauthenticated(c, msg, err)
			return
		}

		key := strings.TrimSpace(claims.Subject)
		if key == "" {
			rejectUnauthenticated(c, "Token has no subject", nil)
			return
		}

		c.Set(ManagerKeyKey, key)
		c.Next()
	}
}

// GetManagerKey returns the authenticated manager key, or "" when the route
// is not behind ManagerAuth.
func GetManagerKey(c *gin.Context) string {
	if v, exists := c.Get(ManagerKeyKey); exists {
		if key, ok := v.(string); ok {
			return key
		}
	}
	return ""
}

func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errMissingToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}

func rejectUnauthenticated(c *gin.Context, message string, err error) {
	if log := GetLogger(c); log != nil {
		fields := map[string]interface{}{"path": c.Request.URL.Path, "reason": message}
		if err != nil {
			fields["error"] = err.Error()
		}
		log.Warn("Rejected unauthenticated request", fields)
	}
	abortJSON(c, http.StatusUnauthorized, "UNAUTHENTICATED", message)
}

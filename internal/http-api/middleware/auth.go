package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/policy"
	"reviewhub/internal/http-api/service"
)

const actorKey = "actor"

// ResolveActor parses the Authorization header when present and stores the
// actor in the request context. It never rejects: safe methods are open to
// anonymous callers, so the decision whether an actor is required belongs to
// RequireAuth and the per-resource policy checks.
func ResolveActor(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		SetActor(c, &policy.Actor{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		c.Next()
	}
}

// SetActor stores the resolved actor on the request context.
func SetActor(c *gin.Context, actor *policy.Actor) {
	c.Set(actorKey, actor)
}

// ActorFrom returns the resolved actor, or nil for anonymous callers.
func ActorFrom(c *gin.Context) *policy.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	actor, ok := value.(*policy.Actor)
	if !ok {
		return nil
	}
	return actor
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c).Anonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but admins. Anonymous callers get 401,
// authenticated non-admins get 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.Anonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminOnlyWrites lets safe methods through for everyone and gates the rest
// on the admin role. Used on the catalog resources.
func AdminOnlyWrites() gin.HandlerFunc {
	admin := RequireAdmin()
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			admin(c)
		}
	}
}

// MethodNotAllowed is mounted on deliberately disabled verbs, like PUT on
// reviews and comments or GET on a single genre.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS returns middleware that lets the studio front end, served from another
// origin, call the API. "*" in allowedOrigins reflects any origin.
//
// Preflight OPTIONS requests are answered with 204 before reaching routes.
// Content-Disposition is exposed so the browser can read export filenames.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	anyOrigin := false
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		originSet[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		_, ok := originSet[origin]
		if origin != "" && (ok || anyOrigin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "X-API-Key, Authorization, Content-Type")
			c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Export-Id, X-Unused-Photos")
			c.Header("Access-Control-Max-Age", "86400")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Package middleware contains Gin middleware functions.
// Middleware in Gin is a handler that runs before (or after) your route handler.
// It calls c.Next() to proceed or c.Abort() to stop the chain.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientKey is the gin context key holding the caller identity used for
// rate limiting: the API key when one was presented, otherwise empty.
const ClientKey = "api_key"

// keySet builds a set for O(1) lookups. struct{} takes zero bytes.
func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// requestKey reads the key from X-API-Key, a bearer token, or the api_key
// query param (needed for <a href="...?api_key=xxx"> export downloads).
func requestKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("api_key")
}

// APIKeyAuth returns middleware that validates API keys. With no keys
// configured the studio runs open, which is how it is used on a single
// desktop behind localhost.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	keys := keySet(validKeys)

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		key := requestKey(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing API key",
			})
			return
		}
		if _, ok := keys[key]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid API key",
			})
			return
		}

		c.Set(ClientKey, key)
		c.Next()
	}
}

// AdminKeyAuth guards the admin endpoints. Unlike APIKeyAuth it never runs
// open: no admin keys means the admin API is disabled.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	keys := keySet(adminKeys)

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin API disabled",
			})
			return
		}

		key := requestKey(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing admin API key",
			})
			return
		}
		if _, ok := keys[key]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid admin API key",
			})
			return
		}

		c.Set(ClientKey, key)
		c.Next()
	}
}

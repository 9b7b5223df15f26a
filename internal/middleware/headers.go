package middleware

import "github.com/gin-gonic/gin"

// CacheHint is the CDN cache policy attached to every response.
const CacheHint = "s-maxage=300, stale-while-revalidate=600"

// ResponseHeaders sets the headers every response carries regardless of
// outcome: the permissive CORS pair the browser client relies on and the
// cache hint. Preflight negotiation itself is handled by the cors
// middleware mounted after this one.
func ResponseHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET")
		c.Header("Cache-Control", CacheHint)

		c.Next()
	}
}

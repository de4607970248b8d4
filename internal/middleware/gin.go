package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin adapts a net/http middleware to a gin handler. The guards stay
// framework-independent; this bridge is the only gin-aware piece.
func Gin(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler so the wrapped middleware can hand control back
		// to the gin chain with the (possibly re-contexted) request.
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// If the middleware already wrote a rejection, stop the gin chain.
		if c.Writer.Written() {
			c.Abort()
		}
	}
}

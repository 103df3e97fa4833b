// cors.go configures Cross-Origin Resource Sharing (CORS).
//
// The bundled page is same-origin and needs none of this. CORS only matters
// when a separately hosted frontend calls the API.
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns configured CORS middleware.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "Content-Disposition", "Content-Length", "X-Analysis-ID", "X-Report-Pages"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour, // Cache preflight responses
	})
}

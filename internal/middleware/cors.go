// internal/middleware/cors.go
package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func CORS() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Range"}
	config.ExposeHeaders = []string{"Content-Range", "Accept-Ranges", "Content-Length", "Content-Disposition"}
	return cors.New(config)
}

package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"couple-plans-backend-go/internal/config"
)

const defaultClientURL = "http://localhost:5173"

// CORSMiddleware configures Cross-Origin Resource Sharing for the web client.
// CLIENT_URL may list several comma-separated origins.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	var origins []string
	if appConfig != nil {
		for _, o := range strings.Split(appConfig.ClientURL, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	if len(origins) == 0 {
		origins = []string{defaultClientURL}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Last-Event-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

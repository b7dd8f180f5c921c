package api

import (
	"arcade_finder/internal/config"     // Application configuration
	"arcade_finder/internal/middleware" // JWT auth gate
	"context"                           // Request-scoped timeouts
	"net/http"                          // HTTP status codes
	"os"                                // Static file lookup
	"path/filepath"                     // Static file paths
	"strings"                           // Path prefix checks
	"time"                              // Timeout duration

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// dbTimeout bounds every database statement issued by a handler
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the inbound request
func reqCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), dbTimeout)
}

// SetupRouter wires the full route table onto a gin engine
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default() // Gin router instance

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Auth routes
	auth := r.Group("/api/auth")
	auth.POST("/register", RegisterHandler(db, cfg.JWTSecret)) // Registration endpoint
	auth.POST("/login", LoginHandler(db, cfg.JWTSecret))       // Login endpoint

	// Arcade reads are public
	r.GET("/api/arcades", ListArcadesHandler(db, rdb))    // Listing with average ratings
	r.GET("/api/arcades/:id", GetArcadeHandler(db, rdb))  // Single arcade endpoint

	// Everything that writes, and the profile, sits behind the JWT gate
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	protected.POST("/arcades", CreateArcadeHandler(db, rdb))             // Create arcade endpoint
	protected.PUT("/arcades/:id", UpdateArcadeHandler(db, rdb))          // Update arcade endpoint
	protected.DELETE("/arcades/:id", DeleteArcadeHandler(db, rdb))       // Delete arcade endpoint
	protected.POST("/arcades/:id/comments", CreateCommentHandler(db, rdb)) // Post comment endpoint
	protected.PUT("/comments/:id", UpdateCommentHandler(db, rdb))        // Edit comment endpoint
	protected.DELETE("/comments/:id", DeleteCommentHandler(db, rdb))     // Delete comment endpoint
	protected.GET("/profile", ProfileHandler(db))                        // Review history endpoint

	// Any unmatched path falls back to the browser client bundle
	r.NoRoute(SPAFallback(cfg.StaticDir))
	return r
}

// SPAFallback serves the static client, handing index.html to client-side routes
func SPAFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Unknown API paths stay JSON errors, not HTML
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Not found"})
			return
		}
		// Serve the file if it exists in the bundle
		p := filepath.Join(staticDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			c.File(p)
			return
		}
		// Everything else gets the single page
		c.File(filepath.Join(staticDir, "index.html"))
	}
}

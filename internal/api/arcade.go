package api

import (
	"arcade_finder/internal/domain" // Importing domain models
	"arcade_finder/internal/utils"  // Utility functions
	"context"                       // Context for Redis operations
	"net/http"                      // HTTP status codes
	"strconv"                       // String conversion
	"time"                          // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// Cache keys for arcade reads
const arcadeListKey = "arcades:list" // Cached listing with average ratings

// arcadeKey builds the cache key for a single arcade
func arcadeKey(id string) string {
	return "arcade:" + id
}

// invalidateArcadeCache drops the listing cache and the cache for one arcade
func invalidateArcadeCache(rdb *redis.Client, id string) {
	ctx := context.Background()                                  // Context for Redis operations
	_ = utils.DeleteCache(ctx, rdb, arcadeListKey, arcadeKey(id)) // Cache failures are non-fatal
}

// ArcadeRequest carries the five editable arcade fields
type ArcadeRequest struct {
	Name             string `json:"name" binding:"required"` // Name must be provided
	Address          string `json:"address"`                 // Street address
	DaysOpen         string `json:"days_open"`               // e.g. "Mon-Sat"
	HoursOfOperation string `json:"hours_of_operation"`      // e.g. "12pm-2am"
	ServesAlcohol    bool   `json:"serves_alcohol"`          // Whether the arcade has a bar
}

// ArcadeWithRating is a listing row joined with the derived average rating
type ArcadeWithRating struct {
	ID               uint    `json:"id"`                 // Arcade ID
	Name             string  `json:"name"`               // Arcade name
	Address          string  `json:"address"`            // Street address
	DaysOpen         string  `json:"days_open"`          // Days open
	HoursOfOperation string  `json:"hours_of_operation"` // Opening hours
	ServesAlcohol    bool    `json:"serves_alcohol"`     // Whether the arcade has a bar
	AverageRating    float64 `json:"average_rating"`     // AVG of comment ratings, 0 with no comments
}

// CreateArcadeHandler persists a new arcade
func CreateArcadeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ArcadeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Name is required"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		// Persist all five fields as given
		arcade := domain.Arcade{
			Name:             req.Name,             // Arcade name
			Address:          req.Address,          // Street address
			DaysOpen:         req.DaysOpen,         // Days open
			HoursOfOperation: req.HoursOfOperation, // Opening hours
			ServesAlcohol:    req.ServesAlcohol,    // Whether the arcade has a bar
		}
		if err := db.WithContext(ctx).Create(&arcade).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"name":  req.Name,    // Arcade name
				"error": err.Error(), // Error message
			}).Error("Failed to create arcade") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to create arcade"})
			return
		}
		// The listing cache no longer reflects the table
		invalidateArcadeCache(rdb, strconv.Itoa(int(arcade.ID)))
		c.JSON(http.StatusOK, gin.H{"arcade": arcade}) // Return the created arcade
	}
}

// ListArcadesHandler returns every arcade with its average comment rating
func ListArcadesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		rctx := context.Background() // Context for Redis operations
		var cached []ArcadeWithRating
		// If cached data found, return it
		found, err := utils.GetCache(rctx, rdb, arcadeListKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"arcades": cached, "cached": true})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var arcades []ArcadeWithRating // Listing rows
		// LEFT JOIN so arcades without comments still appear, with a 0 average
		if err := db.WithContext(ctx).Table("arcades").
			Select("arcades.id, arcades.name, arcades.address, arcades.days_open, arcades.hours_of_operation, arcades.serves_alcohol, ROUND(COALESCE(AVG(comments.rating), 0), 1) AS average_rating").
			Joins("LEFT JOIN comments ON comments.arcade_id = arcades.id").
			Group("arcades.id").
			Scan(&arcades).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch arcades"})
			return
		}
		if arcades == nil {
			arcades = []ArcadeWithRating{} // An empty listing serializes as [], not null
		}
		_ = utils.SetCache(rctx, rdb, arcadeListKey, arcades, 60*time.Second) // Cache the listing for 60 seconds
		c.JSON(http.StatusOK, gin.H{"arcades": arcades, "cached": false})     // Return the listing
	}
}

// GetArcadeHandler returns a single arcade by id
func GetArcadeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")          // Arcade id from the path
		rctx := context.Background() // Context for Redis operations
		var cached domain.Arcade
		// If cached data found, return it
		found, err := utils.GetCache(rctx, rdb, arcadeKey(id), &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"arcade": cached, "cached": true})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var arcade domain.Arcade // Fetch arcade from database
		if err := db.WithContext(ctx).First(&arcade, "id = ?", id).Error; err != nil {
			// If arcade not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Arcade not found"})
			return
		}
		_ = utils.SetCache(rctx, rdb, arcadeKey(id), arcade, 60*time.Second) // Cache the arcade for 60 seconds
		c.JSON(http.StatusOK, gin.H{"arcade": arcade, "cached": false})      // Return the arcade
	}
}

// UpdateArcadeHandler overwrites all five editable fields of an arcade
func UpdateArcadeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")   // Arcade id from the path
		var req ArcadeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Name is required"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var arcade domain.Arcade // Fetch arcade from database
		if err := db.WithContext(ctx).First(&arcade, "id = ?", id).Error; err != nil {
			// If arcade not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Arcade not found"})
			return
		}
		// Overwrite the editable fields
		arcade.Name = req.Name                         // Arcade name
		arcade.Address = req.Address                   // Street address
		arcade.DaysOpen = req.DaysOpen                 // Days open
		arcade.HoursOfOperation = req.HoursOfOperation // Opening hours
		arcade.ServesAlcohol = req.ServesAlcohol       // Whether the arcade has a bar
		if err := db.WithContext(ctx).Save(&arcade).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"arcade_id": id,          // Arcade ID
				"error":     err.Error(), // Error message
			}).Error("Failed to update arcade") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to update arcade"})
			return
		}
		invalidateArcadeCache(rdb, id)                 // Drop stale cache entries
		c.JSON(http.StatusOK, gin.H{"arcade": arcade}) // Return the updated arcade
	}
}

// DeleteArcadeHandler removes an arcade and its comments
func DeleteArcadeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")      // Arcade id from the path
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var arcade domain.Arcade // Fetch arcade from database
		if err := db.WithContext(ctx).First(&arcade, "id = ?", id).Error; err != nil {
			// If arcade not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Arcade not found"})
			return
		}
		// Comments must not outlive their arcade; remove both atomically
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Delete the arcade's comments
			if err := tx.Where("arcade_id = ?", arcade.ID).Delete(&domain.Comment{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Delete the arcade itself
			if err := tx.Delete(&arcade).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"arcade_id": id,          // Arcade ID
				"error":     err.Error(), // Error message
			}).Error("Failed to delete arcade") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to delete arcade"})
			return
		}
		invalidateArcadeCache(rdb, id)                 // Drop stale cache entries
		c.JSON(http.StatusOK, gin.H{"arcade": arcade}) // Return the deleted record
	}
}

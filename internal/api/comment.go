package api

import (
	"arcade_finder/internal/domain" // Importing domain models
	"net/http"                      // HTTP status codes
	"strconv"                       // String conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// CommentRequest carries a review text and a 1-5 rating.
// A rating of 0 never reaches the database; the range check rejects it.
type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`          // Review text must be provided
	Rating  int    `json:"rating" binding:"required,min=1,max=5"` // Rating must be 1-5
}

// CommentWithUsername is a comment enriched with its author's username
type CommentWithUsername struct {
	domain.Comment        // The comment itself
	Username       string `json:"username"` // Author's username
}

// CreateCommentHandler posts a comment on an arcade as the authenticated user
func CreateCommentHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var req CommentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Comment and a rating of 1-5 are required"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		arcadeID := c.Param("id") // Arcade id from the path
		var arcade domain.Arcade  // The arcade being reviewed
		if err := db.WithContext(ctx).First(&arcade, "id = ?", arcadeID).Error; err != nil {
			// If arcade not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Arcade not found"})
			return
		}
		// Attach the authenticated user as the author
		comment := domain.Comment{
			UserID:   userID.(uint), // Authoring user
			ArcadeID: arcade.ID,     // Reviewed arcade
			Comment:  req.Comment,   // Review text
			Rating:   req.Rating,    // Rating 1-5
		}
		if err := db.WithContext(ctx).Create(&comment).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":   userID,      // Authoring user ID
				"arcade_id": arcadeID,    // Reviewed arcade ID
				"error":     err.Error(), // Error message
			}).Error("Failed to create comment") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to create comment"})
			return
		}
		var author domain.User // Enrich the response with the author's username
		if err := db.WithContext(ctx).First(&author, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch comment author"})
			return
		}
		// A new rating changes the arcade's average
		invalidateArcadeCache(rdb, arcadeID)
		c.JSON(http.StatusOK, gin.H{"comment": CommentWithUsername{Comment: comment, Username: author.Username}})
	}
}

// UpdateCommentHandler edits a comment, scoped to its owning user.
// A missing comment and someone else's comment are deliberately indistinguishable.
func UpdateCommentHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var req CommentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Comment and a rating of 1-5 are required"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var comment domain.Comment // Fetch the comment scoped by id AND owner
		if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&comment).Error; err != nil {
			// No row matches both predicates
			c.JSON(http.StatusNotFound, gin.H{"msg": "Comment not found or not yours"})
			return
		}
		comment.Comment = req.Comment // Review text
		comment.Rating = req.Rating   // Rating 1-5
		if err := db.WithContext(ctx).Save(&comment).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"comment_id": c.Param("id"), // Comment ID
				"user_id":    userID,        // Owning user ID
				"error":      err.Error(),   // Error message
			}).Error("Failed to update comment") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to update comment"})
			return
		}
		// The edited rating changes the arcade's average
		invalidateArcadeCache(rdb, strconv.Itoa(int(comment.ArcadeID)))
		c.JSON(http.StatusOK, gin.H{"comment": comment}) // Return the updated comment
	}
}

// DeleteCommentHandler removes a comment, scoped to its owning user
func DeleteCommentHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var comment domain.Comment // Fetch the comment scoped by id AND owner
		if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&comment).Error; err != nil {
			// No row matches both predicates
			c.JSON(http.StatusNotFound, gin.H{"msg": "Comment not found or not yours"})
			return
		}
		if err := db.WithContext(ctx).Delete(&comment).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"comment_id": c.Param("id"), // Comment ID
				"user_id":    userID,        // Owning user ID
				"error":      err.Error(),   // Error message
			}).Error("Failed to delete comment") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to delete comment"})
			return
		}
		// The removed rating changes the arcade's average
		invalidateArcadeCache(rdb, strconv.Itoa(int(comment.ArcadeID)))
		c.JSON(http.StatusOK, gin.H{"comment": comment}) // Return the deleted record
	}
}

// ProfileComment is a comment joined with the name of its arcade
type ProfileComment struct {
	ID         uint   `json:"id"`          // Comment ID
	ArcadeID   uint   `json:"arcade_id"`   // Reviewed arcade ID
	Comment    string `json:"comment"`     // Review text
	Rating     int    `json:"rating"`      // Rating 1-5
	CreatedAt  int64  `json:"created_at"`  // Timestamp of creation in milliseconds
	ArcadeName string `json:"arcade_name"` // Name of the reviewed arcade
}

// ProfileHandler returns the authenticated user's comments, newest first
func ProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var comments []ProfileComment // The user's review history
		if err := db.WithContext(ctx).Table("comments").
			Select("comments.id, comments.arcade_id, comments.comment, comments.rating, comments.created_at, arcades.name AS arcade_name").
			Joins("JOIN arcades ON arcades.id = comments.arcade_id").
			Where("comments.user_id = ?", userID).
			Order("comments.created_at DESC").
			Scan(&comments).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch profile"})
			return
		}
		if comments == nil {
			comments = []ProfileComment{} // An empty history serializes as [], not null
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments}) // Return the review history
	}
}
